package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Username        string `json:"username"         validate:"required,max=150,username"`
	Email           string `json:"email"            validate:"omitempty,max=254,custom_email"`
	FirstName       string `json:"first_name"       validate:"omitempty,max=150"`
	LastName        string `json:"last_name"        validate:"omitempty,max=150"`
	Password        string `json:"password"         validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	// Admin makes the new account a superuser.
	Admin bool `json:"admin"`
}

type UpdateUserDTO struct {
	Username  null.String `json:"username"   validate:"omitempty,max=150,username"`
	Email     null.String `json:"email"      validate:"omitempty,max=254,custom_email"`
	FirstName null.String `json:"first_name" validate:"omitempty,max=150"`
	LastName  null.String `json:"last_name"  validate:"omitempty,max=150"`
}

type UserDTO struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
