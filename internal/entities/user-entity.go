package entities

import (
	"strings"

	"equipment-store/pkg/types"
)

type User struct {
	ID        uint64 `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	Password string `json:"-" db:"password"`

	IsSuperuser bool `json:"is_superuser" db:"is_superuser"`
	IsActive    bool `json:"is_active" db:"is_active"`

	types.BaseEntity
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
