package dto

type LoginDTO struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken string        `json:"accessToken"`
	User        UserPublicDTO `json:"user"`
}

type UserPublicDTO struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UserProfileDTO is returned by /accounts/me.
type UserProfileDTO struct {
	UserPublicDTO
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}
