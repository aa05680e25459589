package dto

import (
	"time"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// LoginRequest payload for login. Captcha fields are required only when captchas are enforced.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CaptchaResponse carries a login challenge image.
type CaptchaResponse struct {
	ID        string    `json:"id"`
	SVG       string    `json:"svg"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUserRequest payload for new accounts. An empty password falls back to the default.
type CreateUserRequest struct {
	Name        string              `json:"name" validate:"required,max=120"`
	Email       string              `json:"email" validate:"required,email"`
	Password    string              `json:"password" validate:"omitempty,min=6"`
	Role        domain.Role         `json:"role" validate:"required"`
	Permissions []domain.Permission `json:"permissions"`
}

// UpdateUserRequest payload for account edits. Empty fields keep their value.
type UpdateUserRequest struct {
	Name        string              `json:"name" validate:"max=120"`
	Email       string              `json:"email" validate:"omitempty,email"`
	Password    string              `json:"password" validate:"omitempty,min=6"`
	Role        domain.Role         `json:"role"`
	Permissions []domain.Permission `json:"permissions"`
}

// UserResponse is an account without its credentials.
type UserResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Role        domain.Role         `json:"role"`
	Avatar      string              `json:"avatar"`
	LastLogin   string              `json:"last_login"`
	Permissions []domain.Permission `json:"permissions"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	perms := u.Permissions
	if perms == nil {
		perms = []domain.Permission{}
	}
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Avatar:      u.Avatar,
		LastLogin:   u.LastLogin,
		Permissions: perms,
	}
}

// ActivityViewRequest logs that a console page was opened.
type ActivityViewRequest struct {
	Page string `json:"page" validate:"required,max=120"`
}
