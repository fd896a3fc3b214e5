package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public profile of a user.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserResponse maps a domain user without its password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return NewUserSummaryResponse(u.Summary())
}

// NewUserSummaryResponse maps a user summary.
func NewUserSummaryResponse(s domain.UserSummary) UserResponse {
	return UserResponse{ID: s.ID, Name: s.Name, Email: s.Email}
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
