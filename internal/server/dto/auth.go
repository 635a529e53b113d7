package dto

import (
	"time"

	"papertrade/internal/entity"
)

// RegisterRequest creates a new account for an externally authenticated
// subject id.
type RegisterRequest struct {
	NetID     string `json:"net_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarID  *int   `json:"avatar_id,omitempty"`
}

// LoginRequest identifies an existing account.
type LoginRequest struct {
	NetID string `json:"net_id"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          uint      `json:"id"`
	NetID       string    `json:"net_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at,omitempty"`
}

// NewUserResponse maps a user entity to its public view.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		NetID:       u.NetID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		AvatarURL:   u.AvatarURL(),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// ProfileResponse is the authenticated user's own view, including balance.
type ProfileResponse struct {
	UserResponse
	Balance float64 `json:"balance"`
}

// AuthResponse carries a signed token and the account it belongs to.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
