package dto

import "time"

// AdminLoginRequest payload for login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminResponse describes the logged in moderator.
type AdminResponse struct {
	Email string `json:"email"`
}
