package dto

import "github.com/ahmetcoskunkizilkaya/family-meals/internal/session"

type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// AuthResponse returns the session token for bearer clients next to the cookie.
type AuthResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token,omitempty"`
	User    *session.Identity `json:"user"`
}

type MeResponse struct {
	User *session.Identity `json:"user"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
