package server

import "time"

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthSignupRequest represents the signup payload.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest represents the login payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// IDResponse is a generic id response wrapper.
type IDResponse struct {
	ID string `json:"id"`
}

// MeResponse returns the current authenticated user id.
type MeResponse struct {
	UserID string `json:"user_id"`
}

// ProfileResponse is the public view of a principal.
type ProfileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpdateProfileRequest carries the only mutable profile field.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
}

// CreateMessageRequest represents one new chat turn.
type CreateMessageRequest struct {
	Content string `json:"content"`
	IsUser  bool   `json:"is_user"`
}

// MessageResponse is a stored chat turn.
type MessageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	CreatedAt time.Time `json:"created_at"`
}

// ClearMessagesResponse reports how many rows a history clear removed.
type ClearMessagesResponse struct {
	Deleted int64 `json:"deleted"`
}
