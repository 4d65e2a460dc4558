package dto

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Email       string  `json:"email" example:"user@example.com"`
	Password    string  `json:"password" example:"password123"`
	PhoneNumber *string `json:"phone_number,omitempty" example:"+66812345678"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"password123"`
}

// TokenResponse represents the response after successful authentication
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"1800"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID          int64   `json:"id" example:"7"`
	Email       string  `json:"email" example:"user@example.com"`
	PhoneNumber *string `json:"phone_number"`
	CreatedAt   string  `json:"created_at" example:"2024-01-01T12:00:00Z"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
