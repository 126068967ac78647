package handler

import "time"

// --- Request / Response types ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

type validateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// federatedLoginRequest carries the verified identity tuple produced by the
// external provider exchange; this service never talks to the provider
// itself.
type federatedLoginRequest struct {
	FederatedID string `json:"federated_id" validate:"required"`
	Email       string `json:"email"        validate:"required,email"`
	Name        string `json:"name"`
}

// userResponse is the public projection of an account; the password hash
// never leaves the service.
type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	HasPassword bool      `json:"has_password"`
	Federated   bool      `json:"federated"`
	CreatedAt   time.Time `json:"created_at"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  userResponse `json:"user"`
}

type validateTokenResponse struct {
	User      userResponse `json:"user"`
	IssuedAt  time.Time    `json:"issued_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}
