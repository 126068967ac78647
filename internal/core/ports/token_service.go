package ports

import "time"

// SessionClaims are the validated contents of a session token.
type SessionClaims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed, time-bounded session tokens.
// Verify distinguishes an expired token (domain.ErrTokenExpired) from a
// malformed or tampered one (domain.ErrTokenInvalid).
type TokenService interface {
	Issue(userID string) (string, error)
	Verify(token string) (SessionClaims, error)
}
