package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")
var ErrEmailInUse = errors.New("email is already in use")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrStoreUnavailable = errors.New("store unavailable")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalid = errors.New("invalid token")
var ErrForbidden = errors.New("access forbidden")

// User models an account record. An account may carry a password credential,
// a federated identity, or both; HasPassword is true iff PasswordHash is set.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	HasPassword  bool      `json:"has_password"`
	FederatedID  string    `json:"federated_id,omitempty"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FederatedIdentity is the verified tuple returned by an external identity
// provider after its own consent exchange.
type FederatedIdentity struct {
	FederatedID string
	Email       string
	Name        string
}

// NewUser builds an unpersisted account with a fresh id. The display name
// defaults to the local part of the email when none is given.
func NewUser(email, name string) *User {
	email = NormalizeEmail(email)
	if name == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			name = email[:at]
		} else {
			name = email
		}
	}
	return &User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// NormalizeEmail trims and lower-cases an email address. All lookups and
// uniqueness checks operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ToFields flattens the user into a document field map for the store.
func (u *User) ToFields() map[string]any {
	return map[string]any{
		"id":            u.ID,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"has_password":  u.HasPassword,
		"federated_id":  u.FederatedID,
		"name":          u.Name,
		"created_at":    u.CreatedAt,
	}
}

// UserFromFields rebuilds a user from a stored document. The document id is
// authoritative over any embedded "id" field.
func UserFromFields(docID string, fields map[string]any) *User {
	u := &User{
		ID:           docID,
		Email:        stringField(fields, "email"),
		PasswordHash: stringField(fields, "password_hash"),
		FederatedID:  stringField(fields, "federated_id"),
		Name:         stringField(fields, "name"),
	}
	if v, ok := fields["has_password"].(bool); ok {
		u.HasPassword = v
	}
	u.CreatedAt = timeField(fields, "created_at")
	return u
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}

// timeField accepts both a live time.Time and the RFC 3339 string form the
// store persists.
func timeField(fields map[string]any, key string) time.Time {
	switch v := fields[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
