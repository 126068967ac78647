package ports

import (
	"context"

	"github.com/sessionlab/identity-system/internal/core/domain"
)

type AuthService interface {
	// Register creates a password account, or sets a password on an existing
	// federated-only account with the same email ("claim"). claimed reports
	// which of the two happened.
	Register(ctx context.Context, email, password, name string) (user *domain.User, token string, claimed bool, err error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	FederatedLogin(ctx context.Context, identity domain.FederatedIdentity) (string, *domain.User, error)
	SetPassword(ctx context.Context, user *domain.User, password string) error
	ValidateToken(ctx context.Context, token string) (*domain.User, SessionClaims, error)
}
