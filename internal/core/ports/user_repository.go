package ports

import (
	"context"

	"github.com/sessionlab/identity-system/internal/core/domain"
)

// UserRepository defines the interface for account persistence. Lookups
// return domain.ErrUserNotFound on a miss and domain.ErrStoreUnavailable on
// backend failure; the two are never conflated.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByFederatedID(ctx context.Context, federatedID string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
}
