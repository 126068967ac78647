package repository

import (
	"context"
	"fmt"

	"github.com/sessionlab/identity-system/internal/core/domain"
	"github.com/sessionlab/identity-system/internal/core/ports"
)

// StoreUserRepository persists accounts through any DocumentStore backend.
// It owns the mapping between domain.User and raw document fields; callers
// never see store documents.
type StoreUserRepository struct {
	store ports.DocumentStore
}

func NewStoreUserRepository(store ports.DocumentStore) *StoreUserRepository {
	return &StoreUserRepository{store: store}
}

func (r *StoreUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, ports.Filter{Field: "email", Value: domain.NormalizeEmail(email)})
}

func (r *StoreUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	doc, ok, err := r.store.Get(ctx, ports.UsersCollection, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return domain.UserFromFields(doc.ID, doc.Fields), nil
}

func (r *StoreUserRepository) FindByFederatedID(ctx context.Context, federatedID string) (*domain.User, error) {
	return r.findOne(ctx, ports.Filter{Field: "federated_id", Value: federatedID})
}

func (r *StoreUserRepository) Save(ctx context.Context, user *domain.User) error {
	if err := r.store.Set(ctx, ports.UsersCollection, user.ID, user.ToFields()); err != nil {
		return fmt.Errorf("save user %s: %w", user.ID, err)
	}
	return nil
}

// findOne runs a limit=1 equality query. Application-level uniqueness checks
// at write time guarantee at most one real match.
func (r *StoreUserRepository) findOne(ctx context.Context, filter ports.Filter) (*domain.User, error) {
	docs, err := r.store.Query(ctx, ports.UsersCollection, []ports.Filter{filter}, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return domain.UserFromFields(docs[0].ID, docs[0].Fields), nil
}
