package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sessionlab/identity-system/internal/core/domain"
	"github.com/sessionlab/identity-system/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements registration, login, federated login and password
// management over a user repository and a token service.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenService
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Register creates a password account for email. When the email already
// belongs to a federated-only account, the password is set on that account
// instead of creating a duplicate; claimed reports this upgrade path.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, string, bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", false, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, "", false, fmt.Errorf("%w: password must be at least %d characters long", domain.ErrInvalidInput, minPasswordLength)
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", false, err
	}

	if existing != nil {
		if existing.FederatedID == "" || existing.HasPassword {
			return nil, "", false, domain.ErrEmailInUse
		}
		// Claim: upgrade the federated-only account with a password.
		if err := setPasswordHash(existing, password); err != nil {
			return nil, "", false, err
		}
		if name != "" {
			existing.Name = name
		}
		if err := s.repo.Save(ctx, existing); err != nil {
			return nil, "", false, err
		}
		token, err := s.tokens.Issue(existing.ID)
		if err != nil {
			return nil, "", false, err
		}
		return existing, token, true, nil
	}

	user := domain.NewUser(email, name)
	if err := setPasswordHash(user, password); err != nil {
		return nil, "", false, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, "", false, err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", false, err
	}
	return user, token, false, nil
}

// Login answers unknown email and wrong password with the same generic
// ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// FederatedLogin resolves a verified external identity to exactly one
// account: by federated id first, then by email (linking the identity onto
// the existing account), and only then by creating a new account.
func (s *AuthService) FederatedLogin(ctx context.Context, identity domain.FederatedIdentity) (string, *domain.User, error) {
	if identity.FederatedID == "" || identity.Email == "" {
		return "", nil, fmt.Errorf("%w: incomplete federated identity", domain.ErrInvalidInput)
	}

	user, err := s.repo.FindByFederatedID(ctx, identity.FederatedID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, err
	}

	if user == nil {
		user, err = s.repo.FindByEmail(ctx, identity.Email)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, err
		}
		if user != nil {
			user.FederatedID = identity.FederatedID
			if err := s.repo.Save(ctx, user); err != nil {
				return "", nil, err
			}
		} else {
			user = domain.NewUser(identity.Email, identity.Name)
			user.FederatedID = identity.FederatedID
			if err := s.repo.Save(ctx, user); err != nil {
				return "", nil, err
			}
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SetPassword sets or replaces the password of an authenticated account and
// persists the change. Works for both federated-only and password accounts.
func (s *AuthService) SetPassword(ctx context.Context, user *domain.User, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", domain.ErrInvalidInput, minPasswordLength)
	}
	if err := setPasswordHash(user, password); err != nil {
		return err
	}
	return s.repo.Save(ctx, user)
}

// ValidateToken verifies a session token and resolves its subject to a live
// account.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.User, ports.SessionClaims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ports.SessionClaims{}, err
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ports.SessionClaims{}, err
	}
	return user, claims, nil
}

func setPasswordHash(user *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.HasPassword = true
	return nil
}
