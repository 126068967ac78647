package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sessionlab/identity-system/internal/core/domain"
	"github.com/sessionlab/identity-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn  func(ctx context.Context, email, password, name string) (*domain.User, string, bool, error)
	loginFn     func(ctx context.Context, email, password string) (string, *domain.User, error)
	federatedFn func(ctx context.Context, identity domain.FederatedIdentity) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, string, bool, error) {
	return s.registerFn(ctx, email, password, name)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) FederatedLogin(ctx context.Context, identity domain.FederatedIdentity) (string, *domain.User, error) {
	return s.federatedFn(ctx, identity)
}

func (s *stubAuthService) SetPassword(context.Context, *domain.User, string) error { return nil }

func (s *stubAuthService) ValidateToken(context.Context, string) (*domain.User, ports.SessionClaims, error) {
	return nil, ports.SessionClaims{}, domain.ErrTokenInvalid
}

func newJSONContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Created(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, email, password, name string) (*domain.User, string, bool, error) {
			if email != "a@x.com" || password != "secret1" || name != "A" {
				t.Fatalf("unexpected args: %s %s %s", email, password, name)
			}
			u := &domain.User{ID: "u1", Email: email, Name: name, HasPassword: true, CreatedAt: time.Now().UTC()}
			return u, "token123", false, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"secret1","name":"A"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token in response: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "a@x.com" || user["has_password"] != true {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must never leave the service")
	}
}

func TestAuthHandler_Register_ClaimReturns200(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, email, _, _ string) (*domain.User, string, bool, error) {
			u := &domain.User{ID: "u1", Email: email, HasPassword: true, FederatedID: "g1"}
			return u, "token123", true, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"secret1"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("claim path: expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_ConflictPropagates(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.User, string, bool, error) {
			return nil, "", false, domain.ErrEmailInUse
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"secret1"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse to propagate, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.User, string, bool, error) {
			t.Fatalf("should not be called")
			return nil, "", false, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/register", "not-json")
	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_ValidationRejected(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.User, string, bool, error) {
			t.Fatal("service must not be reached on an invalid payload")
			return nil, "", false, nil
		},
	}
	h := NewAuthHandler(stub)

	for name, body := range map[string]string{
		"malformed email": `{"email":"not-an-email","password":"secret1"}`,
		"short password":  `{"email":"a@x.com","password":"tiny"}`,
		"empty payload":   `{}`,
	} {
		c, _ := newJSONContext(t, http.MethodPost, "/auth/register", body)
		err := h.Register(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %v", name, err)
		}
	}
}

func TestAuthHandler_Login_ValidationRejected(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			t.Fatal("service must not be reached on an invalid payload")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(stub)

	for name, body := range map[string]string{
		"malformed email":  `{"email":"not-an-email","password":"secret1"}`,
		"missing password": `{"email":"a@x.com"}`,
	} {
		c, _ := newJSONContext(t, http.MethodPost, "/auth/login", body)
		err := h.Login(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %v", name, err)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (string, *domain.User, error) {
			if email != "a@x.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", &domain.User{ID: "u1", Email: email, HasPassword: true}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"secret1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_FederatedLogin_ValidatesPayload(t *testing.T) {
	stub := &stubAuthService{
		federatedFn: func(context.Context, domain.FederatedIdentity) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(stub)

	// Missing federated_id and malformed email.
	c, _ := newJSONContext(t, http.MethodPost, "/auth/federated", `{"email":"not-an-email"}`)
	err := h.FederatedLogin(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_FederatedLogin_Success(t *testing.T) {
	stub := &stubAuthService{
		federatedFn: func(_ context.Context, identity domain.FederatedIdentity) (string, *domain.User, error) {
			if identity.FederatedID != "g1" || identity.Email != "a@x.com" {
				t.Fatalf("unexpected identity: %+v", identity)
			}
			return "token123", &domain.User{ID: "u1", Email: identity.Email, FederatedID: identity.FederatedID}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/federated", `{"federated_id":"g1","email":"a@x.com","name":"A"}`)
	if err := h.FederatedLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	user, _ := resp["user"].(map[string]any)
	if user["federated"] != true {
		t.Fatalf("expected federated flag, got %+v", resp)
	}
}
