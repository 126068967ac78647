package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sessionlab/identity-system/internal/core/domain"
)

// APIHandler serves the demo resource surface used to exercise the two
// authentication modes.
type APIHandler struct{}

func NewAPIHandler() *APIHandler {
	return &APIHandler{}
}

// Public handles GET /api/public. No authentication of any kind.
func (h *APIHandler) Public(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":   "this is a public endpoint",
		"timestamp": time.Now().UTC(),
		"public":    true,
	})
}

// Protected handles GET /api/protected, behind required authentication.
func (h *APIHandler) Protected(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":   "access authorized",
		"timestamp": time.Now().UTC(),
		"user":      toUserResponse(user),
	})
}

// UserData handles GET /api/user-data: account details plus per-user
// presentation data.
func (h *APIHandler) UserData(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	accountType := "password"
	if user.FederatedID != "" {
		accountType = "federated"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"profile":      toUserResponse(user),
		"account_type": accountType,
		"stats": map[string]any{
			"last_seen": time.Now().UTC(),
		},
	})
}

// Admin handles GET /api/admin. Authorization is a simulation: any account
// whose email ends in @admin.com passes. Real role checks are out of scope.
func (h *APIHandler) Admin(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(user.Email, "@admin.com") {
		return domain.ErrForbidden
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":    "access authorized to admin panel",
		"timestamp":  time.Now().UTC(),
		"admin_user": toUserResponse(user),
	})
}

// Mixed handles GET /api/mixed, behind optional authentication: the payload
// is personalized when an identity is present and generic otherwise.
func (h *APIHandler) Mixed(c echo.Context) error {
	user := ctxOptionalUser(c)
	if user == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"authenticated": false,
			"message":       "public data for unauthenticated user",
			"timestamp":     time.Now().UTC(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": true,
		"message":       "personalized data for " + user.Name,
		"timestamp":     time.Now().UTC(),
		"user":          toUserResponse(user),
	})
}
