package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sessionlab/identity-system/internal/api/middleware"
	"github.com/sessionlab/identity-system/internal/core/domain"
)

// ctxUser extracts the account injected by the Auth middleware. Presence
// proves the middleware ran; a handler behind required auth treats absence
// as a broken pipeline and rejects with 401.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.UserContextKey).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}

// ctxOptionalUser extracts the account when the OptionalAuth middleware
// attached one; nil means an anonymous request.
func ctxOptionalUser(c echo.Context) *domain.User {
	user, _ := c.Get(middleware.UserContextKey).(*domain.User)
	return user
}
