package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sessionlab/identity-system/internal/api/metrics"
	"github.com/sessionlab/identity-system/internal/core/domain"
	"github.com/sessionlab/identity-system/internal/core/ports"
)

// UserContextKey is where the resolved account is stored on the echo context.
const UserContextKey = "user"

// Auth enforces bearer authentication: the request proceeds only when a
// well-formed token verifies and resolves to an existing account. Each
// failure mode gets its own message but the same 401 outcome.
func Auth(tokens ports.TokenService, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, failure, err := resolveBearer(c, tokens, users)
			if err != nil {
				return err
			}
			if failure != "" {
				return echo.NewHTTPError(http.StatusUnauthorized, failure)
			}
			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// OptionalAuth runs the same extraction and verification pipeline but never
// rejects on authentication grounds: a missing, malformed, expired or invalid
// token, or an unknown subject, falls through with no user attached, and
// downstream handlers treat the absent identity as a first-class case.
func OptionalAuth(tokens ports.TokenService, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, failure, err := resolveBearer(c, tokens, users)
			if err != nil {
				return err
			}
			if failure == "" {
				c.Set(UserContextKey, user)
			}
			return next(c)
		}
	}
}

// resolveBearer extracts the bearer token, verifies it, and resolves the
// subject to a live account. A non-empty failure string names the first
// authentication step that failed; a non-nil error is an infrastructure
// fault (store unavailable), never an authentication outcome.
func resolveBearer(c echo.Context, tokens ports.TokenService, users ports.UserRepository) (*domain.User, string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header", nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, "invalid authorization header", nil
	}

	claims, err := tokens.Verify(parts[1])
	if errors.Is(err, domain.ErrTokenExpired) {
		metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
		return nil, "token expired", nil
	}
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, "invalid token", nil
	}

	user, err := users.FindByID(c.Request().Context(), claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		metrics.TokenVerificationsTotal.WithLabelValues("user_not_found").Inc()
		return nil, "user not found", nil
	}
	if err != nil {
		return nil, "", err
	}

	metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
	return user, "", nil
}
