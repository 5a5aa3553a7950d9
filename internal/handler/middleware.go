package handler

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/domain"
)

const (
	contextKeyUser = "user"
)

// Authenticator resolves the user behind an Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*domain.User, error)
}

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Run the error handler first so the logged status is the rendered one.
				c.Error(err)
			}

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return nil
		}
	}
}

// Authenticate requires a valid bearer token and stores the caller in the echo context.
func Authenticate(gate Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := gate.Authenticate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			c.Set(contextKeyUser, user)
			return next(c)
		}
	}
}

// RequireRole rejects callers whose role is not listed. Must run after Authenticate.
func RequireRole(roles ...domain.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := CurrentUser(c)
			if err != nil {
				return err
			}
			if !slices.Contains(roles, user.Role) {
				return apierr.Unauthorized()
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated caller.
func CurrentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(contextKeyUser).(*domain.User)
	if !ok || user == nil {
		return nil, apierr.NotLoggedIn()
	}
	return user, nil
}
