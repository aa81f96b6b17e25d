package middleware // middleware holds the Echo middleware shared by the API routes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/logging"
	"github.com/iliyamo/allclear/internal/metrics"
	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/service"
)

// SessionValidator resolves a raw bearer token to an active user.
type SessionValidator interface {
	Validate(ctx context.Context, raw string) (model.User, error)
}

// SessionAuth returns an Echo middleware that validates the Bearer token
// and stores the authenticated user in the request context, where
// handlers read it with CurrentUser.
//
// A missing token is answered with 401; a token that is malformed,
// expired or names an unknown or inactive user is answered with 403.
func SessionAuth(sessions SessionValidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))

			u, err := sessions.Validate(c.Request().Context(), raw)
			if err != nil {
				status, msg, reason := authFailure(err)
				metrics.RecordAuthFailure(reason)
				if status == http.StatusInternalServerError {
					l := logging.Ctx(c.Request().Context(), log)
					l.Error().Err(err).Msg("session validation failed")
				}
				return c.JSON(status, echo.Map{"message": msg})
			}

			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header value.
// Anything but "Bearer <token>" yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func authFailure(err error) (status int, msg, reason string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Access token required", "missing"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusForbidden, "Token expired", "expired"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusForbidden, "Invalid token", "invalid"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusForbidden, "User not found", "unknown_user"
	}
	return http.StatusInternalServerError, "Internal server error", "error"
}
