package middleware

// identity.go holds the helpers that read the authenticated user that
// SessionAuth placed in the Echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/allclear/internal/model"
)

const userContextKey = "user"

// CurrentUser returns the user authenticated for this request.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}

// userID returns the authenticated user's id, or "" for anonymous
// requests.
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return u.ID
	}
	return ""
}
