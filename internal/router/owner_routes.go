package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/allclear/internal/handler"
)

// RegisterFriends registers the friend endpoints under /api/friends.
// Every route is scoped to the authenticated owner; mw must start with
// the session middleware.
func RegisterFriends(e *echo.Echo, f *handler.FriendHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api/friends", mw...)

	g.GET("", f.List)
	g.POST("", f.Add)
	g.PUT("/:id/status", f.UpdateStatus)
	g.PUT("/:id/location", f.UpdateLocation)
	g.DELETE("/:id", f.Remove) // soft delete
}

// RegisterLocations registers the point-of-interest endpoints under
// /api/locations.
func RegisterLocations(e *echo.Echo, l *handler.LocationHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api/locations", mw...)

	g.GET("", l.List)
	g.POST("", l.Add)
	g.PUT("/:id/coordinates", l.UpdateCoordinates)
	g.DELETE("/:id", l.Remove) // hard delete
}
