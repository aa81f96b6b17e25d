package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is the health-check endpoint used by load balancers and
// monitoring systems.  It always answers 200 while the process serves
// requests; the database field reflects a live ping of the store.
func Health(store Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		db := "Connected"
		if store == nil || store.Ping(ctx) != nil {
			db = "Disconnected"
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":   "OK",
			"message":  "AllClear API is running",
			"database": db,
		})
	}
}
