package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/allclear/internal/metrics"
)

// Metrics records request count, latency and in-flight requests.  The
// endpoint label is the route pattern so ids do not explode cardinality.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if err != nil && errors.As(err, &he) {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			metrics.RecordAPIRequest(c.Request().Method, endpoint, status, time.Since(start))
			return err
		}
	}
}
