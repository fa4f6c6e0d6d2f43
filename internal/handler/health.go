package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Check probes one dependency. A nil Check marks it as disabled.
type Check func(ctx context.Context) error

// Health reports the state of each dependency. It answers 503 when any
// enabled check fails so load balancers can take the instance out.
func Health(checks map[string]Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		out := make(map[string]string, len(checks))
		for name, check := range checks {
			switch {
			case check == nil:
				out[name] = "disabled"
			case check(ctx) != nil:
				out[name] = "down"
				status = http.StatusServiceUnavailable
			default:
				out[name] = "ok"
			}
		}
		msg := "ok"
		if status != http.StatusOK {
			msg = "degraded"
		}
		return c.JSON(status, envelope{Status: status, Data: out, Message: msg})
	}
}
