// Package router maps every HTTP path to its gate pipeline and handler.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-planner/internal/config"
	"github.com/iliyamo/event-planner/internal/handler"
	"github.com/iliyamo/event-planner/internal/middleware"
)

// Deps carries everything the routes need. Redis may be nil, which turns
// rate limiting and the weather cache off.
type Deps struct {
	Users     *handler.UserHandler
	Events    *handler.EventHandler
	Auth      *middleware.Auth
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client
	Gatherer  prometheus.Gatherer
	Health    map[string]handler.Check
	Logger    *slog.Logger
}

// RegisterRoutes registers the ambient endpoints and the /api/v1 API.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.Health))
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1")
	RegisterUser(api.Group("/user"), d)
	RegisterEvent(api.Group("/event"), d)
}

// gated builds the middleware list for one route: the gate pipeline first,
// then anything that depends on the identity it resolves.
func gated(gates []middleware.Gate, after ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	return append([]echo.MiddlewareFunc{middleware.Pipeline(gates...)}, after...)
}

func gates(g ...middleware.Gate) []middleware.Gate { return g }
