package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/handler"
	"github.com/iliyamo/event-planner/internal/middleware"
)

// RegisterEvent registers the event board. Every route needs a session;
// ownership is checked by the service. Weather responses are cached per
// event location and date, so updates and deletes take effect at once.
func RegisterEvent(g *echo.Group, d Deps) {
	a, ev := d.Auth, d.Events
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger)
	cache := middleware.NewRedisCache(d.Cache, d.Redis, ev.WeatherVersion)
	authed := gates(a.RequireAuthenticated)

	g.POST("/createEvent", handler.Handle(ev.Create), gated(authed, limit)...)
	g.GET("/getAllEvents", handler.Handle(ev.GetAll), gated(authed, limit)...)
	g.GET("/getEvent/:_id", handler.Handle(ev.Get), gated(authed, limit)...)
	g.PATCH("/updateEventInfo/:_id", handler.Handle(ev.Update), gated(authed, limit)...)
	g.DELETE("/deleteEvent/:_id", handler.Handle(ev.Delete), gated(authed, limit)...)
	g.GET("/fetchWeatherInfo/:id", handler.Handle(ev.FetchWeatherInfo), gated(authed, limit, cache)...)
}
