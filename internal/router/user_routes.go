package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/handler"
	"github.com/iliyamo/event-planner/internal/middleware"
)

// RegisterUser registers the account routes. register and login share a
// tighter rate limit than the rest.
func RegisterUser(g *echo.Group, d Deps) {
	a, u := d.Auth, d.Users
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger)
	authLimit := middleware.NewTokenBucket(d.RateLimit.ForAuth(), d.Redis, d.Logger)
	self := middleware.RequireSelf("userId")

	g.POST("/register", handler.Handle(u.Register), gated(gates(a.RequireAnonymous), authLimit)...)
	g.POST("/login", handler.Handle(u.Login), gated(gates(a.RequireAnonymous), authLimit)...)
	g.POST("/logout/:userId", handler.Handle(u.Logout), gated(gates(a.RequireAuthenticated, self), limit)...)

	g.PATCH("/updateEmail/:userId", handler.Handle(u.UpdateEmail),
		gated(gates(a.RequireAuthenticated, self, a.RegenerateAccessToken), limit)...)
	g.PATCH("/updateFullName/:userId", handler.Handle(u.UpdateFullName),
		gated(gates(a.RequireAuthenticated, self, a.RegenerateAccessToken), limit)...)
	g.PATCH("/changePasswordForLoginUser/:userId", handler.Handle(u.ChangePasswordForLoginUser),
		gated(gates(a.RequireAuthenticated, self, a.RegenerateAccessToken), limit)...)

	// No session: the old password is the credential.
	g.PATCH("/changePasswordWithoutLogin", handler.Handle(u.ChangePasswordWithoutLogin), gated(nil, authLimit)...)

	g.DELETE("/deleteUser/:userId", handler.Handle(u.DeleteUser), gated(gates(a.RequireAuthenticated, self), limit)...)
}
