package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/utils"
)

// Step is what a gate hands back on success: an identity to attach,
// cookies to set and notices for the caller. Any field may be empty.
type Step struct {
	Identity *utils.Identity
	Cookies  []*http.Cookie
	Notice   string
}

// Directives accumulate the steps of every gate a request passed. Handlers
// read the identity from here; the envelope writer applies the cookies and
// notices.
type Directives struct {
	Identity *utils.Identity
	Cookies  []*http.Cookie
	Notices  []string
}

func (d *Directives) merge(s Step) {
	if s.Identity != nil {
		d.Identity = s.Identity
	}
	d.Cookies = append(d.Cookies, s.Cookies...)
	if s.Notice != "" {
		d.Notices = append(d.Notices, s.Notice)
	}
}

// Gate decides whether a request may proceed. A non-nil error stops the
// pipeline and is rendered as the response.
type Gate func(c echo.Context) (Step, error)

const directivesKey = "directives"

// DirectivesOf returns the request's directives, creating them on first use.
func DirectivesOf(c echo.Context) *Directives {
	if d, ok := c.Get(directivesKey).(*Directives); ok {
		return d
	}
	d := &Directives{}
	c.Set(directivesKey, d)
	return d
}

// IdentityOf returns the identity attached by an earlier gate.
func IdentityOf(c echo.Context) (utils.Identity, bool) {
	d, ok := c.Get(directivesKey).(*Directives)
	if !ok || d.Identity == nil {
		return utils.Identity{}, false
	}
	return *d.Identity, true
}

// UserID is the identity's user id, or "anon" when there is none.
func UserID(c echo.Context) string {
	if id, ok := IdentityOf(c); ok {
		return id.UserID
	}
	return "anon"
}

// Pipeline runs gates in order and short-circuits on the first failure.
// Each later gate sees the directives merged from the ones before it.
func Pipeline(gates ...Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := DirectivesOf(c)
			for _, g := range gates {
				step, err := g(c)
				if err != nil {
					return err
				}
				d.merge(step)
			}
			return next(c)
		}
	}
}
