package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/utils"
)

// RefreshNotice is added when a request was let through on its refresh token.
const RefreshNotice = "your access token has expired, please refresh it"

// Sessions is the slice of the user service the gates need.
type Sessions interface {
	GetByID(ctx context.Context, userID string) (model.User, error)
	MatchSession(ctx context.Context, userID, rawRefresh string) (bool, error)
}

// Auth holds the session gates. Its methods have the Gate signature.
type Auth struct {
	tokens   *utils.TokenService
	sessions Sessions
	cookies  utils.CookieFactory
	logger   *slog.Logger
}

func NewAuth(tokens *utils.TokenService, sessions Sessions, cookies utils.CookieFactory, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{tokens: tokens, sessions: sessions, cookies: cookies, logger: logger.With("component", "auth")}
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(ck.Value)
}

// RequireAuthenticated resolves the caller from the session cookies. The
// access token wins when present. Without it, a valid refresh token that
// is still the user's current session lets the request through with a
// notice.
func (a *Auth) RequireAuthenticated(c echo.Context) (Step, error) {
	if len(c.Cookies()) == 0 {
		return Step{}, apperr.Unauthenticated("no cookies found, user not logged in")
	}
	access := cookieValue(c, utils.AccessCookie)
	refresh := cookieValue(c, utils.RefreshCookie)
	if access == "" && refresh == "" {
		return Step{}, apperr.Unauthenticated("no session tokens found, user not logged in")
	}

	if access != "" {
		id, err := a.tokens.VerifyAccess(access)
		if err != nil {
			a.logger.Debug("access token rejected", "error", err)
			return Step{}, apperr.Wrap(apperr.KindInvalidSession, "invalid or expired access token", err)
		}
		return Step{Identity: &id}, nil
	}

	id, err := a.tokens.VerifyRefresh(refresh)
	if err != nil {
		a.logger.Debug("refresh token rejected", "error", err)
		return Step{}, apperr.Wrap(apperr.KindInvalidSession, "invalid or expired refresh token", err)
	}
	current, err := a.sessions.MatchSession(c.Request().Context(), id.UserID, refresh)
	if err != nil {
		return Step{}, apperr.Wrap(apperr.KindInternal, "failed to check session", err)
	}
	if !current {
		return Step{}, apperr.New(apperr.KindInvalidSession, "session is no longer active, please log in again")
	}
	return Step{Identity: &id, Notice: RefreshNotice}, nil
}

// RequireAnonymous rejects callers that already hold a session cookie.
func (a *Auth) RequireAnonymous(c echo.Context) (Step, error) {
	if cookieValue(c, utils.AccessCookie) != "" || cookieValue(c, utils.RefreshCookie) != "" {
		return Step{}, apperr.New(apperr.KindAlreadyAuthenticated, "user already logged in")
	}
	return Step{}, nil
}

// RegenerateAccessToken issues a fresh access cookie for the identity an
// earlier gate attached.
func (a *Auth) RegenerateAccessToken(c echo.Context) (Step, error) {
	id, ok := IdentityOf(c)
	if !ok {
		return Step{}, apperr.Unauthenticated("no identity on request")
	}
	u, err := a.sessions.GetByID(c.Request().Context(), id.UserID)
	if err != nil {
		if k := apperr.KindOf(err); k == apperr.KindNotFound || k == apperr.KindValidation {
			return Step{}, apperr.New(apperr.KindUserNotFound, "user no longer exists")
		}
		return Step{}, err
	}
	token, err := a.tokens.IssueAccessToken(id.UserID, u.UserName)
	if err != nil {
		return Step{}, apperr.Wrap(apperr.KindTokenIssue, "failed to issue access token", err)
	}
	return Step{Cookies: []*http.Cookie{a.cookies.Access(token)}}, nil
}

// RequireSelf allows the request only when the path parameter names the
// caller's own account.
func RequireSelf(param string) Gate {
	return func(c echo.Context) (Step, error) {
		id, ok := IdentityOf(c)
		if !ok {
			return Step{}, apperr.Unauthenticated("no identity on request")
		}
		if c.Param(param) != id.UserID {
			return Step{}, apperr.Forbidden("you can only manage your own account")
		}
		return Step{}, nil
	}
}
