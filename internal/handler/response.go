package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/middleware"
)

// Response is what a handler produces. Cookies are set by the envelope
// writer together with any cookies the gates asked for.
type Response struct {
	Status  int
	Data    any
	Message string
	Cookies []*http.Cookie
}

// Func is a handler that returns its response instead of writing it.
type Func func(c echo.Context) (Response, error)

type envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Notice  string `json:"notice,omitempty"`
}

type errorEnvelope struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handle adapts f to echo. Errors go to the echo error handler.
func Handle(f Func) echo.HandlerFunc {
	return func(c echo.Context) error {
		res, err := f(c)
		if err != nil {
			return err
		}
		return write(c, res)
	}
}

// write is the only place a success response is written.
func write(c echo.Context, res Response) error {
	d := middleware.DirectivesOf(c)
	for _, ck := range d.Cookies {
		c.SetCookie(ck)
	}
	for _, ck := range res.Cookies {
		c.SetCookie(ck)
	}
	if res.Status == 0 {
		res.Status = http.StatusOK
	}
	data := res.Data
	if data == nil {
		data = struct{}{}
	}
	return c.JSON(res.Status, envelope{
		Status:  res.Status,
		Data:    data,
		Message: res.Message,
		Notice:  strings.Join(d.Notices, "; "),
	})
}

// ErrorHandler renders every error as an error envelope. 5xx are logged at
// error level, everything else at warn.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, kind, msg := classify(err)

		attrs := []any{
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"kind", kind,
			"error", err.Error(),
		}
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			attrs = append(attrs, "request_id", id)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else {
			logger.Warn("request rejected", attrs...)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorEnvelope{Status: status, Error: kind, Message: msg})
	}
}

func classify(err error) (int, string, string) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Status(), string(ae.Kind), ae.Message
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		if he.Code >= http.StatusInternalServerError {
			return he.Code, string(apperr.KindInternal), "internal server error"
		}
		return he.Code, httpKind(he.Code), msg
	}
	return http.StatusInternalServerError, string(apperr.KindInternal), "internal server error"
}

func httpKind(code int) string {
	switch code {
	case http.StatusBadRequest:
		return string(apperr.KindValidation)
	case http.StatusUnauthorized:
		return string(apperr.KindUnauthenticated)
	case http.StatusForbidden:
		return string(apperr.KindForbidden)
	case http.StatusNotFound:
		return string(apperr.KindNotFound)
	case http.StatusTooManyRequests:
		return string(apperr.KindRateLimited)
	}
	return strings.ReplaceAll(http.StatusText(code), " ", "")
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	return nil
}

func identity(c echo.Context) (string, error) {
	id, ok := middleware.IdentityOf(c)
	if !ok {
		return "", apperr.Unauthenticated("no identity on request")
	}
	return id.UserID, nil
}
