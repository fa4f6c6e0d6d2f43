package utils

import (
	"net/http"
	"time"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookieFactory builds the session cookies. It only returns values; writing
// them to a response is the envelope writer's job.
type CookieFactory struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (f CookieFactory) Access(token string) *http.Cookie {
	return f.cookie(AccessCookie, token, f.AccessTTL)
}

func (f CookieFactory) Refresh(token string) *http.Cookie {
	return f.cookie(RefreshCookie, token, f.RefreshTTL)
}

// Clear returns expired cookies for both session tokens.
func (f CookieFactory) Clear() []*http.Cookie {
	return []*http.Cookie{
		f.expired(AccessCookie),
		f.expired(RefreshCookie),
	}
}

func (f CookieFactory) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (f CookieFactory) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
