package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	SessionCookieName = "dreamtown_session"
	SessionHeaderName = "X-Session-ID"
)

type sessionContextKey struct{}

// Session resolves the kiosk session id from the cookie or, for
// non-browser clients, from the X-Session-ID header.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(SessionHeaderName))
		if c, err := r.Cookie(SessionCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
			id = strings.TrimSpace(c.Value)
		}
		if id != "" {
			r = r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, id))
		}
		next.ServeHTTP(w, r)
	})
}

func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionContextKey{}).(string); ok {
		return v
	}
	return ""
}

// SetSessionCookie issues the session cookie with the idle lifetime.
func SetSessionCookie(w http.ResponseWriter, id string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeaderName, id)
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
