package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSessionResolvesCookieBeforeHeader(t *testing.T) {
	var got string
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
	req.Header.Set(SessionHeaderName, "from-header")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "from-cookie" {
		t.Fatalf("session id = %q, want from-cookie", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/session", nil)
	req.Header.Set(SessionHeaderName, "from-header")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "from-header" {
		t.Fatalf("session id = %q, want from-header", got)
	}

	got = "unset"
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/session", nil))
	if got != "" {
		t.Fatalf("session id = %q, want empty", got)
	}
}

func TestSetAndClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "abc", 30*time.Minute, true)
	cookie := rec.Header().Get("Set-Cookie")
	for _, want := range []string{"dreamtown_session=abc", "Max-Age=1800", "HttpOnly", "Secure", "SameSite=Lax"} {
		if !strings.Contains(cookie, want) {
			t.Fatalf("cookie %q missing %q", cookie, want)
		}
	}
	if rec.Header().Get(SessionHeaderName) != "abc" {
		t.Fatalf("missing %s header", SessionHeaderName)
	}

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, false)
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("clear cookie = %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "kiosk-01.abc_9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "kiosk-01.abc_9" {
		t.Fatalf("request id = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad id\nwith newline")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got == "bad id\nwith newline" || len(got) != 36 {
		t.Fatalf("invalid request id should be replaced, got %q", got)
	}
	if rec.Header().Get("X-Request-ID") != got {
		t.Fatal("response header should echo the request id")
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://kiosk.example.com/"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/session", nil)
	req.Header.Set("Origin", "https://kiosk.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://kiosk.example.com" {
		t.Fatalf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/session", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unknown origin should not be allowed")
	}
}
