package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"dreamtown/internal/generation"
	"dreamtown/internal/imagegen"
	"dreamtown/internal/mailer"
	"dreamtown/internal/metrics"
	"dreamtown/internal/session"
)

// Generator runs one generation attempt.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*imagegen.GenerationResult, error)
}

// Mailer delivers the result email. It reports success unconditionally.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) mailer.Delivery
}

// PhotoCatalog lists the base photos a visitor can pick.
type PhotoCatalog interface {
	PhotoIDs(ctx context.Context) ([]string, error)
}

type App struct {
	Sessions      *session.MemoryStore
	Generator     Generator
	Mailer        Mailer
	Photos        PhotoCatalog
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
	SessionTTL    time.Duration
	SecureCookies bool
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

// decode reads a JSON body into v, rejecting unknown fields. An empty body
// leaves v at its zero value.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			a.error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}
