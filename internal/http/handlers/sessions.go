package handlers

import (
	"fmt"
	"net/http"

	"dreamtown/internal/domain"
	"dreamtown/internal/domain/jsoncfg"
	"dreamtown/internal/middleware"
	"dreamtown/internal/session"
)

type createSessionRequest struct {
	DisplayName string `json:"display_name"`
}

// sessionView is the wizard state plus what the confirmation screen needs.
type sessionView struct {
	*session.State
	Summary          []string `json:"summary,omitempty"`
	AutoPromptLocked bool     `json:"auto_prompt_locked"`
}

func newSessionView(s *session.State) sessionView {
	v := sessionView{State: s}
	if s.Options != nil {
		v.Summary = s.Options.Summary(s.DisplayName)
		v.AutoPromptLocked = s.Options.AutoPromptLocked()
	}
	return v
}

// loadSession resolves the caller's session or writes a 404.
func (a *App) loadSession(w http.ResponseWriter, r *http.Request) (*session.State, bool) {
	id := middleware.SessionIDFromContext(r.Context())
	if id == "" {
		a.fail(w, r, domain.ErrSessionNotFound)
		return nil, false
	}
	state, err := a.Sessions.Get(id)
	if err != nil {
		a.fail(w, r, err)
		return nil, false
	}
	return state, true
}

// CreateSession starts a new visit from the start screen. Any session the
// client still carries is discarded.
func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !a.decode(w, r, &req) {
		return
	}
	if old := middleware.SessionIDFromContext(r.Context()); old != "" {
		a.Sessions.Delete(old)
	}
	state, err := a.Sessions.Create()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := state.Begin(req.DisplayName); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Sessions.Save(state); err != nil {
		a.fail(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, state.ID, a.SessionTTL, a.SecureCookies)
	a.Logger.Info().Str("session_id", state.ID).Msg("session started")
	a.json(w, http.StatusCreated, newSessionView(state))
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	state, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, newSessionView(state))
}

// DeleteSession returns the kiosk to the start screen and forgets the visit.
func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if id := middleware.SessionIDFromContext(r.Context()); id != "" {
		a.Sessions.Delete(id)
	}
	middleware.ClearSessionCookie(w, a.SecureCookies)
	a.json(w, http.StatusOK, map[string]string{"screen": string(session.ScreenStart)})
}

// PutOptions stores the options form and moves to the confirmation screen.
func (a *App) PutOptions(w http.ResponseWriter, r *http.Request) {
	state, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	var opts jsoncfg.GenerationOptions
	if !a.decode(w, r, &opts) {
		return
	}
	if err := state.SubmitOptions(opts); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Sessions.Save(state); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newSessionView(state))
}

// Back returns from confirm or result to the options screen.
func (a *App) Back(w http.ResponseWriter, r *http.Request) {
	state, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	if state.Screen != session.ScreenConfirm && state.Screen != session.ScreenResult {
		a.fail(w, r, fmt.Errorf("%w: back from %s", domain.ErrInvalidTransition, state.Screen))
		return
	}
	if err := state.Back(); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Sessions.Save(state); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newSessionView(state))
}
