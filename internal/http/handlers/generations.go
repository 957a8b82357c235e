package handlers

import (
	"fmt"
	"net/http"

	"dreamtown/internal/domain"
	"dreamtown/internal/domain/jsoncfg"
	"dreamtown/internal/generation"
	"dreamtown/internal/imagegen"
	"dreamtown/internal/mailer"
	"dreamtown/internal/middleware"
	"dreamtown/internal/session"
)

type generationResponse struct {
	Session sessionView                `json:"session"`
	Result  *imagegen.GenerationResult `json:"result"`
}

type mailRequest struct {
	Email string `json:"email"`
}

// Preview assembles the prompt and parameters for a set of options without
// calling any collaborator.
func (a *App) Preview(w http.ResponseWriter, r *http.Request) {
	var opts jsoncfg.GenerationOptions
	if !a.decode(w, r, &opts) {
		return
	}
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}
	preview, err := generation.BuildPreview(opts, "")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, preview)
}

// CreateGeneration runs the pipeline for the session's confirmed options. A
// failed attempt leaves the session exactly as it was.
func (a *App) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	state, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	if state.Options == nil || !session.CanTransition(state.Screen, session.ScreenResult) {
		a.fail(w, r, fmt.Errorf("%w: generate from %s", domain.ErrInvalidTransition, state.Screen))
		return
	}
	release, err := a.Sessions.Acquire(state.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	defer release()

	res, err := a.Generator.Generate(r.Context(), generation.Request{
		Options: *state.Options,
		Locale:  middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	current, err := a.Sessions.Get(state.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := current.RecordResult(res); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Sessions.Save(current); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, generationResponse{Session: newSessionView(current), Result: res})
}

// SendMail emails the current result and completes the visit. The response
// is always a success; delivery problems only show up in the debug field.
func (a *App) SendMail(w http.ResponseWriter, r *http.Request) {
	state, ok := a.loadSession(w, r)
	if !ok {
		return
	}
	var req mailRequest
	if !a.decode(w, r, &req) {
		return
	}
	if state.Result == nil || !session.CanTransition(state.Screen, session.ScreenComplete) {
		a.fail(w, r, fmt.Errorf("%w: mail from %s", domain.ErrInvalidTransition, state.Screen))
		return
	}
	delivery := a.Mailer.Send(r.Context(), mailer.Message{
		To:          req.Email,
		DisplayName: state.DisplayName,
		Options:     state.Options,
		ImageURL:    state.Result.ImageURL,
	})
	if err := state.Transition(session.ScreenComplete); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Sessions.Save(state); err != nil {
		a.Logger.Warn().Err(err).Str("session_id", state.ID).Msg("save completed session")
	}
	a.json(w, http.StatusOK, delivery)
}
