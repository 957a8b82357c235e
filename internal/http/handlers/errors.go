package handlers

import (
	"errors"
	"net/http"

	"dreamtown/internal/domain"
	"dreamtown/internal/middleware"
)

var generationFailedMessage = map[string]string{
	middleware.LocaleJapanese: "画像の生成に失敗しました。もう一度お試しください。",
	middleware.LocaleEnglish:  "Image generation failed. Please try again.",
}

var promptFailedMessage = map[string]string{
	middleware.LocaleJapanese: "プロンプトの生成に失敗しました。もう一度お試しください。",
	middleware.LocaleEnglish:  "Prompt generation failed. Please try again.",
}

func localized(table map[string]string, locale string) string {
	if msg, ok := table[locale]; ok {
		return msg
	}
	return table[middleware.LocaleJapanese]
}

// fail maps a domain error to its HTTP status. Collaborator failures carry a
// localized generic message with the underlying error appended.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	switch {
	case errors.Is(err, domain.ErrInvalidOptions):
		a.error(w, http.StatusUnprocessableEntity, "invalid_options", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrGenerationInFlight):
		a.error(w, http.StatusConflict, "generation_in_flight", err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		a.error(w, http.StatusNotFound, "session_not_found", "session not found")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrPromptGeneration):
		a.error(w, http.StatusBadGateway, "prompt_generation_failed", localized(promptFailedMessage, locale)+" ("+err.Error()+")")
	case errors.Is(err, domain.ErrProviderFailure):
		a.error(w, http.StatusBadGateway, "provider_failure", localized(generationFailedMessage, locale)+" ("+err.Error()+")")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
