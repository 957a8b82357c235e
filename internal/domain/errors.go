package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidOptions     = errors.New("invalid generation options")
	ErrPromptGeneration   = errors.New("prompt generation failed")
	ErrProviderFailure    = errors.New("provider failure")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidTransition  = errors.New("invalid screen transition")
	ErrGenerationInFlight = errors.New("generation already in flight")
)
