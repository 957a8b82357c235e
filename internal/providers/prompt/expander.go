package prompt

import (
	"context"
	"fmt"
	"strings"

	"dreamtown/internal/imagegen"
)

// ExpandRequest carries the visitor's text to the text-completion model.
type ExpandRequest struct {
	FreeText string
	// Building is the installation as the visitor chose it; for "other" it is
	// their own description.
	Building string
	Locale   string
}

type ExpandResponse struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// Expander turns free text into a structurally compliant inpainting prompt.
// Implementations never substitute a default on failure: every error wraps
// domain.ErrPromptGeneration and the caller aborts the attempt.
type Expander interface {
	Expand(ctx context.Context, req ExpandRequest) (*ExpandResponse, error)
}

// StaticExpander renders the instruction's structure locally. It is selected
// explicitly for offline kiosks and development, never as a fallback.
type StaticExpander struct{}

func NewStaticExpander() *StaticExpander {
	return &StaticExpander{}
}

func (s *StaticExpander) Expand(ctx context.Context, req ExpandRequest) (*ExpandResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, failure(staticProviderName, "context", err)
	}
	text := strings.TrimSpace(req.FreeText)
	if text == "" {
		return nil, failure(staticProviderName, "empty_input", nil)
	}
	building := coalesce(req.Building, "a landmark installation")
	lines := []string{
		"Remove the flower bed in the center of the plaza.",
		fmt.Sprintf("Build %s in the center of the plaza, designed around this wish: %s.", building, text),
		fmt.Sprintf("Show at least %d people (%d to %d people) using and enjoying the space.",
			imagegen.CrowdMinimum, imagegen.CrowdMinimum, imagegen.CrowdMaximum),
		"Negative constraints: no text, no watermarks, no distorted people, no changes to surrounding buildings, no empty plaza.",
	}
	return &ExpandResponse{Text: strings.Join(lines, "\n"), Provider: staticProviderName}, nil
}

var _ Expander = (*StaticExpander)(nil)
