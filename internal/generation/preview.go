package generation

import (
	"dreamtown/internal/domain/jsoncfg"
	"dreamtown/internal/imagegen"
)

// Preview is the assembled request without image bytes, for operators
// checking what a set of options will send.
type Preview struct {
	Target         imagegen.Target      `json:"target"`
	Mode           jsoncfg.Mode         `json:"mode"`
	Prompt         string               `json:"prompt"`
	NegativePrompt string               `json:"negative_prompt,omitempty"`
	Parameters     *imagegen.Parameters `json:"parameters,omitempty"`
}

// BuildPreview assembles options locally. Auto-prompt is switched off since
// the preview never calls a collaborator; expanded, when non-empty, is used
// as a completion supplied by the caller instead.
func BuildPreview(opts jsoncfg.GenerationOptions, expanded string) (*Preview, error) {
	if expanded == "" {
		opts.AutoPrompt = false
	}
	req, err := imagegen.Assemble(opts, expanded)
	if err != nil {
		return nil, err
	}
	p := &Preview{
		Target:         req.Target,
		Mode:           req.Mode,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
	}
	if !req.Parameters.IsZero() {
		params := req.Parameters
		p.Parameters = &params
	}
	return p, nil
}
