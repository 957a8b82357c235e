package imagegen

import (
	"fmt"
	"strings"

	"dreamtown/internal/domain"
	"dreamtown/internal/domain/jsoncfg"
)

// Assemble turns the visitor's options into a GenerationRequest without
// image bytes; the caller attaches the base photo and mask for inpainting.
// expanded is the auto-prompt completion and must be non-blank when
// AutoPrompt is set. Options are normalized first, so creative mode never
// carries an auto-prompt.
func Assemble(opts jsoncfg.GenerationOptions, expanded string) (GenerationRequest, error) {
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return GenerationRequest{}, err
	}
	if opts.AutoPrompt && strings.TrimSpace(expanded) == "" {
		return GenerationRequest{}, fmt.Errorf("%w: empty completion", domain.ErrPromptGeneration)
	}

	req := GenerationRequest{
		Mode:    opts.Mode,
		PhotoID: opts.PhotoID,
		Prompt:  BuildPrompt(opts, expanded),
	}
	if opts.Mode == jsoncfg.ModeCreative {
		req.Target = TargetDirect
		return req, nil
	}

	style := jsoncfg.StylePhotorealistic
	if opts.Mode == jsoncfg.ModeStyled {
		style = opts.Style
	}
	req.Target = TargetInpaint
	req.NegativePrompt = SelectNegativePrompt(style)
	req.Parameters = SelectParameters(opts.Mode, opts.Style, opts.Lighting)
	return req, nil
}
