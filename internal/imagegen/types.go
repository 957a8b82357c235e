package imagegen

import (
	"time"

	"dreamtown/internal/domain/jsoncfg"
)

// Target names the image collaborator a request is routed to.
type Target string

const (
	// TargetInpaint edits the masked center of the base photo.
	TargetInpaint Target = "inpaint"
	// TargetDirect renders from text alone (creative mode).
	TargetDirect Target = "direct"
)

// Parameters are the diffusion knobs sent with inpainting requests.
type Parameters struct {
	Strength float64 `json:"strength"`
	Steps    int     `json:"steps"`
	Guidance float64 `json:"guidance"`
}

// IsZero reports whether no parameters apply (direct generation).
func (p Parameters) IsZero() bool {
	return p == Parameters{}
}

// GenerationRequest is the fully assembled payload for one image call.
type GenerationRequest struct {
	Target         Target
	Mode           jsoncfg.Mode
	PhotoID        string
	Prompt         string
	NegativePrompt string
	Parameters     Parameters
	Image          []byte
	ImageMIME      string
	Mask           []byte
}

// GenerationResult is the outcome of one attempt as kept in session state.
type GenerationResult struct {
	Success     bool         `json:"success"`
	ImageURL    string       `json:"image_url,omitempty"`
	Error       string       `json:"error,omitempty"`
	Mode        jsoncfg.Mode `json:"mode"`
	Prompt      string       `json:"prompt,omitempty"`
	Parameters  *Parameters  `json:"parameters,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}
