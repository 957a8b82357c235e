package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dreamtown/internal/domain"
	"dreamtown/internal/domain/jsoncfg"
	"dreamtown/internal/imagegen"
)

// Screen is one step of the kiosk wizard.
type Screen string

const (
	ScreenStart    Screen = "start"
	ScreenOptions  Screen = "options"
	ScreenConfirm  Screen = "confirm"
	ScreenResult   Screen = "result"
	ScreenComplete Screen = "complete"
)

const MaxDisplayNameRunes = 30

// transitions lists the forward moves allowed from each screen. Returning to
// start is always allowed and handled by Reset.
var transitions = map[Screen][]Screen{
	ScreenStart:    {ScreenOptions},
	ScreenOptions:  {ScreenConfirm},
	ScreenConfirm:  {ScreenOptions, ScreenResult},
	ScreenResult:   {ScreenOptions, ScreenResult, ScreenComplete},
	ScreenComplete: {},
}

func CanTransition(from, to Screen) bool {
	if to == ScreenStart {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// State is everything one visitor's wizard carries between screens.
type State struct {
	ID          string                     `json:"id"`
	Screen      Screen                     `json:"screen"`
	DisplayName string                     `json:"display_name,omitempty"`
	Options     *jsoncfg.GenerationOptions `json:"options,omitempty"`
	Result      *imagegen.GenerationResult `json:"result,omitempty"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// Transition moves the state to the given screen or reports
// domain.ErrInvalidTransition.
func (s *State) Transition(to Screen) error {
	if !CanTransition(s.Screen, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.Screen, to)
	}
	if to == ScreenStart {
		s.Reset()
		return nil
	}
	s.Screen = to
	return nil
}

// Reset clears everything but the id and returns to the start screen.
func (s *State) Reset() {
	s.Screen = ScreenStart
	s.DisplayName = ""
	s.Options = nil
	s.Result = nil
}

// Begin leaves the start screen with the visitor's name. It fails on any
// other screen so a running visit never loses its name.
func (s *State) Begin(displayName string) error {
	if s.Screen != ScreenStart {
		return fmt.Errorf("%w: begin from %s", domain.ErrInvalidTransition, s.Screen)
	}
	if err := s.Transition(ScreenOptions); err != nil {
		return err
	}
	name := []rune(strings.TrimSpace(jsoncfg.FoldText(displayName)))
	if len(name) > MaxDisplayNameRunes {
		name = name[:MaxDisplayNameRunes]
	}
	s.DisplayName = string(name)
	return nil
}

// SubmitOptions stores normalized options and moves to the confirmation
// screen. Invalid options leave the state untouched.
func (s *State) SubmitOptions(opts jsoncfg.GenerationOptions) error {
	if !CanTransition(s.Screen, ScreenConfirm) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.Screen, ScreenConfirm)
	}
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return err
	}
	s.Options = &opts
	s.Screen = ScreenConfirm
	return nil
}

// Back returns from confirm or result to the options screen, keeping the
// submitted options so the form can be pre-filled.
func (s *State) Back() error {
	return s.Transition(ScreenOptions)
}

// RecordResult stores a successful generation and shows the result screen.
// Each attempt overwrites the previous result.
func (s *State) RecordResult(res *imagegen.GenerationResult) error {
	if err := s.Transition(ScreenResult); err != nil {
		return err
	}
	s.Result = res
	return nil
}

// Codec is the only place wizard state crosses a serialization boundary.
type Codec struct{}

func (Codec) Encode(s *State) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("session: encode nil state")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("session: encode: %w", err)
	}
	return data, nil
}

func (Codec) Decode(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &s, nil
}
