package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dreamtown/internal/domain"
	"dreamtown/internal/domain/jsoncfg"
	"dreamtown/internal/imagegen"
	"dreamtown/internal/metrics"
	"dreamtown/internal/providers/image"
	"dreamtown/internal/providers/prompt"
	"dreamtown/internal/storage"
)

// Assets supplies the base photo and the fixed mask for inpainting.
type Assets interface {
	Photo(ctx context.Context, id string) (*storage.Asset, error)
	Mask(ctx context.Context) (*storage.Asset, error)
}

type Dependencies struct {
	Expander  prompt.Expander
	Inpainter image.Inpainter
	Creator   image.Creator
	Assets    Assets
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Service runs one generation attempt end to end. Each call is sequential
// and shares nothing with concurrent calls.
type Service struct {
	expander  prompt.Expander
	inpainter image.Inpainter
	creator   image.Creator
	assets    Assets
	metrics   *metrics.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Expander == nil:
		return nil, errors.New("generation: expander is required")
	case deps.Inpainter == nil:
		return nil, errors.New("generation: inpainter is required")
	case deps.Creator == nil:
		return nil, errors.New("generation: creator is required")
	case deps.Assets == nil:
		return nil, errors.New("generation: assets are required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		expander:  deps.Expander,
		inpainter: deps.Inpainter,
		creator:   deps.Creator,
		assets:    deps.Assets,
		metrics:   deps.Metrics,
		log:       deps.Logger,
		now:       now,
	}, nil
}

// Request carries the options plus the visitor locale for the expander.
type Request struct {
	Options jsoncfg.GenerationOptions
	Locale  string
}

// Generate expands (when auto-prompt is on), assembles, loads images and
// calls the matching collaborator. Failures leave no partial result.
func (s *Service) Generate(ctx context.Context, req Request) (*imagegen.GenerationResult, error) {
	start := s.now()
	opts := req.Options
	opts.Normalize()
	mode := string(opts.Mode)
	log := s.log.With().Str("mode", mode).Str("photo_id", opts.PhotoID).Logger()

	res, err := s.generate(ctx, log, opts, req.Locale)
	if s.metrics != nil {
		s.metrics.GenerationsTotal.WithLabelValues(mode, outcome(err)).Inc()
		s.metrics.GenerationDuration.WithLabelValues(mode).Observe(s.now().Sub(start).Seconds())
	}
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", s.now().Sub(start)).Msg("generation failed")
		return nil, err
	}
	log.Info().Dur("elapsed", s.now().Sub(start)).Msg("generation completed")
	return res, nil
}

func (s *Service) generate(ctx context.Context, log zerolog.Logger, opts jsoncfg.GenerationOptions, locale string) (*imagegen.GenerationResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	expanded := ""
	if opts.AutoPrompt {
		text, err := s.expand(ctx, opts, locale)
		if err != nil {
			return nil, err
		}
		expanded = text
		log.Debug().Str("completion", truncate(expanded, 120)).Msg("auto prompt expanded")
	}

	assembled, err := imagegen.Assemble(opts, expanded)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("target", string(assembled.Target)).
		Str("prompt", truncate(assembled.Prompt, 120)).
		Msg("prompt assembled")

	var out *image.Image
	switch assembled.Target {
	case imagegen.TargetDirect:
		out, err = s.creator.Create(ctx, image.CreateRequest{Prompt: assembled.Prompt})
	default:
		if err := s.attachImages(ctx, &assembled); err != nil {
			return nil, err
		}
		out, err = s.inpainter.Inpaint(ctx, image.InpaintRequest{
			Prompt:         assembled.Prompt,
			NegativePrompt: assembled.NegativePrompt,
			Parameters:     assembled.Parameters,
			Image:          assembled.Image,
			ImageMIME:      assembled.ImageMIME,
			Mask:           assembled.Mask,
		})
	}
	if err != nil {
		if !errors.Is(err, domain.ErrProviderFailure) {
			err = fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
		}
		return nil, err
	}
	if out == nil || strings.TrimSpace(out.URL) == "" {
		return nil, fmt.Errorf("%w: no image returned", domain.ErrProviderFailure)
	}

	result := &imagegen.GenerationResult{
		Success:     true,
		ImageURL:    out.URL,
		Mode:        assembled.Mode,
		Prompt:      assembled.Prompt,
		GeneratedAt: s.now().UTC(),
	}
	if !assembled.Parameters.IsZero() {
		p := assembled.Parameters
		result.Parameters = &p
	}
	return result, nil
}

// ExpandRequestFor builds the completion request for auto-prompt options. An
// "other" building is described by the visitor's own text.
func ExpandRequestFor(opts jsoncfg.GenerationOptions, locale string) prompt.ExpandRequest {
	building := string(opts.Building)
	if opts.Building == jsoncfg.BuildingOther {
		building = opts.OtherBuilding
	}
	return prompt.ExpandRequest{
		FreeText: opts.FreeText,
		Building: building,
		Locale:   locale,
	}
}

func (s *Service) expand(ctx context.Context, opts jsoncfg.GenerationOptions, locale string) (string, error) {
	res, err := s.expander.Expand(ctx, ExpandRequestFor(opts, locale))
	provider := "unknown"
	if res != nil && res.Provider != "" {
		provider = res.Provider
	}
	if err == nil && (res == nil || strings.TrimSpace(res.Text) == "") {
		err = fmt.Errorf("%w: empty completion", domain.ErrPromptGeneration)
	}
	if s.metrics != nil {
		s.metrics.ExpansionsTotal.WithLabelValues(provider, outcome(err)).Inc()
	}
	if err != nil {
		if !errors.Is(err, domain.ErrPromptGeneration) {
			err = fmt.Errorf("%w: %v", domain.ErrPromptGeneration, err)
		}
		return "", err
	}
	return res.Text, nil
}

func (s *Service) attachImages(ctx context.Context, req *imagegen.GenerationRequest) error {
	photo, err := s.assets.Photo(ctx, req.PhotoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: unknown photo %q", domain.ErrInvalidOptions, req.PhotoID)
		}
		return fmt.Errorf("load base photo: %w", err)
	}
	mask, err := s.assets.Mask(ctx)
	if err != nil {
		return fmt.Errorf("load mask: %w", err)
	}
	req.Image = photo.Data
	req.ImageMIME = photo.MIME
	req.Mask = mask.Data
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrInvalidOptions):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeFailure
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
