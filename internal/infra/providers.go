package infra

import (
	"fmt"

	"github.com/rs/zerolog"

	"dreamtown/internal/mailer"
	"dreamtown/internal/metrics"
	"dreamtown/internal/providers/image"
	"dreamtown/internal/providers/prompt"
)

// NewExpander builds the auto-prompt collaborator selected by PROMPT_PROVIDER.
func NewExpander(cfg *Config, log zerolog.Logger) (prompt.Expander, error) {
	onFailure := func(provider, reason string, err error) {
		log.Warn().Err(err).Str("provider", provider).Str("reason", reason).Msg("prompt expansion failed")
	}
	switch cfg.PromptProvider {
	case PromptProviderOpenAI:
		exp, err := prompt.NewOpenAIExpander(prompt.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			OnFailure:    onFailure,
			OnWarning: func(reason, detail string) {
				log.Warn().Str("reason", reason).Str("detail", detail).Msg("openai model adjusted")
			},
		})
		if err != nil {
			return nil, err
		}
		return exp, nil
	case PromptProviderGemini:
		exp, err := prompt.NewGeminiExpander(prompt.GeminiOptions{
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.GeminiModel,
			BaseURL:   cfg.GeminiBaseURL,
			OnFailure: onFailure,
		})
		if err != nil {
			return nil, err
		}
		return exp, nil
	case PromptProviderStatic:
		return prompt.NewStaticExpander(), nil
	default:
		return nil, fmt.Errorf("unknown prompt provider %q", cfg.PromptProvider)
	}
}

// ImageProviders pairs the two image collaborators.
type ImageProviders struct {
	Inpainter image.Inpainter
	Creator   image.Creator
}

// NewImageProviders builds the image collaborators selected by IMAGE_PROVIDER.
func NewImageProviders(cfg *Config, log zerolog.Logger) (ImageProviders, error) {
	switch cfg.ImageProvider {
	case ImageProviderRemote:
		remote, err := image.NewRemote(image.Options{
			BaseURL:       cfg.ImageBaseURL,
			APIKey:        cfg.ImageAPIKey,
			EditModel:     cfg.ImageEditModel,
			CreativeModel: cfg.ImageCreativeModel,
			Timeout:       cfg.ImageTimeout,
			Logger:        log.With().Str("component", "image").Logger(),
		})
		if err != nil {
			return ImageProviders{}, err
		}
		return ImageProviders{Inpainter: remote, Creator: remote}, nil
	case ImageProviderOffline:
		offline := image.NewOffline()
		return ImageProviders{Inpainter: offline, Creator: offline}, nil
	default:
		return ImageProviders{}, fmt.Errorf("unknown image provider %q", cfg.ImageProvider)
	}
}

// NewMailer builds the result email collaborator. Deliveries are counted
// when m is non-nil.
func NewMailer(cfg *Config, log zerolog.Logger, m *metrics.Metrics) *mailer.Mailer {
	return mailer.New(mailer.Options{
		APIKey:  cfg.MailAPIKey,
		BaseURL: cfg.MailBaseURL,
		From:    cfg.MailFrom,
		Subject: cfg.MailSubject,
		Logger:  log.With().Str("component", "mailer").Logger(),
		OnDelivery: func(err error) {
			if m != nil {
				m.MailTotal.WithLabelValues(metrics.Outcome(err)).Inc()
			}
		},
	})
}
