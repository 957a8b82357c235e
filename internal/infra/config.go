package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	PromptProviderStatic = "static"
	PromptProviderOpenAI = "openai"
	PromptProviderGemini = "gemini"

	ImageProviderOffline = "offline"
	ImageProviderRemote  = "remote"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	AssetsDir          string
	DefaultLocale      string
	GeoIPDBPath        string
	CORSAllowedOrigins []string

	PromptProvider string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	OpenAIOrg      string

	ImageProvider      string
	ImageBaseURL       string
	ImageAPIKey        string
	ImageEditModel     string
	ImageCreativeModel string
	ImageTimeout       time.Duration

	MailAPIKey  string
	MailBaseURL string
	MailFrom    string
	MailSubject string

	SessionTTL       time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		AssetsDir:          getEnv("ASSETS_DIR", "./assets"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "ja"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		PromptProvider:     strings.ToLower(getEnv("PROMPT_PROVIDER", PromptProviderStatic)),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:          os.Getenv("OPENAI_ORG"),
		ImageProvider:      strings.ToLower(getEnv("IMAGE_PROVIDER", ImageProviderOffline)),
		ImageBaseURL:       getEnv("IMAGE_BASE_URL", "https://api.openai.com/v1"),
		ImageAPIKey:        os.Getenv("IMAGE_API_KEY"),
		ImageEditModel:     getEnv("IMAGE_EDIT_MODEL", "stable-diffusion-inpainting"),
		ImageCreativeModel: getEnv("IMAGE_CREATIVE_MODEL", "dall-e-3"),
		ImageTimeout:       time.Second * time.Duration(getEnvInt("IMAGE_TIMEOUT_SECONDS", 180)),
		MailAPIKey:         os.Getenv("MAIL_API_KEY"),
		MailBaseURL:        getEnv("MAIL_BASE_URL", "https://api.sendgrid.com"),
		MailFrom:           getEnv("MAIL_FROM", "noreply@example.com"),
		MailSubject:        getEnv("MAIL_SUBJECT", "「ゆめまち キャンバス」画像のお届け"),
		SessionTTL:         time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 240)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether cookies should be marked secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) validate() error {
	var errs []error
	switch c.PromptProvider {
	case PromptProviderStatic:
	case PromptProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when PROMPT_PROVIDER=openai"))
		}
	case PromptProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when PROMPT_PROVIDER=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("PROMPT_PROVIDER %q is not one of static, openai, gemini", c.PromptProvider))
	}
	switch c.ImageProvider {
	case ImageProviderOffline:
	case ImageProviderRemote:
		if c.ImageAPIKey == "" {
			errs = append(errs, errors.New("IMAGE_API_KEY is required when IMAGE_PROVIDER=remote"))
		}
	default:
		errs = append(errs, fmt.Errorf("IMAGE_PROVIDER %q is not one of offline, remote", c.ImageProvider))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_MINUTES must be positive"))
	}
	if c.RateLimitPerMin <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
