package prompt

import (
	"fmt"
	"strings"

	"dreamtown/internal/domain"
)

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"
	openAIProviderName = "openai"
)

// FailureHook observes expansion failures for logging and metrics.
type FailureHook func(provider, reason string, err error)

func failure(provider, reason string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s %s", domain.ErrPromptGeneration, provider, reason)
	}
	return fmt.Errorf("%w: %s %s: %v", domain.ErrPromptGeneration, provider, reason, cause)
}

func buildUserMessage(req ExpandRequest) string {
	sb := &strings.Builder{}
	if b := strings.TrimSpace(req.Building); b != "" {
		fmt.Fprintf(sb, "Installation choice: %s\n", b)
	}
	fmt.Fprintf(sb, "Visitor request: %s", strings.TrimSpace(req.FreeText))
	return sb.String()
}

// cleanCompletion strips code fences and surrounding quotes. The text is
// otherwise opaque.
func cleanCompletion(raw string) string {
	text := trimCodeFence(raw)
	text = strings.Trim(text, "\"“”")
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```text")
	trimmed = strings.TrimPrefix(trimmed, "```plaintext")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
