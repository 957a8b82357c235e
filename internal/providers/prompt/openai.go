package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"dreamtown/internal/imagegen"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	Timeout      time.Duration
	// Transport replaces the default round tripper; tests use it to stub the API.
	Transport http.RoundTripper
	OnFailure FailureHook
	OnWarning func(reason, detail string)
}

type OpenAIExpander struct {
	client       *resty.Client
	apiKey       string
	model        string
	baseURL      string
	organization string
	onFailure    FailureHook
}

const openAIDefaultTimeout = 30 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

var openAIModelCanonical = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
	"gpt-4.1":     "gpt-4.1",
}

var openAIModelAliases = map[string]string{
	"gpt4o":                  "gpt-4o",
	"gpt4o-mini":             "gpt-4o-mini",
	"gpt4omini":              "gpt-4o-mini",
	"gpt-4o-mini-2024-07-18": "gpt-4o-mini",
	"gpt4.1":                 "gpt-4.1",
}

func NewOpenAIExpander(opts OpenAIOptions) (*OpenAIExpander, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	modelInput := strings.TrimSpace(opts.Model)
	model, reason := normalizeOpenAIModel(modelInput)
	if reason != "" && opts.OnWarning != nil {
		opts.OnWarning("model_"+reason, fmt.Sprintf("requested=%s resolved=%s", coalesce(modelInput, defaultOpenAIModel), model))
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = openAIDefaultTimeout
	}
	client := resty.New().
		SetHeader("User-Agent", "dreamtown-kiosk/1.0").
		SetTimeout(timeout)
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	return &OpenAIExpander{
		client:       client,
		apiKey:       apiKey,
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		onFailure:    opts.OnFailure,
	}, nil
}

func (o *OpenAIExpander) Expand(ctx context.Context, req ExpandRequest) (*ExpandResponse, error) {
	if strings.TrimSpace(req.FreeText) == "" {
		return nil, o.fail("empty_input", nil)
	}
	payload := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.4,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: imagegen.AutoPromptInstruction},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(req)},
		},
	}
	var out openai.ChatCompletionResponse
	r := o.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+o.apiKey).
		SetBody(payload).
		SetResult(&out)
	if o.organization != "" {
		r.SetHeader("OpenAI-Organization", o.organization)
	}
	resp, err := r.Post(o.baseURL + "/chat/completions")
	if err != nil {
		return nil, o.fail("http_request", err)
	}
	if resp.IsError() {
		return nil, o.fail(fmt.Sprintf("http_%d", resp.StatusCode()), errorFromBody(resp.String()))
	}
	if len(out.Choices) == 0 {
		return nil, o.fail("empty_choices", errors.New("no choices"))
	}
	text := cleanCompletion(out.Choices[0].Message.Content)
	if text == "" {
		return nil, o.fail("empty_response", errors.New("empty completion"))
	}
	return &ExpandResponse{Text: text, Provider: openAIProviderName, Model: o.model}, nil
}

func (o *OpenAIExpander) fail(reason string, err error) error {
	if o.onFailure != nil {
		o.onFailure(openAIProviderName, reason, err)
	}
	return failure(openAIProviderName, reason, err)
}

var _ Expander = (*OpenAIExpander)(nil)

func errorFromBody(body string) error {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return errors.New("request failed")
	}
	if len(trimmed) > 300 {
		trimmed = trimmed[:300]
	}
	return fmt.Errorf("request failed: %s", trimmed)
}

func normalizeOpenAIModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultOpenAIModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := openAIModelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := openAIModelAliases[normalized]; ok {
		return alias, "alias"
	}
	return defaultOpenAIModel, "defaulted"
}
