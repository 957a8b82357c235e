package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"dreamtown/internal/domain"
)

type Options struct {
	BaseURL       string
	APIKey        string
	EditModel     string
	CreativeModel string
	Timeout       time.Duration
	Transport     http.RoundTripper
	Logger        zerolog.Logger
}

// Remote talks to an OpenAI-compatible image API. It serves both the
// inpainting edit endpoint and the text-to-image endpoint.
type Remote struct {
	client        *resty.Client
	baseURL       string
	apiKey        string
	editModel     string
	creativeModel string
	log           zerolog.Logger
}

const defaultImageTimeout = 180 * time.Second

type imageResponse struct {
	Created int64             `json:"created"`
	Data    []imageDataItem   `json:"data"`
	Error   *imageErrorDetail `json:"error,omitempty"`
}

type imageDataItem struct {
	B64JSON       string `json:"b64_json,omitempty"`
	URL           string `json:"url,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

type imageErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

type createPayload struct {
	Model          string `json:"model,omitempty"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

func NewRemote(opts Options) (*Remote, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("image api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultImageTimeout
	}
	client := resty.New().
		SetHeader("User-Agent", "dreamtown-kiosk/1.0").
		SetTimeout(timeout)
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	return &Remote{
		client:        client,
		baseURL:       baseURL,
		apiKey:        strings.TrimSpace(opts.APIKey),
		editModel:     strings.TrimSpace(opts.EditModel),
		creativeModel: strings.TrimSpace(opts.CreativeModel),
		log:           opts.Logger,
	}, nil
}

// Inpaint posts the base photo, mask and diffusion parameters as multipart
// form data to /images/edits.
func (r *Remote) Inpaint(ctx context.Context, req InpaintRequest) (*Image, error) {
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: inpaint request has no image", domain.ErrProviderFailure)
	}
	endpoint := r.baseURL + "/images/edits"
	imageMIME := normalizeFormat(req.ImageMIME)
	imageName := "image.png"
	if imageMIME == "image/jpeg" {
		imageName = "image.jpg"
	}

	form := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+r.apiKey)
	form.SetMultipartField("image", imageName, imageMIME, bytes.NewReader(req.Image))
	if len(req.Mask) > 0 {
		form.SetMultipartField("mask", "mask.png", "image/png", bytes.NewReader(req.Mask))
	}

	fields := map[string]string{
		"prompt":          req.Prompt,
		"response_format": "b64_json",
		"n":               "1",
	}
	if r.editModel != "" {
		fields["model"] = r.editModel
	}
	if req.NegativePrompt != "" {
		fields["negative_prompt"] = req.NegativePrompt
	}
	p := req.Parameters
	if p.Strength > 0 {
		fields["strength"] = strconv.FormatFloat(p.Strength, 'f', -1, 64)
	}
	if p.Steps > 0 {
		fields["steps"] = strconv.Itoa(p.Steps)
	}
	if p.Guidance > 0 {
		fields["cfg_scale"] = strconv.FormatFloat(p.Guidance, 'f', -1, 64)
	}
	form.SetFormData(fields)

	r.log.Debug().
		Str("endpoint", endpoint).
		Str("model", r.editModel).
		Str("prompt", truncate(req.Prompt, 80)).
		Float64("strength", p.Strength).
		Int("steps", p.Steps).
		Float64("cfg_scale", p.Guidance).
		Msg("calling image edit provider")

	resp, err := form.Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: image edit call failed: %v", domain.ErrProviderFailure, err)
	}
	return decodeImageResponse(resp.StatusCode(), resp.Bytes())
}

// Create posts a prompt-only JSON request to /images/generations.
func (r *Remote) Create(ctx context.Context, req CreateRequest) (*Image, error) {
	endpoint := r.baseURL + "/images/generations"
	payload := createPayload{
		Model:          r.creativeModel,
		Prompt:         req.Prompt,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: "url",
	}

	r.log.Debug().
		Str("endpoint", endpoint).
		Str("model", r.creativeModel).
		Str("prompt", truncate(req.Prompt, 80)).
		Msg("calling image generation provider")

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+r.apiKey).
		SetBody(payload).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: image generation call failed: %v", domain.ErrProviderFailure, err)
	}
	return decodeImageResponse(resp.StatusCode(), resp.Bytes())
}

func decodeImageResponse(status int, body []byte) (*Image, error) {
	if status >= 300 {
		var errResp imageResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("%w: status %d: %s", domain.ErrProviderFailure, status, errResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrProviderFailure, status, truncate(strings.TrimSpace(string(body)), 300))
	}
	var result imageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %v", domain.ErrProviderFailure, err)
	}
	for _, item := range result.Data {
		switch {
		case strings.TrimSpace(item.URL) != "":
			return &Image{URL: strings.TrimSpace(item.URL), RevisedPrompt: item.RevisedPrompt}, nil
		case strings.TrimSpace(item.B64JSON) != "":
			return &Image{URL: "data:image/png;base64," + strings.TrimSpace(item.B64JSON), RevisedPrompt: item.RevisedPrompt}, nil
		}
	}
	return nil, fmt.Errorf("%w: response contained no image", domain.ErrProviderFailure)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

var (
	_ Inpainter = (*Remote)(nil)
	_ Creator   = (*Remote)(nil)
)
