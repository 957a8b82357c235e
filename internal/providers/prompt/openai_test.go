package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"dreamtown/internal/domain"
	"dreamtown/internal/imagegen"
)

func TestOpenAIExpanderReturnsCompletion(t *testing.T) {
	var captured openai.ChatCompletionRequest
	expander, err := NewOpenAIExpander(OpenAIOptions{
		APIKey:       "sk-test",
		Organization: "org-kiosk",
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/v1/chat/completions" {
				t.Errorf("path = %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
				t.Errorf("Authorization = %q", got)
			}
			if got := r.Header.Get("OpenAI-Organization"); got != "org-kiosk" {
				t.Errorf("OpenAI-Organization = %q", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
			return jsonResponse(r, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Remove the flower bed in the center of the plaza.\nAdd a carousel."}}]}`), nil
		}),
	})
	if err != nil {
		t.Fatalf("NewOpenAIExpander returned error: %v", err)
	}

	res, err := expander.Expand(context.Background(), ExpandRequest{FreeText: "回転木馬", Building: "carousel"})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if res.Provider != openAIProviderName || res.Model != defaultOpenAIModel {
		t.Fatalf("unexpected response %+v", res)
	}
	if !strings.HasSuffix(res.Text, "Add a carousel.") {
		t.Fatalf("Text = %q", res.Text)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Content != imagegen.AutoPromptInstruction {
		t.Fatalf("system message not sent: %+v", captured.Messages)
	}
	if captured.Messages[1].Role != openai.ChatMessageRoleUser || !strings.Contains(captured.Messages[1].Content, "回転木馬") {
		t.Fatalf("user message = %+v", captured.Messages[1])
	}
}

func TestOpenAIExpanderFailuresAbort(t *testing.T) {
	cases := []struct {
		name   string
		rt     roundTripFunc
		reason string
	}{
		{
			name: "transport",
			rt: func(r *http.Request) (*http.Response, error) {
				return nil, errors.New("boom")
			},
			reason: "http_request",
		},
		{
			name: "status",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(r, http.StatusInternalServerError, `{"error":{"message":"down"}}`), nil
			},
			reason: "http_500",
		},
		{
			name: "no choices",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(r, http.StatusOK, `{"choices":[]}`), nil
			},
			reason: "empty_choices",
		},
		{
			name: "blank",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(r, http.StatusOK, `{"choices":[{"message":{"content":"  \n "}}]}`), nil
			},
			reason: "empty_response",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var capturedReason string
			expander, err := NewOpenAIExpander(OpenAIOptions{
				APIKey:    "sk-test",
				Transport: tc.rt,
				OnFailure: func(provider, reason string, err error) {
					capturedReason = reason
				},
			})
			if err != nil {
				t.Fatalf("NewOpenAIExpander returned error: %v", err)
			}
			res, err := expander.Expand(context.Background(), ExpandRequest{FreeText: "ベンチ"})
			if res != nil {
				t.Fatalf("expected no response, got %+v", res)
			}
			if !errors.Is(err, domain.ErrPromptGeneration) {
				t.Fatalf("err = %v, want ErrPromptGeneration", err)
			}
			if capturedReason != tc.reason {
				t.Fatalf("reason = %q, want %q", capturedReason, tc.reason)
			}
		})
	}
}

func TestNormalizeOpenAIModel(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantModel  string
		wantReason string
	}{
		{name: "empty defaults", input: "", wantModel: defaultOpenAIModel},
		{name: "canonical", input: "gpt-4o", wantModel: "gpt-4o"},
		{name: "canonical mixed case", input: "GPT_4o_Mini", wantModel: "gpt-4o-mini"},
		{name: "alias", input: "gpt4omini", wantModel: "gpt-4o-mini", wantReason: "alias"},
		{name: "unsupported", input: "davinci", wantModel: defaultOpenAIModel, wantReason: "defaulted"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model, reason := normalizeOpenAIModel(tc.input)
			if model != tc.wantModel || reason != tc.wantReason {
				t.Fatalf("normalizeOpenAIModel(%q) = (%q, %q), want (%q, %q)", tc.input, model, reason, tc.wantModel, tc.wantReason)
			}
		})
	}
}

func TestNewOpenAIExpanderWarnsOnUnsupportedModel(t *testing.T) {
	var warned string
	_, err := NewOpenAIExpander(OpenAIOptions{
		APIKey: "sk-test",
		Model:  "text-davinci-003",
		OnWarning: func(reason, detail string) {
			warned = reason
		},
	})
	if err != nil {
		t.Fatalf("NewOpenAIExpander returned error: %v", err)
	}
	if warned != "model_defaulted" {
		t.Fatalf("warning = %q, want model_defaulted", warned)
	}
}

func TestStaticExpander(t *testing.T) {
	res, err := NewStaticExpander().Expand(context.Background(), ExpandRequest{FreeText: "足湯", Building: "cafe"})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if !strings.HasPrefix(res.Text, "Remove the flower bed in the center of the plaza.") {
		t.Fatalf("static text should open with removal: %q", res.Text)
	}
	if !strings.Contains(res.Text, "at least 20 people") || !strings.Contains(res.Text, "足湯") {
		t.Fatalf("static text missing crowd or wish: %q", res.Text)
	}
	if _, err := NewStaticExpander().Expand(context.Background(), ExpandRequest{FreeText: " "}); !errors.Is(err, domain.ErrPromptGeneration) {
		t.Fatalf("blank input err = %v", err)
	}
}
