package image

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamtown/internal/domain"
	"dreamtown/internal/imagegen"
)

func newTestRemote(t *testing.T, handler http.HandlerFunc) *Remote {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	remote, err := NewRemote(Options{
		BaseURL:       srv.URL + "/v1/",
		APIKey:        "img-key",
		EditModel:     "sd-inpaint",
		CreativeModel: "dall-e-3",
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)
	return remote
}

func TestRemoteInpaintSendsMultipartFields(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/edits", r.URL.Path)
		assert.Equal(t, "Bearer img-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "build a fountain", r.FormValue("prompt"))
		assert.Equal(t, "blurry", r.FormValue("negative_prompt"))
		assert.Equal(t, "0.6", r.FormValue("strength"))
		assert.Equal(t, "50", r.FormValue("steps"))
		assert.Equal(t, "7.5", r.FormValue("cfg_scale"))
		assert.Equal(t, "sd-inpaint", r.FormValue("model"))
		assert.Equal(t, "b64_json", r.FormValue("response_format"))

		img, header, err := r.FormFile("image")
		require.NoError(t, err)
		data, _ := io.ReadAll(img)
		assert.Equal(t, "photo-bytes", string(data))
		assert.Equal(t, "image.jpg", header.Filename)

		mask, _, err := r.FormFile("mask")
		require.NoError(t, err)
		data, _ = io.ReadAll(mask)
		assert.Equal(t, "mask-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"b64_json":"aGVsbG8="}]}`))
	})

	out, err := remote.Inpaint(context.Background(), InpaintRequest{
		Prompt:         "build a fountain",
		NegativePrompt: "blurry",
		Parameters:     imagegen.Parameters{Strength: 0.6, Steps: 50, Guidance: 7.5},
		Image:          []byte("photo-bytes"),
		ImageMIME:      "image/jpeg",
		Mask:           []byte("mask-bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", out.URL)
}

func TestRemoteCreateSendsPromptOnly(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a glowing dandelion", body["prompt"])
		assert.Equal(t, "dall-e-3", body["model"])
		assert.NotContains(t, body, "negative_prompt")
		assert.NotContains(t, body, "strength")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"url":"https://cdn.example.com/x.png","revised_prompt":"rev"}]}`))
	})

	out, err := remote.Create(context.Background(), CreateRequest{Prompt: "a glowing dandelion"})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.png", out.URL)
	assert.Equal(t, "rev", out.RevisedPrompt)
}

func TestRemoteFailuresWrapProviderError(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "vendor error", status: http.StatusBadRequest, body: `{"error":{"message":"content policy violation"}}`, wantMsg: "content policy violation"},
		{name: "plain error", status: http.StatusBadGateway, body: `upstream down`, wantMsg: "upstream down"},
		{name: "unparseable", status: http.StatusOK, body: `<html>`, wantMsg: "unparseable"},
		{name: "empty data", status: http.StatusOK, body: `{"data":[]}`, wantMsg: "no image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := remote.Create(context.Background(), CreateRequest{Prompt: "x"})

			require.ErrorIs(t, err, domain.ErrProviderFailure)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestNewRemoteRequiresKey(t *testing.T) {
	_, err := NewRemote(Options{})
	require.Error(t, err)
}

func TestOffline(t *testing.T) {
	off := NewOffline()

	out, err := off.Inpaint(context.Background(), InpaintRequest{Image: []byte("abc"), ImageMIME: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,YWJj", out.URL)

	_, err = off.Inpaint(context.Background(), InpaintRequest{})
	require.ErrorIs(t, err, domain.ErrProviderFailure)

	created, err := off.Create(context.Background(), CreateRequest{Prompt: "template\nUser request: 虹"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.URL, "data:image/svg+xml;base64,"))
}
