package image

import (
	"context"
	"encoding/base64"
	"strings"

	"dreamtown/internal/imagegen"
)

// Image is the collaborator's answer. URL is either a remote https URL or a
// data URL built from an inline base64 payload.
type Image struct {
	URL           string
	RevisedPrompt string
}

// InpaintRequest carries a literal-mode generation to the inpainting model.
type InpaintRequest struct {
	Prompt         string
	NegativePrompt string
	Parameters     imagegen.Parameters
	Image          []byte
	ImageMIME      string
	Mask           []byte
}

// CreateRequest carries a creative-mode generation. Only the prompt is sent.
type CreateRequest struct {
	Prompt string
}

type Inpainter interface {
	Inpaint(ctx context.Context, req InpaintRequest) (*Image, error)
}

type Creator interface {
	Create(ctx context.Context, req CreateRequest) (*Image, error)
}

// DataURL renders raw bytes as an inline data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + normalizeFormat(mime) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func normalizeFormat(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png":
		return "image/png"
	default:
		if strings.HasPrefix(mime, "image/") {
			return mime
		}
		return "image/png"
	}
}
