package image

import (
	"context"
	"fmt"
	"strings"

	"dreamtown/internal/domain"
)

// Offline stands in for the image API on kiosks without credentials. Inpaint
// echoes the base photo back; Create renders a placeholder card.
type Offline struct{}

func NewOffline() *Offline {
	return &Offline{}
}

func (o *Offline) Inpaint(ctx context.Context, req InpaintRequest) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: inpaint request has no image", domain.ErrProviderFailure)
	}
	return &Image{URL: DataURL(req.ImageMIME, req.Image)}, nil
}

func (o *Offline) Create(ctx context.Context, req CreateRequest) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="1024" height="1024">`+
		`<rect width="100%%" height="100%%" fill="#f4efe6"/>`+
		`<text x="50%%" y="50%%" font-size="28" text-anchor="middle" fill="#555">%s</text></svg>`,
		escapeXML(truncate(lastLine(req.Prompt), 40)))
	return &Image{URL: DataURL("image/svg+xml", []byte(svg))}, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

var (
	_ Inpainter = (*Offline)(nil)
	_ Creator   = (*Offline)(nil)
)
