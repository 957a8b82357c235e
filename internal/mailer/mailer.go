package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"dreamtown/internal/domain/jsoncfg"
)

const (
	defaultBaseURL = "https://api.sendgrid.com"
	defaultSubject = "「ゆめまち キャンバス」画像のお届け"
	maxAttachment  = 10 << 20
)

type Options struct {
	APIKey    string
	BaseURL   string
	From      string
	Subject   string
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    zerolog.Logger
	// OnDelivery observes every attempt; err is nil on success.
	OnDelivery func(err error)
}

// Message is one result email.
type Message struct {
	To          string
	DisplayName string
	Options     *jsoncfg.GenerationOptions
	ImageURL    string
}

// Delivery is what the kiosk reports to the visitor. Success is always true;
// Debug carries the failure detail when the provider call did not go through.
type Delivery struct {
	Success bool   `json:"success"`
	Debug   string `json:"debug,omitempty"`
}

// Mailer sends result emails through the SendGrid v3 REST API. Without an
// API key it only logs.
type Mailer struct {
	client     *resty.Client
	apiKey     string
	baseURL    string
	from       string
	subject    string
	log        zerolog.Logger
	onDelivery func(error)
	// attachmentLimit caps the downloaded result image in bytes.
	attachmentLimit int64
}

func New(opts Options) *Mailer {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	subject := strings.TrimSpace(opts.Subject)
	if subject == "" {
		subject = defaultSubject
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetHeader("User-Agent", "dreamtown-kiosk/1.0").
		SetTimeout(timeout)
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	return &Mailer{
		client:     client,
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		from:       strings.TrimSpace(opts.From),
		subject:    subject,
		log:        opts.Logger,
		onDelivery: opts.OnDelivery,

		attachmentLimit: maxAttachment,
	}
}

// Send never fails from the caller's point of view.
func (m *Mailer) Send(ctx context.Context, msg Message) Delivery {
	err := m.send(ctx, msg)
	if m.onDelivery != nil {
		m.onDelivery(err)
	}
	if err != nil {
		m.log.Warn().Err(err).Msg("result email not delivered")
		return Delivery{Success: true, Debug: err.Error()}
	}
	return Delivery{Success: true}
}

func (m *Mailer) send(ctx context.Context, msg Message) error {
	to, err := mail.ParseAddress(strings.TrimSpace(msg.To))
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	if m.apiKey == "" {
		m.log.Info().Str("to", maskAddress(to.Address)).Msg("mail provider not configured, skipping send")
		return errors.New("mail provider not configured")
	}

	payload := sendRequest{
		Personalizations: []personalization{{To: []address{{Email: to.Address}}}},
		From:             address{Email: m.from},
		Subject:          m.subject,
		Content:          []content{{Type: "text/plain", Value: Body(msg)}},
	}
	var attachErr error
	if strings.TrimSpace(msg.ImageURL) != "" {
		att, err := m.attachment(ctx, msg.ImageURL)
		if err != nil {
			attachErr = err
			m.log.Warn().Err(err).Msg("result image not attached")
		} else {
			payload.Attachments = []attachment{*att}
		}
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+m.apiKey).
		SetBody(payload).
		Post(m.baseURL + "/v3/mail/send")
	if err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("mail send: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	m.log.Info().Str("to", maskAddress(to.Address)).Bool("attached", len(payload.Attachments) > 0).Msg("result email sent")
	if attachErr != nil {
		return fmt.Errorf("sent without attachment: %w", attachErr)
	}
	return nil
}

// attachment loads the generated image either from a data URL or over HTTP.
func (m *Mailer) attachment(ctx context.Context, imageURL string) (*attachment, error) {
	data, err := m.fetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	mt := mimetype.Detect(data)
	return &attachment{
		Content:     base64.StdEncoding.EncodeToString(data),
		Type:        mt.String(),
		Filename:    "dreamtown" + mt.Extension(),
		Disposition: "attachment",
	}, nil
}

func (m *Mailer) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if strings.HasPrefix(imageURL, "data:") {
		return decodeDataURL(imageURL)
	}
	resp, err := m.client.R().
		SetContext(ctx).
		SetResponseBodyLimit(m.attachmentLimit).
		Get(imageURL)
	if err != nil {
		if errors.Is(err, resty.ErrReadExceedsThresholdLimit) {
			return nil, fmt.Errorf("fetch image: exceeds %d byte attachment limit", m.attachmentLimit)
		}
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode())
	}
	return resp.Bytes(), nil
}

func decodeDataURL(raw string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data url")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, errors.New("data url is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return data, nil
}

// Body renders the plain-text email from the confirmation summary.
func Body(msg Message) string {
	sb := &strings.Builder{}
	if name := strings.TrimSpace(msg.DisplayName); name != "" {
		fmt.Fprintf(sb, "%s 様\n\n", name)
	}
	sb.WriteString("「ゆめまち キャンバス」をご利用いただきありがとうございます。\n")
	sb.WriteString("あなたが描いた未来の広場の画像をお届けします。\n\n")
	if msg.Options != nil {
		sb.WriteString("■ ご依頼内容\n")
		for _, line := range msg.Options.Summary("") {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	if u := strings.TrimSpace(msg.ImageURL); u != "" && !strings.HasPrefix(u, "data:") {
		fmt.Fprintf(sb, "画像URL: %s\n\n", u)
	}
	sb.WriteString("※このメールは送信専用です。")
	return sb.String()
}

func maskAddress(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
	Attachments      []attachment      `json:"attachments,omitempty"`
}

type personalization struct {
	To []address `json:"to"`
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type attachment struct {
	Content     string `json:"content"`
	Type        string `json:"type"`
	Filename    string `json:"filename"`
	Disposition string `json:"disposition"`
}
