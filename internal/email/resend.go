package email

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/models"
)

// sandboxFrom is Resend's always-verified sender, used as a retry when
// the configured domain is not verified yet.
const sandboxFrom = "onboarding@resend.dev"

// Sender delivers assembled digests through the Resend API.
type Sender struct {
	client *resty.Client
	apiKey string
	from   string
}

func NewSender(apiKey, fromEmail string, timeout time.Duration) *Sender {
	if fromEmail == "" {
		fromEmail = sandboxFrom
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Sender{
		client: resty.New().
			SetBaseURL("https://api.resend.com").
			SetTimeout(timeout),
		apiKey: apiKey,
		from:   fromEmail,
	}
}

// SetBaseURL points the client at a different API host. Used in tests.
func (s *Sender) SetBaseURL(u string) { s.client.SetBaseURL(u) }

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

// SendDigest converts the markdown digest to HTML and delivers it. The
// returned response always describes the outcome; errors are folded into
// it rather than returned, since delivery failure never fails a pipeline
// run.
func (s *Sender) SendDigest(ctx context.Context, content, subject string, recipients []string) models.EmailResponse {
	if len(recipients) == 0 {
		return models.EmailResponse{Message: "no recipients specified, email skipped"}
	}
	if s.apiKey == "" {
		return models.EmailResponse{Error: "email provider api key not configured"}
	}

	req := sendRequest{
		From:    s.from,
		To:      recipients,
		Subject: subject,
		HTML:    MarkdownToHTML(content),
	}

	logger.Info().Int("recipients", len(recipients)).Str("subject", subject).Msg("Sending email")

	resp := s.send(ctx, req)
	if resp.Error != "" && isDomainNotVerified(resp.Error) {
		logger.Warn().Msg("Sender domain not verified, retrying with sandbox sender")
		req.From = sandboxFrom
		resp = s.send(ctx, req)
	}

	if resp.Delivered() {
		logger.Info().Str("id", resp.ID).Msg("Email sent")
	} else {
		logger.Error().Str("error", resp.Error).Msg("Email delivery failed")
	}
	return resp
}

func (s *Sender) send(ctx context.Context, req sendRequest) models.EmailResponse {
	var out sendResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post("/emails")
	if err != nil {
		return models.EmailResponse{Error: err.Error()}
	}
	if resp.IsError() {
		msg := out.Message
		if msg == "" {
			msg = "email request failed with status " + resp.Status()
		}
		return models.EmailResponse{Error: msg}
	}
	if out.ID == "" {
		return models.EmailResponse{Error: "email provider returned no message id"}
	}
	return models.EmailResponse{ID: out.ID}
}

func isDomainNotVerified(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "domain is not verified") || strings.Contains(lower, "verify your domain")
}
