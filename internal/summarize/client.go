package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is the LLM backend surface the summarizer and digest assembler
// need: send a prompt, get text or an error back.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error)
}

// APIError classes let callers distinguish auth problems from transient
// failures; both degrade to the local fallback either way.
type ErrorKind string

const (
	ErrAuth      ErrorKind = "auth"
	ErrRateLimit ErrorKind = "rate_limit"
	ErrMalformed ErrorKind = "malformed_response"
	ErrTransient ErrorKind = "transient"
)

type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api error (%s, status %d): %s", e.Kind, e.Status, e.Message)
}

// GroqClient implements Client against Groq's OpenAI-compatible chat
// completions endpoint.
type GroqClient struct {
	client *resty.Client
	apiKey string
	model  string
}

// NewGroqClient returns a client for the given model. An empty API key is
// allowed; calls will fail with an auth error and callers fall back.
func NewGroqClient(apiKey, model string, timeout time.Duration) *GroqClient {
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GroqClient{
		client: resty.New().
			SetBaseURL("https://api.groq.com/openai/v1").
			SetTimeout(timeout),
		apiKey: apiKey,
		model:  model,
	}
}

// SetBaseURL points the client at a different API host. Used in tests.
func (c *GroqClient) SetBaseURL(u string) { c.client.SetBaseURL(u) }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *GroqClient) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", &APIError{Kind: ErrAuth, Message: "api key not configured"}
	}

	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	var out chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", &APIError{Kind: ErrTransient, Message: err.Error()}
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return "", &APIError{Kind: ErrAuth, Status: resp.StatusCode(), Message: apiMessage(&out)}
	case resp.StatusCode() == http.StatusTooManyRequests:
		return "", &APIError{Kind: ErrRateLimit, Status: resp.StatusCode(), Message: apiMessage(&out)}
	case resp.StatusCode() != http.StatusOK:
		return "", &APIError{Kind: ErrTransient, Status: resp.StatusCode(), Message: apiMessage(&out)}
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", &APIError{Kind: ErrMalformed, Status: resp.StatusCode(), Message: "empty completion"}
	}
	return out.Choices[0].Message.Content, nil
}

func apiMessage(r *chatResponse) string {
	if r.Error != nil {
		return r.Error.Message
	}
	return "request failed"
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == ErrAuth
}
