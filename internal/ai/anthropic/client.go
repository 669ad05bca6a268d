package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/thomas-vilte/gh-assist/internal/ai"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/httpclient"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

const (
	providerName   = "anthropic"
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"

	maxErrorBody = 4096
)

var _ ai.ModelClient = (*Client)(nil)

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey  string
	baseURL string
	http    httpclient.HTTPClient
}

type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(h httpclient.HTTPClient) Option {
	return func(c *Client) {
		c.http = h
	}
}

func NewClient(apiKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.ErrAPIKeyMissing.WithContext("provider", providerName)
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    httpclient.New(timeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) ProviderName() string {
	return providerName
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete returns the first text block of the answer.
func (c *Client) Complete(ctx context.Context, prompt string, model string, maxTokens int) (models.Completion, error) {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return models.Completion{}, errors.ErrModelRequest.WithError(fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return models.Completion{}, errors.ErrModelRequest.WithError(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	log.Debug("calling anthropic API",
		"model", model,
		"prompt_length", len(prompt),
		"max_tokens", maxTokens)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Completion{}, errors.ErrModelRequest.
			WithError(fmt.Errorf("sending request: %w", err)).
			WithContext("provider", providerName)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return models.Completion{}, statusError(resp.StatusCode, body)
	}

	var result messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Completion{}, errors.ErrModelRequest.
			WithError(fmt.Errorf("parsing response: %w", err)).
			WithContext("provider", providerName)
	}

	var text string
	for _, block := range result.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	if result.Model == "" {
		result.Model = model
	}

	return models.Completion{
		Text:  text,
		Model: result.Model,
		Usage: &models.TokenUsage{
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
			TotalTokens:  result.Usage.InputTokens + result.Usage.OutputTokens,
			Model:        result.Model,
		},
	}, nil
}

func statusError(status int, body []byte) error {
	reason := string(body)
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		reason = apiErr.Error.Type + ": " + apiErr.Error.Message
	}
	cause := fmt.Errorf("API error (status %d): %s", status, reason)

	var base *errors.AppError
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		base = errors.ErrModelAuth
	case http.StatusTooManyRequests, 529:
		base = errors.ErrModelQuotaExceeded
	default:
		base = errors.ErrModelRequest
	}
	return base.WithError(cause).
		WithContext("provider", providerName).
		WithContext("status", status)
}
