package gemini

import (
	"context"
	"time"

	"github.com/thomas-vilte/gh-assist/internal/ai"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/httpclient"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"google.golang.org/genai"
)

const providerName = "gemini"

var _ ai.ModelClient = (*Client)(nil)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client completes prompts with the Gemini API.
type Client struct {
	generateFn generateFunc
}

func NewClient(ctx context.Context, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.ErrAPIKeyMissing.
			WithContext("provider", providerName).
			WithSuggestion("export GEMINI_API_KEY=<your key>")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpclient.New(timeout),
	})
	if err != nil {
		return nil, classifyError(err)
	}

	return &Client{generateFn: client.Models.GenerateContent}, nil
}

func (c *Client) ProviderName() string {
	return providerName
}

func (c *Client) Complete(ctx context.Context, prompt string, model string, maxTokens int) (models.Completion, error) {
	log := logger.FromContext(ctx)

	log.Debug("calling gemini API",
		"model", model,
		"prompt_length", len(prompt),
		"max_tokens", maxTokens)

	resp, err := c.generateFn(ctx, model, genai.Text(prompt), generateConfig(model, maxTokens))
	if err != nil {
		log.Error("gemini API call failed",
			"error", err,
			"model", model)
		return models.Completion{}, classifyError(err)
	}

	return models.Completion{
		Text:  extractText(resp),
		Model: model,
		Usage: extractUsage(resp),
	}, nil
}
