package providers

import (
	"context"
	"time"

	"github.com/thomas-vilte/gh-assist/internal/ai"
	"github.com/thomas-vilte/gh-assist/internal/ai/anthropic"
	"github.com/thomas-vilte/gh-assist/internal/ai/gemini"
	"github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/errors"
)

// NewModelClient creates the ModelClient for the configured provider.
func NewModelClient(ctx context.Context, cfg *config.Config) (ai.ModelClient, error) {
	timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second

	switch cfg.AI.Provider {
	case config.AIAnthropic:
		client, err := anthropic.NewClient(cfg.AnthropicAPIKey, timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.AIGemini:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, errors.ErrUnsupportedProvider.WithContext("provider", string(cfg.AI.Provider))
	}
}
