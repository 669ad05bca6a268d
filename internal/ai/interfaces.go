package ai

import (
	"context"

	"github.com/thomas-vilte/gh-assist/internal/models"
)

// ModelClient is a language-model completion endpoint. Implementations return
// the text of the first content block and must fail on auth or network errors.
type ModelClient interface {
	Complete(ctx context.Context, prompt string, model string, maxTokens int) (models.Completion, error)

	// ProviderName returns the name of the provider (e.g.: "anthropic", "gemini")
	ProviderName() string
}
