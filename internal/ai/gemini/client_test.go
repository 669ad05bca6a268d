package gemini

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"google.golang.org/genai"
)

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", time.Second)

	assert.ErrorIs(t, err, errors.ErrAPIKeyMissing)
}

func TestNewClient_WithKey(t *testing.T) {
	client, err := NewClient(context.Background(), "test-key", 5*time.Second)

	require.NoError(t, err)
	assert.NotNil(t, client.generateFn)
	assert.Equal(t, "gemini", client.ProviderName())
}

func TestClient_Complete(t *testing.T) {
	t.Run("should send the prompt and return text and usage", func(t *testing.T) {
		var gotModel string
		var gotPrompt string
		var gotConfig *genai.GenerateContentConfig
		c := &Client{generateFn: func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel = model
			gotPrompt = contents[0].Parts[0].Text
			gotConfig = cfg
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{Text: "fix: handle nil map"}}},
				}},
				UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
					PromptTokenCount: 120, CandidatesTokenCount: 8, TotalTokenCount: 128,
				},
			}, nil
		}}

		got, err := c.Complete(context.Background(), "the prompt", "gemini-1.5-flash", 500)

		require.NoError(t, err)
		assert.Equal(t, "gemini-1.5-flash", gotModel)
		assert.Equal(t, "the prompt", gotPrompt)
		assert.Equal(t, int32(500), gotConfig.MaxOutputTokens)
		assert.Equal(t, "fix: handle nil map", got.Text)
		assert.Equal(t, "gemini-1.5-flash", got.Model)
		require.NotNil(t, got.Usage)
		assert.Equal(t, 128, got.Usage.TotalTokens)
	})

	t.Run("should classify API failures", func(t *testing.T) {
		c := &Client{generateFn: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, stderrors.New("rpc error: code = ResourceExhausted desc = quota exceeded")
		}}

		_, err := c.Complete(context.Background(), "p", "gemini-2.5-flash", 100)

		assert.ErrorIs(t, err, errors.ErrModelQuotaExceeded)
	})

	t.Run("should report the provider name", func(t *testing.T) {
		assert.Equal(t, "gemini", (&Client{}).ProviderName())
	})
}
