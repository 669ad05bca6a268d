package gemini

import (
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"google.golang.org/genai"
)

// thinkingHeadroom is added to the output limit of models that spend output
// tokens on reasoning before answering.
const thinkingHeadroom = 4096

// extractUsage extracts usage metadata from the Gemini response
func extractUsage(resp *genai.GenerateContentResponse) *models.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &models.TokenUsage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
	}
}

// extractText joins the text parts of the first candidate, skipping thoughts.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// generateConfig caps the answer at maxTokens. gemini-2.5-flash runs with
// thinking disabled; models that always think get extra room for it.
func generateConfig(modelName string, maxTokens int) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     float32Ptr(0.3),
		MaxOutputTokens: int32(maxTokens),
	}

	switch {
	case strings.HasPrefix(modelName, "gemini-2.5-flash"):
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: int32Ptr(0)}
	case strings.HasPrefix(modelName, "gemini-2.5-pro"), strings.HasPrefix(modelName, "gemini-3"):
		config.MaxOutputTokens = int32(maxTokens + thinkingHeadroom)
	}

	return config
}

func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "resource exhausted"),
		strings.Contains(msg, "resource_exhausted"):
		return errors.ErrModelQuotaExceeded.WithError(err).WithContext("provider", providerName)
	case strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "unauthenticated"),
		strings.Contains(msg, "permission denied"):
		return errors.ErrModelAuth.WithError(err).WithContext("provider", providerName)
	default:
		return errors.ErrModelRequest.WithError(err).WithContext("provider", providerName)
	}
}

func float32Ptr(f float32) *float32 {
	return &f
}

func int32Ptr(i int32) *int32 {
	return &i
}
