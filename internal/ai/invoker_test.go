package ai

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/services/cost"
)

const testModel = "claude-3-5-sonnet-20241022"

func noSleep(i *Invoker, waits *[]time.Duration) {
	i.sleep = func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestInvoker_Invoke(t *testing.T) {
	t.Run("should send the task token limit and return the text", func(t *testing.T) {
		client := new(MockModelClient)
		client.On("Complete", mock.Anything, "prompt", testModel, 500).
			Return(models.Completion{Text: "feat: add login endpoint"}, nil).Once()

		resp, err := NewInvoker(client, testModel).Invoke(context.Background(), models.TaskCommitMessage, "prompt")

		require.NoError(t, err)
		assert.Equal(t, models.TaskCommitMessage, resp.Task)
		assert.Equal(t, "feat: add login endpoint", resp.Text)
		assert.Nil(t, resp.Usage)
		client.AssertExpectations(t)
	})

	t.Run("should wrap client failures as model unavailable", func(t *testing.T) {
		client := new(MockModelClient)
		client.On("Complete", mock.Anything, mock.Anything, testModel, 2000).
			Return(models.Completion{}, stderrors.New("connection refused")).Once()

		_, err := NewInvoker(client, testModel).Invoke(context.Background(), models.TaskCodeReview, "p")

		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrModelUnavailable)
		assert.ErrorContains(t, err, "connection refused")
		client.AssertNumberOfCalls(t, "Complete", 1)
	})

	t.Run("should treat empty text as model unavailable", func(t *testing.T) {
		client := new(MockModelClient)
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(models.Completion{Text: ""}, nil).Once()

		_, err := NewInvoker(client, testModel).Invoke(context.Background(), models.TaskQuestionAnswer, "p")

		assert.ErrorIs(t, err, errors.ErrModelUnavailable)
		assert.ErrorIs(t, err, errors.ErrEmptyModelResponse)
	})

	t.Run("should keep errors the client already classified", func(t *testing.T) {
		client := new(MockModelClient)
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(models.Completion{}, errors.ErrModelQuotaExceeded.WithContext("status", 429)).Once()

		_, err := NewInvoker(client, testModel).Invoke(context.Background(), models.TaskPRReview, "p")

		assert.ErrorIs(t, err, errors.ErrModelQuotaExceeded)
	})

	t.Run("should retry with exponential backoff when enabled", func(t *testing.T) {
		client := new(MockModelClient)
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(models.Completion{}, stderrors.New("503")).Twice()
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(models.Completion{Text: "ok"}, nil).Once()

		inv := NewInvoker(client, testModel, WithRetries(3, 100*time.Millisecond))
		var waits []time.Duration
		noSleep(inv, &waits)

		resp, err := inv.Invoke(context.Background(), models.TaskDiffExplanation, "p")

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Text)
		assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, waits)
		client.AssertNumberOfCalls(t, "Complete", 3)
	})

	t.Run("should not retry rejected credentials", func(t *testing.T) {
		client := new(MockModelClient)
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(models.Completion{}, errors.ErrModelAuth).Once()

		inv := NewInvoker(client, testModel, WithRetries(3, time.Millisecond))
		var waits []time.Duration
		noSleep(inv, &waits)

		_, err := inv.Invoke(context.Background(), models.TaskCommitMessage, "p")

		assert.ErrorIs(t, err, errors.ErrModelAuth)
		assert.Empty(t, waits)
		client.AssertNumberOfCalls(t, "Complete", 1)
	})

	t.Run("should return configuration errors as they are", func(t *testing.T) {
		client := new(MockModelClient)
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(models.Completion{}, errors.ErrAPIKeyMissing).Once()

		inv := NewInvoker(client, testModel, WithRetries(3, time.Millisecond))
		var waits []time.Duration
		noSleep(inv, &waits)

		_, err := inv.Invoke(context.Background(), models.TaskQuestionAnswer, "p")

		assert.ErrorIs(t, err, errors.ErrAPIKeyMissing)
		assert.NotErrorIs(t, err, errors.ErrModelUnavailable)
		assert.Empty(t, waits)
		client.AssertNumberOfCalls(t, "Complete", 1)
	})

	t.Run("should stop retrying when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		client := new(MockModelClient)
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return(models.Completion{}, context.Canceled).Once()

		inv := NewInvoker(client, testModel, WithRetries(2, time.Millisecond))

		_, err := inv.Invoke(ctx, models.TaskCommitMessage, "p")

		assert.ErrorIs(t, err, errors.ErrModelUnavailable)
		assert.ErrorIs(t, err, context.Canceled)
		client.AssertNumberOfCalls(t, "Complete", 1)
	})

	t.Run("should attach usage and cost", func(t *testing.T) {
		client := new(MockModelClient)
		client.On("ProviderName").Return("anthropic")
		client.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(models.Completion{
				Text:  "answer",
				Model: testModel,
				Usage: &models.TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			}, nil).Once()

		inv := NewInvoker(client, testModel, WithCostCalculator(cost.NewCalculator()))

		resp, err := inv.Invoke(context.Background(), models.TaskQuestionAnswer, "p")

		require.NoError(t, err)
		require.NotNil(t, resp.Usage)
		assert.Equal(t, 2_000_000, resp.Usage.TotalTokens)
		assert.Equal(t, testModel, resp.Usage.Model)
		assert.InDelta(t, 18.0, resp.Usage.CostUSD, 1e-9)
	})
}

func TestMaxTokens(t *testing.T) {
	assert.Equal(t, 50, MaxTokens(models.TaskBranchName))
	assert.Equal(t, 100, MaxTokens(models.TaskLabelSuggestion))
	assert.Equal(t, 3000, MaxTokens(models.TaskPRReview))
	assert.Equal(t, 1000, MaxTokens("unknown"))
}
