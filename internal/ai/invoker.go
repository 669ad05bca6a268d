package ai

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/services/cost"
)

const defaultBackoff = time.Second

var maxTokensByTask = map[models.Task]int{
	models.TaskCommitMessage:      500,
	models.TaskCodeReview:         2000,
	models.TaskPRReview:           3000,
	models.TaskPRDescription:      1500,
	models.TaskDiffExplanation:    800,
	models.TaskBranchName:         50,
	models.TaskIssueTriage:        500,
	models.TaskLabelSuggestion:    100,
	models.TaskQuestionAnswer:     1500,
	models.TaskRepositoryAnalysis: 1500,
}

// MaxTokens is the completion limit sent for task.
func MaxTokens(task models.Task) int {
	if n, ok := maxTokensByTask[task]; ok {
		return n
	}
	return 1000
}

// Invoker sends one prompt to the model and turns every failure into a
// model-unavailable error.
type Invoker struct {
	client     ModelClient
	model      string
	maxRetries int
	backoff    time.Duration
	calculator *cost.Calculator
	sleep      func(ctx context.Context, d time.Duration) error
}

type InvokerOption func(*Invoker)

// WithRetries enables up to n extra attempts with exponential backoff
// starting at base.
func WithRetries(n int, base time.Duration) InvokerOption {
	return func(i *Invoker) {
		i.maxRetries = n
		if base > 0 {
			i.backoff = base
		}
	}
}

func WithCostCalculator(c *cost.Calculator) InvokerOption {
	return func(i *Invoker) {
		i.calculator = c
	}
}

func NewInvoker(client ModelClient, model string, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		client:  client,
		model:   model,
		backoff: defaultBackoff,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invoke returns the model text for prompt. Empty text is an error.
func (i *Invoker) Invoke(ctx context.Context, task models.Task, prompt string) (models.ModelResponse, error) {
	maxTokens := MaxTokens(task)
	log := logger.FromContext(ctx).With("task", string(task), "model", i.model)

	var lastErr error
	for attempt := 0; attempt <= i.maxRetries; attempt++ {
		if attempt > 0 {
			wait := i.backoff << (attempt - 1)
			log.Warn("retrying model request", "attempt", attempt+1, "wait", wait.String(), "error", lastErr)
			if err := i.sleep(ctx, wait); err != nil {
				return models.ModelResponse{}, unavailable(err)
			}
		}

		start := time.Now()
		completion, err := i.client.Complete(ctx, prompt, i.model, maxTokens)
		duration := time.Since(start)
		if err != nil {
			lastErr = err
			if !retryable(ctx, err) {
				break
			}
			continue
		}

		if completion.Text == "" {
			lastErr = errors.ErrEmptyModelResponse
			continue
		}

		log.Debug("model responded",
			"response_length", len(completion.Text),
			"duration_ms", duration.Milliseconds())

		return models.ModelResponse{
			Task:  task,
			Text:  completion.Text,
			Usage: i.usage(completion, duration),
		}, nil
	}

	return models.ModelResponse{}, unavailable(lastErr)
}

func (i *Invoker) usage(c models.Completion, duration time.Duration) *models.TokenUsage {
	if c.Usage == nil {
		return nil
	}
	u := *c.Usage
	if u.Model == "" {
		u.Model = c.Model
	}
	if u.Model == "" {
		u.Model = i.model
	}
	if u.TotalTokens == 0 {
		u.TotalTokens = u.InputTokens + u.OutputTokens
	}
	u.DurationMs = duration.Milliseconds()
	if i.calculator != nil {
		u.CostUSD = i.calculator.EstimateCost(i.client.ProviderName(), u.Model, u.InputTokens, u.OutputTokens)
	}
	return &u
}

// unavailable keeps model errors the client already classified and wraps
// anything else.
func unavailable(err error) error {
	if stderrors.Is(err, errors.ErrModelUnavailable) || errors.TypeOf(err) == errors.TypeConfiguration {
		return err
	}
	return errors.ErrModelRequest.WithError(err)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !stderrors.Is(err, errors.ErrModelAuth) && errors.TypeOf(err) != errors.TypeConfiguration
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
