package di

import (
	"context"
	"sync"

	"github.com/thomas-vilte/gh-assist/internal/ai"
	"github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

var _ ai.ModelClient = (*lazyModelClient)(nil)

// lazyModelClient defers building the provider client to the first
// completion, so a task that stops before the model (nothing to review, bad
// input) needs no API key. Build failures are not cached.
type lazyModelClient struct {
	cfg   *config.Config
	build ModelClientFactory

	mu     sync.Mutex
	client ai.ModelClient
}

func newLazyModelClient(cfg *config.Config, build ModelClientFactory) *lazyModelClient {
	return &lazyModelClient{cfg: cfg, build: build}
}

func (l *lazyModelClient) get(ctx context.Context) (ai.ModelClient, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.client != nil {
		return l.client, nil
	}
	client, err := l.build(ctx, l.cfg)
	if err != nil {
		return nil, err
	}
	l.client = client
	return client, nil
}

func (l *lazyModelClient) Complete(ctx context.Context, prompt string, model string, maxTokens int) (models.Completion, error) {
	client, err := l.get(ctx)
	if err != nil {
		return models.Completion{}, err
	}
	return client.Complete(ctx, prompt, model, maxTokens)
}

func (l *lazyModelClient) ProviderName() string {
	return string(l.cfg.AI.Provider)
}
