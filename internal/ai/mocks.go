package ai

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

type MockModelClient struct {
	mock.Mock
}

func (m *MockModelClient) Complete(ctx context.Context, prompt string, model string, maxTokens int) (models.Completion, error) {
	args := m.Called(ctx, prompt, model, maxTokens)
	return args.Get(0).(models.Completion), args.Error(1)
}

func (m *MockModelClient) ProviderName() string {
	args := m.Called()
	return args.String(0)
}
