package vcs

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

// MockClient is a testify mock of Client.
type MockClient struct {
	mock.Mock
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) GetPullRequestChangedFiles(ctx context.Context, repo models.RepoRef, number int) ([]models.ChangedFile, error) {
	args := m.Called(ctx, repo, number)
	files, _ := args.Get(0).([]models.ChangedFile)
	return files, args.Error(1)
}

func (m *MockClient) GetPullRequest(ctx context.Context, repo models.RepoRef, number int) (models.PullRequest, error) {
	args := m.Called(ctx, repo, number)
	return args.Get(0).(models.PullRequest), args.Error(1)
}

func (m *MockClient) PostPullRequestDescription(ctx context.Context, repo models.RepoRef, number int, text string) error {
	return m.Called(ctx, repo, number, text).Error(0)
}

func (m *MockClient) PostReviewComment(ctx context.Context, repo models.RepoRef, number int, text string) error {
	return m.Called(ctx, repo, number, text).Error(0)
}

func (m *MockClient) ListPullRequests(ctx context.Context, repo models.RepoRef, state string, limit int) ([]models.PullRequest, error) {
	args := m.Called(ctx, repo, state, limit)
	prs, _ := args.Get(0).([]models.PullRequest)
	return prs, args.Error(1)
}

func (m *MockClient) CreatePullRequest(ctx context.Context, repo models.RepoRef, pr models.NewPullRequest) (models.PullRequest, error) {
	args := m.Called(ctx, repo, pr)
	return args.Get(0).(models.PullRequest), args.Error(1)
}

func (m *MockClient) ListRepositories(ctx context.Context, limit int) ([]models.Repository, error) {
	args := m.Called(ctx, limit)
	repos, _ := args.Get(0).([]models.Repository)
	return repos, args.Error(1)
}

func (m *MockClient) CreateRepository(ctx context.Context, repo models.NewRepository) (models.Repository, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(models.Repository), args.Error(1)
}

func (m *MockClient) RepositorySummary(ctx context.Context, repo models.RepoRef) (models.RepoSummary, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(models.RepoSummary), args.Error(1)
}

func (m *MockClient) CreateIssue(ctx context.Context, repo models.RepoRef, title, body string, labels []string) (models.Issue, error) {
	args := m.Called(ctx, repo, title, body, labels)
	return args.Get(0).(models.Issue), args.Error(1)
}

func (m *MockClient) GetIssue(ctx context.Context, repo models.RepoRef, number int) (models.Issue, error) {
	args := m.Called(ctx, repo, number)
	return args.Get(0).(models.Issue), args.Error(1)
}

func (m *MockClient) AddLabels(ctx context.Context, repo models.RepoRef, number int, labels []string) error {
	return m.Called(ctx, repo, number, labels).Error(0)
}

func (m *MockClient) AuthenticatedUser(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
