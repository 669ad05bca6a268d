package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

type (
	MockChangeSource struct {
		mock.Mock
	}

	MockBranchHistory struct {
		mock.Mock
	}

	MockPullRequestReader struct {
		mock.Mock
	}

	MockCommitLog struct {
		mock.Mock
	}
)

func (m *MockChangeSource) Local(ctx context.Context, staged bool) (models.ChangeSet, error) {
	args := m.Called(ctx, staged)
	return args.Get(0).(models.ChangeSet), args.Error(1)
}

func (m *MockChangeSource) LocalAny(ctx context.Context) (models.ChangeSet, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.ChangeSet), args.Error(1)
}

func (m *MockChangeSource) Branch(ctx context.Context, base, head string) (models.ChangeSet, error) {
	args := m.Called(ctx, base, head)
	return args.Get(0).(models.ChangeSet), args.Error(1)
}

func (m *MockChangeSource) PullRequest(ctx context.Context, repo models.RepoRef, number int) (models.ChangeSet, error) {
	args := m.Called(ctx, repo, number)
	return args.Get(0).(models.ChangeSet), args.Error(1)
}

func (m *MockBranchHistory) BranchCommits(ctx context.Context, base, head string) ([]string, error) {
	args := m.Called(ctx, base, head)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCommitLog) RecentCommitMessages(ctx context.Context, count int) ([]string, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPullRequestReader) GetPullRequest(ctx context.Context, repo models.RepoRef, number int) (models.PullRequest, error) {
	args := m.Called(ctx, repo, number)
	return args.Get(0).(models.PullRequest), args.Error(1)
}

// MockPipeline is a testify mock with the operations of Pipeline, for
// command tests.
type MockPipeline struct {
	mock.Mock
}

func usageArg(args mock.Arguments, i int) *models.TokenUsage {
	usage, _ := args.Get(i).(*models.TokenUsage)
	return usage
}

func (m *MockPipeline) CommitMessage(ctx context.Context, staged bool, extraContext string) (string, *models.TokenUsage, error) {
	args := m.Called(ctx, staged, extraContext)
	return args.String(0), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) ReviewChanges(ctx context.Context, staged bool, extraContext string) (models.Review, *models.TokenUsage, error) {
	args := m.Called(ctx, staged, extraContext)
	return args.Get(0).(models.Review), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) ExplainChanges(ctx context.Context, staged bool) (string, *models.TokenUsage, error) {
	args := m.Called(ctx, staged)
	return args.String(0), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) ReviewPullRequest(ctx context.Context, repo models.RepoRef, number int) (models.PRReview, *models.TokenUsage, error) {
	args := m.Called(ctx, repo, number)
	return args.Get(0).(models.PRReview), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) DescribePullRequest(ctx context.Context, repo models.RepoRef, number int) (string, *models.TokenUsage, error) {
	args := m.Called(ctx, repo, number)
	return args.String(0), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) DescribeBranch(ctx context.Context, base, head string) (string, *models.TokenUsage, error) {
	args := m.Called(ctx, base, head)
	return args.String(0), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) SuggestBranchName(ctx context.Context, description string) (string, *models.TokenUsage, error) {
	args := m.Called(ctx, description)
	return args.String(0), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) TriageIssue(ctx context.Context, title, body string) (models.Triage, *models.TokenUsage, error) {
	args := m.Called(ctx, title, body)
	return args.Get(0).(models.Triage), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) SuggestLabels(ctx context.Context, title, body string) (models.Labels, *models.TokenUsage, error) {
	args := m.Called(ctx, title, body)
	return args.Get(0).(models.Labels), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) Ask(ctx context.Context, question, extraContext string) (string, *models.TokenUsage, error) {
	args := m.Called(ctx, question, extraContext)
	return args.String(0), usageArg(args, 1), args.Error(2)
}

func (m *MockPipeline) AnalyzeRepository(ctx context.Context, info models.RepoSummary) (string, *models.TokenUsage, error) {
	args := m.Called(ctx, info)
	return args.String(0), usageArg(args, 1), args.Error(2)
}
