package git

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

// MockGitService is a testify mock with the methods of GitService.
type MockGitService struct {
	mock.Mock
}

func (m *MockGitService) GetDiff(ctx context.Context, staged bool) (string, error) {
	args := m.Called(ctx, staged)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) GetStagedOrWorkingChangeset(ctx context.Context) (string, models.Origin, error) {
	args := m.Called(ctx)
	return args.String(0), args.Get(1).(models.Origin), args.Error(2)
}

func (m *MockGitService) BranchDiff(ctx context.Context, base, head string) (string, error) {
	args := m.Called(ctx, base, head)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) BranchCommits(ctx context.Context, base, head string) ([]string, error) {
	args := m.Called(ctx, base, head)
	commits, _ := args.Get(0).([]string)
	return commits, args.Error(1)
}

func (m *MockGitService) HasStagedChanges(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockGitService) Status(ctx context.Context) (models.StatusReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.StatusReport), args.Error(1)
}

func (m *MockGitService) Log(ctx context.Context, count int) ([]models.Commit, error) {
	args := m.Called(ctx, count)
	commits, _ := args.Get(0).([]models.Commit)
	return commits, args.Error(1)
}

func (m *MockGitService) RecentCommitMessages(ctx context.Context, count int) ([]string, error) {
	args := m.Called(ctx, count)
	messages, _ := args.Get(0).([]string)
	return messages, args.Error(1)
}

func (m *MockGitService) Add(ctx context.Context, files []string, all bool) error {
	return m.Called(ctx, files, all).Error(0)
}

func (m *MockGitService) Commit(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) CreateBranch(ctx context.Context, name string, checkout bool) error {
	return m.Called(ctx, name, checkout).Error(0)
}

func (m *MockGitService) Checkout(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockGitService) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) Push(ctx context.Context, remote, branch string, setUpstream, force bool) (string, error) {
	args := m.Called(ctx, remote, branch, setUpstream, force)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) Pull(ctx context.Context, remote, branch string, rebase bool) (string, error) {
	args := m.Called(ctx, remote, branch, rebase)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) Clone(ctx context.Context, url, dir string) error {
	return m.Called(ctx, url, dir).Error(0)
}

func (m *MockGitService) RemoteURL(ctx context.Context, remote string) (string, error) {
	args := m.Called(ctx, remote)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) RepoRef(ctx context.Context) (models.RepoRef, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.RepoRef), args.Error(1)
}
