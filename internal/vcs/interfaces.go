package vcs

import (
	"context"

	"github.com/thomas-vilte/gh-assist/internal/models"
)

// Client is the hosted-platform collaborator. Every method takes the target
// repository explicitly so one client can serve any repo the token can see.
type Client interface {
	GetPullRequestChangedFiles(ctx context.Context, repo models.RepoRef, number int) ([]models.ChangedFile, error)
	GetPullRequest(ctx context.Context, repo models.RepoRef, number int) (models.PullRequest, error)
	PostPullRequestDescription(ctx context.Context, repo models.RepoRef, number int, text string) error
	PostReviewComment(ctx context.Context, repo models.RepoRef, number int, text string) error
	ListPullRequests(ctx context.Context, repo models.RepoRef, state string, limit int) ([]models.PullRequest, error)
	CreatePullRequest(ctx context.Context, repo models.RepoRef, pr models.NewPullRequest) (models.PullRequest, error)

	ListRepositories(ctx context.Context, limit int) ([]models.Repository, error)
	CreateRepository(ctx context.Context, repo models.NewRepository) (models.Repository, error)
	RepositorySummary(ctx context.Context, repo models.RepoRef) (models.RepoSummary, error)

	CreateIssue(ctx context.Context, repo models.RepoRef, title, body string, labels []string) (models.Issue, error)
	GetIssue(ctx context.Context, repo models.RepoRef, number int) (models.Issue, error)
	AddLabels(ctx context.Context, repo models.RepoRef, number int, labels []string) error

	AuthenticatedUser(ctx context.Context) (string, error)
}
