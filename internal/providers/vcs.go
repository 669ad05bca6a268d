package providers

import (
	"time"

	"github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/vcs/github"
)

// NewGitHubClient creates the GitHub client. A token is required: every
// command that reaches GitHub either writes or reads private data.
func NewGitHubClient(cfg *config.Config) (*github.Client, error) {
	if cfg.GitHubToken == "" {
		return nil, errors.ErrTokenMissing
	}

	return github.NewClient(
		cfg.GitHubToken,
		time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
		github.WithPagination(cfg.GitHub.PaginateFiles, cfg.GitHub.PerPage),
	)
}
