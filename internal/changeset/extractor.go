package changeset

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

// LocalSource reads diffs from the local repository.
type LocalSource interface {
	GetDiff(ctx context.Context, staged bool) (string, error)
	GetStagedOrWorkingChangeset(ctx context.Context) (string, models.Origin, error)
	BranchDiff(ctx context.Context, base, head string) (string, error)
}

// RemoteSource reads the changed files of a hosted pull request.
type RemoteSource interface {
	GetPullRequestChangedFiles(ctx context.Context, repo models.RepoRef, number int) ([]models.ChangedFile, error)
}

// Extractor turns local or remote changes into a ChangeSet. An empty text is
// a normal outcome; deciding what "nothing to do" means is up to the caller.
type Extractor struct {
	local  LocalSource
	remote RemoteSource
}

// NewExtractor accepts a nil remote when no GitHub client is configured;
// PullRequest then fails with ErrTokenMissing.
func NewExtractor(local LocalSource, remote RemoteSource) *Extractor {
	return &Extractor{local: local, remote: remote}
}

func (e *Extractor) Local(ctx context.Context, staged bool) (models.ChangeSet, error) {
	diff, err := e.local.GetDiff(ctx, staged)
	if err != nil {
		return models.ChangeSet{}, err
	}

	origin := models.OriginWorkingTree
	if staged {
		origin = models.OriginStaged
	}
	return models.ChangeSet{Text: diff, Origin: origin}, nil
}

// LocalAny prefers the staged diff and falls back to the working tree.
func (e *Extractor) LocalAny(ctx context.Context) (models.ChangeSet, error) {
	diff, origin, err := e.local.GetStagedOrWorkingChangeset(ctx)
	if err != nil {
		return models.ChangeSet{}, err
	}
	return models.ChangeSet{Text: diff, Origin: origin}, nil
}

func (e *Extractor) Branch(ctx context.Context, base, head string) (models.ChangeSet, error) {
	diff, err := e.local.BranchDiff(ctx, base, head)
	if err != nil {
		return models.ChangeSet{}, err
	}
	return models.ChangeSet{Text: diff, Origin: models.OriginBranch}, nil
}

func (e *Extractor) PullRequest(ctx context.Context, repo models.RepoRef, number int) (models.ChangeSet, error) {
	if number <= 0 {
		return models.ChangeSet{}, errors.ErrInvalidPRNumber.WithContext("pr_number", number)
	}
	if e.remote == nil {
		return models.ChangeSet{}, errors.ErrTokenMissing
	}

	files, err := e.remote.GetPullRequestChangedFiles(ctx, repo, number)
	if err != nil {
		return models.ChangeSet{}, err
	}

	logger.Debug(ctx, "pull request change-set extracted",
		"repo", repo.String(),
		"pr_number", number,
		"files", len(files))

	return models.ChangeSet{
		Text:   FormatFiles(files),
		Origin: models.OriginPullRequest,
		Files:  files,
	}, nil
}

// FormatFiles renders changed files as one text block per file:
//
//	--- <filename> ---
//	Status: <status>
//	Changes: +<additions> -<deletions>
//	<patch>
func FormatFiles(files []models.ChangedFile) string {
	var sb strings.Builder
	for _, f := range files {
		fmt.Fprintf(&sb, "\n--- %s ---\n", f.Filename)
		fmt.Fprintf(&sb, "Status: %s\n", f.Status)
		fmt.Fprintf(&sb, "Changes: +%d -%d\n", f.Additions, f.Deletions)
		if f.Patch != "" {
			sb.WriteString(f.Patch)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
