package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/thomas-vilte/gh-assist/internal/regex"
)

// RepoRef names a hosted repository as owner/name.
type RepoRef struct {
	Owner string
	Name  string
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoRef parses "owner/name".
func ParseRepoRef(s string) (RepoRef, error) {
	m := regex.RepoSlug.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return RepoRef{}, fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return RepoRef{Owner: m[1], Name: m[2]}, nil
}

type (
	// PullRequest is the subset of pull request data the commands display.
	PullRequest struct {
		Number       int
		Title        string
		Body         string
		Author       string
		State        string
		URL          string
		HeadBranch   string
		BaseBranch   string
		ChangedFiles int
	}

	// NewPullRequest holds the fields needed to open a pull request.
	NewPullRequest struct {
		Title string
		Head  string
		Base  string
		Body  string
	}

	// Repository is a hosted repository as listed or created.
	Repository struct {
		Name        string
		FullName    string
		Description string
		Private     bool
		Stars       int
		URL         string
		CloneURL    string
	}

	// NewRepository holds the fields needed to create a repository.
	NewRepository struct {
		Name        string
		Description string
		Private     bool
		AutoInit    bool
	}

	// Issue is a hosted issue.
	Issue struct {
		Number int
		Title  string
		Body   string
		State  string
		Labels []string
		URL    string
	}

	// RepoSummary is the repository snapshot given to the repository-analysis task.
	RepoSummary struct {
		FullName      string
		Description   string
		Language      string
		Stars         int
		Forks         int
		OpenIssues    int
		Watchers      int
		DefaultBranch string
		Topics        []string
		CreatedAt     time.Time
		PushedAt      time.Time
		RecentCommits []string
		Archived      bool
		Fork          bool
		License       string
	}
)
