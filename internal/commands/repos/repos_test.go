package repos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/gh-assist/internal/commands/cmdtest"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/git"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/services"
	"github.com/thomas-vilte/gh-assist/internal/vcs"
)

var repo = models.RepoRef{Owner: "acme", Name: "widgets"}

type fixture struct {
	git      *git.MockGitService
	pipeline *services.MockPipeline
	github   *vcs.MockClient
	factory  *Factory
}

func newFixture() *fixture {
	f := &fixture{
		git:      &git.MockGitService{},
		pipeline: &services.MockPipeline{},
		github:   &vcs.MockClient{},
	}
	f.git.On("RepoRef", mock.Anything).Return(repo, nil).Maybe()
	f.factory = NewFactory(f.git,
		func(context.Context) (Pipeline, error) { return f.pipeline, nil },
		func(context.Context) (GitHub, error) { return f.github, nil },
	)
	return f
}

func TestAnalyzeCommand(t *testing.T) {
	t.Run("should analyze the repository summary", func(t *testing.T) {
		// Arrange
		out := cmdtest.CaptureOutput(t)
		translations, cfg := cmdtest.Setup(t)
		f := newFixture()
		summary := models.RepoSummary{FullName: "acme/widgets", Language: "Go", Stars: 12}
		f.github.On("RepositorySummary", mock.Anything, repo).Return(summary, nil)
		f.pipeline.On("AnalyzeRepository", mock.Anything, summary).Return("A small Go library.", nil, nil)
		cmd := f.factory.Analyze().CreateCommand(translations, cfg)

		// Act
		err := cmd.Run(context.Background(), []string{"analyze-repo"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "A small Go library.")
		f.pipeline.AssertExpectations(t)
	})

	t.Run("should stop when the repository is missing", func(t *testing.T) {
		cmdtest.CaptureOutput(t)
		translations, cfg := cmdtest.Setup(t)
		f := newFixture()
		f.github.On("RepositorySummary", mock.Anything, models.RepoRef{Owner: "ghost", Name: "none"}).
			Return(models.RepoSummary{}, errors.ErrRepositoryNotFound)
		cmd := f.factory.Analyze().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"analyze-repo", "--repo", "ghost/none"})

		assert.ErrorIs(t, err, errors.ErrNotFound)
		f.pipeline.AssertNotCalled(t, "AnalyzeRepository", mock.Anything, mock.Anything)
	})
}

func TestListCommand(t *testing.T) {
	t.Run("should print repositories", func(t *testing.T) {
		out := cmdtest.CaptureOutput(t)
		translations, cfg := cmdtest.Setup(t)
		f := newFixture()
		f.github.On("ListRepositories", mock.Anything, 3).Return([]models.Repository{
			{FullName: "octocat/hello", Description: "demo", Stars: 5, Private: true},
		}, nil)
		cmd := f.factory.List().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"list-repos", "-n", "3"})

		require.NoError(t, err)
		assert.Contains(t, out.String(), "octocat/hello")
	})
}

func TestCreateCommand(t *testing.T) {
	t.Run("should create with configured defaults", func(t *testing.T) {
		out := cmdtest.CaptureOutput(t)
		translations, cfg := cmdtest.Setup(t)
		f := newFixture()
		f.github.On("CreateRepository", mock.Anything, models.NewRepository{
			Name:        "tools",
			Description: "scripts",
			Private:     false,
			AutoInit:    true,
		}).Return(models.Repository{FullName: "me/tools", URL: "https://github.com/me/tools"}, nil)
		cmd := f.factory.Create().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"create-repo", "-d", "scripts", "tools"})

		require.NoError(t, err)
		assert.Contains(t, out.String(), "me/tools")
		f.github.AssertExpectations(t)
	})

	t.Run("should require a name", func(t *testing.T) {
		cmdtest.CaptureOutput(t)
		translations, cfg := cmdtest.Setup(t)
		cmd := newFixture().factory.Create().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"create-repo"})

		assert.ErrorIs(t, err, errors.ErrMissingArgument)
	})
}

func TestCloneCommand(t *testing.T) {
	t.Run("should expand shorthand and pass the directory", func(t *testing.T) {
		cmdtest.CaptureOutput(t)
		translations, cfg := cmdtest.Setup(t)
		f := newFixture()
		f.git.On("Clone", mock.Anything, "https://github.com/acme/widgets.git", "w").Return(nil)
		cmd := f.factory.Clone().CreateCommand(translations, cfg)

		err := cmd.Run(context.Background(), []string{"clone", "acme/widgets", "w"})

		require.NoError(t, err)
		f.git.AssertExpectations(t)
	})
}

func TestCloneURL(t *testing.T) {
	cases := map[string]string{
		"acme/widgets":                        "https://github.com/acme/widgets.git",
		"git@github.com:acme/widgets.git":     "git@github.com:acme/widgets.git",
		"https://gitlab.com/acme/widgets.git": "https://gitlab.com/acme/widgets.git",
		"./local":                             "./local",
	}
	for in, want := range cases {
		assert.Equal(t, want, CloneURL(in), in)
	}
}
