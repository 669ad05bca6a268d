package di

import (
	"context"
	"testing"

	gogithub "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/gh-assist/internal/ai"
	"github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/vcs/github"
)

func newTestContainer(t *testing.T, client ai.ModelClient, modelErr, githubErr error) (*Container, *int) {
	t.Helper()
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	githubCalls := 0
	c := NewContainer(config.Default(), translations,
		WithModelClientFactory(func(context.Context, *config.Config) (ai.ModelClient, error) {
			if modelErr != nil {
				return nil, modelErr
			}
			return client, nil
		}),
		WithGitHubClientFactory(func(*config.Config) (*github.Client, error) {
			githubCalls++
			if githubErr != nil {
				return nil, githubErr
			}
			return github.NewClientWithServices(
				&github.MockPRService{}, &github.MockIssuesService{},
				&github.MockRepoService{}, &github.MockUserService{},
			), nil
		}),
	)
	return c, &githubCalls
}

func TestNewContainer(t *testing.T) {
	t.Run("should create a git service by default", func(t *testing.T) {
		c, _ := newTestContainer(t, nil, nil, nil)

		assert.NotNil(t, c.GitService())
		assert.NotNil(t, c.Config())
		assert.NotNil(t, c.Translations())
	})
}

func TestContainer_GitHubClient(t *testing.T) {
	t.Run("should build the client once", func(t *testing.T) {
		c, calls := newTestContainer(t, nil, nil, nil)

		first, err := c.GitHubClient(context.Background())
		require.NoError(t, err)
		second, err := c.GitHubClient(context.Background())
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, *calls)
	})

	t.Run("should not cache failures", func(t *testing.T) {
		c, calls := newTestContainer(t, nil, nil, errors.ErrTokenMissing)

		_, err := c.GitHubClient(context.Background())
		assert.ErrorIs(t, err, errors.ErrTokenMissing)
		_, err = c.GitHubClient(context.Background())
		assert.ErrorIs(t, err, errors.ErrTokenMissing)
		assert.Equal(t, 2, *calls)
	})
}

func TestContainer_Pipeline(t *testing.T) {
	t.Run("should serve local tasks without a github token", func(t *testing.T) {
		client := &ai.MockModelClient{}
		client.On("ProviderName").Return("anthropic").Maybe()
		c, _ := newTestContainer(t, client, nil, errors.ErrTokenMissing)

		pipeline, err := c.Pipeline(context.Background())
		require.NoError(t, err)

		answer := "Use context cancellation."
		client.On("Complete", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.Anything).
			Return(models.Completion{Text: answer}, nil).Once()

		got, _, err := pipeline.Ask(context.Background(), "How do I stop a goroutine?", "")
		require.NoError(t, err)
		assert.Equal(t, answer, got)

		_, _, err = pipeline.ReviewPullRequest(context.Background(), models.RepoRef{Owner: "o", Name: "r"}, 1)
		assert.ErrorIs(t, err, errors.ErrTokenMissing)
	})

	t.Run("should reuse the pipeline", func(t *testing.T) {
		client := &ai.MockModelClient{}
		client.On("ProviderName").Return("anthropic").Maybe()
		c, _ := newTestContainer(t, client, nil, nil)

		first, err := c.Pipeline(context.Background())
		require.NoError(t, err)
		second, err := c.Pipeline(context.Background())
		require.NoError(t, err)

		assert.Same(t, first, second)
	})

	t.Run("should report a missing API key on the first model call", func(t *testing.T) {
		c, _ := newTestContainer(t, nil, errors.ErrAPIKeyMissing, errors.ErrTokenMissing)

		pipeline, err := c.Pipeline(context.Background())
		require.NoError(t, err)

		_, _, err = pipeline.Ask(context.Background(), "What does this repo do?", "")

		assert.ErrorIs(t, err, errors.ErrAPIKeyMissing)
		assert.NotErrorIs(t, err, errors.ErrModelUnavailable)
	})

	t.Run("should report an empty pull request without an API key", func(t *testing.T) {
		translations, err := i18n.NewTranslations("en", "")
		require.NoError(t, err)

		prService := &github.MockPRService{}
		prService.On("ListFiles", mock.Anything, "o", "r", 5, mock.Anything).
			Return([]*gogithub.CommitFile{}, &gogithub.Response{}, nil)

		modelBuilds := 0
		c := NewContainer(config.Default(), translations,
			WithModelClientFactory(func(context.Context, *config.Config) (ai.ModelClient, error) {
				modelBuilds++
				return nil, errors.ErrAPIKeyMissing
			}),
			WithGitHubClientFactory(func(*config.Config) (*github.Client, error) {
				return github.NewClientWithServices(
					prService, &github.MockIssuesService{},
					&github.MockRepoService{}, &github.MockUserService{},
				), nil
			}),
		)

		pipeline, err := c.Pipeline(context.Background())
		require.NoError(t, err)

		_, _, err = pipeline.ReviewPullRequest(context.Background(), models.RepoRef{Owner: "o", Name: "r"}, 5)

		assert.ErrorIs(t, err, errors.ErrNoChanges)
		assert.Equal(t, 0, modelBuilds)
	})

	t.Run("should build the model client once", func(t *testing.T) {
		client := &ai.MockModelClient{}
		client.On("ProviderName").Return("anthropic").Maybe()
		client.On("Complete", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.Anything).
			Return(models.Completion{Text: "answer"}, nil)

		builds := 0
		c := NewContainer(config.Default(), nil,
			WithModelClientFactory(func(context.Context, *config.Config) (ai.ModelClient, error) {
				builds++
				return client, nil
			}),
			WithGitHubClientFactory(func(*config.Config) (*github.Client, error) {
				return nil, errors.ErrTokenMissing
			}),
		)

		pipeline, err := c.Pipeline(context.Background())
		require.NoError(t, err)
		_, _, err = pipeline.Ask(context.Background(), "first?", "")
		require.NoError(t, err)
		_, _, err = pipeline.Ask(context.Background(), "second?", "")
		require.NoError(t, err)

		assert.Equal(t, 1, builds)
	})

	t.Run("should fail on github errors other than a missing token", func(t *testing.T) {
		client := &ai.MockModelClient{}
		c, _ := newTestContainer(t, client, nil, errors.ErrGitHubRequest)

		_, err := c.Pipeline(context.Background())

		assert.ErrorIs(t, err, errors.ErrGitHubRequest)
	})
}
