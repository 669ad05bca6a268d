package di

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/thomas-vilte/gh-assist/internal/ai"
	"github.com/thomas-vilte/gh-assist/internal/changeset"
	"github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/git"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/providers"
	"github.com/thomas-vilte/gh-assist/internal/services"
	"github.com/thomas-vilte/gh-assist/internal/services/cost"
	"github.com/thomas-vilte/gh-assist/internal/vcs/github"
)

type (
	ModelClientFactory  func(ctx context.Context, cfg *config.Config) (ai.ModelClient, error)
	GitHubClientFactory func(cfg *config.Config) (*github.Client, error)
)

// Container builds the collaborators once per process. Git is created
// eagerly. GitHub and the model are created on first use so commands that do
// not need them work without credentials.
type Container struct {
	config       *config.Config
	translations *i18n.Translations
	git          *git.GitService

	newModelClient  ModelClientFactory
	newGitHubClient GitHubClientFactory

	mu       sync.Mutex
	github   *github.Client
	pipeline *services.Pipeline
}

type Option func(*Container)

func WithGitService(g *git.GitService) Option {
	return func(c *Container) {
		c.git = g
	}
}

func WithModelClientFactory(f ModelClientFactory) Option {
	return func(c *Container) {
		c.newModelClient = f
	}
}

func WithGitHubClientFactory(f GitHubClientFactory) Option {
	return func(c *Container) {
		c.newGitHubClient = f
	}
}

func NewContainer(cfg *config.Config, t *i18n.Translations, opts ...Option) *Container {
	c := &Container{
		config:          cfg,
		translations:    t,
		newModelClient:  providers.NewModelClient,
		newGitHubClient: providers.NewGitHubClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.git == nil {
		c.git = git.NewGitService()
	}
	return c
}

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Translations() *i18n.Translations {
	return c.translations
}

func (c *Container) GitService() *git.GitService {
	return c.git
}

// GitHubClient returns the shared GitHub client. Failures are not cached, so
// a later call can succeed once the token is present.
func (c *Container) GitHubClient(_ context.Context) (*github.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.githubLocked()
}

func (c *Container) githubLocked() (*github.Client, error) {
	if c.github != nil {
		return c.github, nil
	}
	client, err := c.newGitHubClient(c.config)
	if err != nil {
		return nil, err
	}
	c.github = client
	return client, nil
}

// Pipeline wires the extractor, prompt builder and invoker. Without a GitHub
// token the pipeline still serves local tasks; pull request tasks then fail
// with ErrTokenMissing.
func (c *Container) Pipeline(ctx context.Context) (*services.Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipeline != nil {
		return c.pipeline, nil
	}

	client := newLazyModelClient(c.config, c.newModelClient)

	aiCfg := c.config.AI
	invoker := ai.NewInvoker(client, string(aiCfg.Model),
		ai.WithRetries(aiCfg.MaxRetries, 0),
		ai.WithCostCalculator(cost.NewCalculator()),
	)
	builder := ai.NewPromptBuilder(aiCfg.MaxDiffSize, aiCfg.MaxPRDiffSize, config.LanguageName(c.config.CLI.Language))

	opts := []services.PipelineOption{
		services.WithPromptBuilder(builder),
		services.WithInvoker(invoker),
		services.WithBranchHistory(c.git),
		services.WithCommitLog(c.git),
	}

	var remote changeset.RemoteSource
	gh, err := c.githubLocked()
	switch {
	case err == nil:
		remote = gh
		opts = append(opts, services.WithPullRequestReader(gh))
	case stderrors.Is(err, errors.ErrTokenMissing):
		logger.Debug(ctx, "github token not configured, pull request tasks disabled")
	default:
		return nil, err
	}
	opts = append(opts, services.WithChangeSource(changeset.NewExtractor(c.git, remote)))

	logger.Debug(ctx, "pipeline ready",
		"provider", client.ProviderName(),
		"model", string(aiCfg.Model),
		"max_retries", aiCfg.MaxRetries)

	c.pipeline = services.NewPipeline(opts...)
	return c.pipeline, nil
}
