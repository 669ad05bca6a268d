package repos

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thomas-vilte/gh-assist/internal/commands/cmdutil"
	"github.com/thomas-vilte/gh-assist/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/ui"
	"github.com/urfave/cli/v3"
)

type (
	Pipeline interface {
		AnalyzeRepository(ctx context.Context, info models.RepoSummary) (string, *models.TokenUsage, error)
	}

	GitHub interface {
		RepositorySummary(ctx context.Context, repo models.RepoRef) (models.RepoSummary, error)
		ListRepositories(ctx context.Context, limit int) ([]models.Repository, error)
		CreateRepository(ctx context.Context, repo models.NewRepository) (models.Repository, error)
	}

	GitService interface {
		RepoRef(ctx context.Context) (models.RepoRef, error)
		Clone(ctx context.Context, url, dir string) error
	}

	PipelineProvider func(ctx context.Context) (Pipeline, error)
	GitHubProvider   func(ctx context.Context) (GitHub, error)
)

type Factory struct {
	git      GitService
	pipeline PipelineProvider
	github   GitHubProvider
}

func NewFactory(git GitService, pipeline PipelineProvider, github GitHubProvider) *Factory {
	return &Factory{git: git, pipeline: pipeline, github: github}
}

func (f *Factory) Analyze() *AnalyzeCommand { return &AnalyzeCommand{f} }

func (f *Factory) List() *ListCommand { return &ListCommand{f} }

func (f *Factory) Create() *CreateCommand { return &CreateCommand{f} }

func (f *Factory) Clone() *CloneCommand { return &CloneCommand{f} }

type AnalyzeCommand struct{ *Factory }

func (c *AnalyzeCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "analyze-repo",
		Usage:         t.GetMessage("repos.analyze_usage", 0, nil),
		Flags:         []cli.Flag{cmdutil.RepoFlag(t)},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			repo, err := cmdutil.ResolveRepo(ctx, cmd, c.git)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			log.Info("executing analyze-repo command", "repo", repo.String())

			gh, err := c.github(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			pipeline, err := c.pipeline(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var (
				analysis string
				usage    *models.TokenUsage
			)
			err = ui.WithSpinner(t.GetMessage("repos.analyzing", 0, map[string]interface{}{"Repo": repo.String()}), func() error {
				summary, err := gh.RepositorySummary(ctx, repo)
				if err != nil {
					return err
				}
				analysis, usage, err = pipeline.AnalyzeRepository(ctx, summary)
				return err
			})
			if err != nil {
				log.Error("repository analysis failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
				return cmdutil.Fail(err, t)
			}

			ui.PrintSectionBanner(repo.String())
			ui.PrintMarkdown(analysis)
			ui.PrintTokenUsage(usage, t)
			return nil
		},
	}
}

type ListCommand struct{ *Factory }

func (c *ListCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "list-repos",
		Usage: t.GetMessage("repos.list_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   t.GetMessage("flags.limit", 0, nil),
				Value:   10,
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gh, err := c.github(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			repos, err := gh.ListRepositories(ctx, int(cmd.Int("limit")))
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			rows := make([][]string, 0, len(repos))
			for _, r := range repos {
				visibility := t.GetMessage("repos.public", 0, nil)
				if r.Private {
					visibility = t.GetMessage("repos.private", 0, nil)
				}
				rows = append(rows, []string{r.FullName, r.Description, strconv.Itoa(r.Stars), visibility})
			}
			ui.PrintTable([]string{
				t.GetMessage("table.name", 0, nil),
				t.GetMessage("table.description", 0, nil),
				t.GetMessage("table.stars", 0, nil),
				t.GetMessage("table.visibility", 0, nil),
			}, rows)
			return nil
		},
	}
}

type CreateCommand struct{ *Factory }

func (c *CreateCommand) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "create-repo",
		Usage:     t.GetMessage("repos.create_usage", 0, nil),
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   t.GetMessage("repos.flag_description", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "private",
				Usage: t.GetMessage("repos.flag_private", 0, nil),
				Value: config.GitHub.DefaultPrivate,
			},
			&cli.BoolFlag{
				Name:  "init",
				Usage: t.GetMessage("repos.flag_init", 0, nil),
				Value: config.GitHub.AutoInit,
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return cmdutil.Fail(errors.ErrMissingArgument.WithContext("argument", "name"), t)
			}

			gh, err := c.github(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var repo models.Repository
			err = ui.WithSpinner(t.GetMessage("repos.creating", 0, map[string]interface{}{"Name": name}), func() error {
				var createErr error
				repo, createErr = gh.CreateRepository(ctx, models.NewRepository{
					Name:        name,
					Description: cmd.String("description"),
					Private:     cmd.Bool("private"),
					AutoInit:    cmd.Bool("init"),
				})
				return createErr
			})
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			logger.Info(ctx, "repository created", "repo", repo.FullName, "private", repo.Private)

			ui.PrintSuccess(ui.Output, t.GetMessage("repos.created", 0, map[string]interface{}{"Name": repo.FullName}))
			ui.PrintKeyValue("URL", repo.URL)
			ui.PrintKeyValue(t.GetMessage("repos.clone_url", 0, nil), repo.CloneURL)
			return nil
		},
	}
}

type CloneCommand struct{ *Factory }

func (c *CloneCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "clone",
		Usage:         t.GetMessage("repos.clone_usage", 0, nil),
		ArgsUsage:     "<url|owner/name> [directory]",
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			source := cmd.Args().First()
			if source == "" {
				return cmdutil.Fail(errors.ErrMissingArgument.WithContext("argument", "url"), t)
			}
			url := CloneURL(source)
			dir := cmd.Args().Get(1)

			err := ui.WithSpinner(t.GetMessage("repos.cloning", 0, map[string]interface{}{"URL": url}), func() error {
				return c.git.Clone(ctx, url, dir)
			})
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintSuccess(ui.Output, t.GetMessage("repos.cloned", 0, map[string]interface{}{"URL": url}))
			return nil
		},
	}
}

// CloneURL expands owner/name shorthand to an HTTPS GitHub URL and leaves
// anything else untouched.
func CloneURL(source string) string {
	if source == "" || strings.Contains(source, "://") || strings.Contains(source, "@") || strings.ContainsAny(source[:1], "./~") {
		return source
	}
	if repo, err := models.ParseRepoRef(source); err == nil {
		return fmt.Sprintf("https://github.com/%s.git", repo.String())
	}
	return source
}
