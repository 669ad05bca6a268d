package issues

import (
	"context"
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
		TriageIssue(ctx context.Context, title, body string) (models.Triage, *models.TokenUsage, error)
		SuggestLabels(ctx context.Context, title, body string) (models.Labels, *models.TokenUsage, error)
	}

	GitHub interface {
		GetIssue(ctx context.Context, repo models.RepoRef, number int) (models.Issue, error)
		CreateIssue(ctx context.Context, repo models.RepoRef, title, body string, labels []string) (models.Issue, error)
		AddLabels(ctx context.Context, repo models.RepoRef, number int, labels []string) error
	}

	RepoResolver interface {
		RepoRef(ctx context.Context) (models.RepoRef, error)
	}

	PipelineProvider func(ctx context.Context) (Pipeline, error)
	GitHubProvider   func(ctx context.Context) (GitHub, error)
)

type Factory struct {
	git      RepoResolver
	pipeline PipelineProvider
	github   GitHubProvider
}

func NewFactory(git RepoResolver, pipeline PipelineProvider, github GitHubProvider) *Factory {
	return &Factory{git: git, pipeline: pipeline, github: github}
}

func (f *Factory) Triage() *TriageCommand { return &TriageCommand{f} }

func (f *Factory) Labels() *LabelsCommand { return &LabelsCommand{f} }

func (f *Factory) CreateIssue() *CreateIssueCommand { return &CreateIssueCommand{f} }

// issueInput is the issue a command works on: a fetched issue when a number
// was given, otherwise the --title and --body flags.
type issueInput struct {
	number int
	repo   models.RepoRef
	title  string
	body   string
}

func issueFlags(t *i18n.Translations, applyName string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "title",
			Aliases: []string{"t"},
			Usage:   t.GetMessage("issues.flag_title", 0, nil),
		},
		&cli.StringFlag{
			Name:    "body",
			Aliases: []string{"b"},
			Usage:   t.GetMessage("issues.flag_body", 0, nil),
		},
		&cli.BoolFlag{
			Name:  applyName,
			Usage: t.GetMessage("issues.flag_apply_labels", 0, nil),
		},
		cmdutil.RepoFlag(t),
	}
}

func (f *Factory) resolveIssue(ctx context.Context, cmd *cli.Command) (issueInput, error) {
	if cmd.Args().Len() == 0 {
		in := issueInput{title: strings.TrimSpace(cmd.String("title")), body: cmd.String("body")}
		if in.title == "" {
			return issueInput{}, errors.ErrEmptyIssue
		}
		return in, nil
	}

	number, err := cmdutil.PositiveNumberArg(cmd)
	if err != nil {
		return issueInput{}, err
	}
	repo, err := cmdutil.ResolveRepo(ctx, cmd, f.git)
	if err != nil {
		return issueInput{}, err
	}
	gh, err := f.github(ctx)
	if err != nil {
		return issueInput{}, err
	}
	issue, err := gh.GetIssue(ctx, repo, number)
	if err != nil {
		return issueInput{}, err
	}
	return issueInput{number: number, repo: repo, title: issue.Title, body: issue.Body}, nil
}

// applyLabels adds labels to a fetched issue. Issues given by flags have no
// number and are skipped with a warning.
func (f *Factory) applyLabels(ctx context.Context, t *i18n.Translations, in issueInput, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	if in.number == 0 {
		ui.PrintWarning(t.GetMessage("issues.labels_need_number", 0, nil))
		return nil
	}

	gh, err := f.github(ctx)
	if err != nil {
		return err
	}
	if err := gh.AddLabels(ctx, in.repo, in.number, labels); err != nil {
		return err
	}
	ui.PrintSuccess(ui.Output, t.GetMessage("issues.labels_applied", len(labels), map[string]interface{}{
		"Count":  len(labels),
		"Number": in.number,
	}))
	return nil
}

type TriageCommand struct{ *Factory }

func (c *TriageCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "triage",
		Usage:         t.GetMessage("issues.triage_usage", 0, nil),
		ArgsUsage:     "[issue-number]",
		Flags:         issueFlags(t, "apply-labels"),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			in, err := c.resolveIssue(ctx, cmd)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			log.Info("executing triage command", "issue_number", in.number, "repo", in.repo.String())

			pipeline, err := c.pipeline(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var (
				triage models.Triage
				usage  *models.TokenUsage
			)
			err = ui.WithSpinner(t.GetMessage("issues.triaging", 0, nil), func() error {
				var runErr error
				triage, usage, runErr = pipeline.TriageIssue(ctx, in.title, in.body)
				return runErr
			})
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			log.Info("issue triaged",
				"priority", triage.Priority,
				"parse_error", triage.ParseError,
				"duration_ms", time.Since(start).Milliseconds())

			ui.PrintTriage(triage, t)
			ui.PrintTokenUsage(usage, t)

			if cmd.Bool("apply-labels") && !triage.ParseError {
				if err := c.applyLabels(ctx, t, in, triage.SuggestedLabels); err != nil {
					return cmdutil.Fail(err, t)
				}
			}
			return nil
		},
	}
}

type LabelsCommand struct{ *Factory }

func (c *LabelsCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "labels",
		Usage:         t.GetMessage("issues.labels_usage", 0, nil),
		ArgsUsage:     "[issue-number]",
		Flags:         issueFlags(t, "apply"),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, err := c.resolveIssue(ctx, cmd)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			logger.Info(ctx, "executing labels command", "issue_number", in.number)

			pipeline, err := c.pipeline(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var (
				labels models.Labels
				usage  *models.TokenUsage
			)
			err = ui.WithSpinner(t.GetMessage("issues.suggesting_labels", 0, nil), func() error {
				var runErr error
				labels, usage, runErr = pipeline.SuggestLabels(ctx, in.title, in.body)
				return runErr
			})
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintLabels(labels, t)
			ui.PrintTokenUsage(usage, t)

			if cmd.Bool("apply") && !labels.ParseError {
				if err := c.applyLabels(ctx, t, in, labels.Labels); err != nil {
					return cmdutil.Fail(err, t)
				}
			}
			return nil
		},
	}
}

type CreateIssueCommand struct{ *Factory }

func (c *CreateIssueCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "create-issue",
		Usage:     t.GetMessage("issues.create_usage", 0, nil),
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "body",
				Aliases: []string{"b"},
				Usage:   t.GetMessage("issues.flag_body", 0, nil),
			},
			&cli.StringSliceFlag{
				Name:    "label",
				Aliases: []string{"l"},
				Usage:   t.GetMessage("issues.flag_label", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "suggest-labels",
				Usage: t.GetMessage("issues.flag_suggest_labels", 0, nil),
			},
			cmdutil.RepoFlag(t),
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			title := cmdutil.JoinedArgs(cmd)
			if title == "" {
				return cmdutil.Fail(errors.ErrEmptyIssue, t)
			}
			body := cmd.String("body")
			labels := cmd.StringSlice("label")

			repo, err := cmdutil.ResolveRepo(ctx, cmd, c.git)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			if cmd.Bool("suggest-labels") {
				pipeline, err := c.pipeline(ctx)
				if err != nil {
					return cmdutil.Fail(err, t)
				}
				suggested, usage, err := pipeline.SuggestLabels(ctx, title, body)
				if err != nil {
					return cmdutil.Fail(err, t)
				}
				ui.PrintTokenUsage(usage, t)
				if !suggested.ParseError {
					labels = mergeLabels(labels, suggested.Labels)
				}
			}

			gh, err := c.github(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			issue, err := gh.CreateIssue(ctx, repo, title, body, labels)
			if err != nil {
				log.Error("failed to create issue", "error", err, "duration_ms", time.Since(start).Milliseconds())
				return cmdutil.Fail(err, t)
			}

			log.Info("issue created",
				"repo", repo.String(),
				"issue_number", issue.Number,
				"labels", len(labels),
				"duration_ms", time.Since(start).Milliseconds())

			ui.PrintSuccess(ui.Output, t.GetMessage("issues.created", 0, map[string]interface{}{"Number": issue.Number}))
			ui.PrintKeyValue("URL", issue.URL)
			if len(labels) > 0 {
				ui.PrintKeyValue(t.GetMessage("ui.triage.labels", 0, nil), strings.Join(labels, ", "))
			}
			return nil
		},
	}
}

// mergeLabels appends the suggested labels that are not already present,
// comparing case-insensitively.
func mergeLabels(given, suggested []string) []string {
	seen := make(map[string]bool, len(given))
	out := make([]string, 0, len(given)+len(suggested))
	for _, l := range append(append([]string{}, given...), suggested...) {
		key := strings.ToLower(strings.TrimSpace(l))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(l))
	}
	return out
}
