package review

import (
	"context"
	"time"

	"github.com/thomas-vilte/gh-assist/internal/commands/cmdutil"
	"github.com/thomas-vilte/gh-assist/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/ui"
	"github.com/urfave/cli/v3"
)

type Pipeline interface {
	ReviewChanges(ctx context.Context, staged bool, extraContext string) (models.Review, *models.TokenUsage, error)
	ExplainChanges(ctx context.Context, staged bool) (string, *models.TokenUsage, error)
}

type PipelineProvider func(ctx context.Context) (Pipeline, error)

type ReviewCommandFactory struct {
	pipeline PipelineProvider
}

func NewReviewCommandFactory(pipeline PipelineProvider) *ReviewCommandFactory {
	return &ReviewCommandFactory{pipeline: pipeline}
}

func stagedFlag(t *i18n.Translations) cli.Flag {
	return &cli.BoolFlag{
		Name:    "staged",
		Aliases: []string{"s"},
		Usage:   t.GetMessage("flags.staged", 0, nil),
	}
}

func (f *ReviewCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: t.GetMessage("review.usage", 0, nil),
		Flags: []cli.Flag{
			stagedFlag(t),
			&cli.StringFlag{
				Name:  "context",
				Usage: t.GetMessage("flags.context", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()
			staged := cmd.Bool("staged")

			log.Info("executing review command", "staged", staged)

			pipeline, err := f.pipeline(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var (
				result models.Review
				usage  *models.TokenUsage
			)
			err = ui.WithSpinner(t.GetMessage("review.reviewing", 0, nil), func() error {
				var runErr error
				result, usage, runErr = pipeline.ReviewChanges(ctx, staged, cmd.String("context"))
				return runErr
			})
			if cmdutil.IsNoChanges(err) {
				ui.PrintWarning(t.GetMessage("ui.nothing_to_review", 0, nil))
				return nil
			}
			if err != nil {
				log.Error("review failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
				return cmdutil.Fail(err, t)
			}

			log.Info("review completed",
				"issues", len(result.Issues),
				"parse_error", result.ParseError,
				"duration_ms", time.Since(start).Milliseconds())

			ui.PrintReview(result, t)
			ui.PrintTokenUsage(usage, t)
			return nil
		},
	}
}

type ExplainCommandFactory struct {
	pipeline PipelineProvider
}

func NewExplainCommandFactory(pipeline PipelineProvider) *ExplainCommandFactory {
	return &ExplainCommandFactory{pipeline: pipeline}
}

func (f *ExplainCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "explain",
		Usage:         t.GetMessage("explain.usage", 0, nil),
		Flags:         []cli.Flag{stagedFlag(t)},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			staged := cmd.Bool("staged")
			logger.Info(ctx, "executing explain command", "staged", staged)

			pipeline, err := f.pipeline(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var (
				explanation string
				usage       *models.TokenUsage
			)
			err = ui.WithSpinner(t.GetMessage("explain.explaining", 0, nil), func() error {
				var runErr error
				explanation, usage, runErr = pipeline.ExplainChanges(ctx, staged)
				return runErr
			})
			if cmdutil.IsNoChanges(err) {
				ui.PrintWarning(t.GetMessage("ui.nothing_to_review", 0, nil))
				return nil
			}
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintMarkdown(explanation)
			ui.PrintTokenUsage(usage, t)
			return nil
		},
	}
}
