package ask

import (
	"context"

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
	Ask(ctx context.Context, question, extraContext string) (string, *models.TokenUsage, error)
}

type PipelineProvider func(ctx context.Context) (Pipeline, error)

type AskCommandFactory struct {
	pipeline PipelineProvider
}

func NewAskCommandFactory(pipeline PipelineProvider) *AskCommandFactory {
	return &AskCommandFactory{pipeline: pipeline}
}

func (f *AskCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     t.GetMessage("ask.usage", 0, nil),
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "context",
				Usage: t.GetMessage("flags.context", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			question := cmdutil.JoinedArgs(cmd)
			logger.Info(ctx, "executing ask command", "question_length", len(question))

			pipeline, err := f.pipeline(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var (
				answer string
				usage  *models.TokenUsage
			)
			err = ui.WithSpinner(t.GetMessage("ask.thinking", 0, nil), func() error {
				var runErr error
				answer, usage, runErr = pipeline.Ask(ctx, question, cmd.String("context"))
				return runErr
			})
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintSectionBanner(t.GetMessage("ask.title", 0, nil))
			ui.PrintMarkdown(answer)
			ui.PrintTokenUsage(usage, t)
			return nil
		},
	}
}
