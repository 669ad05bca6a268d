package commit

import (
	"context"
	"fmt"
	"strings"
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

type GitService interface {
	Add(ctx context.Context, files []string, all bool) error
	HasStagedChanges(ctx context.Context) bool
	Commit(ctx context.Context, message string) (string, error)
}

type Pipeline interface {
	CommitMessage(ctx context.Context, staged bool, extraContext string) (string, *models.TokenUsage, error)
}

type PipelineProvider func(ctx context.Context) (Pipeline, error)

type CommitCommandFactory struct {
	git      GitService
	pipeline PipelineProvider
	edit     func(initial string) (string, error)
}

func NewCommitCommandFactory(git GitService, pipeline PipelineProvider) *CommitCommandFactory {
	return &CommitCommandFactory{
		git:      git,
		pipeline: pipeline,
		edit:     ui.EditText,
	}
}

func (f *CommitCommandFactory) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "commit",
		Aliases:   []string{"c"},
		Usage:     t.GetMessage("commit.usage", 0, nil),
		ArgsUsage: "[files...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   t.GetMessage("commit.flag_all", 0, nil),
				Value:   config.Git.AutoStage,
			},
			&cli.BoolFlag{
				Name:  "ai",
				Usage: t.GetMessage("commit.flag_ai", 0, nil),
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   t.GetMessage("commit.flag_message", 0, nil),
			},
			&cli.StringFlag{
				Name:  "context",
				Usage: t.GetMessage("flags.context", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   t.GetMessage("commit.flag_yes", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "edit",
				Aliases: []string{"e"},
				Usage:   t.GetMessage("commit.flag_edit", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			var files []string
			if cmd.Args().Len() > 0 {
				files = cmd.Args().Slice()
			}
			all := cmd.Bool("all")
			message := cmd.String("message")

			log.Info("executing commit command",
				"files", len(files),
				"all", all,
				"ai", cmd.Bool("ai"))

			switch {
			case all || len(files) > 0:
				if err := f.git.Add(ctx, files, all); err != nil {
					return cmdutil.Fail(err, t)
				}
				if all {
					ui.PrintSuccess(ui.Output, t.GetMessage("commit.staged_all", 0, nil))
				} else {
					ui.PrintSuccess(ui.Output, t.GetMessage("commit.staged_files", len(files), map[string]interface{}{"Count": len(files)}))
				}
			case !f.git.HasStagedChanges(ctx):
				ui.PrintWarning(t.GetMessage("commit.nothing_staged", 0, nil))
				return nil
			}

			if cmd.Bool("ai") && message == "" {
				generated, done, err := f.generate(ctx, cmd, t)
				if err != nil || done {
					return err
				}
				message = generated
			}

			if message == "" {
				message = ui.Prompt(t.GetMessage("commit.enter_message", 0, nil), "")
			}
			if strings.TrimSpace(message) == "" {
				ui.PrintWarning(t.GetMessage("commit.empty_message", 0, nil))
				return nil
			}

			sha, err := f.git.Commit(ctx, message)
			if err != nil {
				log.Error("commit failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
				return cmdutil.Fail(err, t)
			}

			log.Info("commit created",
				"sha", sha,
				"duration_ms", time.Since(start).Milliseconds())

			ui.PrintSuccess(ui.Output, t.GetMessage("commit.committed", 0, map[string]interface{}{"SHA": sha}))
			_, _ = fmt.Fprintf(ui.Output, "  %s\n", strings.SplitN(message, "\n", 2)[0])
			return nil
		},
	}
}

// generate asks the model for a message. done is true when there is nothing
// left to do, either because nothing is staged or the user declined.
func (f *CommitCommandFactory) generate(ctx context.Context, cmd *cli.Command, t *i18n.Translations) (message string, done bool, err error) {
	pipeline, err := f.pipeline(ctx)
	if err != nil {
		return "", true, cmdutil.Fail(err, t)
	}

	var usage *models.TokenUsage
	err = ui.WithSpinner(t.GetMessage("commit.generating", 0, nil), func() error {
		var genErr error
		message, usage, genErr = pipeline.CommitMessage(ctx, true, cmd.String("context"))
		return genErr
	})
	if cmdutil.IsNoChanges(err) {
		ui.PrintWarning(t.GetMessage("ui.nothing_to_commit", 0, nil))
		return "", true, nil
	}
	if err != nil {
		return "", true, cmdutil.Fail(err, t)
	}

	ui.PrintPanel(t.GetMessage("commit.generated_title", 0, nil), message)
	ui.PrintTokenUsage(usage, t)

	if cmd.Bool("edit") {
		edited, err := f.edit(message)
		if err != nil {
			return "", true, cmdutil.Fail(err, t)
		}
		return edited, false, nil
	}

	if cmd.Bool("yes") || ui.AskConfirmation(t.GetMessage("commit.use_message", 0, nil)) {
		return message, false, nil
	}
	return ui.Prompt(t.GetMessage("commit.enter_message", 0, nil), ""), false, nil
}
