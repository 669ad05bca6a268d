package branch

import (
	"context"

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

type GitService interface {
	CreateBranch(ctx context.Context, name string, checkout bool) error
	Checkout(ctx context.Context, name string) error
}

type Pipeline interface {
	SuggestBranchName(ctx context.Context, description string) (string, *models.TokenUsage, error)
}

type PipelineProvider func(ctx context.Context) (Pipeline, error)

type SuggestCommandFactory struct {
	git      GitService
	pipeline PipelineProvider
}

func NewSuggestCommandFactory(git GitService, pipeline PipelineProvider) *SuggestCommandFactory {
	return &SuggestCommandFactory{git: git, pipeline: pipeline}
}

func (f *SuggestCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "suggest-branch",
		Aliases:   []string{"sb"},
		Usage:     t.GetMessage("branch.suggest_usage", 0, nil),
		ArgsUsage: "<description>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "create",
				Aliases: []string{"c"},
				Usage:   t.GetMessage("branch.flag_create", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			description := cmdutil.JoinedArgs(cmd)
			logger.Info(ctx, "executing suggest-branch command", "description_length", len(description))

			pipeline, err := f.pipeline(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var (
				name  string
				usage *models.TokenUsage
			)
			err = ui.WithSpinner(t.GetMessage("branch.suggesting", 0, nil), func() error {
				var runErr error
				name, usage, runErr = pipeline.SuggestBranchName(ctx, description)
				return runErr
			})
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintKeyValue(t.GetMessage("branch.suggested", 0, nil), name)
			ui.PrintTokenUsage(usage, t)

			if !cmd.Bool("create") {
				return nil
			}
			if err := f.git.CreateBranch(ctx, name, true); err != nil {
				return cmdutil.Fail(err, t)
			}
			ui.PrintSuccess(ui.Output, t.GetMessage("branch.created_and_switched", 0, map[string]interface{}{"Name": name}))
			return nil
		},
	}
}

type BranchCommandFactory struct {
	git GitService
}

func NewBranchCommandFactory(git GitService) *BranchCommandFactory {
	return &BranchCommandFactory{git: git}
}

func (f *BranchCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "branch",
		Usage:     t.GetMessage("branch.usage", 0, nil),
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "checkout",
				Aliases: []string{"c"},
				Usage:   t.GetMessage("branch.flag_checkout", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return cmdutil.Fail(errors.ErrMissingArgument.WithContext("argument", "name"), t)
			}
			checkout := cmd.Bool("checkout")

			if err := f.git.CreateBranch(ctx, name, checkout); err != nil {
				return cmdutil.Fail(err, t)
			}

			msg := "branch.created"
			if checkout {
				msg = "branch.created_and_switched"
			}
			ui.PrintSuccess(ui.Output, t.GetMessage(msg, 0, map[string]interface{}{"Name": name}))
			return nil
		},
	}
}

type CheckoutCommandFactory struct {
	git GitService
}

func NewCheckoutCommandFactory(git GitService) *CheckoutCommandFactory {
	return &CheckoutCommandFactory{git: git}
}

func (f *CheckoutCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "checkout",
		Aliases:       []string{"co"},
		Usage:         t.GetMessage("branch.checkout_usage", 0, nil),
		ArgsUsage:     "<name>",
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return cmdutil.Fail(errors.ErrMissingArgument.WithContext("argument", "name"), t)
			}
			if err := f.git.Checkout(ctx, name); err != nil {
				return cmdutil.Fail(err, t)
			}
			ui.PrintSuccess(ui.Output, t.GetMessage("branch.switched", 0, map[string]interface{}{"Name": name}))
			return nil
		},
	}
}
