// Package gitops holds the commands that pass straight through to git.
package gitops

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
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
	Status(ctx context.Context) (models.StatusReport, error)
	GetDiff(ctx context.Context, staged bool) (string, error)
	Log(ctx context.Context, count int) ([]models.Commit, error)
	Push(ctx context.Context, remote, branch string, setUpstream, force bool) (string, error)
	Pull(ctx context.Context, remote, branch string, rebase bool) (string, error)
}

type Factory struct {
	git GitService
}

func NewFactory(git GitService) *Factory {
	return &Factory{git: git}
}

func (f *Factory) Status() *StatusCommand { return &StatusCommand{f} }

func (f *Factory) Log() *LogCommand { return &LogCommand{f} }

func (f *Factory) Push() *PushCommand { return &PushCommand{f} }

func (f *Factory) Pull() *PullCommand { return &PullCommand{f} }

type StatusCommand struct{ *Factory }

func (c *StatusCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:    "status",
		Aliases: []string{"st"},
		Usage:   t.GetMessage("gitops.status_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   t.GetMessage("gitops.flag_verbose", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			report, err := c.git.Status(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintKeyValue(t.GetMessage("gitops.on_branch", 0, nil), report.Branch)
			printFiles(t.GetMessage("gitops.staged", 0, nil), "A", color.FgGreen, report.Staged)
			printFiles(t.GetMessage("gitops.modified", 0, nil), "M", color.FgYellow, report.Modified)
			printFiles(t.GetMessage("gitops.untracked", 0, nil), "?", color.FgRed, report.Untracked)

			if report.Clean() {
				_, _ = fmt.Fprintln(ui.Output)
				ui.PrintSuccess(ui.Output, t.GetMessage("gitops.clean", 0, nil))
				return nil
			}

			if !cmd.Bool("verbose") {
				return nil
			}
			diff, err := c.git.GetDiff(ctx, false)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			if diff != "" {
				ui.PrintMarkdown("```diff\n" + diff + "```")
			}
			return nil
		},
	}
}

func printFiles(title, marker string, attr color.Attribute, files []string) {
	if len(files) == 0 {
		return
	}
	c := color.New(attr)
	_, _ = fmt.Fprintf(ui.Output, "\n%s\n", c.Sprint(title))
	for _, f := range files {
		_, _ = fmt.Fprintf(ui.Output, "  %s %s\n", c.Sprint(marker), f)
	}
}

type LogCommand struct{ *Factory }

func (c *LogCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: t.GetMessage("gitops.log_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   t.GetMessage("gitops.flag_count", 0, nil),
				Value:   10,
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			commits, err := c.git.Log(ctx, int(cmd.Int("count")))
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			rows := make([][]string, 0, len(commits))
			for _, commit := range commits {
				rows = append(rows, []string{
					shortSHA(commit.SHA),
					commit.Author,
					shortDate(commit.Date),
					firstLine(commit.Message, 50),
				})
			}
			ui.PrintTable([]string{
				"SHA",
				t.GetMessage("table.author", 0, nil),
				t.GetMessage("table.date", 0, nil),
				t.GetMessage("table.message", 0, nil),
			}, rows)
			return nil
		},
	}
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func shortDate(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

func firstLine(msg string, max int) string {
	line := strings.SplitN(msg, "\n", 2)[0]
	if r := []rune(line); len(r) > max {
		return string(r[:max])
	}
	return line
}

func remoteFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "remote",
			Aliases: []string{"r"},
			Usage:   t.GetMessage("gitops.flag_remote", 0, nil),
			Value:   "origin",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   t.GetMessage("gitops.flag_branch", 0, nil),
		},
	}
}

type PushCommand struct{ *Factory }

func (c *PushCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: t.GetMessage("gitops.push_usage", 0, nil),
		Flags: append(remoteFlags(t),
			&cli.BoolFlag{
				Name:    "set-upstream",
				Aliases: []string{"u"},
				Usage:   t.GetMessage("gitops.flag_set_upstream", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("gitops.flag_force", 0, nil),
			},
		),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			remote := cmd.String("remote")
			logger.Info(ctx, "executing push command", "remote", remote, "force", cmd.Bool("force"))

			var report string
			err := ui.WithSpinner(t.GetMessage("gitops.pushing", 0, map[string]interface{}{"Remote": remote}), func() error {
				var pushErr error
				report, pushErr = c.git.Push(ctx, remote, cmd.String("branch"), cmd.Bool("set-upstream"), cmd.Bool("force"))
				return pushErr
			})
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintSuccess(ui.Output, t.GetMessage("gitops.pushed", 0, map[string]interface{}{"Remote": remote}))
			printReport(report)
			return nil
		},
	}
}

type PullCommand struct{ *Factory }

func (c *PullCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: t.GetMessage("gitops.pull_usage", 0, nil),
		Flags: append(remoteFlags(t),
			&cli.BoolFlag{
				Name:  "rebase",
				Usage: t.GetMessage("gitops.flag_rebase", 0, nil),
			},
		),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			remote := cmd.String("remote")
			logger.Info(ctx, "executing pull command", "remote", remote, "rebase", cmd.Bool("rebase"))

			var report string
			err := ui.WithSpinner(t.GetMessage("gitops.pulling", 0, map[string]interface{}{"Remote": remote}), func() error {
				var pullErr error
				report, pullErr = c.git.Pull(ctx, remote, cmd.String("branch"), cmd.Bool("rebase"))
				return pullErr
			})
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintSuccess(ui.Output, t.GetMessage("gitops.pulled", 0, map[string]interface{}{"Remote": remote}))
			printReport(report)
			return nil
		},
	}
}

func printReport(report string) {
	if report = strings.TrimSpace(report); report != "" {
		_, _ = ui.Dim.Fprintln(ui.Output, report)
	}
}
