package pull_requests

import (
	"context"
	"fmt"
	"strconv"
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
		ReviewPullRequest(ctx context.Context, repo models.RepoRef, number int) (models.PRReview, *models.TokenUsage, error)
		DescribePullRequest(ctx context.Context, repo models.RepoRef, number int) (string, *models.TokenUsage, error)
		DescribeBranch(ctx context.Context, base, head string) (string, *models.TokenUsage, error)
	}

	GitHub interface {
		PostReviewComment(ctx context.Context, repo models.RepoRef, number int, text string) error
		PostPullRequestDescription(ctx context.Context, repo models.RepoRef, number int, text string) error
		ListPullRequests(ctx context.Context, repo models.RepoRef, state string, limit int) ([]models.PullRequest, error)
		CreatePullRequest(ctx context.Context, repo models.RepoRef, pr models.NewPullRequest) (models.PullRequest, error)
	}

	GitService interface {
		RepoRef(ctx context.Context) (models.RepoRef, error)
		CurrentBranch(ctx context.Context) (string, error)
	}

	PipelineProvider func(ctx context.Context) (Pipeline, error)
	GitHubProvider   func(ctx context.Context) (GitHub, error)
)

// Factory creates every pull request command; they share collaborators.
type Factory struct {
	git      GitService
	pipeline PipelineProvider
	github   GitHubProvider
}

func NewFactory(git GitService, pipeline PipelineProvider, github GitHubProvider) *Factory {
	return &Factory{git: git, pipeline: pipeline, github: github}
}

func (f *Factory) ReviewPR() *ReviewPRCommand { return &ReviewPRCommand{f} }

func (f *Factory) DescribePR() *DescribePRCommand { return &DescribePRCommand{f} }

func (f *Factory) CreatePR() *CreatePRCommand { return &CreatePRCommand{f} }

func (f *Factory) ListPRs() *ListPRsCommand { return &ListPRsCommand{f} }

func postFlag(t *i18n.Translations) cli.Flag {
	return &cli.BoolFlag{
		Name:    "post",
		Aliases: []string{"p"},
		Usage:   t.GetMessage("pull_requests.flag_post", 0, nil),
	}
}

type ReviewPRCommand struct{ *Factory }

func (c *ReviewPRCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "review-pr",
		Aliases:       []string{"rpr"},
		Usage:         t.GetMessage("pull_requests.review_usage", 0, nil),
		ArgsUsage:     "<number>",
		Flags:         []cli.Flag{cmdutil.RepoFlag(t), postFlag(t)},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			number, err := cmdutil.PositiveNumberArg(cmd)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			repo, err := cmdutil.ResolveRepo(ctx, cmd, c.git)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			log.Info("executing review-pr command", "repo", repo.String(), "pr_number", number)

			pipeline, err := c.pipeline(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var (
				review models.PRReview
				usage  *models.TokenUsage
			)
			err = ui.WithSpinner(t.GetMessage("pull_requests.reviewing", 0, map[string]interface{}{"Number": number}), func() error {
				var runErr error
				review, usage, runErr = pipeline.ReviewPullRequest(ctx, repo, number)
				return runErr
			})
			if cmdutil.IsNoChanges(err) {
				ui.PrintWarning(t.GetMessage("ui.nothing_to_review", 0, nil))
				return nil
			}
			if err != nil {
				log.Error("pull request review failed",
					"error", err,
					"pr_number", number,
					"duration_ms", time.Since(start).Milliseconds())
				return cmdutil.Fail(err, t)
			}

			ui.PrintSectionBanner(t.GetMessage("pull_requests.review_title", 0, map[string]interface{}{"Number": number, "Repo": repo.String()}))
			ui.PrintPRReview(review, t)
			ui.PrintTokenUsage(usage, t)

			if review.ParseError || review.Comment() == "" {
				return nil
			}
			if !cmd.Bool("post") && !ui.AskConfirmation(t.GetMessage("pull_requests.confirm_post_review", 0, nil)) {
				return nil
			}

			gh, err := c.github(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			if err := gh.PostReviewComment(ctx, repo, number, review.Comment()); err != nil {
				return cmdutil.Fail(err, t)
			}

			log.Info("review posted", "pr_number", number, "duration_ms", time.Since(start).Milliseconds())
			ui.PrintSuccess(ui.Output, t.GetMessage("pull_requests.review_posted", 0, nil))
			return nil
		},
	}
}

type DescribePRCommand struct{ *Factory }

func (c *DescribePRCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "describe-pr",
		Aliases:       []string{"dpr"},
		Usage:         t.GetMessage("pull_requests.describe_usage", 0, nil),
		ArgsUsage:     "<number>",
		Flags:         []cli.Flag{cmdutil.RepoFlag(t), postFlag(t)},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			number, err := cmdutil.PositiveNumberArg(cmd)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			repo, err := cmdutil.ResolveRepo(ctx, cmd, c.git)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			log.Info("executing describe-pr command", "repo", repo.String(), "pr_number", number)

			pipeline, err := c.pipeline(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var (
				description string
				usage       *models.TokenUsage
			)
			err = ui.WithSpinner(t.GetMessage("pull_requests.describing", 0, map[string]interface{}{"Number": number}), func() error {
				var runErr error
				description, usage, runErr = pipeline.DescribePullRequest(ctx, repo, number)
				return runErr
			})
			if cmdutil.IsNoChanges(err) {
				ui.PrintWarning(t.GetMessage("ui.nothing_to_review", 0, nil))
				return nil
			}
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintMarkdown(description)
			ui.PrintTokenUsage(usage, t)

			if !cmd.Bool("post") {
				return nil
			}

			gh, err := c.github(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			if err := gh.PostPullRequestDescription(ctx, repo, number, description); err != nil {
				return cmdutil.Fail(err, t)
			}

			log.Info("description posted", "pr_number", number, "duration_ms", time.Since(start).Milliseconds())
			ui.PrintSuccess(ui.Output, t.GetMessage("pull_requests.description_posted", 0, map[string]interface{}{"Number": number}))
			return nil
		},
	}
}

type CreatePRCommand struct{ *Factory }

func (c *CreatePRCommand) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "create-pr",
		Usage:     t.GetMessage("pull_requests.create_usage", 0, nil),
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base",
				Aliases: []string{"b"},
				Usage:   t.GetMessage("pull_requests.flag_base", 0, nil),
				Value:   config.Git.DefaultBranch,
			},
			&cli.StringFlag{
				Name:  "head",
				Usage: t.GetMessage("pull_requests.flag_head", 0, nil),
			},
			&cli.StringFlag{
				Name:    "body",
				Aliases: []string{"d"},
				Usage:   t.GetMessage("pull_requests.flag_body", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "ai",
				Usage: t.GetMessage("pull_requests.flag_ai", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   t.GetMessage("flags.yes", 0, nil),
			},
			cmdutil.RepoFlag(t),
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			title := cmdutil.JoinedArgs(cmd)
			if title == "" {
				return cmdutil.Fail(errors.ErrMissingArgument.WithContext("argument", "title"), t)
			}

			head := cmd.String("head")
			if head == "" {
				current, err := c.git.CurrentBranch(ctx)
				if err != nil {
					return cmdutil.Fail(err, t)
				}
				head = current
			}
			base := cmd.String("base")

			repo, err := cmdutil.ResolveRepo(ctx, cmd, c.git)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			log.Info("executing create-pr command",
				"repo", repo.String(),
				"base", base,
				"head", head,
				"ai", cmd.Bool("ai"))

			body := cmd.String("body")
			if cmd.Bool("ai") && body == "" {
				body, err = c.describeBranch(ctx, cmd, t, base, head)
				if err != nil {
					return err
				}
			}

			gh, err := c.github(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			var pr models.PullRequest
			err = ui.WithSpinner(t.GetMessage("pull_requests.creating", 0, nil), func() error {
				var createErr error
				pr, createErr = gh.CreatePullRequest(ctx, repo, models.NewPullRequest{
					Title: title,
					Head:  head,
					Base:  base,
					Body:  body,
				})
				return createErr
			})
			if err != nil {
				log.Error("failed to create pull request", "error", err, "duration_ms", time.Since(start).Milliseconds())
				return cmdutil.Fail(err, t)
			}

			log.Info("pull request created",
				"pr_number", pr.Number,
				"duration_ms", time.Since(start).Milliseconds())

			ui.PrintSuccess(ui.Output, t.GetMessage("pull_requests.created", 0, nil))
			ui.PrintKeyValue(fmt.Sprintf("#%d", pr.Number), pr.Title)
			ui.PrintKeyValue("URL", pr.URL)
			return nil
		},
	}
}

// describeBranch returns the generated body, or an empty body when the
// branch has nothing to describe or the user rejects the proposal.
func (c *CreatePRCommand) describeBranch(ctx context.Context, cmd *cli.Command, t *i18n.Translations, base, head string) (string, error) {
	pipeline, err := c.pipeline(ctx)
	if err != nil {
		return "", cmdutil.Fail(err, t)
	}

	var (
		body  string
		usage *models.TokenUsage
	)
	err = ui.WithSpinner(t.GetMessage("pull_requests.describing_branch", 0, map[string]interface{}{"Head": head}), func() error {
		var runErr error
		body, usage, runErr = pipeline.DescribeBranch(ctx, base, head)
		return runErr
	})
	if cmdutil.IsNoChanges(err) {
		ui.PrintWarning(t.GetMessage("pull_requests.nothing_to_describe", 0, nil))
		return "", nil
	}
	if err != nil {
		return "", cmdutil.Fail(err, t)
	}

	ui.PrintPanel(t.GetMessage("pull_requests.generated_description", 0, nil), body)
	ui.PrintTokenUsage(usage, t)

	if cmd.Bool("yes") || ui.AskConfirmation(t.GetMessage("pull_requests.use_description", 0, nil)) {
		return body, nil
	}
	return ui.Prompt(t.GetMessage("pull_requests.enter_description", 0, nil), ""), nil
}

type ListPRsCommand struct{ *Factory }

func (c *ListPRsCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "list-prs",
		Usage: t.GetMessage("pull_requests.list_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "state",
				Aliases: []string{"s"},
				Usage:   t.GetMessage("pull_requests.flag_state", 0, nil),
				Value:   "open",
				Validator: func(state string) error {
					switch state {
					case "open", "closed", "all":
						return nil
					default:
						return fmt.Errorf("%s", t.GetMessage("pull_requests.invalid_state", 0, map[string]interface{}{"State": state}))
					}
				},
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   t.GetMessage("flags.limit", 0, nil),
				Value:   20,
			},
			cmdutil.RepoFlag(t),
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			repo, err := cmdutil.ResolveRepo(ctx, cmd, c.git)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			state := cmd.String("state")

			logger.Info(ctx, "executing list-prs command", "repo", repo.String(), "state", state)

			gh, err := c.github(ctx)
			if err != nil {
				return cmdutil.Fail(err, t)
			}
			prs, err := gh.ListPullRequests(ctx, repo, state, int(cmd.Int("limit")))
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			if len(prs) == 0 {
				ui.PrintInfo(t.GetMessage("pull_requests.none_found", 0, map[string]interface{}{"State": state}))
				return nil
			}

			rows := make([][]string, 0, len(prs))
			for _, pr := range prs {
				rows = append(rows, []string{"#" + strconv.Itoa(pr.Number), truncate(pr.Title, 50), pr.Author, pr.State})
			}
			ui.PrintTable([]string{"#", t.GetMessage("table.title", 0, nil), t.GetMessage("table.author", 0, nil), t.GetMessage("table.state", 0, nil)}, rows)
			return nil
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
