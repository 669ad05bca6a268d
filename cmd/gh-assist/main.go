package main

import (
	"context"
	"fmt"
	"os"

	"github.com/thomas-vilte/gh-assist/internal/commands/ask"
	"github.com/thomas-vilte/gh-assist/internal/commands/branch"
	"github.com/thomas-vilte/gh-assist/internal/commands/cmdutil"
	"github.com/thomas-vilte/gh-assist/internal/commands/commit"
	"github.com/thomas-vilte/gh-assist/internal/commands/completion"
	configcmd "github.com/thomas-vilte/gh-assist/internal/commands/config"
	"github.com/thomas-vilte/gh-assist/internal/commands/gitops"
	"github.com/thomas-vilte/gh-assist/internal/commands/issues"
	"github.com/thomas-vilte/gh-assist/internal/commands/pull_requests"
	"github.com/thomas-vilte/gh-assist/internal/commands/registry"
	"github.com/thomas-vilte/gh-assist/internal/commands/repos"
	"github.com/thomas-vilte/gh-assist/internal/commands/review"
	cfg "github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/di"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/services"
	"github.com/thomas-vilte/gh-assist/internal/ui"
	"github.com/thomas-vilte/gh-assist/internal/vcs"
	"github.com/thomas-vilte/gh-assist/internal/version"
	"github.com/urfave/cli/v3"
)

var (
	_ commit.Pipeline        = (*services.Pipeline)(nil)
	_ review.Pipeline        = (*services.Pipeline)(nil)
	_ pull_requests.Pipeline = (*services.Pipeline)(nil)
	_ branch.Pipeline        = (*services.Pipeline)(nil)
	_ issues.Pipeline        = (*services.Pipeline)(nil)
	_ ask.Pipeline           = (*services.Pipeline)(nil)
	_ repos.Pipeline         = (*services.Pipeline)(nil)
	_ pull_requests.GitHub   = (vcs.Client)(nil)
	_ issues.GitHub          = (vcs.Client)(nil)
	_ repos.GitHub           = (vcs.Client)(nil)
)

func main() {
	app, err := initializeApp()
	if err != nil {
		ui.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if !cmdutil.Reported(err) {
			ui.PrintError(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

func initializeApp() (*cli.Command, error) {
	cfgApp, err := cfg.LoadConfig()
	if err != nil {
		return nil, err
	}

	lang, known := cfg.GetLocaleConfig(cfgApp.CLI.Language)
	translations, err := i18n.NewTranslations(lang, "")
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}
	logger.Initialize(cfgApp.CLI.Debug, false)
	if !known {
		logger.Warn(context.Background(), "unknown language, falling back to English", "language", cfgApp.CLI.Language)
	}

	container := di.NewContainer(cfgApp, translations)
	gitService := container.GitService()
	pipeline := container.Pipeline
	github := container.GitHubClient

	prs := pull_requests.NewFactory(gitService, asProvider[pull_requests.Pipeline](pipeline), asProvider[pull_requests.GitHub](github))
	issueCmds := issues.NewFactory(gitService, asProvider[issues.Pipeline](pipeline), asProvider[issues.GitHub](github))
	repoCmds := repos.NewFactory(gitService, asProvider[repos.Pipeline](pipeline), asProvider[repos.GitHub](github))
	gitCmds := gitops.NewFactory(gitService)

	factories := []struct {
		name    string
		factory registry.CommandFactory
	}{
		{"commit", commit.NewCommitCommandFactory(gitService, asProvider[commit.Pipeline](pipeline))},
		{"review", review.NewReviewCommandFactory(asProvider[review.Pipeline](pipeline))},
		{"explain", review.NewExplainCommandFactory(asProvider[review.Pipeline](pipeline))},
		{"review-pr", prs.ReviewPR()},
		{"describe-pr", prs.DescribePR()},
		{"create-pr", prs.CreatePR()},
		{"list-prs", prs.ListPRs()},
		{"suggest-branch", branch.NewSuggestCommandFactory(gitService, asProvider[branch.Pipeline](pipeline))},
		{"branch", branch.NewBranchCommandFactory(gitService)},
		{"checkout", branch.NewCheckoutCommandFactory(gitService)},
		{"triage", issueCmds.Triage()},
		{"labels", issueCmds.Labels()},
		{"create-issue", issueCmds.CreateIssue()},
		{"ask", ask.NewAskCommandFactory(asProvider[ask.Pipeline](pipeline))},
		{"analyze-repo", repoCmds.Analyze()},
		{"list-repos", repoCmds.List()},
		{"create-repo", repoCmds.Create()},
		{"clone", repoCmds.Clone()},
		{"status", gitCmds.Status()},
		{"log", gitCmds.Log()},
		{"push", gitCmds.Push()},
		{"pull", gitCmds.Pull()},
		{"config", configcmd.NewConfigCommandFactory()},
	}

	reg := registry.NewRegistry(cfgApp, translations)
	for _, f := range factories {
		if err := reg.Register(f.name, f.factory); err != nil {
			return nil, err
		}
	}

	commands := reg.CreateCommands()
	commands = append(commands, completion.NewCompletionCommand(translations))

	return &cli.Command{
		Name:        "gh-assist",
		Usage:       translations.GetMessage("app_usage", 0, nil),
		Version:     version.FullVersion(),
		Description: translations.GetMessage("app_description", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flags.debug", 0, nil),
				Value: cfgApp.CLI.Debug,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: translations.GetMessage("flags.verbose", 0, nil),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Initialize(cmd.Bool("debug"), cmd.Bool("verbose"))
			return ctx, nil
		},
		Commands:              commands,
		EnableShellCompletion: true,
	}, nil
}

// asProvider narrows a container getter to the interface a command package
// asks for.
func asProvider[T any, S any](get func(context.Context) (S, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var zero T
		s, err := get(ctx)
		if err != nil {
			return zero, err
		}
		t, ok := any(s).(T)
		if !ok {
			return zero, fmt.Errorf("%T does not implement %T", s, (*T)(nil))
		}
		return t, nil
	}
}
