package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/commands/cmdutil"
	"github.com/thomas-vilte/gh-assist/internal/commands/completion_helper"
	"github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/ui"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const localConfigFile = ".gh-assistant.yml"

type ConfigCommandFactory struct {
	userPath   func() (string, error)
	localPath  string
	searchPath func() []string
}

func NewConfigCommandFactory() *ConfigCommandFactory {
	return &ConfigCommandFactory{
		userPath:   config.UserConfigPath,
		localPath:  localConfigFile,
		searchPath: config.SearchPaths,
	}
}

func (f *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config.usage", 0, nil),
		Commands: []*cli.Command{
			f.newShowCommand(t, cfg),
			f.newInitCommand(t, cfg),
			f.newPathCommand(t, cfg),
		},
	}
}

func (f *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "show",
		Usage:         t.GetMessage("config.show_usage", 0, nil),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return cmdutil.Fail(err, t)
			}

			ui.PrintSectionBanner(t.GetMessage("config.show_title", 0, nil))
			source := cfg.PathFile
			if source == "" {
				source = t.GetMessage("config.defaults_only", 0, nil)
			}
			ui.PrintKeyValue(t.GetMessage("config.source", 0, nil), source)
			_, _ = fmt.Fprintf(ui.Output, "\n%s\n", strings.TrimRight(string(data), "\n"))

			_, _ = fmt.Fprintf(ui.Output, "\n%s\n", ui.Info.Sprint(t.GetMessage("config.credentials", 0, nil)))
			ui.PrintKeyValue("ANTHROPIC_API_KEY", maskSecret(cfg.AnthropicAPIKey, t))
			ui.PrintKeyValue("GEMINI_API_KEY", maskSecret(cfg.GeminiAPIKey, t))
			ui.PrintKeyValue("GITHUB_TOKEN", maskSecret(cfg.GitHubToken, t))
			return nil
		},
	}
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(secret string, t *i18n.Translations) string {
	switch {
	case secret == "":
		return t.GetMessage("config.not_set", 0, nil)
	case len(secret) <= 8:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}

func (f *ConfigCommandFactory) newInitCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("config.init_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "local",
				Aliases: []string{"l"},
				Usage:   t.GetMessage("config.flag_local", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("config.flag_force", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := f.localPath
			if !cmd.Bool("local") {
				userPath, err := f.userPath()
				if err != nil {
					return cmdutil.Fail(errors.NewAppError(errors.TypeConfiguration, t.GetMessage("config.error_path", 0, nil), err), t)
				}
				path = userPath
			}

			if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
				if !ui.AskConfirmation(t.GetMessage("config.overwrite_confirm", 0, map[string]interface{}{"Path": path})) {
					ui.PrintInfo(t.GetMessage("config.init_cancelled", 0, nil))
					return nil
				}
			}

			// Secrets stay in the environment, so only the file-backed settings are written.
			if err := config.SaveConfig(cfg, path); err != nil {
				return cmdutil.Fail(errors.NewAppError(errors.TypeConfiguration, t.GetMessage("config.error_save", 0, nil), err), t)
			}

			ui.PrintSuccess(ui.Output, t.GetMessage("config.init_success", 0, map[string]interface{}{"Path": path}))
			ui.PrintInfo(t.GetMessage("config.env_hint", 0, nil))
			return nil
		},
	}
}

func (f *ConfigCommandFactory) newPathCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "path",
		Usage:         t.GetMessage("config.path_usage", 0, nil),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			active := cfg.PathFile
			if active == "" {
				active = t.GetMessage("config.defaults_only", 0, nil)
			}
			ui.PrintKeyValue(t.GetMessage("config.active_file", 0, nil), active)
			ui.PrintList(t.GetMessage("config.search_paths", 0, nil), f.searchPath())
			return nil
		},
	}
}
