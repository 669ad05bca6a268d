package completion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `#! /bin/bash

_gh_assist_bash_autocomplete() {
  if [[ "${COMP_WORDS[0]}" != "source" ]]; then
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    local cmd_context=("${COMP_WORDS[@]:0:$COMP_CWORD}")
    opts=$( "${cmd_context[@]}" --generate-shell-completion )
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
  fi
}

complete -o bashdefault -o default -o nospace -F _gh_assist_bash_autocomplete gh-assist
`

const zshCompletionScript = `#compdef gh-assist

_gh_assist() {
  local -a opts
  local cmd_context=("${(@)words[1,$CURRENT-1]}")
  opts=("${(@f)$("${cmd_context[@]}" --generate-shell-completion)}")
  _describe 'values' opts
}

compdef _gh_assist gh-assist
`

const installMarker = "# gh-assist shell completion"

const installBlock = `
` + installMarker + `
if command -v gh-assist >/dev/null 2>&1; then
	source <(gh-assist completion %s)
fi
`

// Installer appends the completion hook to the user's shell rc file.
type Installer struct {
	Shell string
	Home  string
}

// NewInstaller reads $SHELL and the home directory of the current user.
func NewInstaller() (*Installer, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Installer{Shell: os.Getenv("SHELL"), Home: home}, nil
}

// Target returns the rc file and shell name, or ok=false for shells without
// a script.
func (i *Installer) Target() (file, shell string, ok bool) {
	switch {
	case strings.Contains(i.Shell, "zsh"):
		return filepath.Join(i.Home, ".zshrc"), "zsh", true
	case strings.Contains(i.Shell, "bash"):
		return filepath.Join(i.Home, ".bashrc"), "bash", true
	default:
		return "", "", false
	}
}

// Install writes the hook once. It reports false when the hook was already
// present.
func (i *Installer) Install(file, shell string) (bool, error) {
	existing, err := os.ReadFile(file)
	if err == nil && strings.Contains(string(existing), installMarker) {
		return false, nil
	}

	f, err := os.OpenFile(file, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintf(f, installBlock, shell); err != nil {
		return false, err
	}
	return true, nil
}

type InstallerProvider func() (*Installer, error)

func NewCompletionCommand(t *i18n.Translations) *cli.Command {
	return newCompletionCommand(t, NewInstaller)
}

func newCompletionCommand(t *i18n.Translations, newInstaller InstallerProvider) *cli.Command {
	script := func(body string) cli.ActionFunc {
		return func(_ context.Context, cmd *cli.Command) error {
			_, err := io.WriteString(cmd.Root().Writer, body)
			return err
		}
	}

	return &cli.Command{
		Name:        "completion",
		Usage:       t.GetMessage("completion.command_usage", 0, nil),
		Description: t.GetMessage("completion.command_description", 0, nil),
		Commands: []*cli.Command{
			{
				Name:   "bash",
				Usage:  t.GetMessage("completion.bash_usage", 0, nil),
				Action: script(bashCompletionScript),
			},
			{
				Name:   "zsh",
				Usage:  t.GetMessage("completion.zsh_usage", 0, nil),
				Action: script(zshCompletionScript),
			},
			{
				Name:  "install",
				Usage: t.GetMessage("completion.install_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					w := cmd.Root().Writer
					installer, err := newInstaller()
					if err != nil {
						return fmt.Errorf("%s", t.GetMessage("completion.error_home_dir", 0, map[string]interface{}{"Error": err.Error()}))
					}

					file, shell, ok := installer.Target()
					if !ok {
						return fmt.Errorf("%s", t.GetMessage("completion.error_unsupported_shell", 0, map[string]interface{}{"Shell": installer.Shell}))
					}

					written, err := installer.Install(file, shell)
					if err != nil {
						logger.Error(ctx, "failed to install shell completion", err, "file", file)
						return fmt.Errorf("%s", t.GetMessage("completion.error_write_config", 0, map[string]interface{}{"Error": err.Error()}))
					}

					msg := "completion.installed_success"
					if !written {
						msg = "completion.already_installed"
					}
					_, _ = fmt.Fprintln(w, t.GetMessage(msg, 0, map[string]interface{}{"File": file}))
					_, _ = fmt.Fprintln(w, t.GetMessage("completion.restart_shell", 0, nil))
					_, _ = fmt.Fprintf(w, "  source %s\n", file)
					return nil
				},
			},
		},
	}
}
