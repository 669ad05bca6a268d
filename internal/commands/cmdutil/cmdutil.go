// Package cmdutil holds the flag and argument handling shared by commands.
package cmdutil

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/ui"
	"github.com/urfave/cli/v3"
)

const RepoFlagName = "repo"

// RepoResolver finds the repository of the current checkout.
type RepoResolver interface {
	RepoRef(ctx context.Context) (models.RepoRef, error)
}

func RepoFlag(t *i18n.Translations) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    RepoFlagName,
		Aliases: []string{"R"},
		Usage:   t.GetMessage("flags.repo", 0, nil),
	}
}

// ResolveRepo prefers --repo and falls back to the origin remote.
func ResolveRepo(ctx context.Context, cmd *cli.Command, git RepoResolver) (models.RepoRef, error) {
	if value := cmd.String(RepoFlagName); value != "" {
		repo, err := models.ParseRepoRef(value)
		if err != nil {
			return models.RepoRef{}, errors.ErrInvalidRepository.WithError(err).WithContext("repo", value)
		}
		return repo, nil
	}
	return git.RepoRef(ctx)
}

// PositiveNumberArg parses the first argument as a pull request or issue number.
func PositiveNumberArg(cmd *cli.Command) (int, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return 0, errors.ErrMissingArgument.WithContext("argument", "number")
	}
	n, err := strconv.Atoi(strings.TrimPrefix(raw, "#"))
	if err != nil || n <= 0 {
		return 0, errors.ErrInvalidPRNumber.WithContext("value", raw)
	}
	return n, nil
}

// JoinedArgs returns every positional argument as one string.
func JoinedArgs(cmd *cli.Command) string {
	return strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
}

type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// Fail prints err for the user and returns it marked as reported, so the
// process exits non-zero without printing it twice.
func Fail(err error, t *i18n.Translations) error {
	if err == nil {
		return nil
	}
	ui.HandleAppError(err, t)
	return reportedError{err}
}

// Reported reports whether err was already printed by Fail.
func Reported(err error) bool {
	var r reportedError
	return stderrors.As(err, &r)
}

// IsNoChanges reports whether err only means there was nothing to work on.
func IsNoChanges(err error) bool {
	return stderrors.Is(err, errors.ErrNoChanges)
}
