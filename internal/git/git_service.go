package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/regex"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// GitService wraps the git binary. Every method runs in dir (the process
// working directory when empty).
type GitService struct {
	executor CommandExecutor
	dir      string
}

type Option func(*GitService)

func WithExecutor(e CommandExecutor) Option {
	return func(s *GitService) {
		s.executor = e
	}
}

func WithDir(dir string) Option {
	return func(s *GitService) {
		s.dir = dir
	}
}

func NewGitService(opts ...Option) *GitService {
	s := &GitService{executor: NewRealExecutor()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run returns trimmed-right stdout. Failures carry git's stderr and are
// reported as ErrNotInGitRepo when git says so.
func (s *GitService) run(ctx context.Context, base *errors.AppError, args ...string) (string, error) {
	stdout, stderr, err := s.executor.Run(ctx, s.dir, "git", args...)
	if err == nil {
		return strings.TrimRight(string(stdout), "\n"), nil
	}

	msg := strings.TrimSpace(string(stderr))
	logger.Debug(ctx, "git command failed",
		"args", strings.Join(args, " "),
		"stderr", msg,
		"error", err)

	if strings.Contains(strings.ToLower(msg), "not a git repository") {
		base = errors.ErrNotInGitRepo
	}
	return "", base.WithError(err).
		WithContext("command", "git "+args[0]).
		WithContext("stderr", stderrSummary(msg))
}

// stderrSummary keeps the first fatal or error line of git's stderr, or its
// first line. Usage screens stay in the debug log.
func stderrSummary(stderr string) string {
	lines := splitLines(stderr)
	for _, line := range lines {
		if strings.HasPrefix(line, "fatal:") || strings.HasPrefix(line, "error:") {
			return line
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// GetDiff returns the staged or the unstaged diff. No changes is an empty
// string, not an error.
func (s *GitService) GetDiff(ctx context.Context, staged bool) (string, error) {
	args := []string{"diff", "--no-color", "--no-ext-diff"}
	if staged {
		args = append(args, "--cached")
	}
	out, err := s.run(ctx, errors.ErrGetDiff, args...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", nil
	}
	return out + "\n", nil
}

// GetStagedOrWorkingChangeset prefers the staged diff and falls back to the
// working tree. The origin tells which one was read.
func (s *GitService) GetStagedOrWorkingChangeset(ctx context.Context) (string, models.Origin, error) {
	diff, err := s.GetDiff(ctx, true)
	if err != nil || diff != "" {
		return diff, models.OriginStaged, err
	}
	diff, err = s.GetDiff(ctx, false)
	return diff, models.OriginWorkingTree, err
}

// BranchDiff is the diff of head against its merge base with base.
func (s *GitService) BranchDiff(ctx context.Context, base, head string) (string, error) {
	out, err := s.run(ctx, errors.ErrGetDiff, "diff", "--no-color", "--no-ext-diff", base+"..."+head)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", nil
	}
	return out + "\n", nil
}

// BranchCommits lists the subjects of commits on head that are not on base,
// newest first.
func (s *GitService) BranchCommits(ctx context.Context, base, head string) ([]string, error) {
	out, err := s.run(ctx, errors.ErrGetLog, "log", "--no-merges", "--pretty=format:%s", base+".."+head)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func (s *GitService) HasStagedChanges(ctx context.Context) bool {
	_, _, err := s.executor.Run(ctx, s.dir, "git", "diff", "--cached", "--quiet")

	// exit status 1 means there are staged changes
	var exitErr *exec.ExitError
	return stderrors.As(err, &exitErr) && exitErr.ExitCode() == 1
}

func (s *GitService) Status(ctx context.Context) (models.StatusReport, error) {
	out, err := s.run(ctx, errors.ErrGetStatus, "status", "--porcelain=v1", "--branch", "--untracked-files=all")
	if err != nil {
		return models.StatusReport{}, err
	}
	return parseStatus(out), nil
}

func parseStatus(out string) models.StatusReport {
	report := models.StatusReport{
		Staged:    []string{},
		Modified:  []string{},
		Untracked: []string{},
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "## ") {
			report.Branch = parseBranchHeader(line[3:])
			continue
		}
		if len(line) < 4 {
			continue
		}

		x, y, path := line[0], line[1], line[3:]
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}

		if x == '?' && y == '?' {
			report.Untracked = append(report.Untracked, path)
			continue
		}
		if x != ' ' {
			report.Staged = append(report.Staged, path)
		}
		if y != ' ' {
			report.Modified = append(report.Modified, path)
		}
	}
	return report
}

// parseBranchHeader reads "main...origin/main [ahead 1]" or
// "No commits yet on main".
func parseBranchHeader(h string) string {
	if rest, ok := strings.CutPrefix(h, "No commits yet on "); ok {
		return rest
	}
	if i := strings.Index(h, "..."); i >= 0 {
		return h[:i]
	}
	if i := strings.IndexByte(h, ' '); i >= 0 {
		return h[:i]
	}
	return h
}

// Log returns the last count commits, newest first.
func (s *GitService) Log(ctx context.Context, count int) ([]models.Commit, error) {
	if count <= 0 {
		count = 10
	}
	format := "--pretty=format:%H" + fieldSep + "%an" + fieldSep + "%ad" + fieldSep + "%B" + recordSep
	out, err := s.run(ctx, errors.ErrGetLog, "log", "-n", strconv.Itoa(count), "--date=short", format)
	if err != nil {
		return nil, err
	}

	commits := make([]models.Commit, 0, count)
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		parts := strings.SplitN(record, fieldSep, 4)
		if len(parts) != 4 {
			continue
		}
		commits = append(commits, models.Commit{
			SHA:     parts[0],
			Author:  parts[1],
			Date:    parts[2],
			Message: strings.TrimSpace(parts[3]),
		})
	}
	return commits, nil
}

func (s *GitService) RecentCommitMessages(ctx context.Context, count int) ([]string, error) {
	out, err := s.run(ctx, errors.ErrGetLog, "log", "-n", strconv.Itoa(count), "--pretty=format:%s")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// Add stages files, or everything when all is set.
func (s *GitService) Add(ctx context.Context, files []string, all bool) error {
	args := []string{"add"}
	if all {
		args = append(args, "--all")
	} else {
		if len(files) == 0 {
			return errors.ErrAddFile.WithError(stderrors.New("no files given"))
		}
		args = append(append(args, "--"), files...)
	}

	_, err := s.run(ctx, errors.ErrAddFile, args...)
	return err
}

// Commit records the staged changes and returns the new commit's short sha.
func (s *GitService) Commit(ctx context.Context, message string) (string, error) {
	if !s.HasStagedChanges(ctx) {
		return "", errors.ErrNoChanges
	}

	if _, err := s.run(ctx, errors.ErrCreateCommit, "commit", "-m", message); err != nil {
		return "", err
	}
	return s.run(ctx, errors.ErrCreateCommit, "rev-parse", "--short", "HEAD")
}

func (s *GitService) CreateBranch(ctx context.Context, name string, checkout bool) error {
	args := []string{"branch", name}
	if checkout {
		args = []string{"checkout", "-b", name}
	}
	_, err := s.run(ctx, errors.ErrCreateBranch, args...)
	return err
}

func (s *GitService) Checkout(ctx context.Context, name string) error {
	_, err := s.run(ctx, errors.ErrCheckout, "checkout", name)
	return err
}

func (s *GitService) CurrentBranch(ctx context.Context) (string, error) {
	out, err := s.run(ctx, errors.ErrGetBranch, "branch", "--show-current")
	if err != nil {
		return "", err
	}

	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", errors.ErrNoBranch
	}
	return branch, nil
}

// Push returns git's own report of what was pushed.
func (s *GitService) Push(ctx context.Context, remote, branch string, setUpstream, force bool) (string, error) {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "--set-upstream")
	}
	if force {
		args = append(args, "--force")
	}
	args = append(args, remote)
	if branch != "" {
		args = append(args, branch)
	}
	return s.runReport(ctx, errors.ErrPush, args...)
}

func (s *GitService) Pull(ctx context.Context, remote, branch string, rebase bool) (string, error) {
	args := []string{"pull"}
	if rebase {
		args = append(args, "--rebase")
	}
	args = append(args, remote)
	if branch != "" {
		args = append(args, branch)
	}
	return s.runReport(ctx, errors.ErrPull, args...)
}

// Clone clones url into dir (git's default directory when empty).
func (s *GitService) Clone(ctx context.Context, url, dir string) error {
	args := []string{"clone", url}
	if dir != "" {
		args = append(args, dir)
	}
	_, err := s.run(ctx, errors.ErrClone, args...)
	return err
}

// runReport is run for commands that print their progress on stderr.
func (s *GitService) runReport(ctx context.Context, base *errors.AppError, args ...string) (string, error) {
	stdout, stderr, err := s.executor.Run(ctx, s.dir, "git", args...)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		logger.Debug(ctx, "git command failed", "args", strings.Join(args, " "), "stderr", msg, "error", err)
		return "", base.WithError(err).
			WithContext("command", "git "+args[0]).
			WithContext("stderr", stderrSummary(msg))
	}
	return strings.TrimSpace(string(stdout) + "\n" + string(stderr)), nil
}

func (s *GitService) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := s.run(ctx, errors.ErrGetRepoURL, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RepoRef resolves owner/name from the origin remote.
func (s *GitService) RepoRef(ctx context.Context) (models.RepoRef, error) {
	url, err := s.RemoteURL(ctx, "origin")
	if err != nil {
		return models.RepoRef{}, err
	}
	return parseRepoURL(url)
}

func parseRepoURL(url string) (models.RepoRef, error) {
	var matches []string
	if m := regex.SSHRemote.FindStringSubmatch(url); m != nil {
		matches = m
	} else if m := regex.HTTPSRemote.FindStringSubmatch(url); m != nil {
		matches = m
	}

	if len(matches) < 4 || strings.Contains(matches[3], "/") {
		return models.RepoRef{}, errors.ErrExtractRepoInfo.
			WithError(fmt.Errorf("unrecognized remote url %q", url)).
			WithContext("url", url)
	}
	return models.RepoRef{Owner: matches[2], Name: matches[3]}, nil
}

func splitLines(out string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
