package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/ai"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/logger"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

// changeSource defines the change-set extraction the pipeline needs.
type changeSource interface {
	Local(ctx context.Context, staged bool) (models.ChangeSet, error)
	LocalAny(ctx context.Context) (models.ChangeSet, error)
	Branch(ctx context.Context, base, head string) (models.ChangeSet, error)
	PullRequest(ctx context.Context, repo models.RepoRef, number int) (models.ChangeSet, error)
}

// branchHistory lists the commit subjects a branch adds on top of its base.
type branchHistory interface {
	BranchCommits(ctx context.Context, base, head string) ([]string, error)
}

// commitLog lists recent commit subjects, used as a style reference for new
// commit messages.
type commitLog interface {
	RecentCommitMessages(ctx context.Context, count int) ([]string, error)
}

// pullRequestReader provides the metadata shown next to a pull request diff.
type pullRequestReader interface {
	GetPullRequest(ctx context.Context, repo models.RepoRef, number int) (models.PullRequest, error)
}

type modelInvoker interface {
	Invoke(ctx context.Context, task models.Task, prompt string) (models.ModelResponse, error)
}

const recentCommitCount = 5

// Pipeline runs extract, bound, prompt, invoke and interpret for every task.
// Each operation makes at most one model call and keeps no state between
// calls.
type Pipeline struct {
	changes changeSource
	history branchHistory
	log     commitLog
	pulls   pullRequestReader
	builder *ai.PromptBuilder
	invoker modelInvoker
}

type PipelineOption func(*Pipeline)

func WithChangeSource(c changeSource) PipelineOption {
	return func(p *Pipeline) {
		p.changes = c
	}
}

func WithBranchHistory(h branchHistory) PipelineOption {
	return func(p *Pipeline) {
		p.history = h
	}
}

func WithCommitLog(l commitLog) PipelineOption {
	return func(p *Pipeline) {
		p.log = l
	}
}

func WithPullRequestReader(r pullRequestReader) PipelineOption {
	return func(p *Pipeline) {
		p.pulls = r
	}
}

func WithPromptBuilder(b *ai.PromptBuilder) PipelineOption {
	return func(p *Pipeline) {
		p.builder = b
	}
}

func WithInvoker(i modelInvoker) PipelineOption {
	return func(p *Pipeline) {
		p.invoker = i
	}
}

func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.builder == nil {
		p.builder = ai.NewPromptBuilder(0, 0, "")
	}
	return p
}

// CommitMessage proposes a commit message for the local changes.
func (p *Pipeline) CommitMessage(ctx context.Context, staged bool, extraContext string) (string, *models.TokenUsage, error) {
	cs, err := p.local(ctx, staged)
	if err != nil {
		return "", nil, err
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task:    models.TaskCommitMessage,
		Text:    cs.Text,
		Context: extraContext,
		Commits: p.recentCommits(ctx),
	})
	if err != nil {
		return "", nil, err
	}
	return ai.InterpretText(resp.Task, resp.Text), resp.Usage, nil
}

// recentCommits is best effort: a fresh repository has no history.
func (p *Pipeline) recentCommits(ctx context.Context) []string {
	if p.log == nil {
		return nil
	}
	commits, err := p.log.RecentCommitMessages(ctx, recentCommitCount)
	if err != nil {
		logger.Debug(ctx, "recent commits unavailable", "error", err)
		return nil
	}
	return commits
}

func (p *Pipeline) ReviewChanges(ctx context.Context, staged bool, extraContext string) (models.Review, *models.TokenUsage, error) {
	cs, err := p.local(ctx, staged)
	if err != nil {
		return models.Review{}, nil, err
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task:    models.TaskCodeReview,
		Text:    cs.Text,
		Context: extraContext,
	})
	if err != nil {
		return models.Review{}, nil, err
	}
	return ai.InterpretReview(resp.Text), resp.Usage, nil
}

func (p *Pipeline) ExplainChanges(ctx context.Context, staged bool) (string, *models.TokenUsage, error) {
	cs, err := p.local(ctx, staged)
	if err != nil {
		return "", nil, err
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task: models.TaskDiffExplanation,
		Text: cs.Text,
	})
	if err != nil {
		return "", nil, err
	}
	return ai.InterpretText(resp.Task, resp.Text), resp.Usage, nil
}

func (p *Pipeline) ReviewPullRequest(ctx context.Context, repo models.RepoRef, number int) (models.PRReview, *models.TokenUsage, error) {
	cs, pr, err := p.pullRequest(ctx, repo, number)
	if err != nil {
		return models.PRReview{}, nil, err
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task:         models.TaskPRReview,
		Text:         cs.Text,
		Title:        pr.Title,
		Body:         pr.Body,
		FilesChanged: len(cs.Files),
	})
	if err != nil {
		return models.PRReview{}, nil, err
	}
	return ai.InterpretPRReview(resp.Text), resp.Usage, nil
}

// DescribePullRequest writes a description for an existing remote pull request.
func (p *Pipeline) DescribePullRequest(ctx context.Context, repo models.RepoRef, number int) (string, *models.TokenUsage, error) {
	cs, pr, err := p.pullRequest(ctx, repo, number)
	if err != nil {
		return "", nil, err
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task:         models.TaskPRDescription,
		Text:         cs.Text,
		Title:        pr.Title,
		BranchName:   pr.HeadBranch,
		FilesChanged: len(cs.Files),
	})
	if err != nil {
		return "", nil, err
	}
	return ai.InterpretText(resp.Task, resp.Text), resp.Usage, nil
}

// DescribeBranch writes a pull request description for head before it is
// opened. When head has no commits of its own the staged or working-tree
// changes are described instead.
func (p *Pipeline) DescribeBranch(ctx context.Context, base, head string) (string, *models.TokenUsage, error) {
	var (
		commits []string
		cs      models.ChangeSet
		err     error
	)
	if p.history != nil {
		commits, err = p.history.BranchCommits(ctx, base, head)
		if err != nil {
			return "", nil, err
		}
	}

	if len(commits) > 0 {
		cs, err = p.changes.Branch(ctx, base, head)
	} else {
		logger.Debug(ctx, "branch has no commits of its own, describing local changes",
			"base", base,
			"head", head)
		cs, err = p.changes.LocalAny(ctx)
	}
	if err != nil {
		return "", nil, err
	}
	if cs.IsEmpty() {
		return "", nil, errors.ErrNoChanges.WithContext("origin", string(cs.Origin))
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task:       models.TaskPRDescription,
		Text:       cs.Text,
		BranchName: head,
		Commits:    commits,
	})
	if err != nil {
		return "", nil, err
	}
	return ai.InterpretText(resp.Task, resp.Text), resp.Usage, nil
}

func (p *Pipeline) SuggestBranchName(ctx context.Context, description string) (string, *models.TokenUsage, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", nil, errors.ErrEmptyDescription
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task: models.TaskBranchName,
		Text: description,
	})
	if err != nil {
		return "", nil, err
	}
	return ai.InterpretText(resp.Task, resp.Text), resp.Usage, nil
}

func (p *Pipeline) TriageIssue(ctx context.Context, title, body string) (models.Triage, *models.TokenUsage, error) {
	if strings.TrimSpace(title) == "" {
		return models.Triage{}, nil, errors.ErrEmptyIssue
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task:  models.TaskIssueTriage,
		Title: title,
		Body:  body,
	})
	if err != nil {
		return models.Triage{}, nil, err
	}
	return ai.InterpretTriage(resp.Text), resp.Usage, nil
}

func (p *Pipeline) SuggestLabels(ctx context.Context, title, body string) (models.Labels, *models.TokenUsage, error) {
	if strings.TrimSpace(title) == "" {
		return models.Labels{}, nil, errors.ErrEmptyIssue
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task:  models.TaskLabelSuggestion,
		Title: title,
		Body:  body,
	})
	if err != nil {
		return models.Labels{}, nil, err
	}
	return ai.InterpretLabels(resp.Text), resp.Usage, nil
}

func (p *Pipeline) Ask(ctx context.Context, question, extraContext string) (string, *models.TokenUsage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil, errors.ErrEmptyQuestion
	}

	resp, err := p.run(ctx, models.PromptRequest{
		Task:    models.TaskQuestionAnswer,
		Text:    question,
		Context: extraContext,
	})
	if err != nil {
		return "", nil, err
	}
	return ai.InterpretText(resp.Task, resp.Text), resp.Usage, nil
}

func (p *Pipeline) AnalyzeRepository(ctx context.Context, info models.RepoSummary) (string, *models.TokenUsage, error) {
	resp, err := p.run(ctx, models.PromptRequest{
		Task: models.TaskRepositoryAnalysis,
		Text: FormatRepoSummary(info),
	})
	if err != nil {
		return "", nil, err
	}
	return ai.InterpretText(resp.Task, resp.Text), resp.Usage, nil
}

func (p *Pipeline) local(ctx context.Context, staged bool) (models.ChangeSet, error) {
	cs, err := p.changes.Local(ctx, staged)
	if err != nil {
		return models.ChangeSet{}, err
	}
	if cs.IsEmpty() {
		return models.ChangeSet{}, errors.ErrNoChanges.WithContext("origin", string(cs.Origin))
	}
	return cs, nil
}

func (p *Pipeline) pullRequest(ctx context.Context, repo models.RepoRef, number int) (models.ChangeSet, models.PullRequest, error) {
	cs, err := p.changes.PullRequest(ctx, repo, number)
	if err != nil {
		return models.ChangeSet{}, models.PullRequest{}, err
	}
	if cs.IsEmpty() {
		return models.ChangeSet{}, models.PullRequest{}, errors.ErrNoChanges.
			WithContext("origin", string(cs.Origin)).
			WithContext("pr_number", number)
	}

	var pr models.PullRequest
	if p.pulls != nil {
		pr, err = p.pulls.GetPullRequest(ctx, repo, number)
		if err != nil {
			return models.ChangeSet{}, models.PullRequest{}, err
		}
	}
	return cs, pr, nil
}

func (p *Pipeline) run(ctx context.Context, req models.PromptRequest) (models.ModelResponse, error) {
	prompt, err := p.builder.Build(req)
	if err != nil {
		return models.ModelResponse{}, err
	}

	if prompt.Request.Truncated {
		logger.Warn(ctx, "change-set exceeds the task budget, truncating",
			"task", string(req.Task),
			"size", len([]rune(req.Text)),
			"budget", prompt.Request.Budget)
	}

	logger.Debug(ctx, "invoking model",
		"task", string(req.Task),
		"prompt_length", len(prompt.Text))

	return p.invoker.Invoke(ctx, req.Task, prompt.Text)
}

// FormatRepoSummary renders the repository snapshot as the plain text block
// the repository-analysis prompt embeds.
func FormatRepoSummary(s models.RepoSummary) string {
	var sb strings.Builder
	line := func(label string, value interface{}) {
		fmt.Fprintf(&sb, "%s: %v\n", label, value)
	}

	line("Name", s.FullName)
	if s.Description != "" {
		line("Description", s.Description)
	}
	if s.Language != "" {
		line("Language", s.Language)
	}
	line("Stars", s.Stars)
	line("Forks", s.Forks)
	line("Open issues", s.OpenIssues)
	line("Watchers", s.Watchers)
	if s.DefaultBranch != "" {
		line("Default branch", s.DefaultBranch)
	}
	if len(s.Topics) > 0 {
		line("Topics", strings.Join(s.Topics, ", "))
	}
	if s.License != "" {
		line("License", s.License)
	}
	if !s.CreatedAt.IsZero() {
		line("Created", s.CreatedAt.Format("2006-01-02"))
	}
	if !s.PushedAt.IsZero() {
		line("Last push", s.PushedAt.Format("2006-01-02"))
	}
	if s.Archived {
		line("Archived", "yes")
	}
	if s.Fork {
		line("Fork", "yes")
	}
	if len(s.RecentCommits) > 0 {
		sb.WriteString("Recent commits:\n")
		for _, c := range s.RecentCommits {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
