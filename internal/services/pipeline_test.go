package services

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/thomas-vilte/gh-assist/internal/ai"
	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testModel = "claude-3-5-sonnet-20241022"

var testRepo = models.RepoRef{Owner: "acme", Name: "api"}

type fixture struct {
	changes *MockChangeSource
	history *MockBranchHistory
	pulls   *MockPullRequestReader
	client  *ai.MockModelClient
	p       *Pipeline
}

func newFixture(builder *ai.PromptBuilder) fixture {
	f := fixture{
		changes: &MockChangeSource{},
		history: &MockBranchHistory{},
		pulls:   &MockPullRequestReader{},
		client:  &ai.MockModelClient{},
	}
	f.client.On("ProviderName").Return("anthropic").Maybe()
	f.p = NewPipeline(
		WithChangeSource(f.changes),
		WithBranchHistory(f.history),
		WithPullRequestReader(f.pulls),
		WithPromptBuilder(builder),
		WithInvoker(ai.NewInvoker(f.client, testModel)),
	)
	return f
}

func completion(text string) models.Completion {
	return models.Completion{Text: text, Model: testModel}
}

func TestPipeline_CommitMessage(t *testing.T) {
	t.Run("should embed the diff unmodified and return the model text", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))

		lines := make([]string, 0, 10)
		for i := 0; i < 10; i++ {
			lines = append(lines, "+line "+string(rune('a'+i)))
		}
		diff := "diff --git a/api/login.go b/api/login.go\n" + strings.Join(lines, "\n")
		f.changes.On("Local", mock.Anything, true).
			Return(models.ChangeSet{Text: diff, Origin: models.OriginStaged}, nil)

		var sent string
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, ai.MaxTokens(models.TaskCommitMessage)).
			Run(func(args mock.Arguments) { sent = args.String(1) }).
			Return(completion("feat: add login endpoint"), nil).Once()

		msg, _, err := f.p.CommitMessage(context.Background(), true, "")

		require.NoError(t, err)
		assert.Equal(t, "feat: add login endpoint", msg)
		assert.Contains(t, sent, diff)
		assert.Contains(t, sent, "Respond with ONLY the commit message")
		f.client.AssertExpectations(t)
	})

	t.Run("should stop before the model when there are no changes", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.changes.On("Local", mock.Anything, false).
			Return(models.ChangeSet{Origin: models.OriginWorkingTree}, nil)

		_, usage, err := f.p.CommitMessage(context.Background(), false, "")

		assert.ErrorIs(t, err, errors.ErrNoChanges)
		assert.Nil(t, usage)
		f.client.AssertNumberOfCalls(t, "Complete", 0)
	})

	t.Run("should report a failed model call as model unavailable", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.changes.On("Local", mock.Anything, true).
			Return(models.ChangeSet{Text: "diff", Origin: models.OriginStaged}, nil)
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, mock.Anything).
			Return(models.Completion{}, stderrors.New("connection reset"))

		msg, _, err := f.p.CommitMessage(context.Background(), true, "")

		assert.ErrorIs(t, err, errors.ErrModelUnavailable)
		assert.Empty(t, msg)
	})

	t.Run("should pass usage through with its cost", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.changes.On("Local", mock.Anything, true).
			Return(models.ChangeSet{Text: "diff", Origin: models.OriginStaged}, nil)
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, mock.Anything).
			Return(models.Completion{
				Text:  "fix: typo",
				Model: testModel,
				Usage: &models.TokenUsage{InputTokens: 100, OutputTokens: 10},
			}, nil)

		_, usage, err := f.p.CommitMessage(context.Background(), true, "")

		require.NoError(t, err)
		require.NotNil(t, usage)
		assert.Equal(t, 110, usage.TotalTokens)
	})
}

func TestPipeline_CommitMessageStyle(t *testing.T) {
	t.Run("should show recent commits as a style reference", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		history := &MockCommitLog{}
		history.On("RecentCommitMessages", mock.Anything, recentCommitCount).
			Return([]string{"fix(api): handle empty body", "feat(ui): add dark mode"}, nil)
		WithCommitLog(history)(f.p)
		f.changes.On("Local", mock.Anything, true).
			Return(models.ChangeSet{Text: "+x", Origin: models.OriginStaged}, nil)

		var sent string
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.String(1) }).
			Return(completion("fix(api): trim input"), nil).Once()

		_, _, err := f.p.CommitMessage(context.Background(), true, "")

		require.NoError(t, err)
		assert.Contains(t, sent, "- fix(api): handle empty body\n- feat(ui): add dark mode")
	})

	t.Run("should still write the message without history", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		history := &MockCommitLog{}
		history.On("RecentCommitMessages", mock.Anything, recentCommitCount).
			Return(nil, errors.ErrGetDiff)
		WithCommitLog(history)(f.p)
		f.changes.On("Local", mock.Anything, false).
			Return(models.ChangeSet{Text: "+x", Origin: models.OriginWorkingTree}, nil)
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, mock.Anything).
			Return(completion("chore: first commit"), nil).Once()

		msg, _, err := f.p.CommitMessage(context.Background(), false, "")

		require.NoError(t, err)
		assert.Equal(t, "chore: first commit", msg)
	})
}

func TestPipeline_ReviewChanges(t *testing.T) {
	t.Run("should bound oversized diffs and mention the truncation", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(20, 0, ""))
		diff := strings.Repeat("x", 50)
		f.changes.On("Local", mock.Anything, false).
			Return(models.ChangeSet{Text: diff, Origin: models.OriginWorkingTree}, nil)

		var sent string
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.String(1) }).
			Return(completion(`{"summary":"ok","issues":[],"suggestions":[]}`), nil)

		review, _, err := f.p.ReviewChanges(context.Background(), false, "auth module")

		require.NoError(t, err)
		assert.Equal(t, "ok", review.Summary)
		assert.False(t, review.ParseError)
		assert.Contains(t, sent, strings.Repeat("x", 20)+ai.TruncationMarker)
		assert.NotContains(t, sent, strings.Repeat("x", 21))
		assert.Contains(t, sent, "Note: Diff was truncated due to size.")
		assert.Contains(t, sent, "auth module")
	})

	t.Run("should degrade to the raw text when the model ignores the format", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.changes.On("Local", mock.Anything, true).
			Return(models.ChangeSet{Text: "diff", Origin: models.OriginStaged}, nil)
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, mock.Anything).
			Return(completion("not json at all"), nil)

		review, _, err := f.p.ReviewChanges(context.Background(), true, "")

		require.NoError(t, err)
		assert.True(t, review.ParseError)
		assert.Equal(t, "not json at all", review.Summary)
	})
}

func TestPipeline_ExplainChanges(t *testing.T) {
	t.Run("should return the explanation", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.changes.On("Local", mock.Anything, true).
			Return(models.ChangeSet{Text: "diff", Origin: models.OriginStaged}, nil)
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, ai.MaxTokens(models.TaskDiffExplanation)).
			Return(completion("  Adds a login endpoint.  "), nil)

		text, _, err := f.p.ExplainChanges(context.Background(), true)

		require.NoError(t, err)
		assert.Equal(t, "Adds a login endpoint.", text)
	})
}

func TestPipeline_ReviewPullRequest(t *testing.T) {
	t.Run("should stop before the model for a pull request without files", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.changes.On("PullRequest", mock.Anything, testRepo, 7).
			Return(models.ChangeSet{Origin: models.OriginPullRequest}, nil)

		_, _, err := f.p.ReviewPullRequest(context.Background(), testRepo, 7)

		assert.ErrorIs(t, err, errors.ErrNoChanges)
		f.client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.pulls.AssertNotCalled(t, "GetPullRequest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should include the pull request metadata", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.changes.On("PullRequest", mock.Anything, testRepo, 7).Return(models.ChangeSet{
			Text:   "\n--- a.go ---\nStatus: modified\nChanges: +1 -1\n",
			Origin: models.OriginPullRequest,
			Files:  []models.ChangedFile{{Filename: "a.go"}},
		}, nil)
		f.pulls.On("GetPullRequest", mock.Anything, testRepo, 7).
			Return(models.PullRequest{Number: 7, Title: "Add login", Body: "Closes #3"}, nil)

		var sent string
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, ai.MaxTokens(models.TaskPRReview)).
			Run(func(args mock.Arguments) { sent = args.String(1) }).
			Return(completion("```json\n{\"overall_assessment\":\"solid\",\"recommendation\":\"approve\"}\n```"), nil)

		review, _, err := f.p.ReviewPullRequest(context.Background(), testRepo, 7)

		require.NoError(t, err)
		assert.Equal(t, "solid", review.OverallAssessment)
		assert.Equal(t, "approve", review.Recommendation)
		assert.Contains(t, sent, "PR Title: Add login")
		assert.Contains(t, sent, "Files Changed: 1")
	})

	t.Run("should propagate not found without calling the model", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.changes.On("PullRequest", mock.Anything, testRepo, 404).
			Return(models.ChangeSet{}, errors.ErrPullRequestNotFound)

		_, _, err := f.p.ReviewPullRequest(context.Background(), testRepo, 404)

		assert.ErrorIs(t, err, errors.ErrNotFound)
		f.client.AssertNumberOfCalls(t, "Complete", 0)
	})
}

func TestPipeline_DescribePullRequest(t *testing.T) {
	t.Run("should describe the remote diff with its branch", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.changes.On("PullRequest", mock.Anything, testRepo, 3).Return(models.ChangeSet{
			Text:   "diff",
			Origin: models.OriginPullRequest,
			Files:  []models.ChangedFile{{Filename: "a.go"}},
		}, nil)
		f.pulls.On("GetPullRequest", mock.Anything, testRepo, 3).
			Return(models.PullRequest{Title: "Add login", HeadBranch: "feat/login"}, nil)

		var sent string
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, ai.MaxTokens(models.TaskPRDescription)).
			Run(func(args mock.Arguments) { sent = args.String(1) }).
			Return(completion("## Summary\nAdds login."), nil)

		text, _, err := f.p.DescribePullRequest(context.Background(), testRepo, 3)

		require.NoError(t, err)
		assert.Equal(t, "## Summary\nAdds login.", text)
		assert.Contains(t, sent, "Branch: feat/login")
	})
}

func TestPipeline_DescribeBranch(t *testing.T) {
	t.Run("should describe the branch diff and its commits", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.history.On("BranchCommits", mock.Anything, "main", "feat/login").
			Return([]string{"feat: add handler", "test: cover handler"}, nil)
		f.changes.On("Branch", mock.Anything, "main", "feat/login").
			Return(models.ChangeSet{Text: "branch diff", Origin: models.OriginBranch}, nil)

		var sent string
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.String(1) }).
			Return(completion("## Summary"), nil)

		_, _, err := f.p.DescribeBranch(context.Background(), "main", "feat/login")

		require.NoError(t, err)
		assert.Contains(t, sent, "branch diff")
		assert.Contains(t, sent, "- feat: add handler")
		f.changes.AssertNotCalled(t, "LocalAny", mock.Anything)
	})

	t.Run("should fall back to local changes when the branch has no commits", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.history.On("BranchCommits", mock.Anything, "main", "feat/login").Return([]string{}, nil)
		f.changes.On("LocalAny", mock.Anything).
			Return(models.ChangeSet{Text: "staged diff", Origin: models.OriginStaged}, nil)
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, mock.Anything).
			Return(completion("## Summary"), nil)

		text, _, err := f.p.DescribeBranch(context.Background(), "main", "feat/login")

		require.NoError(t, err)
		assert.Equal(t, "## Summary", text)
		f.changes.AssertNotCalled(t, "Branch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should report no changes when nothing differs", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.history.On("BranchCommits", mock.Anything, "main", "main").Return([]string{}, nil)
		f.changes.On("LocalAny", mock.Anything).Return(models.ChangeSet{Origin: models.OriginStaged}, nil)

		_, _, err := f.p.DescribeBranch(context.Background(), "main", "main")

		assert.ErrorIs(t, err, errors.ErrNoChanges)
		f.client.AssertNumberOfCalls(t, "Complete", 0)
	})
}

func TestPipeline_InputValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ai.NewPromptBuilder(0, 0, ""))

	t.Run("should reject an empty question", func(t *testing.T) {
		_, _, err := f.p.Ask(ctx, "   ", "")
		assert.ErrorIs(t, err, errors.ErrEmptyQuestion)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("should reject an empty branch description", func(t *testing.T) {
		_, _, err := f.p.SuggestBranchName(ctx, "")
		assert.ErrorIs(t, err, errors.ErrEmptyDescription)
	})

	t.Run("should reject an issue without title", func(t *testing.T) {
		_, _, err := f.p.TriageIssue(ctx, "", "body")
		assert.ErrorIs(t, err, errors.ErrEmptyIssue)

		_, _, err = f.p.SuggestLabels(ctx, " ", "body")
		assert.ErrorIs(t, err, errors.ErrEmptyIssue)
	})

	f.client.AssertNumberOfCalls(t, "Complete", 0)
}

func TestPipeline_TextTasks(t *testing.T) {
	t.Run("should clean up branch names", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, ai.MaxTokens(models.TaskBranchName)).
			Return(completion("`feature/Add User Login`\nBecause..."), nil)

		name, _, err := f.p.SuggestBranchName(context.Background(), "add user login")

		require.NoError(t, err)
		assert.Equal(t, "feature/add-user-login", name)
	})

	t.Run("should answer questions with context", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, "Spanish"))
		var sent string
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.String(1) }).
			Return(completion("Usá git rebase -i."), nil)

		answer, _, err := f.p.Ask(context.Background(), "how do I squash?", "three commits")

		require.NoError(t, err)
		assert.Equal(t, "Usá git rebase -i.", answer)
		assert.Contains(t, sent, "how do I squash?")
		assert.Contains(t, sent, "three commits")
		assert.Contains(t, sent, "Spanish")
	})

	t.Run("should analyze a repository summary", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		var sent string
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, ai.MaxTokens(models.TaskRepositoryAnalysis)).
			Run(func(args mock.Arguments) { sent = args.String(1) }).
			Return(completion("Healthy."), nil)

		text, _, err := f.p.AnalyzeRepository(context.Background(), models.RepoSummary{
			FullName:      "acme/api",
			Language:      "Go",
			RecentCommits: []string{"feat: add login"},
		})

		require.NoError(t, err)
		assert.Equal(t, "Healthy.", text)
		assert.Contains(t, sent, "Name: acme/api")
		assert.Contains(t, sent, "- feat: add login")
	})
}

func TestPipeline_StructuredIssueTasks(t *testing.T) {
	t.Run("should triage an issue", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, ai.MaxTokens(models.TaskIssueTriage)).
			Return(completion(`Here: {"priority":"high","category":"bug","suggested_labels":["Bug"," crash "]}`), nil)

		triage, _, err := f.p.TriageIssue(context.Background(), "App crashes on start", "")

		require.NoError(t, err)
		assert.Equal(t, "high", triage.Priority)
		assert.Equal(t, []string{"bug", "crash"}, triage.SuggestedLabels)
	})

	t.Run("should suggest labels from a plain list", func(t *testing.T) {
		f := newFixture(ai.NewPromptBuilder(0, 0, ""))
		f.client.On("Complete", mock.Anything, mock.Anything, testModel, ai.MaxTokens(models.TaskLabelSuggestion)).
			Return(completion("bug, ui, Bug"), nil)

		labels, _, err := f.p.SuggestLabels(context.Background(), "Button misaligned", "")

		require.NoError(t, err)
		assert.Equal(t, []string{"bug", "ui"}, labels.Labels)
	})
}

func TestFormatRepoSummary(t *testing.T) {
	t.Run("should skip empty optional fields", func(t *testing.T) {
		text := FormatRepoSummary(models.RepoSummary{
			FullName:  "acme/api",
			Stars:     3,
			Topics:    []string{"cli", "git"},
			CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		})

		assert.Contains(t, text, "Name: acme/api")
		assert.Contains(t, text, "Stars: 3")
		assert.Contains(t, text, "Topics: cli, git")
		assert.Contains(t, text, "Created: 2024-03-01")
		assert.NotContains(t, text, "Description")
		assert.NotContains(t, text, "Recent commits")
	})
}
