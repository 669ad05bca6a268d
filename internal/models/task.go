package models

// Task identifies which prompt template and interpretation a request uses.
type Task string

const (
	TaskCommitMessage      Task = "commit-message"
	TaskCodeReview         Task = "code-review"
	TaskPRDescription      Task = "pr-description"
	TaskPRReview           Task = "pr-review"
	TaskIssueTriage        Task = "issue-triage"
	TaskDiffExplanation    Task = "diff-explanation"
	TaskQuestionAnswer     Task = "question-answer"
	TaskBranchName         Task = "branch-name-suggestion"
	TaskLabelSuggestion    Task = "label-suggestion"
	TaskRepositoryAnalysis Task = "repository-analysis"
)

// Structured reports whether the model is asked for a JSON record.
func (t Task) Structured() bool {
	switch t {
	case TaskCodeReview, TaskPRReview, TaskIssueTriage, TaskLabelSuggestion:
		return true
	default:
		return false
	}
}

// PromptRequest carries everything a template needs. It is built once and
// discarded after the model call.
type PromptRequest struct {
	Task      Task
	Text      string
	Context   string
	Budget    int
	Truncated bool

	Title        string
	Body         string
	BranchName   string
	Commits      []string
	FilesChanged int
	Language     string
}

// Completion is what a model client returns for one prompt.
type Completion struct {
	Text  string
	Model string
	Usage *TokenUsage
}

// ModelResponse is the raw model text tagged with the task that produced it.
type ModelResponse struct {
	Task  Task
	Text  string
	Usage *TokenUsage
}
