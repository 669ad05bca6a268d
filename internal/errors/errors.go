package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeNoChanges     ErrorType = "NO_CHANGES"
	TypeAccess        ErrorType = "ACCESS"
	TypeNotFound      ErrorType = "NOT_FOUND"
	TypeModel         ErrorType = "MODEL"
	TypeGit           ErrorType = "GIT"
	TypeInvalidInput  ErrorType = "INVALID_INPUT"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if stderr, ok := e.Context["stderr"].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError of the same type. A target without a message
// matches every error of its type, so the kind sentinels below work with
// errors.Is regardless of which specific error was returned.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.Type != t.Type {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// TypeOf returns the ErrorType of the first AppError in the chain, or "" if there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Kinds. Match with errors.Is(err, ErrAccess) and friends.
var (
	ErrAccess           = &AppError{Type: TypeAccess}
	ErrNotFound         = &AppError{Type: TypeNotFound}
	ErrModelUnavailable = &AppError{Type: TypeModel}
	ErrInvalidInput     = &AppError{Type: TypeInvalidInput}
)

// ErrNoChanges is not a failure: the pipeline stops before calling the model.
var ErrNoChanges = NewAppError(TypeNoChanges, "No changes to process", nil).
	WithSuggestion("Make some changes or stage them with: git add <files>")

// Git errors
var (
	ErrNotInGitRepo = NewAppError(TypeAccess, "Not in a git repository", nil).
			WithSuggestion("Initialize a git repository: git init")

	ErrGetDiff = NewAppError(TypeGit, "Failed to get diff", nil).
			WithSuggestion("Check the repository state: git status")

	ErrGetStatus = NewAppError(TypeGit, "Failed to get repository status", nil)

	ErrGetLog = NewAppError(TypeGit, "Failed to read commit history", nil).
			WithSuggestion("Make sure you have commits in your repository: git log")

	ErrGetBranch = NewAppError(TypeGit, "Failed to get current branch", nil).
			WithSuggestion("Make sure you are in a git repository: git status")

	ErrNoBranch = NewAppError(TypeGit, "No branch detected", nil).
			WithSuggestion("Create a branch first: git checkout -b <branch-name>")

	ErrGetRepoURL = NewAppError(TypeAccess, "Failed to get repository URL", nil).
			WithSuggestion("Add a remote: git remote add origin <url>")

	ErrExtractRepoInfo = NewAppError(TypeAccess, "Failed to extract repository info", nil).
				WithSuggestion("Pass the repository explicitly: --repo owner/name")

	ErrAddFile = NewAppError(TypeGit, "Failed to add file to staging", nil).
			WithSuggestion("Check if the file exists and you have write permissions")

	ErrCreateCommit = NewAppError(TypeGit, "Failed to create commit", nil).
			WithSuggestion("Ensure git user is configured:\n   git config --global user.name \"Your Name\"\n   git config --global user.email \"your@email.com\"")

	ErrCreateBranch = NewAppError(TypeGit, "Failed to create branch", nil).
			WithSuggestion("Check the branch does not already exist: git branch --list")

	ErrCheckout = NewAppError(TypeGit, "Failed to switch branch", nil).
			WithSuggestion("Commit or stash your local changes first: git stash")

	ErrPush = NewAppError(TypeGit, "Failed to push to remote", nil).
		WithSuggestion("Verify remote is configured: git remote -v")

	ErrPull = NewAppError(TypeGit, "Failed to pull from remote", nil).
		WithSuggestion("Verify remote is configured: git remote -v")

	ErrClone = NewAppError(TypeGit, "Failed to clone repository", nil).
			WithSuggestion("Check the URL and your access to it")
)

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "AI API key is missing", nil).
				WithSuggestion("export ANTHROPIC_API_KEY=<your key>")

	ErrTokenMissing = NewAppError(TypeAccess, "GitHub token is missing", nil).
			WithSuggestion("export GITHUB_TOKEN=<your token>")

	ErrUnsupportedProvider = NewAppError(TypeConfiguration, "AI provider not supported", nil).
				WithSuggestion("Set ai.provider to 'anthropic' or 'gemini'")

	ErrInvalidConfig = NewAppError(TypeConfiguration, "Configuration is invalid", nil).
				WithSuggestion("Check your configuration: gh-assist config show")
)

// GitHub errors
var (
	ErrGitHubTokenInvalid = NewAppError(TypeAccess, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token at: https://github.com/settings/tokens")

	ErrGitHubInsufficientPerms = NewAppError(TypeAccess, "GitHub token has insufficient permissions", nil).
					WithSuggestion("Token needs the 'repo' scope.\nRegenerate at: https://github.com/settings/tokens")

	ErrGitHubRateLimit = NewAppError(TypeAccess, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes or use a personal access token for higher limits")

	ErrRepositoryNotFound = NewAppError(TypeNotFound, "repository not found", nil).
				WithSuggestion("Check the repository name and your access to it")

	ErrPullRequestNotFound = NewAppError(TypeNotFound, "pull request not found", nil).
				WithSuggestion("List open pull requests: gh-assist list-prs")

	ErrIssueNotFound = NewAppError(TypeNotFound, "issue not found", nil)

	ErrGitHubRequest = NewAppError(TypeAccess, "GitHub request failed", nil).
				WithSuggestion("Check your network connection and GitHub status")
)

// Model errors
var (
	ErrModelRequest = NewAppError(TypeModel, "language model request failed", nil).
			WithSuggestion("Try again or check your network connection")

	ErrModelAuth = NewAppError(TypeModel, "language model API key was rejected", nil).
			WithSuggestion("Check the API key exported for the configured provider")

	ErrModelQuotaExceeded = NewAppError(TypeModel, "language model quota exceeded or rate limited", nil).
				WithSuggestion("Wait a few minutes and try again, or check your API quota")

	ErrEmptyModelResponse = NewAppError(TypeModel, "language model returned no text", nil).
				WithSuggestion("This is likely a temporary issue, please try again")
)

// Input errors
var (
	ErrEmptyQuestion = NewAppError(TypeInvalidInput, "question is empty", nil)

	ErrEmptyDescription = NewAppError(TypeInvalidInput, "description is empty", nil)

	ErrEmptyIssue = NewAppError(TypeInvalidInput, "issue title is empty", nil).
			WithSuggestion("Pass an issue number or --title")

	ErrInvalidPRNumber = NewAppError(TypeInvalidInput, "pull request number must be positive", nil)

	ErrInvalidRepository = NewAppError(TypeInvalidInput, "repository must be owner/name", nil)

	ErrMissingArgument = NewAppError(TypeInvalidInput, "required argument is missing", nil)
)

var (
	ErrPromptRender = NewAppError(TypeInternal, "failed to render prompt", nil)
)
