package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

const (
	DefaultMaxDiffSize   = 50000
	DefaultMaxPRDiffSize = 100000

	truncatedNote = "Note: Diff was truncated due to size."
)

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// Prompt is a rendered prompt and the request it was rendered from.
type Prompt struct {
	Request models.PromptRequest
	Text    string
}

// PromptBuilder bounds change-set text to the task budget and renders the
// task template. It does no I/O.
type PromptBuilder struct {
	maxDiffSize   int
	maxPRDiffSize int
	language      string
}

// NewPromptBuilder returns a builder with the given budgets. language is the
// English name of the answer language ("Spanish"); empty or "English" adds no
// language instruction. Non-positive budgets fall back to the defaults.
func NewPromptBuilder(maxDiffSize, maxPRDiffSize int, language string) *PromptBuilder {
	if maxDiffSize <= 0 {
		maxDiffSize = DefaultMaxDiffSize
	}
	if maxPRDiffSize <= 0 {
		maxPRDiffSize = DefaultMaxPRDiffSize
	}
	if strings.EqualFold(language, "english") {
		language = ""
	}
	return &PromptBuilder{
		maxDiffSize:   maxDiffSize,
		maxPRDiffSize: maxPRDiffSize,
		language:      language,
	}
}

// Budget returns the change-set budget for task, 0 when the task carries no diff.
func (b *PromptBuilder) Budget(task models.Task) int {
	switch task {
	case models.TaskCommitMessage, models.TaskCodeReview, models.TaskDiffExplanation:
		return b.maxDiffSize
	case models.TaskPRDescription, models.TaskPRReview:
		return b.maxPRDiffSize
	default:
		return 0
	}
}

// Build bounds req.Text and renders the template for req.Task.
func (b *PromptBuilder) Build(req models.PromptRequest) (Prompt, error) {
	tmpl, ok := promptTemplates[req.Task]
	if !ok {
		return Prompt{}, errors.ErrPromptRender.
			WithError(fmt.Errorf("no template for task %q", req.Task)).
			WithContext("task", string(req.Task))
	}

	req.Budget = b.Budget(req.Task)
	req.Text, req.Truncated = Bound(req.Text, req.Budget)
	if req.Language == "" {
		req.Language = b.language
	}

	text, err := RenderPrompt(string(req.Task), tmpl, promptData{
		PromptRequest: req,
		Note:          truncatedNote,
	})
	if err != nil {
		return Prompt{}, errors.ErrPromptRender.WithError(err).WithContext("task", string(req.Task))
	}

	return Prompt{Request: req, Text: strings.TrimSpace(text) + "\n"}, nil
}

type promptData struct {
	models.PromptRequest
	Note string
}

const (
	contextBlock   = `{{if .Context}}Context: {{.Context}}{{"\n"}}{{end}}`
	truncatedBlock = `{{if .Truncated}}{{.Note}}{{"\n"}}{{end}}`
	languageBlock  = `{{if .Language}}{{"\n"}}Write every human-readable value in {{.Language}}.{{end}}`
	jsonOnly       = `Respond with ONLY a JSON object, no prose before or after it, using exactly these keys:`
)

var promptTemplates = map[models.Task]string{
	models.TaskCommitMessage: `# Task
Analyze this git diff and write a concise, professional commit message.

# Format
Conventional commits: <type>: <description>
Types: feat, fix, docs, style, refactor, test, chore

# Rules
- First line: short summary (50 chars max)
- Optional body after a blank line when the change needs explaining
- Focus on WHAT changed and WHY
- Be specific and actionable

` + contextBlock + `{{if .Commits}}Recent commits, match their style:
{{range .Commits}}- {{.}}
{{end}}{{end}}` + truncatedBlock + `
Diff:
` + "```" + `
{{.Text}}
` + "```" + `

Respond with ONLY the commit message, without quotes or code fences.` + languageBlock,

	models.TaskCodeReview: `# Task
Review this code diff and give comprehensive feedback.

# Analyze
1. Code quality and best practices
2. Potential bugs or issues
3. Performance considerations
4. Security concerns
5. Suggestions for improvement

` + contextBlock + truncatedBlock + `
Diff:
` + "```" + `
{{.Text}}
` + "```" + `

# Output
` + jsonOnly + `
{
  "summary": "brief overview",
  "issues": [{"severity": "high|medium|low", "description": "issue found"}],
  "suggestions": ["suggestion"],
  "security_concerns": ["security issue, if any"],
  "rating": "score from 1-10",
  "recommendation": "approve|request_changes|comment"
}` + languageBlock,

	models.TaskPRReview: `# Task
Review this pull request comprehensively.

PR Title: {{.Title}}
Description: {{.Body}}
Files Changed: {{.FilesChanged}}
` + truncatedBlock + `
Diff:
` + "```" + `
{{.Text}}
` + "```" + `

# Cover
1. Overall assessment
2. Code quality
3. Test coverage
4. Documentation
5. Breaking changes
6. Specific issues or concerns
7. Final recommendation

# Output
` + jsonOnly + `
{
  "overall_assessment": "summary",
  "code_quality": "assessment",
  "test_coverage": "assessment",
  "documentation": "assessment",
  "breaking_changes": ["breaking change, if any"],
  "issues": ["specific issue"],
  "suggestions": ["improvement"],
  "recommendation": "approve|request_changes|needs_discussion",
  "review_comment": "detailed markdown comment to post on the PR"
}` + languageBlock,

	models.TaskPRDescription: `# Task
Write a comprehensive pull request description.

{{if .Title}}PR Title: {{.Title}}
{{end}}{{if .BranchName}}Branch: {{.BranchName}}
{{end}}{{if .Commits}}Commits:
{{range .Commits}}- {{.}}
{{end}}{{end}}` + truncatedBlock + `
Changes:
` + "```" + `
{{.Text}}
` + "```" + `

# Format (markdown)
## Summary
[Brief overview]

## Changes
- [Key change]

## Testing
[How this was tested]

## Checklist
- [ ] Code follows project guidelines
- [ ] Tests added/updated
- [ ] Documentation updated

Only describe what is in the diff. Respond with the description only.` + languageBlock,

	models.TaskDiffExplanation: `# Task
Explain this git diff in plain English. What does it do?
` + truncatedBlock + `
Diff:
` + "```" + `
{{.Text}}
` + "```" + `

Give a clear, concise explanation suitable for a non-technical audience.` + languageBlock,

	models.TaskBranchName: `# Task
Suggest a git branch name for this work:

{{.Text}}

# Conventions
- Start with a type: feature/, bugfix/, hotfix/, chore/
- Lowercase words separated by hyphens
- Short but descriptive

Respond with ONLY the branch name, nothing else.
Example: feature/add-user-authentication`,

	models.TaskIssueTriage: `# Task
Triage this GitHub issue and give recommendations.

Title: {{.Title}}
Body: {{.Body}}

# Output
` + jsonOnly + `
{
  "priority": "critical|high|medium|low",
  "category": "bug|feature|documentation|question",
  "complexity": "simple|moderate|complex",
  "suggested_labels": ["label"],
  "requires_immediate_attention": true,
  "summary": "brief analysis"
}` + languageBlock,

	models.TaskLabelSuggestion: `# Task
Analyze this GitHub issue and suggest appropriate labels.

Title: {{.Title}}
Body: {{.Body}}

# Common label categories
- Type: bug, feature, enhancement, documentation, question
- Priority: critical, high, medium, low
- Status: needs-triage, in-progress, blocked
- Area: backend, frontend, api, database, ui/ux

# Output
` + jsonOnly + `
{"labels": ["label"]}
Suggest at most 5 lowercase labels.`,

	models.TaskQuestionAnswer: `{{.Text}}

` + contextBlock + `
Give a clear, helpful answer about Git or GitHub.` + languageBlock,

	models.TaskRepositoryAnalysis: `# Task
Analyze this GitHub repository and give insights.

Repository information:
{{.Text}}

# Cover
1. Repository health
2. Activity level
3. Community engagement
4. Areas for improvement
5. Recommendations

Keep it concise and actionable.` + languageBlock,
}
