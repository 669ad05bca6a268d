package ui

import (
	"fmt"
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

// PrintRawFallback warns that the model ignored the requested format and
// shows its answer as it came.
func PrintRawFallback(raw string, t *i18n.Translations) {
	PrintWarning(t.GetMessage("ui.parse_error", 0, nil))
	PrintPanel("", raw)
}

func PrintReview(r models.Review, t *i18n.Translations) {
	if r.ParseError {
		PrintRawFallback(r.Summary, t)
		return
	}

	PrintPanel(t.GetMessage("ui.review.summary", 0, nil), r.Summary)
	PrintList(t.GetMessage("ui.review.issues", 0, nil), issueLines(r.Issues))
	PrintList(t.GetMessage("ui.review.suggestions", 0, nil), r.Suggestions)
	PrintList(t.GetMessage("ui.review.security", 0, nil), r.SecurityConcerns)

	_, _ = fmt.Fprintln(Output)
	if r.Rating != "" {
		PrintKeyValue(t.GetMessage("ui.review.rating", 0, nil), string(r.Rating))
	}
	if r.Recommendation != "" {
		PrintKeyValue(t.GetMessage("ui.review.recommendation", 0, nil), r.Recommendation)
	}
}

func PrintPRReview(r models.PRReview, t *i18n.Translations) {
	if r.ParseError {
		PrintRawFallback(r.OverallAssessment, t)
		return
	}

	PrintPanel(t.GetMessage("ui.review.overall", 0, nil), r.OverallAssessment)
	for _, section := range []struct{ id, value string }{
		{"ui.review.code_quality", r.CodeQuality},
		{"ui.review.test_coverage", r.TestCoverage},
		{"ui.review.documentation", r.Documentation},
	} {
		if section.value != "" {
			PrintKeyValue(t.GetMessage(section.id, 0, nil), section.value)
		}
	}
	PrintList(t.GetMessage("ui.review.breaking_changes", 0, nil), r.BreakingChanges)
	PrintList(t.GetMessage("ui.review.issues", 0, nil), issueLines(r.Issues))
	PrintList(t.GetMessage("ui.review.suggestions", 0, nil), r.Suggestions)

	if r.Recommendation != "" {
		_, _ = fmt.Fprintln(Output)
		PrintKeyValue(t.GetMessage("ui.review.recommendation", 0, nil), r.Recommendation)
	}
}

func PrintTriage(tr models.Triage, t *i18n.Translations) {
	if tr.ParseError {
		PrintRawFallback(tr.Summary, t)
		return
	}

	PrintSectionBanner(t.GetMessage("ui.triage.title", 0, nil))
	PrintKeyValue(t.GetMessage("ui.triage.priority", 0, nil), tr.Priority)
	PrintKeyValue(t.GetMessage("ui.triage.category", 0, nil), tr.Category)
	PrintKeyValue(t.GetMessage("ui.triage.complexity", 0, nil), tr.Complexity)
	if tr.RequiresImmediateAttention {
		PrintWarning(t.GetMessage("ui.triage.urgent", 0, nil))
	}
	if len(tr.SuggestedLabels) > 0 {
		PrintKeyValue(t.GetMessage("ui.triage.labels", 0, nil), strings.Join(tr.SuggestedLabels, ", "))
	}
	if tr.Summary != "" {
		_, _ = fmt.Fprintln(Output)
		PrintPanel(t.GetMessage("ui.review.summary", 0, nil), tr.Summary)
	}
}

func PrintLabels(l models.Labels, t *i18n.Translations) {
	if l.ParseError {
		PrintRawFallback(l.Summary, t)
		return
	}
	PrintList(t.GetMessage("ui.labels.title", 0, nil), l.Labels)
}

func issueLines(issues []models.ReviewIssue) []string {
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.Severity != "" {
			lines = append(lines, fmt.Sprintf("[%s] %s", strings.ToUpper(issue.Severity), issue.Description))
			continue
		}
		lines = append(lines, issue.Description)
	}
	return lines
}
