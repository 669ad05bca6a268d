package ai

import (
	"encoding/json"
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/models"
	"github.com/thomas-vilte/gh-assist/internal/regex"
)

const (
	maxLabels      = 5
	maxLabelLength = 50
)

// InterpretText cleans a plain-text answer: surrounding whitespace, a single
// wrapping code fence and one layer of matching quotes are removed. Branch
// names keep only their first line.
func InterpretText(task models.Task, raw string) string {
	text := stripQuotes(stripFence(strings.TrimSpace(raw)))
	if task == models.TaskBranchName {
		text = cleanBranchName(text)
	}
	return text
}

// InterpretReview never fails: an answer without a usable JSON object yields
// a review whose Summary is the raw text and ParseError is set.
func InterpretReview(raw string) models.Review {
	var r models.Review
	if !decodeObject(raw, &r) {
		r = models.Review{Summary: raw, ParseError: true}
	}
	r.Issues = nonNil(r.Issues)
	r.Suggestions = nonNil(r.Suggestions)
	r.SecurityConcerns = nonNil(r.SecurityConcerns)
	return r
}

func InterpretPRReview(raw string) models.PRReview {
	var r models.PRReview
	if !decodeObject(raw, &r) {
		r = models.PRReview{OverallAssessment: raw, ReviewComment: raw, ParseError: true}
	}
	r.BreakingChanges = nonNil(r.BreakingChanges)
	r.Issues = nonNil(r.Issues)
	r.Suggestions = nonNil(r.Suggestions)
	return r
}

func InterpretTriage(raw string) models.Triage {
	var t models.Triage
	if !decodeObject(raw, &t) {
		t = models.Triage{Summary: raw, ParseError: true}
	}
	t.SuggestedLabels = normalizeLabels(t.SuggestedLabels)
	return t
}

// InterpretLabels reads a {"labels": [...]} object or, when the reply holds no
// JSON object, a comma or newline separated list. An object without labels is
// an empty result. Labels are lower-cased, de-duplicated and capped.
func InterpretLabels(raw string) models.Labels {
	var parsed struct {
		Labels []string `json:"labels"`
	}
	if decodeObject(raw, &parsed) {
		return models.Labels{Labels: normalizeLabels(parsed.Labels)}
	}
	if _, found := ExtractJSON(raw); found {
		return models.Labels{Labels: []string{}, Summary: raw, ParseError: true}
	}

	labels := normalizeLabels(splitList(raw))
	if len(labels) == 0 {
		return models.Labels{Labels: labels, Summary: raw, ParseError: true}
	}
	return models.Labels{Labels: labels}
}

func decodeObject(raw string, v interface{}) bool {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(obj), v) == nil
}

func stripFence(text string) string {
	if len(text) < 6 || !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}
	inner := strings.TrimSuffix(text[3:], "```")
	if strings.Contains(inner, "```") {
		return text
	}
	// drop the info string ("```text")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(inner[:nl], " \t") {
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}

func stripQuotes(text string) string {
	if len(text) < 2 {
		return text
	}
	first, last := text[0], text[len(text)-1]
	if first == last && strings.IndexByte("\"'`", first) >= 0 {
		return strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

func cleanBranchName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = stripQuotes(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		return strings.ToLower(strings.Join(strings.Fields(line), "-"))
	}
	return ""
}

func splitList(raw string) []string {
	text := stripFence(strings.TrimSpace(raw))
	if i := strings.IndexByte(text, ':'); i >= 0 && strings.EqualFold(strings.TrimSpace(text[:i]), "labels") {
		text = text[i+1:]
	}
	return strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' })
}

func normalizeLabels(items []string) []string {
	labels := make([]string, 0, maxLabels)
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		label := strings.TrimSpace(regex.NumberedList.ReplaceAllString(strings.TrimSpace(item), ""))
		label = strings.ToLower(strings.Trim(label, " \t\r-*•\"'`[]"))
		if label == "" || len(label) > maxLabelLength || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
		if len(labels) == maxLabels {
			break
		}
	}
	return labels
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
