package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ReviewIssue is a single problem reported by a review. Models answer with
// either a bare string or a {severity, description} object; both decode.
type ReviewIssue struct {
	Severity    string `json:"severity,omitempty"`
	Description string `json:"description"`
}

func (i *ReviewIssue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = ReviewIssue{Description: s}
		return nil
	}

	type plain ReviewIssue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*i = ReviewIssue(p)
	return nil
}

// Score accepts a JSON string or number ("8", 8, "8/10").
type Score string

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Score(v)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*s = Score(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Review is the interpreted result of a code-review task.
type Review struct {
	Summary          string        `json:"summary"`
	Issues           []ReviewIssue `json:"issues"`
	Suggestions      []string      `json:"suggestions"`
	SecurityConcerns []string      `json:"security_concerns"`
	Rating           Score         `json:"rating"`
	Recommendation   string        `json:"recommendation"`
	ParseError       bool          `json:"parse_error,omitempty"`
}

// PRReview is the interpreted result of a pull-request review task.
type PRReview struct {
	OverallAssessment string        `json:"overall_assessment"`
	CodeQuality       string        `json:"code_quality"`
	TestCoverage      string        `json:"test_coverage"`
	Documentation     string        `json:"documentation"`
	BreakingChanges   []string      `json:"breaking_changes"`
	Issues            []ReviewIssue `json:"issues"`
	Suggestions       []string      `json:"suggestions"`
	Recommendation    string        `json:"recommendation"`
	ReviewComment     string        `json:"review_comment"`
	ParseError        bool          `json:"parse_error,omitempty"`
}

// Comment returns the text that should be posted on the pull request.
func (r PRReview) Comment() string {
	if r.ReviewComment != "" {
		return r.ReviewComment
	}
	return r.OverallAssessment
}

// Triage is the interpreted result of an issue-triage task.
type Triage struct {
	Priority                   string   `json:"priority"`
	Category                   string   `json:"category"`
	Complexity                 string   `json:"complexity"`
	SuggestedLabels            []string `json:"suggested_labels"`
	RequiresImmediateAttention bool     `json:"requires_immediate_attention"`
	Summary                    string   `json:"summary"`
	ParseError                 bool     `json:"parse_error,omitempty"`
}

// Labels is the interpreted result of a label-suggestion task.
type Labels struct {
	Labels     []string `json:"labels"`
	Summary    string   `json:"summary,omitempty"`
	ParseError bool     `json:"parse_error,omitempty"`
}
