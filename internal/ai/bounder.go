package ai

import "unicode/utf8"

// TruncationMarker is appended to change-sets cut down to their budget.
const TruncationMarker = "\n... (diff truncated)"

// Bound cuts text to budget characters and appends TruncationMarker when it is
// longer than that. Text within budget is returned unchanged. Characters are
// counted as runes so a cut never splits a UTF-8 sequence. A budget <= 0
// disables the limit.
func Bound(text string, budget int) (string, bool) {
	if budget <= 0 || len(text) <= budget {
		return text, false
	}
	if utf8.RuneCountInString(text) <= budget {
		return text, false
	}

	n := 0
	for i := range text {
		if n == budget {
			return text[:i] + TruncationMarker, true
		}
		n++
	}
	return text, false
}
