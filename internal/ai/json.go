package ai

import (
	"encoding/json"
	"strings"

	"github.com/thomas-vilte/gh-assist/internal/regex"
)

// ExtractJSON finds the JSON object in a model answer. Fenced blocks are tried
// first, in order, then the span from the first '{' to the last '}', then the
// longest balanced object. The returned text is sanitized and valid.
func ExtractJSON(text string) (string, bool) {
	for _, m := range regex.FencedBlock.FindAllStringSubmatch(text, -1) {
		content := strings.TrimSpace(m[1])
		if !strings.HasPrefix(content, "{") {
			continue
		}
		if s, ok := validObject(content); ok {
			return s, true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	if s, ok := validObject(text[start : end+1]); ok {
		return s, true
	}

	return longestBalancedObject(text)
}

// SanitizeJSON escapes raw newlines inside string literals, which models
// tend to emit in long text fields.
func SanitizeJSON(s string) string {
	return regex.JSONString.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, "\n", "\\n")
	})
}

func validObject(s string) (string, bool) {
	sanitized := SanitizeJSON(s)
	if json.Valid([]byte(sanitized)) {
		return sanitized, true
	}
	return "", false
}

func longestBalancedObject(text string) (string, bool) {
	var best string
	for i := 0; i < len(text); {
		startIdx := strings.IndexByte(text[i:], '{')
		if startIdx == -1 {
			break
		}
		startIdx += i

		depth := 0
		inString := false
		escaped := false
		endIdx := -1

		for j := startIdx; j < len(text) && endIdx < 0; j++ {
			c := text[j]
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					endIdx = j
				}
			}
		}

		if endIdx < 0 {
			i = startIdx + 1
			continue
		}
		if s, ok := validObject(text[startIdx : endIdx+1]); ok && len(s) > len(best) {
			best = s
		}
		i = endIdx + 1
	}
	return best, best != ""
}
