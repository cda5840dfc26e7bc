// Package formatting extracts structured payloads from free-form model output.
// Model responses routinely wrap JSON in markdown code fences, surround it with
// prose, or substitute typographic quotes for ASCII ones; the helpers here undo
// that in one place so callers only ever see decoded values or ErrParseFailed.
package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when no JSON candidate in the content decodes into the target type.
var ErrParseFailed = errors.New("failed to parse response")

var (
	jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json|JSON)?\s*\n?(.*?)\n?` + "```")
	openFenceRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json|JSON)?\s*\n?(.*)$`)
)

var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"″", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"′", "'",
)

// NormalizeQuotes replaces typographic double and single quotes with their ASCII forms.
func NormalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// Candidates returns the substrings of content that may hold a JSON document,
// in the order they should be tried: the whole content, the body of the first
// closed code fence, the body of an unterminated fence, and the outermost
// brace-delimited span.
func Candidates(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	candidates := []string{content}

	if m := jsonBlockRegex.FindStringSubmatch(content); len(m) >= 2 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	} else if m := openFenceRegex.FindStringSubmatch(content); len(m) >= 2 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		candidates = append(candidates, content[start:end+1])
	}

	return candidates
}

// Parse attempts to unmarshal content as JSON into T.
// Each candidate from Candidates is tried verbatim first and then with
// typographic quotes normalized, so smart quotes inside string values survive
// when the document is otherwise valid. Returns ErrParseFailed if every attempt fails.
func Parse[T any](content string) (T, error) {
	var result T

	candidates := Candidates(content)
	if len(candidates) == 0 {
		return result, fmt.Errorf("%w: empty content", ErrParseFailed)
	}

	for _, normalize := range []bool{false, true} {
		for _, c := range candidates {
			if normalize {
				c = NormalizeQuotes(c)
			}

			var attempt T
			if err := json.Unmarshal([]byte(c), &attempt); err == nil {
				return attempt, nil
			}
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, preview(content, 200))
}

func preview(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
