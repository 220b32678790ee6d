package verify

import (
	"regexp"
	"strings"
)

// SuccessMarker is what the run collaborator emits when code executes
// without producing output. It is noise for comparison purposes.
const SuccessMarker = "Code executed successfully (no output)"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize prepares run output for fuzzy comparison: the success marker is
// stripped, whitespace runs collapse to single spaces, and the result is
// trimmed and lower-cased. Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, SuccessMarker, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Similarity scores normalized-actual against normalized-expected on a 0-100
// scale: 100 exact, 95 substring, otherwise token-set overlap relative to
// the expected tokens.
func Similarity(expected, actual string) float64 {
	expected = Normalize(expected)
	actual = Normalize(actual)

	if expected == actual {
		return 100
	}
	if expected != "" && strings.Contains(actual, expected) {
		return 95
	}

	expectedTokens := tokenSet(expected)
	if len(expectedTokens) == 0 {
		return 0
	}
	actualTokens := tokenSet(actual)

	shared := 0
	for token := range expectedTokens {
		if _, ok := actualTokens[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(expectedTokens)) * 100
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Split(s, " ") {
		if token != "" {
			set[token] = struct{}{}
		}
	}
	return set
}
