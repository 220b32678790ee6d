// Package verify classifies run output against a lesson's expected output.
// The scoring rules and thresholds were tuned together with the lesson
// content; changing them silently breaks lessons that pass today.
package verify

import (
	"fmt"
	"regexp"
	"strings"
)

// Result is always fully populated; Verify never fails.
type Result struct {
	Correct     bool     `json:"correct"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
	Score       float64  `json:"score"`
	ErrorType   string   `json:"errorType,omitempty"`
}

// NoExpectationSentinel in expected_output means the lesson accepts any
// successful run that prints something.
const NoExpectationSentinel = "N/A"

const (
	matchThreshold   = 90
	closeThreshold   = 70
	partialThreshold = 40
)

const minCodeLength = 10

var graphKeywords = []string{"graph", "plot", "chart", "histogram", "scatter", "visualization"}

var (
	plotImportPattern = regexp.MustCompile(`(?m)^\s*(import\s+matplotlib|from\s+matplotlib)`)
	plotCallPattern   = regexp.MustCompile(`\b(?:plt|pyplot)\.(?:plot|bar|barh|scatter|hist|pie|imshow)\s*\(\s*[^)\s]`)
	showCallPattern   = regexp.MustCompile(`\b(?:plt|pyplot)\.show\s*\(`)
)

// Verify decides whether a run passes. Rules apply in order, first match
// wins: interpreter error, empty code, plot exercise, no-expectation
// sentinel, fuzzy text compare.
func Verify(expected, actual, userCode string) Result {
	if isErrorOutput(actual) {
		errType := classifyError(actual)
		return Result{
			Correct:     false,
			Feedback:    fmt.Sprintf("Your code raised a %s. Read the message in the output pane, then try the fixes below.", errType),
			Suggestions: suggestionsFor(errType),
			ErrorType:   errType,
		}
	}

	if len(strings.TrimSpace(userCode)) < minCodeLength {
		return Result{
			Correct:  false,
			Feedback: "It looks like you haven't written any code yet. Start from the starter code and give it a try!",
			Suggestions: []string{
				"Write your solution in the editor, then press Run.",
			},
		}
	}

	if isGraphExercise(expected) {
		return verifyGraph(userCode)
	}

	if trimmed := strings.TrimSpace(expected); trimmed == "" || trimmed == NoExpectationSentinel {
		if strings.TrimSpace(actual) == "" {
			return Result{
				Correct:     false,
				Feedback:    "Your code ran but didn't print anything. Add a print statement to show your result.",
				Suggestions: []string{"Use print() to display the value you computed."},
			}
		}
		return Result{
			Correct:  true,
			Feedback: "Nice! Your code ran and produced output.",
			Score:    100,
		}
	}

	score := Similarity(expected, actual)
	switch {
	case score >= matchThreshold:
		return Result{
			Correct:  true,
			Feedback: "Perfect! Your output matches the expected result.",
			Score:    score,
		}
	case score >= closeThreshold:
		return Result{
			Correct:  true,
			Feedback: "Close enough! Your output is nearly identical to the expected result.",
			Score:    score,
		}
	case score >= partialThreshold:
		return Result{
			Correct:  false,
			Feedback: "You're on the right track, but your output doesn't fully match yet.",
			Suggestions: []string{
				"Compare your output with the expected output line by line.",
				"Check spacing, punctuation, and capitalization.",
			},
			Score: score,
		}
	default:
		return Result{
			Correct:  false,
			Feedback: "Your output doesn't match the expected result yet.",
			Suggestions: []string{
				"Re-read the task description and the expected output.",
				"Print intermediate values to see where your result diverges.",
			},
			Score: score,
		}
	}
}

func isGraphExercise(expected string) bool {
	if strings.Contains(expected, "[Graph:") {
		return true
	}
	lower := strings.ToLower(expected)
	for _, kw := range graphKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// verifyGraph checks plot exercises structurally: the code must import the
// plotting library, call a plotting function with arguments, and call show.
func verifyGraph(userCode string) Result {
	if !plotImportPattern.MatchString(userCode) {
		return Result{
			Correct:     false,
			Feedback:    "This exercise draws a graph, but your code never imports the plotting library.",
			Suggestions: []string{"Add `import matplotlib.pyplot as plt` at the top of your code."},
		}
	}
	if !plotCallPattern.MatchString(userCode) {
		return Result{
			Correct:     false,
			Feedback:    "You imported the plotting library but never drew anything with it.",
			Suggestions: []string{"Call a plotting function such as plt.plot(xs, ys) with your data."},
		}
	}
	if !showCallPattern.MatchString(userCode) {
		return Result{
			Correct:     false,
			Feedback:    "The plot is built but never displayed.",
			Suggestions: []string{"Add plt.show() after your plotting calls."},
		}
	}
	return Result{
		Correct:  true,
		Feedback: "Great! Your code builds and displays the plot.",
		Score:    100,
	}
}
