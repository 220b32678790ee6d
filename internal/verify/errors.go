package verify

import "strings"

// knownErrorTypes are scanned in order; the first one present in the run
// output names the error in the feedback.
var knownErrorTypes = []string{
	"SyntaxError",
	"IndentationError",
	"NameError",
	"TypeError",
	"ValueError",
	"IndexError",
	"KeyError",
	"AttributeError",
	"ZeroDivisionError",
	"ModuleNotFoundError",
	"ImportError",
	"FileNotFoundError",
	"RecursionError",
	"OverflowError",
}

// errorMarkers decide whether output is an interpreter failure at all.
var errorMarkers = append([]string{
	"Traceback (most recent call last)",
	"Traceback",
	"Exception",
}, knownErrorTypes...)

const unknownErrorType = "Unknown Error"

var errorSuggestions = map[string][]string{
	"SyntaxError": {
		"Check for missing colons, parentheses, or quotation marks.",
		"Make sure every opening bracket has a matching closing one.",
	},
	"IndentationError": {
		"Check that the lines inside loops and functions are indented consistently.",
		"Use the same number of spaces for each indentation level.",
	},
	"NameError": {
		"Check if the variable is defined before you use it.",
		"Look for typos in variable and function names.",
	},
	"TypeError": {
		"Check that you are not mixing incompatible types, like adding a number to a string.",
		"Convert values explicitly with str(), int(), or float() where needed.",
	},
	"ValueError": {
		"Check that the value you pass has the form the function expects.",
		"Converting text to a number only works when the text is actually numeric.",
	},
	"IndexError": {
		"Check that the index is smaller than the length of the list.",
		"Remember that list positions start at 0.",
	},
	"KeyError": {
		"Check that the key exists in the dictionary before reading it.",
		"Use .get() when a key might be missing.",
	},
	"AttributeError": {
		"Check the spelling of the method or attribute name.",
		"Make sure the value is the type you think it is before calling methods on it.",
	},
	"ZeroDivisionError": {
		"Check for divisions where the denominator can be zero.",
		"Guard the division with an if statement.",
	},
	"ModuleNotFoundError": {
		"Check the spelling of the module name in the import statement.",
		"Only the modules listed in the lesson are available here.",
	},
	"ImportError": {
		"Check the spelling of the name you are importing.",
		"Make sure you import from the right module.",
	},
	"FileNotFoundError": {
		"Check the file name and path.",
		"Files must be created before they can be opened for reading.",
	},
	"RecursionError": {
		"Check that your recursive function has a base case.",
		"Make sure each recursive call moves toward the base case.",
	},
	"OverflowError": {
		"The number grew larger than the runtime can represent.",
		"Check loop bounds and multiplications for runaway growth.",
	},
}

var genericSuggestions = []string{
	"Read the error message carefully, it names the line that failed.",
	"Run your code after each small change to catch problems early.",
}

// isErrorOutput reports whether the run output looks like an interpreter
// failure.
func isErrorOutput(output string) bool {
	for _, marker := range errorMarkers {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}

// classifyError extracts the first known error-type token from the output.
func classifyError(output string) string {
	for _, name := range knownErrorTypes {
		if strings.Contains(output, name) {
			return name
		}
	}
	return unknownErrorType
}

func suggestionsFor(errType string) []string {
	if s, ok := errorSuggestions[errType]; ok {
		return s
	}
	return genericSuggestions
}
