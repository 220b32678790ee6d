package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// VariableReader is the slice of the session store templates need.
type VariableReader interface {
	Variable(name string) (any, bool)
}

// ResolveTemplate substitutes every {{identifier}} token with the current
// store value for that identifier. Absent or nil variables become the empty
// string. There is no escaping syntax; literal braces cannot be emitted.
func ResolveTemplate(template string, vars VariableReader) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := tokenPattern.FindStringSubmatch(token)[1]
		v, ok := vars.Variable(name)
		if !ok || v == nil {
			return ""
		}
		return formatValue(v)
	})
}

// TemplateTokens lists the identifiers referenced by a template, in order of
// first appearance.
func TemplateTokens(template string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, m := range tokenPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// formatValue renders a store value the way lesson authors expect inside
// generated code: whole-number floats print without a decimal point.
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, formatValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}
