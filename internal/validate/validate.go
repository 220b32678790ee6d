// Package validate lints lessons and their interaction plans before they are
// served: malformed items, out-of-range answers, and template tokens that no
// variable can ever fill.
package validate

import (
	"fmt"

	"codelab/internal/lesson"
	"codelab/internal/plan"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeOptionCount     = "option_count_invalid"
	codeCorrectIndex    = "correct_index_out_of_range"
	codeBlankCorrect    = "blank_correct_not_in_options"
	codeDuplicateBlank  = "duplicate_blank_id"
	codeEmptyHints      = "hint_ladder_empty"
	codeSliderRange     = "slider_range_invalid"
	codePuzzleOrder     = "puzzle_order_invalid"
	codeNoCorrectFix    = "no_correct_fix"
	codeNoChoices       = "no_choices"
	codeEmptySteps      = "empty_steps"
	codeTemplateToken   = "template_token_unresolvable"
	codeDuplicateEditor = "duplicate_send_to_editor"
	codeUnknownType     = "unknown_item_type"
	codeNoExpected      = "missing_expected_output"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	LessonID int
	Item     string
	FilePath string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

func (r *Report) Warnings() int {
	return len(r.Issues) - r.Errors()
}

// Run lints every lesson in the catalog.
func Run(catalog *lesson.Catalog) *Report {
	report := &Report{Issues: make([]Issue, 0)}
	for _, l := range catalog.All() {
		report.Issues = append(report.Issues, LintLesson(l)...)
	}
	return report
}

// LintLesson checks one lesson and its plan. Issues never stop the lint; the
// full list comes back in one pass.
func LintLesson(l *lesson.Lesson) []Issue {
	var issues []Issue

	add := func(severity Severity, code, item, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: severity,
			Code:     code,
			Message:  fmt.Sprintf(format, args...),
			LessonID: l.ID,
			Item:     item,
			FilePath: l.SourceFile,
		})
	}

	if l.ExpectedOutput == "" && l.SolutionCode != "" {
		add(SeverityWarn, codeNoExpected, "", "solution_code set but expected_output missing, submissions cannot be verified")
	}

	names := variableNames(l.Plan)
	editors := 0

	for i, item := range l.Plan {
		tag := fmt.Sprintf("%s[%d]", item.ItemType(), i)

		switch it := item.(type) {
		case plan.Prediction:
			if len(it.Options) < 2 {
				add(SeverityError, codeOptionCount, tag, "prediction needs at least 2 options, has %d", len(it.Options))
			}
			if it.CorrectIndex < 0 || it.CorrectIndex >= len(it.Options) {
				add(SeverityError, codeCorrectIndex, tag, "correctIndex %d out of range for %d options", it.CorrectIndex, len(it.Options))
			}

		case plan.HintLadder:
			if len(it.Hints) == 0 {
				add(SeverityWarn, codeEmptyHints, tag, "hint ladder has no hints")
			}

		case plan.VariableSlider:
			if it.Min >= it.Max {
				add(SeverityError, codeSliderRange, tag, "slider min %v must be below max %v", it.Min, it.Max)
			}
			if it.Step <= 0 {
				add(SeverityError, codeSliderRange, tag, "slider step must be positive, got %v", it.Step)
			}

		case plan.ParsonsPuzzle:
			if len(it.CorrectOrder) == 0 {
				add(SeverityError, codePuzzleOrder, tag, "puzzle has no correct order")
			}
			if len(it.ScrambledOrder) > 0 && !samePool(it.CorrectOrder, it.ScrambledOrder) {
				add(SeverityWarn, codePuzzleOrder, tag, "scrambled order is not a permutation of the correct order")
			}

		case plan.FillBlanks:
			issues = append(issues, lintBlanks(l, tag, it.Blanks)...)
		case plan.TokenSlot:
			issues = append(issues, lintBlanks(l, tag, it.Blanks)...)

		case plan.DebugQuest:
			correct := 0
			for _, opt := range it.Options {
				if opt.Correct {
					correct++
				}
			}
			if correct == 0 {
				add(SeverityError, codeNoCorrectFix, tag, "debug quest has no correct fix option")
			}

		case plan.ConditionalPath:
			if len(it.Choices) == 0 {
				add(SeverityError, codeNoChoices, tag, "conditional path has no choices")
			}

		case plan.StepExecutor:
			if len(it.Steps) == 0 {
				add(SeverityError, codeEmptySteps, tag, "step executor has no steps")
			}
		case plan.MemoryMachine:
			if len(it.Steps) == 0 {
				add(SeverityError, codeEmptySteps, tag, "memory machine has no steps")
			}
		case plan.LoopSimulator:
			if len(it.Iterations) == 0 {
				add(SeverityError, codeEmptySteps, tag, "loop simulator has no iterations")
			}

		case plan.SendToEditor:
			editors++
			if editors > 1 {
				add(SeverityWarn, codeDuplicateEditor, tag, "plan has multiple send_to_editor items, only the first fires")
			}
			for _, token := range plan.TemplateTokens(it.Template) {
				if !names[token] {
					add(SeverityWarn, codeTemplateToken, tag, "template token {{%s}} has no matching variable in the plan", token)
				}
			}

		case plan.Unknown:
			add(SeverityWarn, codeUnknownType, tag, "unknown item type %q is skipped at runtime", it.Type)
		}
	}

	if l.SendToEditorTemplate != "" && editors == 0 {
		for _, token := range plan.TemplateTokens(l.SendToEditorTemplate) {
			if !names[token] {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeTemplateToken,
					Message:  fmt.Sprintf("template token {{%s}} has no matching variable in the plan", token),
					LessonID: l.ID,
					Item:     "send_to_editor_template",
					FilePath: l.SourceFile,
				})
			}
		}
	}

	return issues
}

func lintBlanks(l *lesson.Lesson, tag string, blanks []plan.Blank) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(blanks))

	for _, b := range blanks {
		if seen[b.ID] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateBlank,
				Message:  fmt.Sprintf("duplicate blank id %q", b.ID),
				LessonID: l.ID,
				Item:     tag,
				FilePath: l.SourceFile,
			})
		}
		seen[b.ID] = true

		if len(b.Options) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeOptionCount,
				Message:  fmt.Sprintf("blank %q has no options", b.ID),
				LessonID: l.ID,
				Item:     tag,
				FilePath: l.SourceFile,
			})
			continue
		}
		if !containsString(b.Options, b.Correct) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeBlankCorrect,
				Message:  fmt.Sprintf("blank %q correct answer %q is not one of its options", b.ID, b.Correct),
				LessonID: l.ID,
				Item:     tag,
				FilePath: l.SourceFile,
			})
		}
	}
	return issues
}

// variableNames collects every variable a plan can write, the namespace
// send_to_editor templates resolve against.
func variableNames(p plan.Plan) map[string]bool {
	names := make(map[string]bool)
	for _, item := range p {
		switch it := item.(type) {
		case plan.VariableSlider:
			names[it.Name] = true
		case plan.MemoryBox:
			names[it.Name] = true
		case plan.DraggableValue:
			names[it.Name] = true
		case plan.LoopSimulator:
			names[it.Variable] = true
			addEffectNames(names, it.Iterations)
		case plan.StepExecutor:
			addEffectNames(names, it.Steps)
		case plan.MemoryMachine:
			addEffectNames(names, it.Steps)
		case plan.GraphManipulator:
			names["slope"] = true
			names["intercept"] = true
		}
	}
	return names
}

func addEffectNames(names map[string]bool, steps []plan.Step) {
	for _, step := range steps {
		for name := range step.Effects {
			names[name] = true
		}
	}
}

func samePool(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
		if counts[v] < 0 {
			return false
		}
	}
	return true
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
