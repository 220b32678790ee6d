package validate

import (
	"testing"

	"codelab/internal/lesson"
	"codelab/internal/plan"
)

func codesOf(issues []Issue) map[string]int {
	out := make(map[string]int)
	for _, issue := range issues {
		out[issue.Code]++
	}
	return out
}

func TestLintCleanLesson(t *testing.T) {
	l := &lesson.Lesson{
		ID:             3,
		SolutionCode:   "print(1)",
		ExpectedOutput: "1",
		Plan: plan.Plan{
			plan.Prediction{Question: "?", Options: []string{"a", "b"}, CorrectIndex: 1},
			plan.VariableSlider{Name: "speed", Min: 0, Max: 10, Step: 1},
			plan.SendToEditor{Template: "speed = {{speed}}", TemplateID: "t1"},
		},
	}
	if issues := LintLesson(l); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestLintPredictionAndSlider(t *testing.T) {
	l := &lesson.Lesson{
		ID: 4,
		Plan: plan.Plan{
			plan.Prediction{Question: "?", Options: []string{"only"}, CorrectIndex: 3},
			plan.VariableSlider{Name: "x", Min: 5, Max: 5, Step: 0},
		},
	}
	codes := codesOf(LintLesson(l))
	if codes[codeOptionCount] != 1 {
		t.Errorf("expected one option count issue, got %v", codes)
	}
	if codes[codeCorrectIndex] != 1 {
		t.Errorf("expected one correct index issue, got %v", codes)
	}
	if codes[codeSliderRange] != 2 {
		t.Errorf("expected min/max and step issues, got %v", codes)
	}
}

func TestLintBlanks(t *testing.T) {
	l := &lesson.Lesson{
		ID: 5,
		Plan: plan.Plan{
			plan.FillBlanks{
				Template: "for {{b1}} in range({{b2}}):",
				Blanks: []plan.Blank{
					{ID: "b1", Options: []string{"i", "j"}, Correct: "i"},
					{ID: "b1", Options: []string{"3"}, Correct: "3"},
					{ID: "b2", Options: []string{"3", "5"}, Correct: "10"},
					{ID: "b3", Correct: "x"},
				},
			},
		},
	}
	codes := codesOf(LintLesson(l))
	if codes[codeDuplicateBlank] != 1 {
		t.Errorf("expected duplicate blank issue, got %v", codes)
	}
	if codes[codeBlankCorrect] != 1 {
		t.Errorf("expected correct-not-in-options issue, got %v", codes)
	}
	if codes[codeOptionCount] != 1 {
		t.Errorf("expected empty options issue, got %v", codes)
	}
}

func TestLintTemplateTokens(t *testing.T) {
	l := &lesson.Lesson{
		ID: 6,
		Plan: plan.Plan{
			plan.VariableSlider{Name: "speed", Min: 0, Max: 10, Step: 1},
			plan.SendToEditor{Template: "v = {{speed}} + {{missing}}", TemplateID: "t1"},
		},
	}
	issues := LintLesson(l)
	codes := codesOf(issues)
	if codes[codeTemplateToken] != 1 {
		t.Fatalf("expected one unresolvable token issue, got %v", issues)
	}
	for _, issue := range issues {
		if issue.Code == codeTemplateToken && issue.Severity != SeverityWarn {
			t.Errorf("token issue should be a warning, got %s", issue.Severity)
		}
	}
}

func TestLintStepEffectsResolveTokens(t *testing.T) {
	l := &lesson.Lesson{
		ID: 7,
		Plan: plan.Plan{
			plan.StepExecutor{Code: "x = 1", Steps: []plan.Step{
				{Label: "assign", Effects: map[string]any{"total": 1}},
			}},
			plan.SendToEditor{Template: "total = {{total}}", TemplateID: "t1"},
		},
	}
	if issues := LintLesson(l); len(issues) != 0 {
		t.Fatalf("step effects should satisfy template tokens, got %v", issues)
	}
}

func TestLintLoopIterationEffectsResolveTokens(t *testing.T) {
	l := &lesson.Lesson{
		ID: 7,
		Plan: plan.Plan{
			plan.LoopSimulator{Variable: "i", Iterations: []plan.Step{
				{Label: "first pass", Effects: map[string]any{"total": 10}},
			}},
			plan.SendToEditor{Template: "print({{i}} + {{total}})", TemplateID: "t1"},
		},
	}
	if issues := LintLesson(l); len(issues) != 0 {
		t.Fatalf("iteration effects should satisfy template tokens, got %v", issues)
	}
}

func TestLintDuplicateEditorsAndUnknown(t *testing.T) {
	l := &lesson.Lesson{
		ID: 8,
		Plan: plan.Plan{
			plan.SendToEditor{Template: "a", TemplateID: "t1"},
			plan.SendToEditor{Template: "b", TemplateID: "t2"},
			plan.Unknown{Type: "hologram"},
		},
	}
	codes := codesOf(LintLesson(l))
	if codes[codeDuplicateEditor] != 1 {
		t.Errorf("expected duplicate editor warning, got %v", codes)
	}
	if codes[codeUnknownType] != 1 {
		t.Errorf("expected unknown type warning, got %v", codes)
	}
}

func TestLintLegacyTemplate(t *testing.T) {
	l := &lesson.Lesson{
		ID:                   9,
		SendToEditorTemplate: "y = {{ghost}}",
		Plan:                 plan.Plan{},
	}
	codes := codesOf(LintLesson(l))
	if codes[codeTemplateToken] != 1 {
		t.Errorf("legacy template tokens should be checked, got %v", codes)
	}
}

func TestReportCounts(t *testing.T) {
	r := &Report{Issues: []Issue{
		{Severity: SeverityError},
		{Severity: SeverityError},
		{Severity: SeverityWarn},
	}}
	if r.Errors() != 2 || r.Warnings() != 1 {
		t.Fatalf("counts: errors=%d warnings=%d", r.Errors(), r.Warnings())
	}
}
