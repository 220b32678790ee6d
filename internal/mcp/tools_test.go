package mcp

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"codelab/internal/lesson"
	"codelab/internal/logging"
	"codelab/internal/plan"
	"codelab/internal/runtime"
	"codelab/internal/session"
	"codelab/internal/widget"
)

type mockRunner struct {
	result   runtime.Result
	err      error
	lastCode string
}

func (m *mockRunner) Language() string { return "starlark" }

func (m *mockRunner) Run(ctx context.Context, code string) (runtime.Result, error) {
	m.lastCode = code
	return m.result, m.err
}

func testServer(t *testing.T, runner runtime.Runner, lessons ...*lesson.Lesson) *Server {
	t.Helper()
	reg := &runtime.Registry{}
	reg.Register(0, 1000, runner)
	cfg := widget.Config{
		StepDelay: time.Millisecond,
		Sleep:     func(time.Duration) {},
		Rand:      rand.New(rand.NewSource(1)),
	}
	return NewServer(lesson.NewCatalog(lessons...), reg, nil, cfg, time.Second, logging.Discard(), "test")
}

func autoFillLesson() *lesson.Lesson {
	return &lesson.Lesson{
		ID:                  12,
		Title:               "Sliders",
		Language:            "starlark",
		StarterCode:         "# edit me",
		ExpectedOutput:      "42",
		InteractionRequired: true,
		Plan: plan.Plan{
			plan.VariableSlider{Name: "speed", Min: 0, Max: 100, Step: 1, Initial: 42},
			plan.SendToEditor{Template: "speed = {{speed}}\nprint(speed)", TemplateID: "t1"},
		},
	}
}

func TestOpenLessonUnknown(t *testing.T) {
	server := testServer(t, &mockRunner{})

	_, _, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 99})
	if err == nil {
		t.Fatalf("expected error for unknown lesson")
	}
}

func TestOpenLessonAutoFills(t *testing.T) {
	server := testServer(t, &mockRunner{}, autoFillLesson())

	_, out, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 12})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}
	if out.EditorCode != "speed = 42\nprint(speed)" {
		t.Errorf("auto-fill should resolve the slider initial, got %q", out.EditorCode)
	}
	for _, item := range out.Items {
		if item.Kind == plan.TypeSendToEditor {
			t.Errorf("send_to_editor must not appear in the render list")
		}
	}
}

func TestSetVariableReFiresAutoFill(t *testing.T) {
	server := testServer(t, &mockRunner{}, autoFillLesson())

	_, opened, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 12})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}

	_, _, err = server.handleSetVariable(context.Background(), nil, SetVariableInput{
		SessionID: opened.SessionID, Name: "speed", Value: 7,
	})
	if err != nil {
		t.Fatalf("set_variable: %v", err)
	}

	_, render, err := server.handleGetRenderList(context.Background(), nil, SessionInput{SessionID: opened.SessionID})
	if err != nil {
		t.Fatalf("get_render_list: %v", err)
	}
	if render.EditorCode != "speed = 7\nprint(speed)" {
		t.Errorf("changed variable should re-fire auto-fill, got %q", render.EditorCode)
	}
}

func TestSliderSetClampsAndCountsDecision(t *testing.T) {
	server := testServer(t, &mockRunner{}, autoFillLesson())

	_, opened, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 12})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}

	_, out, err := server.handleSliderSet(context.Background(), nil, SliderSetInput{
		SessionID: opened.SessionID, Item: 0, Value: 150,
	})
	if err != nil {
		t.Fatalf("slider_set: %v", err)
	}
	if out.Name != "speed" || out.Value != 100 {
		t.Errorf("slider_set = %+v; want speed clamped to 100", out)
	}

	// moving the slider is an interaction, raw set_variable is not
	_, report, err := server.handleGetReport(context.Background(), nil, SessionInput{SessionID: opened.SessionID})
	if err != nil {
		t.Fatalf("get_report: %v", err)
	}
	changes := 0
	for _, e := range report.Events {
		if e.Meta["type"] == "slider_change" {
			changes++
		}
	}
	if changes != 1 {
		t.Errorf("recorded %d slider_change decisions; want 1", changes)
	}

	_, render, err := server.handleGetRenderList(context.Background(), nil, SessionInput{SessionID: opened.SessionID})
	if err != nil {
		t.Fatalf("get_render_list: %v", err)
	}
	if render.EditorCode != "speed = 100\nprint(speed)" {
		t.Errorf("slider change should re-fire auto-fill, got %q", render.EditorCode)
	}

	_, _, err = server.handleSliderSet(context.Background(), nil, SliderSetInput{
		SessionID: opened.SessionID, Item: 1, Value: 5,
	})
	if err == nil {
		t.Errorf("expected an error for a non-slider item")
	}
}

func TestSubmitGateBlocksUntilInteraction(t *testing.T) {
	l := &lesson.Lesson{
		ID:                  5,
		ExpectedOutput:      "hi",
		InteractionRequired: true,
		Plan: plan.Plan{
			plan.Prediction{Question: "?", Options: []string{"a", "b"}, CorrectIndex: 0},
		},
	}
	runner := &mockRunner{result: runtime.Result{Stdout: "hi"}}
	server := testServer(t, runner, l)

	_, opened, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 5})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}

	_, blocked, err := server.handleSubmitCode(context.Background(), nil, SubmitCodeInput{
		SessionID: opened.SessionID, Code: "print('hi')",
	})
	if err != nil {
		t.Fatalf("submit_code: %v", err)
	}
	if blocked.Allowed {
		t.Fatalf("gate should block before any interaction")
	}
	if runner.lastCode != "" {
		t.Errorf("blocked submission must not run code")
	}

	_, choice, err := server.handleChoiceSelect(context.Background(), nil, ChoiceSelectInput{
		SessionID: opened.SessionID, Item: 0, Index: 0,
	})
	if err != nil {
		t.Fatalf("choice_select: %v", err)
	}
	if choice.Correct == nil || !*choice.Correct {
		t.Errorf("expected correct prediction, got %+v", choice)
	}

	_, allowed, err := server.handleSubmitCode(context.Background(), nil, SubmitCodeInput{
		SessionID: opened.SessionID, Code: "print('hi')",
	})
	if err != nil {
		t.Fatalf("submit_code: %v", err)
	}
	if !allowed.Allowed {
		t.Fatalf("gate should open after prediction check")
	}
	if !allowed.Correct || allowed.Score != 100 {
		t.Errorf("expected perfect match, got %+v", allowed)
	}
}

func TestSubmitRunsEditorCodeByDefault(t *testing.T) {
	runner := &mockRunner{result: runtime.Result{Stdout: "42"}}
	server := testServer(t, runner, autoFillLesson())

	_, opened, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 12})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}

	_, out, err := server.handleSubmitCode(context.Background(), nil, SubmitCodeInput{SessionID: opened.SessionID})
	if err != nil {
		t.Fatalf("submit_code: %v", err)
	}
	if runner.lastCode != "speed = 42\nprint(speed)" {
		t.Errorf("empty submission should run the editor contents, ran %q", runner.lastCode)
	}
	if !out.Correct {
		t.Errorf("expected correct verdict, got %+v", out)
	}
}

func TestSubmitSurfacesInterpreterError(t *testing.T) {
	runner := &mockRunner{err: context.DeadlineExceeded}
	server := testServer(t, runner, autoFillLesson())

	_, opened, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 12})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}

	_, out, err := server.handleSubmitCode(context.Background(), nil, SubmitCodeInput{SessionID: opened.SessionID})
	if err != nil {
		t.Fatalf("submit_code should not fail on interpreter errors: %v", err)
	}
	if out.Correct {
		t.Errorf("errored run cannot be correct")
	}
	if out.Stdout == "" {
		t.Errorf("error text should surface as output")
	}
}

func TestStepperTools(t *testing.T) {
	l := &lesson.Lesson{
		ID: 8,
		Plan: plan.Plan{
			plan.StepExecutor{Code: "x = 1", Steps: []plan.Step{
				{Label: "one", Output: "x is 1", Effects: map[string]any{"x": 1}},
				{Label: "two", Output: "x is 2", Effects: map[string]any{"x": 2}},
			}},
		},
	}
	server := testServer(t, &mockRunner{}, l)

	_, opened, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 8})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}

	_, step, err := server.handleStepperNext(context.Background(), nil, ItemInput{SessionID: opened.SessionID, Item: 0})
	if err != nil {
		t.Fatalf("stepper_next: %v", err)
	}
	if !step.Advanced || step.Cursor != 0 || step.Output != "x is 1" {
		t.Errorf("first step: %+v", step)
	}

	_, vars, err := server.handleGetVariables(context.Background(), nil, SessionInput{SessionID: opened.SessionID})
	if err != nil {
		t.Fatalf("get_variables: %v", err)
	}
	if got := vars.Variables["x"]; got != 1 {
		t.Errorf("step effect should write x=1, got %v", got)
	}

	_, step, err = server.handleStepperNext(context.Background(), nil, ItemInput{SessionID: opened.SessionID, Item: 0})
	if err != nil {
		t.Fatalf("stepper_next: %v", err)
	}
	if !step.Complete {
		t.Errorf("two steps taken, expected complete: %+v", step)
	}

	_, step, err = server.handleStepperReset(context.Background(), nil, ItemInput{SessionID: opened.SessionID, Item: 0})
	if err != nil {
		t.Fatalf("stepper_reset: %v", err)
	}
	if step.Cursor != -1 || step.Complete {
		t.Errorf("reset should rewind: %+v", step)
	}
}

func TestStepperPlayPushesEachResolution(t *testing.T) {
	l := &lesson.Lesson{
		ID: 9,
		Plan: plan.Plan{
			plan.StepExecutor{Steps: []plan.Step{
				{Label: "one", Effects: map[string]any{"n": 1}},
				{Label: "two", Effects: map[string]any{"n": 2}},
			}},
			plan.SendToEditor{Template: "x = {{n}}\nprint(x)", TemplateID: "t1"},
		},
	}
	server := testServer(t, &mockRunner{}, l)

	_, opened, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 9})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}

	if _, _, err := server.handleStepperPlay(context.Background(), nil, ItemInput{SessionID: opened.SessionID, Item: 0}); err != nil {
		t.Fatalf("stepper_play: %v", err)
	}

	ls, st, err := server.stepperAt(opened.SessionID, 0)
	if err != nil {
		t.Fatalf("stepperAt: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		ls.sess.Lock()
		done := st.Complete() && !st.IsPlaying()
		ls.sess.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("playback did not finish")
		}
		time.Sleep(time.Millisecond)
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()

	// one push at open for the unset resolution, then one per step as n
	// changes: the intermediate "x = 1" text reaches the editor too, not
	// only the final state
	pushes := 0
	for _, e := range ls.sess.Events.Events() {
		if e.Name == session.EventDecisionMade && e.Meta["type"] == "send_to_editor_auto" {
			pushes++
		}
	}
	if pushes != 3 {
		t.Errorf("recorded %d editor pushes; want 3 (open plus one per step)", pushes)
	}
	if ls.editor.code != "x = 2\nprint(x)" {
		t.Errorf("editor ended with %q", ls.editor.code)
	}
}

func TestSlotSelectWrongItemType(t *testing.T) {
	server := testServer(t, &mockRunner{}, autoFillLesson())

	_, opened, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 12})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}

	_, _, err = server.handleSlotSelect(context.Background(), nil, SlotSelectInput{
		SessionID: opened.SessionID, Item: 0, Blank: "b1", Value: "x",
	})
	if err == nil || !strings.Contains(err.Error(), "not a fill-in item") {
		t.Fatalf("expected type mismatch error, got %v", err)
	}
}

func TestResetStateClearsReport(t *testing.T) {
	server := testServer(t, &mockRunner{}, autoFillLesson())

	_, opened, err := server.handleOpenLesson(context.Background(), nil, OpenLessonInput{LessonID: 12})
	if err != nil {
		t.Fatalf("open_lesson: %v", err)
	}

	_, report, err := server.handleGetReport(context.Background(), nil, SessionInput{SessionID: opened.SessionID})
	if err != nil {
		t.Fatalf("get_report: %v", err)
	}
	if report.Decisions == 0 || report.Consequences == 0 {
		t.Fatalf("auto-fill should have recorded interactions: %+v", report)
	}

	if _, _, err := server.handleResetState(context.Background(), nil, SessionInput{SessionID: opened.SessionID}); err != nil {
		t.Fatalf("reset_state: %v", err)
	}

	_, report, err = server.handleGetReport(context.Background(), nil, SessionInput{SessionID: opened.SessionID})
	if err != nil {
		t.Fatalf("get_report: %v", err)
	}
	if report.Decisions != 0 || len(report.Events) != 0 {
		t.Errorf("reset should clear telemetry: %+v", report)
	}

	_, _, err = server.handleCloseLesson(context.Background(), nil, CloseLessonInput{SessionID: opened.SessionID})
	if err != nil {
		t.Fatalf("close_lesson: %v", err)
	}
	if _, _, err := server.handleGetReport(context.Background(), nil, SessionInput{SessionID: opened.SessionID}); err == nil {
		t.Errorf("closed session should be gone")
	}
}
