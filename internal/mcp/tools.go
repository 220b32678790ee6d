package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"codelab/internal/session"
	"codelab/internal/widget"
)

type OpenLessonInput struct {
	LessonID int `json:"lesson_id" jsonschema:"numeric lesson id"`
}

type CloseLessonInput struct {
	SessionID string `json:"session_id" jsonschema:"session to drop"`
}

type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from open_lesson"`
}

type SetVariableInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from open_lesson"`
	Name      string `json:"name" jsonschema:"variable name"`
	Value     any    `json:"value" jsonschema:"new value"`
}

type RecordEventInput struct {
	SessionID string         `json:"session_id" jsonschema:"session id from open_lesson"`
	Name      string         `json:"name" jsonschema:"event name"`
	Meta      map[string]any `json:"meta,omitempty" jsonschema:"optional event metadata"`
}

type ItemInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from open_lesson"`
	Item      int    `json:"item" jsonschema:"index into the render list"`
}

type PuzzleMoveInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from open_lesson"`
	Item      int    `json:"item" jsonschema:"index into the render list"`
	From      int    `json:"from" jsonschema:"line index to move"`
	To        int    `json:"to" jsonschema:"destination index"`
}

type SlotSelectInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from open_lesson"`
	Item      int    `json:"item" jsonschema:"index into the render list"`
	Blank     string `json:"blank" jsonschema:"blank id"`
	Value     string `json:"value" jsonschema:"selected option"`
}

type ChoiceSelectInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from open_lesson"`
	Item      int    `json:"item" jsonschema:"index into the render list"`
	Index     int    `json:"index" jsonschema:"chosen option index"`
}

type SliderSetInput struct {
	SessionID string  `json:"session_id" jsonschema:"session id from open_lesson"`
	Item      int     `json:"item" jsonschema:"index into the render list"`
	Value     float64 `json:"value" jsonschema:"new slider position"`
}

type DropValueInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from open_lesson"`
	Item      int    `json:"item" jsonschema:"index into the render list"`
	Value     any    `json:"value" jsonschema:"value to drop onto the target"`
}

type RenderItemOutput struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
}

type OpenLessonOutput struct {
	SessionID   string             `json:"session_id"`
	Title       string             `json:"title"`
	Language    string             `json:"language"`
	StarterCode string             `json:"starter_code"`
	EditorCode  string             `json:"editor_code"`
	Items       []RenderItemOutput `json:"items"`
}

type CloseLessonOutput struct {
	Closed bool `json:"closed"`
}

type RenderListOutput struct {
	Items      []RenderItemOutput `json:"items"`
	EditorCode string             `json:"editor_code"`
}

type VariablesOutput struct {
	Variables map[string]any `json:"variables"`
	Selected  any            `json:"selected,omitempty"`
}

type EventCountsOutput struct {
	Events       int `json:"events"`
	Decisions    int `json:"decisions"`
	Consequences int `json:"consequences"`
}

type StepperOutput struct {
	Cursor   int    `json:"cursor"`
	Complete bool   `json:"complete"`
	Playing  bool   `json:"playing"`
	Output   string `json:"output,omitempty"`
	Advanced bool   `json:"advanced"`
}

type PuzzleOutput struct {
	Lines  []string `json:"lines"`
	Solved bool     `json:"solved"`
}

type SlotOutput struct {
	Rendered string `json:"rendered"`
	Solved   bool   `json:"solved"`
}

type ChoiceOutput struct {
	Kind        string `json:"kind"`
	Correct     *bool  `json:"correct,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
}

type HintOutput struct {
	Hint     string `json:"hint"`
	Revealed int    `json:"revealed"`
	HasMore  bool   `json:"has_more"`
}

type DropOutput struct {
	Accepted bool `json:"accepted"`
	Value    any  `json:"value,omitempty"`
}

type SliderOutput struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "open_lesson",
		Description: "Open a lesson and start a fresh session",
	}, s.handleOpenLesson)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "close_lesson",
		Description: "Drop a session and all its widget state",
	}, s.handleCloseLesson)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_render_list",
		Description: "List the renderable plan items for a session",
	}, s.handleGetRenderList)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_variable",
		Description: "Write a session variable",
	}, s.handleSetVariable)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_variables",
		Description: "Read all session variables",
	}, s.handleGetVariables)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "record_event",
		Description: "Append a telemetry event",
	}, s.handleRecordEvent)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "reset_state",
		Description: "Clear session variables and telemetry",
	}, s.handleResetState)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "stepper_next",
		Description: "Advance a stepper item by one step",
	}, s.handleStepperNext)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "stepper_play",
		Description: "Start automatic stepper playback",
	}, s.handleStepperPlay)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "stepper_cancel",
		Description: "Request playback stop at the next step boundary",
	}, s.handleStepperCancel)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "stepper_reset",
		Description: "Rewind a stepper item to not started",
	}, s.handleStepperReset)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "puzzle_move",
		Description: "Move a line within an ordering puzzle",
	}, s.handlePuzzleMove)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "slot_select",
		Description: "Pick an option for a fill-in blank",
	}, s.handleSlotSelect)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "choice_select",
		Description: "Answer a prediction, path choice, or debug quest",
	}, s.handleChoiceSelect)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "reveal_hint",
		Description: "Reveal the next hint on a hint ladder",
	}, s.handleRevealHint)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "slider_set",
		Description: "Move a variable slider to a new value",
	}, s.handleSliderSet)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "drop_value",
		Description: "Drop a value onto a memory box or drag target",
	}, s.handleDropValue)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "submit_code",
		Description: "Run submitted code and verify its output",
	}, s.handleSubmitCode)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_report",
		Description: "Summarize session telemetry and gate status",
	}, s.handleGetReport)
}

func (s *Server) handleOpenLesson(ctx context.Context, req *sdk.CallToolRequest, input OpenLessonInput) (*sdk.CallToolResult, OpenLessonOutput, error) {
	l, ok := s.catalog.Get(input.LessonID)
	if !ok {
		return nil, OpenLessonOutput{}, fmt.Errorf("lesson %d not found", input.LessonID)
	}

	ls := s.openSession(l)
	ls.sess.Lock()
	ls.dispatcher.Evaluate()
	out := OpenLessonOutput{
		SessionID:   ls.sess.ID,
		Title:       l.Title,
		Language:    l.Language,
		StarterCode: l.StarterCode,
		EditorCode:  ls.editor.code,
		Items:       renderItems(ls),
	}
	ls.sess.Unlock()
	return nil, out, nil
}

func (s *Server) handleCloseLesson(ctx context.Context, req *sdk.CallToolRequest, input CloseLessonInput) (*sdk.CallToolResult, CloseLessonOutput, error) {
	if _, err := s.session(input.SessionID); err != nil {
		return nil, CloseLessonOutput{}, err
	}
	s.dropSession(input.SessionID)
	return nil, CloseLessonOutput{Closed: true}, nil
}

func (s *Server) handleGetRenderList(ctx context.Context, req *sdk.CallToolRequest, input SessionInput) (*sdk.CallToolResult, RenderListOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, RenderListOutput{}, err
	}
	ls.sess.Lock()
	defer ls.sess.Unlock()
	return nil, RenderListOutput{Items: renderItems(ls), EditorCode: ls.editor.code}, nil
}

func (s *Server) handleSetVariable(ctx context.Context, req *sdk.CallToolRequest, input SetVariableInput) (*sdk.CallToolResult, VariablesOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, VariablesOutput{}, err
	}
	if input.Name == "" {
		return nil, VariablesOutput{}, fmt.Errorf("name is required")
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()
	ls.sess.Vars.SetVariable(input.Name, input.Value)
	ls.dispatcher.Evaluate()
	return nil, variablesOutput(ls), nil
}

func (s *Server) handleGetVariables(ctx context.Context, req *sdk.CallToolRequest, input SessionInput) (*sdk.CallToolResult, VariablesOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, VariablesOutput{}, err
	}
	ls.sess.Lock()
	defer ls.sess.Unlock()
	return nil, variablesOutput(ls), nil
}

func (s *Server) handleRecordEvent(ctx context.Context, req *sdk.CallToolRequest, input RecordEventInput) (*sdk.CallToolResult, EventCountsOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, EventCountsOutput{}, err
	}
	if input.Name == "" {
		return nil, EventCountsOutput{}, fmt.Errorf("name is required")
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()
	ls.sess.Events.RecordEvent(session.EventName(input.Name), input.Meta)
	return nil, eventCounts(ls), nil
}

func (s *Server) handleResetState(ctx context.Context, req *sdk.CallToolRequest, input SessionInput) (*sdk.CallToolResult, VariablesOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, VariablesOutput{}, err
	}
	ls.sess.Lock()
	defer ls.sess.Unlock()
	ls.sess.ResetState()
	return nil, variablesOutput(ls), nil
}

func (s *Server) handleStepperNext(ctx context.Context, req *sdk.CallToolRequest, input ItemInput) (*sdk.CallToolResult, StepperOutput, error) {
	ls, st, err := s.stepperAt(input.SessionID, input.Item)
	if err != nil {
		return nil, StepperOutput{}, err
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()
	advanced := st.Next()
	if advanced {
		ls.dispatcher.Evaluate()
	}
	return nil, stepperOutput(st, advanced), nil
}

func (s *Server) handleStepperPlay(ctx context.Context, req *sdk.CallToolRequest, input ItemInput) (*sdk.CallToolResult, StepperOutput, error) {
	ls, st, err := s.stepperAt(input.SessionID, input.Item)
	if err != nil {
		return nil, StepperOutput{}, err
	}

	ls.sess.Lock()
	if st.IsPlaying() {
		out := stepperOutput(st, false)
		ls.sess.Unlock()
		return nil, out, nil
	}
	ls.sess.Unlock()

	// Evaluate runs under the session lock after every applied step, so a
	// send_to_editor that reads a variable the steps write pushes each
	// intermediate resolution, not only the final one.
	go st.Play(ls.sess, ls.dispatcher.Evaluate)

	ls.sess.Lock()
	defer ls.sess.Unlock()
	return nil, stepperOutput(st, false), nil
}

func (s *Server) handleStepperCancel(ctx context.Context, req *sdk.CallToolRequest, input ItemInput) (*sdk.CallToolResult, StepperOutput, error) {
	ls, st, err := s.stepperAt(input.SessionID, input.Item)
	if err != nil {
		return nil, StepperOutput{}, err
	}
	ls.sess.Lock()
	defer ls.sess.Unlock()
	st.CancelPlay()
	return nil, stepperOutput(st, false), nil
}

func (s *Server) handleStepperReset(ctx context.Context, req *sdk.CallToolRequest, input ItemInput) (*sdk.CallToolResult, StepperOutput, error) {
	ls, st, err := s.stepperAt(input.SessionID, input.Item)
	if err != nil {
		return nil, StepperOutput{}, err
	}
	ls.sess.Lock()
	defer ls.sess.Unlock()
	st.Reset()
	return nil, stepperOutput(st, false), nil
}

func (s *Server) handlePuzzleMove(ctx context.Context, req *sdk.CallToolRequest, input PuzzleMoveInput) (*sdk.CallToolResult, PuzzleOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, PuzzleOutput{}, err
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()
	w, err := ls.widgetAt(input.Item)
	if err != nil {
		return nil, PuzzleOutput{}, err
	}
	puzzle, ok := w.(*widget.OrderPuzzle)
	if !ok {
		return nil, PuzzleOutput{}, fmt.Errorf("item %d is %s, not an ordering puzzle", input.Item, w.Kind())
	}
	if err := puzzle.Move(input.From, input.To); err != nil {
		return nil, PuzzleOutput{}, err
	}
	return nil, PuzzleOutput{Lines: puzzle.Lines(), Solved: puzzle.Solved()}, nil
}

func (s *Server) handleSlotSelect(ctx context.Context, req *sdk.CallToolRequest, input SlotSelectInput) (*sdk.CallToolResult, SlotOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, SlotOutput{}, err
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()
	w, err := ls.widgetAt(input.Item)
	if err != nil {
		return nil, SlotOutput{}, err
	}
	slots, ok := w.(*widget.SlotFill)
	if !ok {
		return nil, SlotOutput{}, fmt.Errorf("item %d is %s, not a fill-in item", input.Item, w.Kind())
	}
	if err := slots.Select(input.Blank, input.Value); err != nil {
		return nil, SlotOutput{}, err
	}
	return nil, SlotOutput{Rendered: slots.Rendered(), Solved: slots.Solved()}, nil
}

func (s *Server) handleChoiceSelect(ctx context.Context, req *sdk.CallToolRequest, input ChoiceSelectInput) (*sdk.CallToolResult, ChoiceOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, ChoiceOutput{}, err
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()
	w, err := ls.widgetAt(input.Item)
	if err != nil {
		return nil, ChoiceOutput{}, err
	}

	switch c := w.(type) {
	case *widget.Prediction:
		if err := c.Select(input.Index); err != nil {
			return nil, ChoiceOutput{}, err
		}
		correct, explanation, err := c.Check()
		if err != nil {
			return nil, ChoiceOutput{}, err
		}
		return nil, ChoiceOutput{Kind: c.Kind(), Correct: &correct, Explanation: explanation}, nil

	case *widget.Path:
		outcome, err := c.Choose(input.Index)
		if err != nil {
			return nil, ChoiceOutput{}, err
		}
		return nil, ChoiceOutput{Kind: c.Kind(), Outcome: outcome}, nil

	case *widget.DebugQuest:
		correct, err := c.Choose(input.Index)
		if err != nil {
			return nil, ChoiceOutput{}, err
		}
		return nil, ChoiceOutput{Kind: c.Kind(), Correct: &correct}, nil

	case *widget.ResetTrigger:
		c.Trigger()
		return nil, ChoiceOutput{Kind: c.Kind()}, nil

	default:
		return nil, ChoiceOutput{}, fmt.Errorf("item %d is %s, not a choice item", input.Item, w.Kind())
	}
}

func (s *Server) handleRevealHint(ctx context.Context, req *sdk.CallToolRequest, input ItemInput) (*sdk.CallToolResult, HintOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, HintOutput{}, err
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()
	w, err := ls.widgetAt(input.Item)
	if err != nil {
		return nil, HintOutput{}, err
	}
	ladder, ok := w.(*widget.HintLadder)
	if !ok {
		return nil, HintOutput{}, fmt.Errorf("item %d is %s, not a hint ladder", input.Item, w.Kind())
	}
	hint, ok := ladder.RevealNext()
	if !ok {
		return nil, HintOutput{}, fmt.Errorf("all %d hints already revealed", ladder.Total())
	}
	return nil, HintOutput{Hint: hint, Revealed: ladder.RevealedCount(), HasMore: ladder.RevealedCount() < ladder.Total()}, nil
}

func (s *Server) handleDropValue(ctx context.Context, req *sdk.CallToolRequest, input DropValueInput) (*sdk.CallToolResult, DropOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, DropOutput{}, err
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()
	w, err := ls.widgetAt(input.Item)
	if err != nil {
		return nil, DropOutput{}, err
	}
	target, ok := w.(*widget.ValueTarget)
	if !ok {
		return nil, DropOutput{}, fmt.Errorf("item %d is %s, not a drop target", input.Item, w.Kind())
	}
	if err := target.Drop(input.Value); err != nil {
		return nil, DropOutput{Accepted: false}, nil
	}
	ls.dispatcher.Evaluate()
	value, _ := target.Value()
	return nil, DropOutput{Accepted: true, Value: value}, nil
}

// handleSliderSet moves a slider through its widget, so the change is
// clamped and counts as a decision, unlike a raw set_variable.
func (s *Server) handleSliderSet(ctx context.Context, req *sdk.CallToolRequest, input SliderSetInput) (*sdk.CallToolResult, SliderOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, SliderOutput{}, err
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()
	w, err := ls.widgetAt(input.Item)
	if err != nil {
		return nil, SliderOutput{}, err
	}
	slider, ok := w.(*widget.Slider)
	if !ok {
		return nil, SliderOutput{}, fmt.Errorf("item %d is %s, not a slider", input.Item, w.Kind())
	}
	slider.Set(input.Value)
	ls.dispatcher.Evaluate()
	return nil, SliderOutput{Name: slider.Name(), Value: slider.Value()}, nil
}

func (s *Server) stepperAt(sessionID string, item int) (*liveSession, *widget.Stepper, error) {
	ls, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ls.sess.Lock()
	defer ls.sess.Unlock()
	w, err := ls.widgetAt(item)
	if err != nil {
		return nil, nil, err
	}
	st, ok := w.(*widget.Stepper)
	if !ok {
		return nil, nil, fmt.Errorf("item %d is %s, not a stepper", item, w.Kind())
	}
	return ls, st, nil
}

func stepperOutput(st *widget.Stepper, advanced bool) StepperOutput {
	out := StepperOutput{
		Cursor:   st.Cursor(),
		Complete: st.Complete(),
		Playing:  st.IsPlaying(),
		Advanced: advanced,
	}
	if outputs := st.Outputs(); len(outputs) > 0 {
		out.Output = outputs[len(outputs)-1]
	}
	return out
}

func renderItems(ls *liveSession) []RenderItemOutput {
	out := make([]RenderItemOutput, 0, len(ls.render))
	for i, item := range ls.render {
		out = append(out, RenderItemOutput{Index: i, Kind: item.ItemType()})
	}
	return out
}

func variablesOutput(ls *liveSession) VariablesOutput {
	return VariablesOutput{
		Variables: ls.sess.Vars.Variables(),
		Selected:  ls.sess.Vars.Selected(),
	}
}

func eventCounts(ls *liveSession) EventCountsOutput {
	return EventCountsOutput{
		Events:       len(ls.sess.Events.Events()),
		Decisions:    ls.sess.Events.DecisionCount(),
		Consequences: ls.sess.Events.ConsequenceCount(),
	}
}
