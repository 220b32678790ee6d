// Package plan models the interaction plan attached to a lesson: an ordered
// list of typed widget descriptors, decoded from JSON or from lesson
// frontmatter. Items carry data only; their runtime state machines live in
// the widget package.
package plan

import (
	"encoding/json"
	"fmt"
)

// Item is one tagged plan entry. The concrete type is selected by the
// "type" discriminant during decoding.
type Item interface {
	ItemType() string
}

const (
	TypePrediction      = "prediction"
	TypeHintLadder      = "hint_ladder"
	TypeVariableSlider  = "variable_slider"
	TypeMemoryBox       = "memory_box"
	TypeDraggableValue  = "draggable_value"
	TypeVisualTable     = "visual_table"
	TypeLiveCodeBlock   = "live_code_block"
	TypeParsonsPuzzle   = "parsons_puzzle"
	TypeFillBlanks      = "fill_blanks"
	TypeTokenSlot       = "token_slot"
	TypeStepExecutor    = "step_executor"
	TypeMemoryMachine   = "memory_machine"
	TypeLoopSimulator   = "loop_simulator"
	TypeConditionalPath = "conditional_path"
	TypeDataTransform   = "data_transform"
	TypeJoinVisualizer  = "join_visualizer"
	TypeDebugQuest      = "debug_quest"
	TypeGraphManip      = "graph_manipulator"
	TypeOutputDiff      = "output_diff"
	TypeStateInspector  = "state_inspector"
	TypeResetState      = "reset_state"
	TypeSendToEditor    = "send_to_editor"
)

type Prediction struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

type HintLadder struct {
	Hints []string `json:"hints"`
}

type VariableSlider struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Initial float64 `json:"initial"`
}

type MemoryBox struct {
	Name           string `json:"name"`
	Label          string `json:"label"`
	AcceptedValues []any  `json:"acceptedValues"`
	Initial        any    `json:"initial"`
}

type DraggableValue struct {
	Name           string `json:"name"`
	Label          string `json:"label"`
	AcceptedValues []any  `json:"acceptedValues"`
	Initial        any    `json:"initial"`
}

type VisualTable struct {
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type LiveCodeBlock struct {
	InitialCode string `json:"initialCode"`
	Language    string `json:"language"`
}

type ParsonsPuzzle struct {
	Prompt         string   `json:"prompt"`
	CorrectOrder   []string `json:"correctOrder"`
	ScrambledOrder []string `json:"scrambledOrder"`
}

// Blank is one fillable slot in a fill_blanks or token_slot template.
type Blank struct {
	ID      string   `json:"id"`
	Options []string `json:"options"`
	Correct string   `json:"correct"`
}

type FillBlanks struct {
	Template string  `json:"template"`
	Blanks   []Blank `json:"blanks"`
}

type TokenSlot struct {
	Template string  `json:"template"`
	Blanks   []Blank `json:"blanks"`
}

// Step is one replayable unit of a stepper item. Effects are variable
// writes applied to the session store when the step runs.
type Step struct {
	Label   string         `json:"label"`
	Output  string         `json:"output"`
	Effects map[string]any `json:"effects"`
}

type StepExecutor struct {
	Code  string `json:"code"`
	Steps []Step `json:"steps"`
}

type MemoryMachine struct {
	Steps []Step `json:"steps"`
}

type LoopSimulator struct {
	Variable   string `json:"variable"`
	Iterations []Step `json:"iterations"`
}

type PathChoice struct {
	Label   string `json:"label"`
	Outcome string `json:"outcome"`
}

type ConditionalPath struct {
	Prompt  string       `json:"prompt"`
	Choices []PathChoice `json:"choices"`
}

type DataTransform struct {
	Columns     []string `json:"columns"`
	Rows        [][]any  `json:"rows"`
	FilterCol   string   `json:"filterColumn"`
	FilterOp    string   `json:"filterOp"`
	FilterValue any      `json:"filterValue"`
}

type JoinVisualizer struct {
	LeftColumns  []string `json:"leftColumns"`
	LeftRows     [][]any  `json:"leftRows"`
	RightColumns []string `json:"rightColumns"`
	RightRows    [][]any  `json:"rightRows"`
	LeftKey      string   `json:"leftKey"`
	RightKey     string   `json:"rightKey"`
}

type FixOption struct {
	Fix     string `json:"fix"`
	Correct bool   `json:"correct"`
}

type DebugQuest struct {
	Snippet string      `json:"snippet"`
	BugLine int         `json:"bugLine"`
	Options []FixOption `json:"options"`
}

type GraphManipulator struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Mode      string  `json:"mode"`
}

type OutputDiff struct {
	Expected  string `json:"expected"`
	Actual    string `json:"actual"`
	ActualVar string `json:"actualVar"`
}

type StateInspector struct {
	Filter []string `json:"filter"`
}

type ResetState struct {
	Label string `json:"label"`
}

type SendToEditor struct {
	Template   string `json:"template"`
	TemplateID string `json:"templateId"`
}

// Unknown preserves an item whose type the engine does not understand.
// The dispatcher skips it; validate reports it as a warning.
type Unknown struct {
	Type   string
	Fields map[string]any
}

func (Prediction) ItemType() string       { return TypePrediction }
func (HintLadder) ItemType() string       { return TypeHintLadder }
func (VariableSlider) ItemType() string   { return TypeVariableSlider }
func (MemoryBox) ItemType() string        { return TypeMemoryBox }
func (DraggableValue) ItemType() string   { return TypeDraggableValue }
func (VisualTable) ItemType() string      { return TypeVisualTable }
func (LiveCodeBlock) ItemType() string    { return TypeLiveCodeBlock }
func (ParsonsPuzzle) ItemType() string    { return TypeParsonsPuzzle }
func (FillBlanks) ItemType() string       { return TypeFillBlanks }
func (TokenSlot) ItemType() string        { return TypeTokenSlot }
func (StepExecutor) ItemType() string     { return TypeStepExecutor }
func (MemoryMachine) ItemType() string    { return TypeMemoryMachine }
func (LoopSimulator) ItemType() string    { return TypeLoopSimulator }
func (ConditionalPath) ItemType() string  { return TypeConditionalPath }
func (DataTransform) ItemType() string    { return TypeDataTransform }
func (JoinVisualizer) ItemType() string   { return TypeJoinVisualizer }
func (DebugQuest) ItemType() string       { return TypeDebugQuest }
func (GraphManipulator) ItemType() string { return TypeGraphManip }
func (OutputDiff) ItemType() string       { return TypeOutputDiff }
func (StateInspector) ItemType() string   { return TypeStateInspector }
func (ResetState) ItemType() string       { return TypeResetState }
func (SendToEditor) ItemType() string     { return TypeSendToEditor }
func (u Unknown) ItemType() string        { return u.Type }

// Plan is the ordered item list; order is render order.
type Plan []Item

// Decode parses a JSON array of tagged items. Unknown extra fields are
// ignored; an unknown type becomes an Unknown item rather than an error.
func Decode(data []byte) (Plan, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding interaction plan: %w", err)
	}

	items := make(Plan, 0, len(raw))
	for i, msg := range raw {
		item, err := decodeItem(msg)
		if err != nil {
			return nil, fmt.Errorf("decoding plan item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// FromAny converts already-unmarshalled frontmatter items (as produced by
// yaml.v3) into a Plan.
func FromAny(items []any) (Plan, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding interaction plan: %w", err)
	}
	return Decode(data)
}

func decodeItem(msg json.RawMessage) (Item, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return nil, err
	}
	if head.Type == "" {
		return nil, fmt.Errorf("missing type discriminant")
	}

	into := func(v Item) (Item, error) {
		if err := json.Unmarshal(msg, v); err != nil {
			return nil, err
		}
		return deref(v), nil
	}

	switch head.Type {
	case TypePrediction:
		return into(&Prediction{})
	case TypeHintLadder:
		return into(&HintLadder{})
	case TypeVariableSlider:
		return into(&VariableSlider{})
	case TypeMemoryBox:
		return into(&MemoryBox{})
	case TypeDraggableValue:
		return into(&DraggableValue{})
	case TypeVisualTable:
		return into(&VisualTable{})
	case TypeLiveCodeBlock:
		return into(&LiveCodeBlock{})
	case TypeParsonsPuzzle:
		return into(&ParsonsPuzzle{})
	case TypeFillBlanks:
		return into(&FillBlanks{})
	case TypeTokenSlot:
		return into(&TokenSlot{})
	case TypeStepExecutor:
		return into(&StepExecutor{})
	case TypeMemoryMachine:
		return into(&MemoryMachine{})
	case TypeLoopSimulator:
		return into(&LoopSimulator{})
	case TypeConditionalPath:
		return into(&ConditionalPath{})
	case TypeDataTransform:
		return into(&DataTransform{})
	case TypeJoinVisualizer:
		return into(&JoinVisualizer{})
	case TypeDebugQuest:
		return into(&DebugQuest{})
	case TypeGraphManip:
		return into(&GraphManipulator{})
	case TypeOutputDiff:
		return into(&OutputDiff{})
	case TypeStateInspector:
		return into(&StateInspector{})
	case TypeResetState:
		return into(&ResetState{})
	case TypeSendToEditor:
		return into(&SendToEditor{})
	default:
		var fields map[string]any
		if err := json.Unmarshal(msg, &fields); err != nil {
			return nil, err
		}
		delete(fields, "type")
		return Unknown{Type: head.Type, Fields: fields}, nil
	}
}

// deref unwraps the pointer used for unmarshalling so Plan holds values.
func deref(v Item) Item {
	switch p := v.(type) {
	case *Prediction:
		return *p
	case *HintLadder:
		return *p
	case *VariableSlider:
		return *p
	case *MemoryBox:
		return *p
	case *DraggableValue:
		return *p
	case *VisualTable:
		return *p
	case *LiveCodeBlock:
		return *p
	case *ParsonsPuzzle:
		return *p
	case *FillBlanks:
		return *p
	case *TokenSlot:
		return *p
	case *StepExecutor:
		return *p
	case *MemoryMachine:
		return *p
	case *LoopSimulator:
		return *p
	case *ConditionalPath:
		return *p
	case *DataTransform:
		return *p
	case *JoinVisualizer:
		return *p
	case *DebugQuest:
		return *p
	case *GraphManipulator:
		return *p
	case *OutputDiff:
		return *p
	case *StateInspector:
		return *p
	case *ResetState:
		return *p
	case *SendToEditor:
		return *p
	default:
		return v
	}
}
