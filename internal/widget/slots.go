package widget

import (
	"fmt"
	"strings"

	"codelab/internal/plan"
	"codelab/internal/session"
)

// SlotFill is the fill-blanks / token-slot puzzle: a template with {{id}}
// placeholders, each with a designated correct option. Unlike the order
// puzzle, solved is recomputed from the current selections, so changing a
// previously-correct slot reverts it. The puzzle_solved consequence still
// fires only once per mount.
type SlotFill struct {
	kind     string
	template string
	blanks   []plan.Blank
	selected map[string]string
	events   *session.Recorder

	solvedFired bool
}

func NewSlotFill(kind, template string, blanks []plan.Blank, events *session.Recorder) *SlotFill {
	return &SlotFill{
		kind:     kind,
		template: template,
		blanks:   blanks,
		selected: make(map[string]string),
		events:   events,
	}
}

func (s *SlotFill) Kind() string { return s.kind }

// Select sets the learner's choice for one blank. Each selection is an
// independent decision.
func (s *SlotFill) Select(id, value string) error {
	blank, ok := s.blank(id)
	if !ok {
		return fmt.Errorf("unknown blank %q", id)
	}
	if len(blank.Options) > 0 && !contains(blank.Options, value) {
		return fmt.Errorf("value %q is not an option for blank %q", value, id)
	}

	s.selected[id] = value
	s.events.RecordDecision("blank_selected", map[string]any{
		"blank": id,
		"value": value,
	})

	if !s.solvedFired && s.Solved() {
		s.solvedFired = true
		s.events.RecordConsequence("puzzle_solved", map[string]any{
			"widget": s.kind,
		})
	}
	return nil
}

// Solved holds exactly when every blank has a selection and every selection
// equals its designated correct value.
func (s *SlotFill) Solved() bool {
	for _, blank := range s.blanks {
		value, ok := s.selected[blank.ID]
		if !ok || value != blank.Correct {
			return false
		}
	}
	return true
}

func (s *SlotFill) Selection(id string) (string, bool) {
	v, ok := s.selected[id]
	return v, ok
}

// Rendered substitutes current selections into the template; unselected
// blanks render as a gap.
func (s *SlotFill) Rendered() string {
	out := s.template
	for _, blank := range s.blanks {
		value, ok := s.selected[blank.ID]
		if !ok {
			value = "____"
		}
		out = strings.ReplaceAll(out, "{{"+blank.ID+"}}", value)
	}
	return out
}

func (s *SlotFill) blank(id string) (plan.Blank, bool) {
	for _, b := range s.blanks {
		if b.ID == id {
			return b, true
		}
	}
	return plan.Blank{}, false
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
