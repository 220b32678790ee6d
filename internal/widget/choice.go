package widget

import (
	"fmt"

	"codelab/internal/plan"
	"codelab/internal/session"
)

const noSelection = -1

// Prediction is the reveal-on-check quiz: select an option, then check to
// reveal the explanation.
type Prediction struct {
	item     plan.Prediction
	events   *session.Recorder
	selected int
	revealed bool
}

func NewPrediction(item plan.Prediction, events *session.Recorder) *Prediction {
	return &Prediction{item: item, events: events, selected: noSelection}
}

func (p *Prediction) Kind() string   { return plan.TypePrediction }
func (p *Prediction) Selected() int  { return p.selected }
func (p *Prediction) Revealed() bool { return p.revealed }

func (p *Prediction) Select(index int) error {
	if index < 0 || index >= len(p.item.Options) {
		return fmt.Errorf("option %d out of range", index)
	}
	if p.revealed {
		return fmt.Errorf("prediction already checked")
	}
	p.selected = index
	p.events.RecordDecision("prediction_selected", map[string]any{
		"option": index,
	})
	return nil
}

// Check reveals the explanation and reports correctness. A correct guess
// also records a prediction_correct event.
func (p *Prediction) Check() (bool, string, error) {
	if p.selected == noSelection {
		return false, "", fmt.Errorf("no option selected")
	}
	if !p.revealed {
		p.revealed = true
		p.events.RecordConsequence("explanation_shown", map[string]any{
			"correct": p.selected == p.item.CorrectIndex,
		})
		if p.selected == p.item.CorrectIndex {
			p.events.RecordEvent(session.EventPredictionCorrect, map[string]any{
				"option": p.selected,
			})
		}
	}
	return p.selected == p.item.CorrectIndex, p.item.Explanation, nil
}

// HintLadder reveals its hints one at a time, never more than authored.
type HintLadder struct {
	item     plan.HintLadder
	events   *session.Recorder
	revealed int
}

func NewHintLadder(item plan.HintLadder, events *session.Recorder) *HintLadder {
	return &HintLadder{item: item, events: events}
}

func (h *HintLadder) Kind() string       { return plan.TypeHintLadder }
func (h *HintLadder) RevealedCount() int { return h.revealed }
func (h *HintLadder) Total() int         { return len(h.item.Hints) }

func (h *HintLadder) RevealNext() (string, bool) {
	if h.revealed >= len(h.item.Hints) {
		return "", false
	}
	hint := h.item.Hints[h.revealed]
	h.revealed++
	h.events.RecordEvent(session.EventHintUsed, map[string]any{
		"level": h.revealed,
	})
	return hint, true
}

// Path is the branch-select widget: pick a choice, see its outcome.
type Path struct {
	item     plan.ConditionalPath
	events   *session.Recorder
	selected int
}

func NewPath(item plan.ConditionalPath, events *session.Recorder) *Path {
	return &Path{item: item, events: events, selected: noSelection}
}

func (p *Path) Kind() string  { return plan.TypeConditionalPath }
func (p *Path) Selected() int { return p.selected }

func (p *Path) Choose(index int) (string, error) {
	if index < 0 || index >= len(p.item.Choices) {
		return "", fmt.Errorf("choice %d out of range", index)
	}
	p.selected = index
	choice := p.item.Choices[index]
	p.events.RecordDecision("path_chosen", map[string]any{
		"choice": choice.Label,
	})
	p.events.RecordConsequence("outcome_shown", map[string]any{
		"choice": choice.Label,
	})
	return choice.Outcome, nil
}

// DebugQuest: pick the fix for a buggy snippet.
type DebugQuest struct {
	item     plan.DebugQuest
	events   *session.Recorder
	selected int
	revealed bool
}

func NewDebugQuest(item plan.DebugQuest, events *session.Recorder) *DebugQuest {
	return &DebugQuest{item: item, events: events, selected: noSelection}
}

func (d *DebugQuest) Kind() string { return plan.TypeDebugQuest }

func (d *DebugQuest) Choose(index int) (bool, error) {
	if index < 0 || index >= len(d.item.Options) {
		return false, fmt.Errorf("option %d out of range", index)
	}
	d.selected = index
	correct := d.item.Options[index].Correct
	d.events.RecordDecision("fix_chosen", map[string]any{
		"option": index,
	})
	if !d.revealed {
		d.revealed = true
		d.events.RecordConsequence("fix_result_shown", map[string]any{
			"correct": correct,
		})
	}
	return correct, nil
}

// ResetTrigger clears the shared store and telemetry, then records the
// reset so the fresh log still shows it happened. Widget-local state in
// other machines is deliberately untouched.
type ResetTrigger struct {
	item plan.ResetState
	sess *session.Session
}

func NewResetTrigger(item plan.ResetState, sess *session.Session) *ResetTrigger {
	return &ResetTrigger{item: item, sess: sess}
}

func (r *ResetTrigger) Kind() string { return plan.TypeResetState }

func (r *ResetTrigger) Trigger() {
	r.sess.ResetState()
	r.sess.Events.RecordEvent(session.EventResetCount, map[string]any{
		"label": r.item.Label,
	})
}
