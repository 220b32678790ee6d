package widget

import (
	"fmt"

	"codelab/internal/plan"
	"codelab/internal/session"
)

// Store-bound widgets share one contract: on mount, write the initial value
// only when the bound name is absent; every later change writes through
// synchronously. Widgets bound to the same name are last-write-wins.

// Slider binds a numeric variable with a clamped range.
type Slider struct {
	item   plan.VariableSlider
	store  *session.Store
	events *session.Recorder
}

func NewSlider(item plan.VariableSlider, store *session.Store, events *session.Recorder) *Slider {
	if _, ok := store.Variable(item.Name); !ok {
		store.SetVariable(item.Name, item.Initial)
	}
	return &Slider{item: item, store: store, events: events}
}

func (s *Slider) Kind() string { return plan.TypeVariableSlider }
func (s *Slider) Name() string { return s.item.Name }

func (s *Slider) Value() float64 {
	if v, ok := s.store.Variable(s.item.Name); ok {
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return s.item.Initial
}

// Set clamps into [min, max], writes through, and records the decision.
func (s *Slider) Set(value float64) {
	if value < s.item.Min {
		value = s.item.Min
	}
	if value > s.item.Max {
		value = s.item.Max
	}
	s.store.SetVariable(s.item.Name, value)
	s.events.RecordDecision("slider_change", map[string]any{
		"name":  s.item.Name,
		"value": value,
	})
}

// ValueTarget backs memory_box and draggable_value: a named slot that
// accepts a value, optionally restricted to an accepted list.
type ValueTarget struct {
	kind     string
	name     string
	accepted []any
	store    *session.Store
	events   *session.Recorder
}

func NewValueTarget(kind, name string, accepted []any, initial any, store *session.Store, events *session.Recorder) *ValueTarget {
	if _, ok := store.Variable(name); !ok && initial != nil {
		store.SetVariable(name, initial)
	}
	return &ValueTarget{kind: kind, name: name, accepted: accepted, store: store, events: events}
}

func (t *ValueTarget) Kind() string { return t.kind }
func (t *ValueTarget) Name() string { return t.name }

func (t *ValueTarget) Value() (any, bool) {
	return t.store.Variable(t.name)
}

// Drop stores a value into the target. A non-empty accepted list rejects
// anything outside it. Accepted drops record a decision and a consequence
// and clear the drag-selection side channel.
func (t *ValueTarget) Drop(value any) error {
	if len(t.accepted) > 0 && !acceptedValue(t.accepted, value) {
		return fmt.Errorf("value %v is not accepted by %q", value, t.name)
	}
	t.store.SetVariable(t.name, value)
	t.store.SetSelected(nil)
	t.events.RecordDecision("value_dropped", map[string]any{
		"name":  t.name,
		"value": value,
	})
	t.events.RecordConsequence("value_stored", map[string]any{
		"name": t.name,
	})
	return nil
}

func acceptedValue(accepted []any, value any) bool {
	for _, a := range accepted {
		if a == value {
			return true
		}
		af, aok := toFloat(a)
		vf, vok := toFloat(value)
		if aok && vok && af == vf {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
