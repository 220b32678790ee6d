package widget

import (
	"sync"
	"time"

	"codelab/internal/plan"
	"codelab/internal/session"
)

// notStarted is the cursor sentinel before the first step runs.
const notStarted = -1

// Stepper replays an ordered list of steps: step_executor, memory_machine
// and loop_simulator all share it. Each applied step writes its effects to
// the shared store and records a decision plus a consequence.
type Stepper struct {
	kind  string
	steps []plan.Step

	store  *session.Store
	events *session.Recorder

	delay time.Duration
	sleep func(time.Duration)

	cursor      int
	playing     bool
	cancelAsked bool
	outputs     []string
}

func NewStepper(kind string, steps []plan.Step, sess *session.Session, cfg Config) *Stepper {
	return &Stepper{
		kind:   kind,
		steps:  steps,
		store:  sess.Vars,
		events: sess.Events,
		delay:  cfg.stepDelay(),
		sleep:  cfg.sleep(),
		cursor: notStarted,
	}
}

func (s *Stepper) Kind() string { return s.kind }

func (s *Stepper) Cursor() int     { return s.cursor }
func (s *Stepper) Started() bool   { return s.cursor > notStarted }
func (s *Stepper) IsPlaying() bool { return s.playing }

// Complete reports whether the last step has run. An empty stepper is
// complete from the start.
func (s *Stepper) Complete() bool {
	return s.cursor >= len(s.steps)-1
}

// Outputs is the widget-local trace of applied step outputs.
func (s *Stepper) Outputs() []string {
	out := make([]string, len(s.outputs))
	copy(out, s.outputs)
	return out
}

// Next advances one step. Disabled while playing or complete.
func (s *Stepper) Next() bool {
	if s.playing || s.Complete() {
		return false
	}
	s.advance()
	return true
}

// Play replays every remaining step with the configured delay between
// steps. The locker guards the session shared with other widgets: it is
// held while a step applies, released during the delay. onStep, if not
// nil, runs under the lock after every applied step so plan reactions to
// the step's effects fire at each boundary, not once at the end.
// Cancellation is cooperative and checked only at step boundaries, so a
// cancel requested while a delay is in flight still applies that one step.
func (s *Stepper) Play(lk sync.Locker, onStep func()) {
	lk.Lock()
	if s.playing || s.Complete() {
		lk.Unlock()
		return
	}
	s.playing = true
	s.cancelAsked = false
	lk.Unlock()

	for {
		s.sleep(s.delay)

		lk.Lock()
		s.advance()
		if onStep != nil {
			onStep()
		}
		if s.Complete() || s.cancelAsked {
			s.playing = false
			s.cancelAsked = false
			lk.Unlock()
			return
		}
		lk.Unlock()
	}
}

// CancelPlay requests a stop at the next step boundary. Callers must hold
// the same locker passed to Play.
func (s *Stepper) CancelPlay() {
	if s.playing {
		s.cancelAsked = true
	}
}

// Reset returns to the sentinel and clears the local trace and play flags.
// Store variables written by earlier steps are left alone; they persist
// until the store itself is reset.
func (s *Stepper) Reset() {
	s.cursor = notStarted
	s.playing = false
	s.cancelAsked = false
	s.outputs = nil
}

func (s *Stepper) advance() {
	s.cursor++
	step := s.steps[s.cursor]

	for name, value := range step.Effects {
		s.store.SetVariable(name, value)
	}
	if step.Output != "" {
		s.outputs = append(s.outputs, step.Output)
	}

	s.events.RecordDecision("step_advance", map[string]any{
		"widget": s.kind,
		"step":   s.cursor,
		"label":  step.Label,
	})
	s.events.RecordConsequence("step_applied", map[string]any{
		"widget": s.kind,
		"step":   s.cursor,
	})
}
