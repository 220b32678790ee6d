// Package widget holds the runtime state machines behind plan items. One
// machine is built per rendered item; its local state (revealed hints,
// puzzle progress, step cursor) lives only for that mount and is never part
// of the shared variable store.
package widget

import (
	"math/rand"
	"time"

	"codelab/internal/plan"
	"codelab/internal/session"
)

type Widget interface {
	Kind() string
}

// Config carries the knobs machines need. Sleep and Rand are injectable so
// tests run without wall-clock delays or nondeterminism.
type Config struct {
	StepDelay time.Duration
	Sleep     func(time.Duration)
	Rand      *rand.Rand
}

func (c Config) sleep() func(time.Duration) {
	if c.Sleep != nil {
		return c.Sleep
	}
	return time.Sleep
}

func (c Config) stepDelay() time.Duration {
	if c.StepDelay > 0 {
		return c.StepDelay
	}
	return 700 * time.Millisecond
}

// Static wraps items that carry data but no engine-side state machine; the
// frontend renders them directly.
type Static struct {
	Item plan.Item
}

func (s Static) Kind() string { return s.Item.ItemType() }

// ForItem builds the state machine for one plan item. The switch is
// exhaustive over the known variants; only Unknown yields nil, preserving
// the render-as-nothing fallback for plan data this build does not
// understand yet.
func ForItem(item plan.Item, sess *session.Session, cfg Config) Widget {
	switch it := item.(type) {
	case plan.Prediction:
		return NewPrediction(it, sess.Events)
	case plan.HintLadder:
		return NewHintLadder(it, sess.Events)
	case plan.VariableSlider:
		return NewSlider(it, sess.Vars, sess.Events)
	case plan.MemoryBox:
		return NewValueTarget(plan.TypeMemoryBox, it.Name, it.AcceptedValues, it.Initial, sess.Vars, sess.Events)
	case plan.DraggableValue:
		return NewValueTarget(plan.TypeDraggableValue, it.Name, it.AcceptedValues, it.Initial, sess.Vars, sess.Events)
	case plan.VisualTable:
		return NewTableView(plan.TypeVisualTable, it.Columns, it.Rows)
	case plan.LiveCodeBlock:
		return Static{Item: it}
	case plan.ParsonsPuzzle:
		return NewOrderPuzzle(it, sess.Events, cfg.Rand)
	case plan.FillBlanks:
		return NewSlotFill(plan.TypeFillBlanks, it.Template, it.Blanks, sess.Events)
	case plan.TokenSlot:
		return NewSlotFill(plan.TypeTokenSlot, it.Template, it.Blanks, sess.Events)
	case plan.StepExecutor:
		return NewStepper(plan.TypeStepExecutor, it.Steps, sess, cfg)
	case plan.MemoryMachine:
		return NewStepper(plan.TypeMemoryMachine, it.Steps, sess, cfg)
	case plan.LoopSimulator:
		return NewStepper(plan.TypeLoopSimulator, it.Iterations, sess, cfg)
	case plan.ConditionalPath:
		return NewPath(it, sess.Events)
	case plan.DataTransform:
		return NewTransformView(it)
	case plan.JoinVisualizer:
		return NewJoinView(it)
	case plan.DebugQuest:
		return NewDebugQuest(it, sess.Events)
	case plan.GraphManipulator:
		return NewGraphView(it, sess.Vars)
	case plan.OutputDiff:
		return NewDiffView(it, sess.Vars)
	case plan.StateInspector:
		return NewInspector(it, sess.Vars)
	case plan.ResetState:
		return NewResetTrigger(it, sess)
	case plan.SendToEditor:
		// side channel only, owned by the dispatcher
		return Static{Item: it}
	case plan.Unknown:
		return nil
	default:
		return nil
	}
}
