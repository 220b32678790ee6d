package widget

import (
	"sync"
	"testing"
	"time"

	"codelab/internal/logging"
	"codelab/internal/plan"
	"codelab/internal/session"
)

func testSession() *session.Session {
	return session.New("lesson-1", logging.Discard())
}

func steps(n int) []plan.Step {
	out := make([]plan.Step, n)
	for i := range out {
		out[i] = plan.Step{
			Label:   "step",
			Output:  "out",
			Effects: map[string]any{"i": i},
		}
	}
	return out
}

func TestStepperNext(t *testing.T) {
	sess := testSession()
	s := NewStepper(plan.TypeStepExecutor, steps(3), sess, Config{Sleep: func(time.Duration) {}})

	if s.Started() || s.Complete() || s.Cursor() != -1 {
		t.Fatalf("bad initial state: cursor=%d", s.Cursor())
	}

	for i := 0; i < 3; i++ {
		if !s.Next() {
			t.Fatalf("Next refused at step %d", i)
		}
	}
	if !s.Complete() {
		t.Fatalf("not complete after all steps")
	}
	if s.Next() {
		t.Fatalf("Next advanced past the last step")
	}

	// effects wrote through, last write wins
	if v, _ := sess.Vars.Variable("i"); v != 2 {
		t.Fatalf("i = %v; want 2", v)
	}
	// each step recorded decision + consequence
	if sess.Events.DecisionCount() != 3 || sess.Events.ConsequenceCount() != 3 {
		t.Fatalf("counters = %d/%d; want 3/3",
			sess.Events.DecisionCount(), sess.Events.ConsequenceCount())
	}
}

func TestStepperPlayRunsToCompletion(t *testing.T) {
	sess := testSession()
	sleeps := 0
	s := NewStepper(plan.TypeLoopSimulator, steps(3), sess, Config{
		Sleep: func(time.Duration) { sleeps++ },
	})

	var mu sync.Mutex
	s.Play(&mu, nil)

	if !s.Complete() || s.IsPlaying() {
		t.Fatalf("play left cursor=%d playing=%v", s.Cursor(), s.IsPlaying())
	}
	if sleeps != 3 {
		t.Fatalf("slept %d times; want one delay per step", sleeps)
	}
	// play is disabled once complete
	s.Play(&mu, nil)
	if sess.Events.DecisionCount() != 3 {
		t.Fatalf("replaying a complete stepper recorded events")
	}
}

func TestStepperPlayCallsOnStepPerBoundary(t *testing.T) {
	sess := testSession()
	var mu sync.Mutex
	var seen []any
	s := NewStepper(plan.TypeStepExecutor, steps(3), sess, Config{
		Sleep: func(time.Duration) {},
	})

	s.Play(&mu, func() {
		// fires under the lock with the step's effects already written
		v, _ := sess.Vars.Variable("i")
		seen = append(seen, v)
	})

	if len(seen) != 3 {
		t.Fatalf("onStep fired %d times; want once per step", len(seen))
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("onStep %d saw i = %v; want %d", i, v, i)
		}
	}
}

func TestStepperPlayCancelMidDelay(t *testing.T) {
	sess := testSession()
	var mu sync.Mutex
	var s *Stepper
	s = NewStepper(plan.TypeStepExecutor, steps(3), sess, Config{
		Sleep: func(time.Duration) {
			// cancellation arrives while the delay is in flight; the step
			// the delay precedes must still apply
			mu.Lock()
			s.CancelPlay()
			if s.Next() {
				t.Errorf("Next enabled while playing")
			}
			mu.Unlock()
		},
	})

	s.Play(&mu, nil)

	if s.Cursor() != 0 {
		t.Fatalf("cursor = %d; want 0 (one step applied, then stop)", s.Cursor())
	}
	if s.IsPlaying() {
		t.Fatalf("still playing after cancel")
	}
}

func TestStepperResetKeepsStoreVariables(t *testing.T) {
	sess := testSession()
	s := NewStepper(plan.TypeMemoryMachine, steps(2), sess, Config{Sleep: func(time.Duration) {}})

	s.Next()
	s.Next()
	s.Reset()

	if s.Started() || len(s.Outputs()) != 0 || s.IsPlaying() {
		t.Fatalf("reset left local state")
	}
	// store writes persist until the store itself resets
	if _, ok := sess.Vars.Variable("i"); !ok {
		t.Fatalf("store variable cleared by widget reset")
	}

	if !s.Next() {
		t.Fatalf("stepper not reusable after reset")
	}
}

func TestStepperEmpty(t *testing.T) {
	sess := testSession()
	s := NewStepper(plan.TypeStepExecutor, nil, sess, Config{Sleep: func(time.Duration) {}})

	if !s.Complete() {
		t.Fatalf("empty stepper should be complete")
	}
	if s.Next() {
		t.Fatalf("Next advanced an empty stepper")
	}
	var mu sync.Mutex
	s.Play(&mu, nil) // must return immediately
}
