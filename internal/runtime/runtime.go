// Package runtime defines the code-execution collaborator contract. The
// engine treats runners as black boxes: code in, stdout or an interpreter
// error out. One runner serves one source language; the registry routes
// lessons to runners by lesson-id range.
package runtime

import (
	"context"
	"fmt"
	"time"
)

// Result is a successful run. Runners return an error for interpreter
// failures; the error message is surfaced verbatim as the actual output.
type Result struct {
	Stdout string
}

type Runner interface {
	Language() string
	Run(ctx context.Context, code string) (Result, error)
}

// DefaultTimeout bounds one run end to end.
const DefaultTimeout = 5 * time.Second

// TimeoutMessage is the synthetic output a timed-out run produces. Timeouts
// are output text, never an error.
func TimeoutMessage(d time.Duration) string {
	return fmt.Sprintf("Execution timed out after %s. Check for infinite loops.", d)
}

// RunWithTimeout races the runner against the deadline; the first side to
// settle wins. On timeout the runner keeps going in its goroutine but its
// eventual result is discarded: the buffered channel absorbs the late send
// and nobody reads it, so a loser can never mutate observed state.
func RunWithTimeout(ctx context.Context, r Runner, code string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	type settled struct {
		res Result
		err error
	}
	done := make(chan settled, 1)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	go func() {
		defer cancel()
		res, err := r.Run(ctx, code)
		done <- settled{res, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s := <-done:
		return s.res, s.err
	case <-timer.C:
		return Result{Stdout: TimeoutMessage(timeout)}, nil
	}
}

// Registry maps numeric lesson-id ranges to runners. Ranges are inclusive
// and checked in registration order; the first containing range wins.
type Registry struct {
	entries []rangeEntry
}

type rangeEntry struct {
	min, max int
	runner   Runner
}

func (r *Registry) Register(minID, maxID int, runner Runner) {
	r.entries = append(r.entries, rangeEntry{min: minID, max: maxID, runner: runner})
}

func (r *Registry) ForLesson(id int) (Runner, error) {
	for _, e := range r.entries {
		if id >= e.min && id <= e.max {
			return e.runner, nil
		}
	}
	return nil, fmt.Errorf("no runtime registered for lesson %d", id)
}
