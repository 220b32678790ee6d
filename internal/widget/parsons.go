package widget

import (
	"fmt"
	"math/rand"

	"codelab/internal/plan"
	"codelab/internal/session"
)

// OrderPuzzle is the ordered-sequence (Parsons) puzzle: reorder scrambled
// lines until they match the correct order. Solved is a one-way latch for
// the lifetime of the mount: re-scrambling a solved puzzle does not unsolve
// it.
type OrderPuzzle struct {
	correct []string
	lines   []string
	events  *session.Recorder
	solved  bool
}

func NewOrderPuzzle(item plan.ParsonsPuzzle, events *session.Recorder, rng *rand.Rand) *OrderPuzzle {
	lines := make([]string, 0, len(item.CorrectOrder))
	if len(item.ScrambledOrder) > 0 {
		lines = append(lines, item.ScrambledOrder...)
	} else {
		lines = append(lines, item.CorrectOrder...)
		shuffle(lines, rng)
	}
	return &OrderPuzzle{
		correct: append([]string(nil), item.CorrectOrder...),
		lines:   lines,
		events:  events,
	}
}

func (p *OrderPuzzle) Kind() string { return plan.TypeParsonsPuzzle }

func (p *OrderPuzzle) Lines() []string {
	out := make([]string, len(p.lines))
	copy(out, p.lines)
	return out
}

func (p *OrderPuzzle) Solved() bool { return p.solved }

// Move removes the line at from and reinserts it at to. Every move records
// a decision; the first arrangement matching the correct order latches
// solved and records the consequence.
func (p *OrderPuzzle) Move(from, to int) error {
	if from < 0 || from >= len(p.lines) {
		return fmt.Errorf("move source %d out of range", from)
	}
	if to < 0 || to >= len(p.lines) {
		return fmt.Errorf("move target %d out of range", to)
	}

	line := p.lines[from]
	p.lines = append(p.lines[:from], p.lines[from+1:]...)
	rest := append([]string(nil), p.lines[to:]...)
	p.lines = append(append(p.lines[:to:to], line), rest...)

	p.events.RecordDecision("puzzle_move", map[string]any{
		"from": from,
		"to":   to,
	})

	if !p.solved && p.matchesCorrect() {
		p.solved = true
		p.events.RecordConsequence("puzzle_solved", map[string]any{
			"widget": p.Kind(),
		})
	}
	return nil
}

func (p *OrderPuzzle) matchesCorrect() bool {
	if len(p.lines) != len(p.correct) {
		return false
	}
	for i := range p.lines {
		if p.lines[i] != p.correct[i] {
			return false
		}
	}
	return true
}

func shuffle(lines []string, rng *rand.Rand) {
	swap := func(i, j int) { lines[i], lines[j] = lines[j], lines[i] }
	if rng != nil {
		rng.Shuffle(len(lines), swap)
	} else {
		rand.Shuffle(len(lines), swap)
	}
}
