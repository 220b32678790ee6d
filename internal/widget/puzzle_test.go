package widget

import (
	"math/rand"
	"testing"

	"codelab/internal/plan"
)

func TestOrderPuzzleMove(t *testing.T) {
	sess := testSession()
	p := NewOrderPuzzle(plan.ParsonsPuzzle{
		CorrectOrder:   []string{"a", "b", "c"},
		ScrambledOrder: []string{"c", "a", "b"},
	}, sess.Events, nil)

	if err := p.Move(0, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	got := p.Lines()
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("lines = %v", got)
	}
	if !p.Solved() {
		t.Fatalf("correct order not recognized")
	}
}

func TestOrderPuzzleMoveBounds(t *testing.T) {
	sess := testSession()
	p := NewOrderPuzzle(plan.ParsonsPuzzle{
		CorrectOrder:   []string{"a", "b"},
		ScrambledOrder: []string{"b", "a"},
	}, sess.Events, nil)

	if err := p.Move(-1, 0); err == nil {
		t.Fatalf("negative source accepted")
	}
	if err := p.Move(0, 5); err == nil {
		t.Fatalf("out-of-range target accepted")
	}
}

func TestOrderPuzzleSolvedLatch(t *testing.T) {
	sess := testSession()
	p := NewOrderPuzzle(plan.ParsonsPuzzle{
		CorrectOrder:   []string{"a", "b", "c"},
		ScrambledOrder: []string{"b", "a", "c"},
	}, sess.Events, nil)

	if err := p.Move(0, 1); err != nil {
		t.Fatalf("move: %v", err)
	}
	if !p.Solved() {
		t.Fatalf("not solved after correcting order")
	}
	consequences := sess.Events.ConsequenceCount()

	// scrambling a solved puzzle must not unsolve it, and must not re-fire
	// the solved consequence
	if err := p.Move(0, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	if !p.Solved() {
		t.Fatalf("solved latch reverted")
	}
	if err := p.Move(2, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if sess.Events.ConsequenceCount() != consequences {
		t.Fatalf("solved consequence re-fired")
	}
}

func TestOrderPuzzleShufflesWithoutScramble(t *testing.T) {
	sess := testSession()
	correct := []string{"a", "b", "c", "d", "e", "f"}
	p := NewOrderPuzzle(plan.ParsonsPuzzle{CorrectOrder: correct}, sess.Events, rand.New(rand.NewSource(1)))

	if len(p.Lines()) != len(correct) {
		t.Fatalf("shuffle changed length")
	}
	seen := make(map[string]bool)
	for _, l := range p.Lines() {
		seen[l] = true
	}
	for _, l := range correct {
		if !seen[l] {
			t.Fatalf("shuffle lost line %q", l)
		}
	}
}

func TestSlotFillSolveAndRevert(t *testing.T) {
	sess := testSession()
	s := NewSlotFill(plan.TypeFillBlanks, "print({{a}} + {{b}})", []plan.Blank{
		{ID: "a", Options: []string{"1", "2"}, Correct: "2"},
		{ID: "b", Options: []string{"3", "4"}, Correct: "3"},
	}, sess.Events)

	if s.Solved() {
		t.Fatalf("solved with no selections")
	}

	if err := s.Select("a", "2"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.Solved() {
		t.Fatalf("solved with one blank unfilled")
	}

	if err := s.Select("b", "3"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !s.Solved() {
		t.Fatalf("all-correct not recognized")
	}
	solvedConsequences := sess.Events.ConsequenceCount()

	// unlike the order puzzle, solved reverts when a correct slot changes
	if err := s.Select("a", "1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.Solved() {
		t.Fatalf("solved did not revert on incorrect change")
	}

	// re-solving does not fire the consequence again
	if err := s.Select("a", "2"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !s.Solved() {
		t.Fatalf("not solved after fixing the slot")
	}
	if sess.Events.ConsequenceCount() != solvedConsequences {
		t.Fatalf("puzzle_solved fired more than once")
	}

	// each selection was an independent decision
	if sess.Events.DecisionCount() != 4 {
		t.Fatalf("decisions = %d; want 4", sess.Events.DecisionCount())
	}
}

func TestSlotFillRejectsUnknownBlankAndOption(t *testing.T) {
	sess := testSession()
	s := NewSlotFill(plan.TypeTokenSlot, "{{a}}", []plan.Blank{
		{ID: "a", Options: []string{"x", "y"}, Correct: "x"},
	}, sess.Events)

	if err := s.Select("nope", "x"); err == nil {
		t.Fatalf("unknown blank accepted")
	}
	if err := s.Select("a", "z"); err == nil {
		t.Fatalf("non-option value accepted")
	}
	if sess.Events.DecisionCount() != 0 {
		t.Fatalf("rejected selections recorded decisions")
	}
}

func TestSlotFillRendered(t *testing.T) {
	sess := testSession()
	s := NewSlotFill(plan.TypeFillBlanks, "for i in {{fn}}({{n}}):", []plan.Blank{
		{ID: "fn", Correct: "range"},
		{ID: "n", Correct: "10"},
	}, sess.Events)

	if got := s.Rendered(); got != "for i in ____(____):" {
		t.Fatalf("unfilled render = %q", got)
	}
	if err := s.Select("fn", "range"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := s.Rendered(); got != "for i in range(____):" {
		t.Fatalf("partial render = %q", got)
	}
}
