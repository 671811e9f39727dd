package reps

import (
	"testing"

	"github.com/mashrufaorc/posephase/internal/fsm"
)

func TestCountsAscendingToStart(t *testing.T) {
	c := NewCounter()
	for _, p := range []fsm.Phase{
		fsm.PhaseStart, fsm.PhaseDescending, fsm.PhaseBottom,
		fsm.PhaseAscending, fsm.PhaseStart,
	} {
		c.Update(p)
	}
	if c.Count() != 1 {
		t.Fatalf("expected 1 rep, got %d", c.Count())
	}
}

func TestCountsAscendingToTop(t *testing.T) {
	c := NewCounter()
	for _, p := range []fsm.Phase{
		fsm.PhaseTop, fsm.PhaseDescending, fsm.PhaseBottom,
		fsm.PhaseAscending, fsm.PhaseTop,
	} {
		c.Update(p)
	}
	if c.Count() != 1 {
		t.Fatalf("expected 1 rep, got %d", c.Count())
	}
}

func TestFirstUpdateOnlySeeds(t *testing.T) {
	c := NewCounter()
	// A counter born mid-rep must not count the seeding frame even when the
	// sequence looks like a completed transition.
	if got := c.Update(fsm.PhaseStart); got != 0 {
		t.Fatalf("expected 0 on seed, got %d", got)
	}
}

func TestRepeatedPhasesDoNotCount(t *testing.T) {
	c := NewCounter()
	c.Update(fsm.PhaseAscending)
	c.Update(fsm.PhaseStart)
	c.Update(fsm.PhaseStart)
	c.Update(fsm.PhaseStart)
	if c.Count() != 1 {
		t.Fatalf("expected 1 rep, got %d", c.Count())
	}
}

func TestDescendingWithoutCompletionDoesNotCount(t *testing.T) {
	c := NewCounter()
	for _, p := range []fsm.Phase{
		fsm.PhaseStart, fsm.PhaseDescending, fsm.PhaseBottom, fsm.PhaseDescending,
	} {
		c.Update(p)
	}
	if c.Count() != 0 {
		t.Fatalf("expected 0 reps, got %d", c.Count())
	}
}

func TestReset(t *testing.T) {
	c := NewCounter()
	c.Update(fsm.PhaseAscending)
	c.Update(fsm.PhaseStart)
	if c.Count() != 1 {
		t.Fatalf("expected 1 rep, got %d", c.Count())
	}

	c.Reset()
	if c.Count() != 0 {
		t.Fatalf("expected 0 after reset, got %d", c.Count())
	}
	// Post-reset seed frame must not count either.
	if got := c.Update(fsm.PhaseStart); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
