// Package reps counts completed repetitions from phase transitions.
package reps

import "github.com/mashrufaorc/posephase/internal/fsm"

// #region counter

// Counter is a pure transition detector: a rep completes when the phase
// moves from ASCENDING to START or TOP. The count never decreases within
// one exercise instance's lifetime.
type Counter struct {
	count int
	prev  fsm.Phase
	seen  bool
}

// NewCounter returns a zeroed counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Update records the phase and returns the running count. The very first
// call only seeds the previous phase; no prior transition exists yet.
func (c *Counter) Update(phase fsm.Phase) int {
	if !c.seen {
		c.prev = phase
		c.seen = true
		return c.count
	}
	if c.prev == fsm.PhaseAscending && (phase == fsm.PhaseStart || phase == fsm.PhaseTop) {
		c.count++
	}
	c.prev = phase
	return c.count
}

// Count returns the current count without recording a phase.
func (c *Counter) Count() int { return c.count }

// Reset clears the count and the remembered phase. Called on exercise switch.
func (c *Counter) Reset() {
	c.count = 0
	c.prev = 0
	c.seen = false
}

// #endregion counter
