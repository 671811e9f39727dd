// Package fsm segments an exercise into motion phases. A Machine holds
// ordered transition rules per phase; at most one rule fires per update, so
// replaying the same feature sequence always reproduces the same phases.
package fsm

import (
	"fmt"

	"github.com/mashrufaorc/posephase/internal/feature"
)

// #region phases

// Phase is a position within a repetition's motion cycle.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseDescending
	PhaseBottom
	PhaseAscending
	PhaseTop
	PhaseReset
)

// String returns the display label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "Start"
	case PhaseDescending:
		return "Descending"
	case PhaseBottom:
		return "Bottom"
	case PhaseAscending:
		return "Ascending"
	case PhaseTop:
		return "Top"
	case PhaseReset:
		return "Reset"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// IsTopLike reports whether the phase is a rest position between reps.
func (p Phase) IsTopLike() bool {
	return p == PhaseStart || p == PhaseTop || p == PhaseReset
}

// #endregion phases

// #region context

// Context is per-machine state that persists across frames of one exercise
// instance. Predicates read it; the machine maintains it. Cleared on Reset.
type Context struct {
	FramesInPhase int // frames spent in the current phase, including this one
	Transitions   int // rules fired since construction or Reset
}

// #endregion context

// #region rules

// Predicate decides whether a transition fires for the current frame. It
// must be a pure function of the feature vector and context.
type Predicate func(f feature.Vector, ctx *Context) bool

type rule struct {
	to   Phase
	when Predicate
}

// #endregion rules

// #region machine

// Machine is the generic transition engine behind all exercise variants.
type Machine struct {
	label   string
	initial Phase
	current Phase
	ctx     Context
	rules   map[Phase][]rule
}

// newMachine builds an empty machine starting in the given phase. Exercise
// variants register their rules on top.
func newMachine(label string, initial Phase) *Machine {
	return &Machine{
		label:   label,
		initial: initial,
		current: initial,
		rules:   make(map[Phase][]rule),
	}
}

// addRule registers a transition. Rules for a phase are scanned in
// registration order; the first satisfied predicate wins.
func (m *Machine) addRule(from, to Phase, when Predicate) {
	m.rules[from] = append(m.rules[from], rule{to: to, when: when})
}

// Label returns the exercise this machine segments.
func (m *Machine) Label() string { return m.label }

// Phase returns the current phase without advancing the machine.
func (m *Machine) Phase() Phase { return m.current }

// Reset returns the machine to its initial phase and clears the context.
func (m *Machine) Reset() {
	m.current = m.initial
	m.ctx = Context{}
}

// Update applies at most one transition for this frame and returns the
// resulting phase. With no satisfied rule the phase is unchanged.
func (m *Machine) Update(f feature.Vector) Phase {
	for _, r := range m.rules[m.current] {
		if r.when(f, &m.ctx) {
			m.current = r.to
			m.ctx.FramesInPhase = 1
			m.ctx.Transitions++
			return m.current
		}
	}
	m.ctx.FramesInPhase++
	return m.current
}

// #endregion machine

// #region factory

// Thresholds bundles the per-exercise FSM thresholds for the factory.
type Thresholds struct {
	Squat  SquatThresholds
	Pushup PushupThresholds
	Lunge  LungeThresholds
}

// DefaultThresholds returns the default thresholds for all three variants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Squat:  DefaultSquatThresholds(),
		Pushup: DefaultPushupThresholds(),
		Lunge:  DefaultLungeThresholds(),
	}
}

// New builds the phase machine for the given exercise label.
func New(label string, th Thresholds) (*Machine, error) {
	switch label {
	case "squat":
		return NewSquat(th.Squat), nil
	case "pushup":
		return NewPushup(th.Pushup), nil
	case "lunge":
		return NewLunge(th.Lunge), nil
	}
	return nil, fmt.Errorf("no phase machine for exercise %q", label)
}

// #endregion factory
