// Package form scores movement quality per frame. Continuous checks
// (symmetry, plank straightness) run every frame; depth checks fire once per
// rep at the turnaround, against the minimum angle seen during the descent.
package form

import (
	"fmt"
	"math"

	"github.com/mashrufaorc/posephase/internal/feature"
	"github.com/mashrufaorc/posephase/internal/fsm"
)

// Fixed penalties per violated rule. Scores start at 1.0 and clamp at 0.
const (
	penaltySymmetry   = 0.2
	penaltyPlank      = 0.3
	penaltySquatDepth = 0.3
	penaltyPushDepth  = 0.3
	penaltyLungeKnee  = 0.25
)

// Warning strings, stable across the frame log, rep rows, and speech.
const (
	WarnKneeUneven     = "Knee alignment uneven"
	WarnSquatDepth     = "Insufficient squat depth"
	WarnPlank          = "Body line not straight"
	WarnPushupDepth    = "Push-up depth insufficient"
	WarnFrontKneeDepth = "Front knee not bending enough"
	WarnBackKneeDepth  = "Back knee not lowering enough"
)

// #region result

// Result is one frame's form verdict, consumed immediately by the feedback
// synthesizer.
type Result struct {
	Score    float64
	Warnings []string
}

func (r *Result) penalize(warning string, penalty float64) {
	r.Warnings = append(r.Warnings, warning)
	r.Score -= penalty
	if r.Score < 0 {
		r.Score = 0
	}
}

// #endregion result

// #region thresholds

// SquatThresholds bound squat form checks.
type SquatThresholds struct {
	SymKneeMax    float64
	BottomKneeMax float64
}

// PushupThresholds bound pushup form checks.
type PushupThresholds struct {
	PlankMin       float64
	BottomElbowMax float64
}

// LungeThresholds bound lunge form checks.
type LungeThresholds struct {
	BottomFrontKneeMax float64
	BottomBackKneeMax  float64
}

// Thresholds bundles all three for the factory.
type Thresholds struct {
	Squat  SquatThresholds
	Pushup PushupThresholds
	Lunge  LungeThresholds
}

// DefaultThresholds returns the stock form tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Squat:  SquatThresholds{SymKneeMax: 25, BottomKneeMax: 110},
		Pushup: PushupThresholds{PlankMin: 150, BottomElbowMax: 105},
		Lunge:  LungeThresholds{BottomFrontKneeMax: 110, BottomBackKneeMax: 130},
	}
}

// #endregion thresholds

// #region evaluator

// Evaluator scores one frame of an exercise. Instances are stateful (minima
// trackers, previous phase) and are rebuilt on every exercise switch,
// together with the phase machine and rep counter.
type Evaluator interface {
	// ScorePhase evaluates the frame given the post-update phase.
	ScorePhase(phase fsm.Phase, f feature.Vector) Result
	// Reset clears minima trackers and transition memory.
	Reset()
}

// New builds the evaluator for the given exercise label.
func New(label string, th Thresholds) (Evaluator, error) {
	switch label {
	case "squat":
		return newSquatEvaluator(th.Squat), nil
	case "pushup":
		return newPushupEvaluator(th.Pushup), nil
	case "lunge":
		return newLungeEvaluator(th.Lunge), nil
	}
	return nil, fmt.Errorf("no form evaluator for exercise %q", label)
}

// #endregion evaluator

// #region minima

// minTracker records the lowest value observed since its last reset.
type minTracker struct {
	min     float64
	tracked bool
}

func (t *minTracker) observe(v float64) {
	if !t.tracked || v < t.min {
		t.min = v
		t.tracked = true
	}
}

func (t *minTracker) reset() {
	t.min = math.MaxFloat64
	t.tracked = false
}

// #endregion minima

// #region squat

type squatEvaluator struct {
	th      SquatThresholds
	minKnee minTracker
	prev    fsm.Phase
	seen    bool
}

func newSquatEvaluator(th SquatThresholds) *squatEvaluator {
	e := &squatEvaluator{th: th}
	e.Reset()
	return e
}

func (e *squatEvaluator) Reset() {
	e.minKnee.reset()
	e.prev = fsm.PhaseStart
	e.seen = false
}

func (e *squatEvaluator) ScorePhase(phase fsm.Phase, f feature.Vector) Result {
	res := Result{Score: 1.0}

	// Continuous: knee symmetry, every frame regardless of phase.
	if f["sym_knee"] > e.th.SymKneeMax {
		res.penalize(WarnKneeUneven, penaltySymmetry)
	}

	// Depth, once per rep at the turnaround.
	if e.turnaround(phase) && e.minKnee.tracked && e.minKnee.min > e.th.BottomKneeMax {
		res.penalize(WarnSquatDepth, penaltySquatDepth)
	}

	if phase == fsm.PhaseDescending {
		e.minKnee.observe(f["knee_angle_avg"])
	}
	if phase.IsTopLike() {
		e.minKnee.reset()
	}

	e.prev, e.seen = phase, true
	return res
}

func (e *squatEvaluator) turnaround(phase fsm.Phase) bool {
	return e.seen && phase == fsm.PhaseAscending &&
		(e.prev == fsm.PhaseDescending || e.prev == fsm.PhaseBottom)
}

// #endregion squat

// #region pushup

type pushupEvaluator struct {
	th       PushupThresholds
	minElbow minTracker
	prev     fsm.Phase
	seen     bool
}

func newPushupEvaluator(th PushupThresholds) *pushupEvaluator {
	e := &pushupEvaluator{th: th}
	e.Reset()
	return e
}

func (e *pushupEvaluator) Reset() {
	e.minElbow.reset()
	e.prev = fsm.PhaseTop
	e.seen = false
}

func (e *pushupEvaluator) ScorePhase(phase fsm.Phase, f feature.Vector) Result {
	res := Result{Score: 1.0}

	// Continuous: plank straightness, every frame regardless of phase.
	if f["shoulder_hip_ankle_angle_avg"] < e.th.PlankMin {
		res.penalize(WarnPlank, penaltyPlank)
	}

	if e.turnaround(phase) && e.minElbow.tracked && e.minElbow.min > e.th.BottomElbowMax {
		res.penalize(WarnPushupDepth, penaltyPushDepth)
	}

	if phase == fsm.PhaseDescending {
		e.minElbow.observe(f["elbow_angle_avg"])
	}
	if phase.IsTopLike() {
		e.minElbow.reset()
	}

	e.prev, e.seen = phase, true
	return res
}

func (e *pushupEvaluator) turnaround(phase fsm.Phase) bool {
	return e.seen && phase == fsm.PhaseAscending &&
		(e.prev == fsm.PhaseDescending || e.prev == fsm.PhaseBottom)
}

// #endregion pushup

// #region lunge

// lungeEvaluator tracks minima across DESCENDING, BOTTOM, and ASCENDING to
// tolerate the noisy early transitions typical of lunges, and defers its
// depth check to the frame that returns to a rest phase. The scored flag
// keeps the check and the minima reset one rep apart: the first rest frame
// is scored against the rep's minima, the next rest frame clears them, and
// idle frames in between are never re-penalized.
type lungeEvaluator struct {
	th       LungeThresholds
	minFront minTracker
	minBack  minTracker
	armed    bool
	scored   bool
}

func newLungeEvaluator(th LungeThresholds) *lungeEvaluator {
	e := &lungeEvaluator{th: th}
	e.Reset()
	return e
}

func (e *lungeEvaluator) Reset() {
	e.minFront.reset()
	e.minBack.reset()
	e.armed = false
	e.scored = false
}

func (e *lungeEvaluator) ScorePhase(phase fsm.Phase, f feature.Vector) Result {
	res := Result{Score: 1.0}

	switch {
	case phase == fsm.PhaseDescending || phase == fsm.PhaseBottom || phase == fsm.PhaseAscending:
		// A new descent can begin on the frame right after scoring; drop the
		// previous rep's minima before tracking.
		if e.scored {
			e.minFront.reset()
			e.minBack.reset()
			e.scored = false
		}
		e.minFront.observe(f["front_knee_angle"])
		e.minBack.observe(f["back_knee_angle"])
		e.armed = true

	case phase.IsTopLike() && e.armed && !e.scored:
		if e.minFront.tracked && e.minFront.min > e.th.BottomFrontKneeMax {
			res.penalize(WarnFrontKneeDepth, penaltyLungeKnee)
		}
		if e.minBack.tracked && e.minBack.min > e.th.BottomBackKneeMax {
			res.penalize(WarnBackKneeDepth, penaltyLungeKnee)
		}
		e.scored = true

	case phase.IsTopLike() && e.scored:
		e.minFront.reset()
		e.minBack.reset()
		e.armed = false
		e.scored = false
	}

	return res
}

// #endregion lunge
