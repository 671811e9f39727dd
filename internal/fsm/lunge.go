package fsm

import (
	"math"

	"github.com/mashrufaorc/posephase/internal/feature"
)

// #region thresholds

// LungeThresholds drive the lunge phase transitions. Front/back roles are
// assigned by the feature extractor: the more-bent knee is "front".
type LungeThresholds struct {
	StandFrontKnee  float64
	BottomFrontKnee float64
	StandBackKnee   float64
	BottomBackKnee  float64
	VelEps          float64
}

// DefaultLungeThresholds returns the stock lunge tuning.
func DefaultLungeThresholds() LungeThresholds {
	return LungeThresholds{
		StandFrontKnee:  160,
		BottomFrontKnee: 100,
		StandBackKnee:   150,
		BottomBackKnee:  120,
		VelEps:          1.5,
	}
}

// #endregion thresholds

// #region machine

// NewLunge builds the lunge phase machine. BOTTOM requires both knees at
// depth; the return to START requires both knees extended.
func NewLunge(th LungeThresholds) *Machine {
	m := newMachine("lunge", PhaseStart)

	m.addRule(PhaseStart, PhaseDescending, func(f feature.Vector, _ *Context) bool {
		return f["front_knee_angle"] < th.StandFrontKnee && f["front_knee_vel"] < -th.VelEps
	})
	m.addRule(PhaseDescending, PhaseBottom, func(f feature.Vector, _ *Context) bool {
		return f["front_knee_angle"] <= th.BottomFrontKnee &&
			f["back_knee_angle"] <= th.BottomBackKnee &&
			math.Abs(f["front_knee_vel"]) <= th.VelEps
	})
	// Shallow-rep fallback: the front knee reverses direction while either
	// knee is still above its bottom threshold.
	m.addRule(PhaseDescending, PhaseAscending, func(f feature.Vector, _ *Context) bool {
		return f["front_knee_vel"] > th.VelEps &&
			(f["front_knee_angle"] > th.BottomFrontKnee || f["back_knee_angle"] > th.BottomBackKnee)
	})
	m.addRule(PhaseBottom, PhaseAscending, func(f feature.Vector, _ *Context) bool {
		return f["front_knee_vel"] > th.VelEps
	})
	m.addRule(PhaseAscending, PhaseStart, func(f feature.Vector, _ *Context) bool {
		return f["front_knee_angle"] >= th.StandFrontKnee &&
			f["back_knee_angle"] >= th.StandBackKnee
	})

	return m
}

// #endregion machine
