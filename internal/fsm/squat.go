package fsm

import (
	"math"

	"github.com/mashrufaorc/posephase/internal/feature"
)

// shallowMargin widens the bottom threshold for the descending→ascending
// fallback, so a reversal just above the configured bottom still escapes.
const shallowMargin = 12

// #region thresholds

// SquatThresholds drive the squat phase transitions. Angles in degrees,
// VelEps in degrees per frame.
type SquatThresholds struct {
	StandKnee  float64
	BottomKnee float64
	StandHip   float64
	VelEps     float64
}

// DefaultSquatThresholds returns the stock squat tuning.
func DefaultSquatThresholds() SquatThresholds {
	return SquatThresholds{
		StandKnee:  165,
		BottomKnee: 100,
		StandHip:   160,
		VelEps:     1.5,
	}
}

// #endregion thresholds

// #region machine

// NewSquat builds the squat phase machine:
// START → DESCENDING → BOTTOM → ASCENDING → START, driven by the average
// knee angle and its velocity.
func NewSquat(th SquatThresholds) *Machine {
	m := newMachine("squat", PhaseStart)

	m.addRule(PhaseStart, PhaseDescending, func(f feature.Vector, _ *Context) bool {
		return f["knee_angle_avg"] < th.StandKnee && f["knee_vel_avg"] < -th.VelEps
	})
	m.addRule(PhaseDescending, PhaseBottom, func(f feature.Vector, _ *Context) bool {
		return f["knee_angle_avg"] <= th.BottomKnee && math.Abs(f["knee_vel_avg"]) <= th.VelEps
	})
	// Shallow-rep fallback: the knee velocity flips positive near the bottom
	// before the pause frame was ever seen. Without this the machine stalls
	// in DESCENDING on weak or partial reps.
	m.addRule(PhaseDescending, PhaseAscending, func(f feature.Vector, _ *Context) bool {
		return f["knee_vel_avg"] > th.VelEps && f["knee_angle_avg"] <= th.BottomKnee+shallowMargin
	})
	m.addRule(PhaseBottom, PhaseAscending, func(f feature.Vector, _ *Context) bool {
		return f["knee_vel_avg"] > th.VelEps
	})
	m.addRule(PhaseAscending, PhaseStart, func(f feature.Vector, _ *Context) bool {
		return f["knee_angle_avg"] >= th.StandKnee && f["hip_angle_avg"] >= th.StandHip
	})

	return m
}

// #endregion machine
