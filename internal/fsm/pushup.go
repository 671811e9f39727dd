package fsm

import (
	"math"

	"github.com/mashrufaorc/posephase/internal/feature"
)

// #region thresholds

// PushupThresholds drive the pushup phase transitions.
type PushupThresholds struct {
	TopElbow    float64
	BottomElbow float64
	PlankLine   float64
	VelEps      float64
}

// DefaultPushupThresholds returns the stock pushup tuning.
func DefaultPushupThresholds() PushupThresholds {
	return PushupThresholds{
		TopElbow:    160,
		BottomElbow: 95,
		PlankLine:   150,
		VelEps:      1.5,
	}
}

// #endregion thresholds

// #region machine

// NewPushup builds the pushup phase machine. It starts at TOP (arms locked
// out) and runs TOP → DESCENDING → BOTTOM → ASCENDING → TOP on the average
// elbow angle; the return to TOP additionally requires a straight
// shoulder-hip-ankle line.
func NewPushup(th PushupThresholds) *Machine {
	m := newMachine("pushup", PhaseTop)

	m.addRule(PhaseTop, PhaseDescending, func(f feature.Vector, _ *Context) bool {
		return f["elbow_angle_avg"] < th.TopElbow && f["elbow_vel_avg"] < -th.VelEps
	})
	m.addRule(PhaseDescending, PhaseBottom, func(f feature.Vector, _ *Context) bool {
		return f["elbow_angle_avg"] <= th.BottomElbow && math.Abs(f["elbow_vel_avg"]) <= th.VelEps
	})
	// Shallow-rep fallback: elbows start extending again before the bottom
	// threshold was reached.
	m.addRule(PhaseDescending, PhaseAscending, func(f feature.Vector, _ *Context) bool {
		return f["elbow_vel_avg"] > th.VelEps && f["elbow_angle_avg"] > th.BottomElbow
	})
	m.addRule(PhaseBottom, PhaseAscending, func(f feature.Vector, _ *Context) bool {
		return f["elbow_vel_avg"] > th.VelEps
	})
	m.addRule(PhaseAscending, PhaseTop, func(f feature.Vector, _ *Context) bool {
		return f["elbow_angle_avg"] >= th.TopElbow &&
			f["shoulder_hip_ankle_angle_avg"] >= th.PlankLine
	})

	return m
}

// #endregion machine
