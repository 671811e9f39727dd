// Package feature derives the named scalar signals the rest of the pipeline
// runs on (joint angles, symmetry gaps, angular velocities, and vertical
// joint positions) from one frame of pose landmarks.
package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/mashrufaorc/posephase/internal/geom"
	"github.com/mashrufaorc/posephase/internal/pose"
)

// #region vector

// Vector is one frame's worth of named features. Treated as immutable once
// produced.
type Vector map[string]float64

// Get returns the named feature, or def when absent.
func (v Vector) Get(name string, def float64) float64 {
	if x, ok := v[name]; ok {
		return x
	}
	return def
}

// #endregion vector

// #region errors

// ErrMissingLandmark reports a detected frame that lacks a required joint.
// The frame is skipped; the session loop continues.
var ErrMissingLandmark = errors.New("missing landmark")

// #endregion errors

// defaultHistory is the rolling-buffer length used for velocity estimates.
const defaultHistory = 5

// #region extractor

// Extractor computes feature vectors frame by frame, keeping short rolling
// histories to estimate angular velocities. One instance lives for the
// duration of a session.
type Extractor struct {
	history       int
	kneeHist      []float64
	elbowHist     []float64
	frontKneeHist []float64
}

// NewExtractor creates an extractor. history is the velocity buffer length;
// values below 2 fall back to the default of 5.
func NewExtractor(history int) *Extractor {
	if history < 2 {
		history = defaultHistory
	}
	return &Extractor{history: history}
}

// Compute derives all features for one frame. Every landmark in
// pose.Required must be present.
func (e *Extractor) Compute(lm pose.Landmarks) (Vector, error) {
	for _, name := range pose.Required {
		if _, ok := lm[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingLandmark, name)
		}
	}

	f := make(Vector, 24)

	kneeL := geom.Angle3pt(lm["left_hip"], lm["left_knee"], lm["left_ankle"])
	kneeR := geom.Angle3pt(lm["right_hip"], lm["right_knee"], lm["right_ankle"])
	hipL := geom.Angle3pt(lm["left_shoulder"], lm["left_hip"], lm["left_knee"])
	hipR := geom.Angle3pt(lm["right_shoulder"], lm["right_hip"], lm["right_knee"])

	f["knee_angle_l"] = kneeL
	f["knee_angle_r"] = kneeR
	f["knee_angle_avg"] = geom.Avg(kneeL, kneeR)
	f["hip_angle_l"] = hipL
	f["hip_angle_r"] = hipR
	f["hip_angle_avg"] = geom.Avg(hipL, hipR)
	f["sym_knee"] = math.Abs(kneeL - kneeR)

	elbowL := geom.Angle3pt(lm["left_shoulder"], lm["left_elbow"], lm["left_wrist"])
	elbowR := geom.Angle3pt(lm["right_shoulder"], lm["right_elbow"], lm["right_wrist"])

	f["elbow_angle_l"] = elbowL
	f["elbow_angle_r"] = elbowR
	f["elbow_angle_avg"] = geom.Avg(elbowL, elbowR)
	f["sym_elbow"] = math.Abs(elbowL - elbowR)

	// Shoulder-hip-ankle line, the plank straightness signal.
	lineL := geom.Angle3pt(lm["left_shoulder"], lm["left_hip"], lm["left_ankle"])
	lineR := geom.Angle3pt(lm["right_shoulder"], lm["right_hip"], lm["right_ankle"])
	f["shoulder_hip_ankle_angle_avg"] = geom.Avg(lineL, lineR)

	f["knee_vel_avg"] = e.velocity(&e.kneeHist, f["knee_angle_avg"])
	f["elbow_vel_avg"] = e.velocity(&e.elbowHist, f["elbow_angle_avg"])

	// Lunge knee roles: the knee bent further (smaller angle) is "front".
	frontKnee, backKnee := kneeL, kneeR
	if kneeR < kneeL {
		frontKnee, backKnee = kneeR, kneeL
	}
	f["front_knee_angle"] = frontKnee
	f["back_knee_angle"] = backKnee
	f["front_knee_vel"] = e.velocity(&e.frontKneeHist, frontKnee)

	f["hip_y"] = geom.Avg(lm["left_hip"].Y, lm["right_hip"].Y)
	f["shoulder_y"] = geom.Avg(lm["left_shoulder"].Y, lm["right_shoulder"].Y)
	f["wrist_y"] = geom.Avg(lm["left_wrist"].Y, lm["right_wrist"].Y)

	return f, nil
}

// velocity appends current to the rolling buffer, trims it to the configured
// length, and returns current minus the previous stored value. With fewer
// than two samples the velocity is 0.
func (e *Extractor) velocity(hist *[]float64, current float64) float64 {
	h := append(*hist, current)
	if len(h) > e.history {
		h = h[1:]
	}
	*hist = h
	if len(h) < 2 {
		return 0
	}
	return current - h[len(h)-2]
}

// #endregion extractor
