package feature

import (
	"errors"
	"math"
	"testing"

	"github.com/mashrufaorc/posephase/internal/pose"
)

// sideLandmarks builds one body side with the given knee and elbow angles,
// in degrees. The hip sits on the knee-to-hip ray at the requested knee
// angle from the vertical shank, and the shoulder extends that ray so the
// hip angle is always straight.
func sideLandmarks(prefix string, x, kneeDeg, elbowDeg float64, lm pose.Landmarks) {
	kneeRad := kneeDeg * math.Pi / 180
	elbowRad := elbowDeg * math.Pi / 180

	knee := pose.Point{X: x, Y: 0.7}
	ankle := pose.Point{X: x, Y: 0.9}
	hip := pose.Point{X: knee.X + 0.2*math.Sin(kneeRad), Y: knee.Y + 0.2*math.Cos(kneeRad)}
	shoulder := pose.Point{X: hip.X + (hip.X - knee.X), Y: hip.Y + (hip.Y - knee.Y)}
	elbow := pose.Point{X: shoulder.X + 0.1, Y: shoulder.Y}
	wrist := pose.Point{X: elbow.X - 0.1*math.Cos(elbowRad), Y: elbow.Y + 0.1*math.Sin(elbowRad)}

	lm[prefix+"_ankle"] = ankle
	lm[prefix+"_knee"] = knee
	lm[prefix+"_hip"] = hip
	lm[prefix+"_shoulder"] = shoulder
	lm[prefix+"_elbow"] = elbow
	lm[prefix+"_wrist"] = wrist
}

func bodyLandmarks(kneeL, kneeR, elbowDeg float64) pose.Landmarks {
	lm := make(pose.Landmarks)
	sideLandmarks("left", 0.45, kneeL, elbowDeg, lm)
	sideLandmarks("right", 0.55, kneeR, elbowDeg, lm)
	return lm
}

func near(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s: expected %f, got %f", name, want, got)
	}
}

func TestComputeAngles(t *testing.T) {
	e := NewExtractor(5)
	f, err := e.Compute(bodyLandmarks(90, 90, 180))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	near(t, "knee_angle_avg", f["knee_angle_avg"], 90, 0.1)
	near(t, "hip_angle_avg", f["hip_angle_avg"], 180, 0.1)
	near(t, "elbow_angle_avg", f["elbow_angle_avg"], 180, 0.1)
	near(t, "sym_knee", f["sym_knee"], 0, 0.1)
	near(t, "sym_elbow", f["sym_elbow"], 0, 0.1)
}

func TestComputeVerticalPositions(t *testing.T) {
	e := NewExtractor(5)
	lm := bodyLandmarks(180, 180, 180)
	f, err := e.Compute(lm)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantHipY := (lm["left_hip"].Y + lm["right_hip"].Y) / 2
	near(t, "hip_y", f["hip_y"], wantHipY, 1e-9)
	wantWristY := (lm["left_wrist"].Y + lm["right_wrist"].Y) / 2
	near(t, "wrist_y", f["wrist_y"], wantWristY, 1e-9)
}

func TestFrontBackKneeRoles(t *testing.T) {
	e := NewExtractor(5)
	f, err := e.Compute(bodyLandmarks(150, 100, 180))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// The more-bent knee is the front knee.
	near(t, "front_knee_angle", f["front_knee_angle"], 100, 0.2)
	near(t, "back_knee_angle", f["back_knee_angle"], 150, 0.2)
	near(t, "sym_knee", f["sym_knee"], 50, 0.3)
}

func TestVelocityIsFrameDelta(t *testing.T) {
	e := NewExtractor(5)

	for i, knee := range []float64{180, 170, 150} {
		f, err := e.Compute(bodyLandmarks(knee, knee, 180))
		if err != nil {
			t.Fatalf("Compute frame %d: %v", i, err)
		}
		wants := []float64{0, -10, -20}
		near(t, "knee_vel_avg", f["knee_vel_avg"], wants[i], 0.2)
	}
}

func TestMissingLandmark(t *testing.T) {
	e := NewExtractor(5)
	lm := bodyLandmarks(90, 90, 180)
	delete(lm, "left_hip")

	_, err := e.Compute(lm)
	if !errors.Is(err, ErrMissingLandmark) {
		t.Fatalf("expected ErrMissingLandmark, got %v", err)
	}
}

func TestVectorGetDefault(t *testing.T) {
	v := Vector{"a": 1}
	if got := v.Get("a", 9); got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
	if got := v.Get("b", 9); got != 9 {
		t.Fatalf("expected default 9, got %f", got)
	}
}
