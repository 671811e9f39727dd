// Package classify scores the active exercise from the current feature
// vector. The classifier is stateless: every frame gets a fresh prediction.
package classify

import "github.com/mashrufaorc/posephase/internal/feature"

// #region labels

const (
	LabelPushup = "pushup"
	LabelSquat  = "squat"
	LabelLunge  = "lunge"
)

// Labels lists the supported exercises in tie-break precedence order: when
// two composite scores are exactly equal the earlier label wins.
var Labels = []string{LabelPushup, LabelSquat, LabelLunge}

// #endregion labels

// #region prediction

// Prediction is the classifier output for one frame. Diagnostics carries the
// raw component values behind the winning score.
type Prediction struct {
	Label       string
	Confidence  float64
	Diagnostics map[string]float64
}

// Forced builds the prediction used when the operator pins the exercise:
// same value type the classifier produces, confidence 1.0, no diagnostics.
func Forced(label string) Prediction {
	return Prediction{Label: label, Confidence: 1.0, Diagnostics: map[string]float64{}}
}

// #endregion prediction

// #region thresholds

// Thresholds are the ramp bounds feeding the three composite scores.
type Thresholds struct {
	PushupTrunkMin       float64
	PushupWristBelow     float64
	PushupTopElbow       float64
	PushupElbowFlexRange float64

	SquatTrunkMax      float64
	SquatTrunkRange    float64
	SquatStandKnee     float64
	SquatKneeFlexRange float64
	SquatSymKneeMax    float64

	LungeAsymMin float64
	LungeAsymMax float64
}

// DefaultThresholds returns ramp bounds tuned for normalized webcam poses.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PushupTrunkMin:       150,
		PushupWristBelow:     0.05,
		PushupTopElbow:       160,
		PushupElbowFlexRange: 60,
		SquatTrunkMax:        175,
		SquatTrunkRange:      25,
		SquatStandKnee:       165,
		SquatKneeFlexRange:   60,
		SquatSymKneeMax:      25,
		LungeAsymMin:         25,
		LungeAsymMax:         60,
	}
}

// #endregion thresholds

// #region ramp

// Ramp maps x linearly from [lo, hi] onto [0, 1], clamped at both ends.
// Degenerate bounds (hi <= lo) contribute 0 so a bad config can never make
// classification undefined.
func Ramp(x, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	v := (x - lo) / (hi - lo)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion ramp

// #region classifier

// Classifier scores {pushup, squat, lunge} from ramp composites.
type Classifier struct {
	th Thresholds
}

// NewClassifier creates a classifier with the given ramp bounds.
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{th: th}
}

// Predict returns the argmax label, its score as confidence, and all raw
// component values as diagnostics.
func (c *Classifier) Predict(f feature.Vector) Prediction {
	th := c.th

	trunk := f.Get("shoulder_hip_ankle_angle_avg", 180)
	kneeAvg := f.Get("knee_angle_avg", 180)
	elbowAvg := f.Get("elbow_angle_avg", 180)
	symKnee := f.Get("sym_knee", 0)
	shoulderY := f.Get("shoulder_y", 0.4)
	wristY := f.Get("wrist_y", 0.6)

	// Pushup: straight trunk, wrists below shoulders, flexed elbows.
	pushupScore := (Ramp(trunk, th.PushupTrunkMin, 180) +
		Ramp(wristY-shoulderY, th.PushupWristBelow, 0.6) +
		Ramp(th.PushupTopElbow-elbowAvg, 0, th.PushupElbowFlexRange)) / 3

	// Squat: leaning trunk, bent knees, symmetric stance.
	squatScore := (Ramp(th.SquatTrunkMax-trunk, 0, th.SquatTrunkRange) +
		Ramp(th.SquatStandKnee-kneeAvg, 0, th.SquatKneeFlexRange) +
		Ramp(th.SquatSymKneeMax-symKnee, 0, th.SquatSymKneeMax)) / 3

	// Lunge: a single ramp over the left-right knee asymmetry.
	lungeScore := Ramp(symKnee, th.LungeAsymMin, th.LungeAsymMax)

	scores := map[string]float64{
		LabelPushup: pushupScore,
		LabelSquat:  squatScore,
		LabelLunge:  lungeScore,
	}

	// Argmax over the fixed Labels order keeps ties deterministic.
	label := Labels[0]
	best := scores[label]
	for _, l := range Labels[1:] {
		if scores[l] > best {
			label, best = l, scores[l]
		}
	}

	return Prediction{
		Label:      label,
		Confidence: best,
		Diagnostics: map[string]float64{
			"pushup_score": pushupScore,
			"squat_score":  squatScore,
			"lunge_score":  lungeScore,
			"trunk":        trunk,
			"knee_avg":     kneeAvg,
			"elbow_avg":    elbowAvg,
			"sym_knee":     symKnee,
		},
	}
}

// #endregion classifier
