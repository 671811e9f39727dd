package eval

import (
	"math"
	"testing"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: expected %f, got %f", name, want, got)
	}
}

func TestPrecisionRecallF1(t *testing.T) {
	yTrue := []string{"A", "A", "B", "B"}
	yPred := []string{"A", "B", "B", "B"}

	metrics := PrecisionRecallF1(yTrue, yPred, []string{"A", "B"})

	a := metrics[0]
	approx(t, "A precision", a.Precision, 1.0) // 1 predicted A, correct
	approx(t, "A recall", a.Recall, 0.5)       // 1 of 2 true A found
	approx(t, "A f1", a.F1, 2.0/3.0)
	if a.Support != 2 {
		t.Fatalf("A support: expected 2, got %d", a.Support)
	}

	b := metrics[1]
	approx(t, "B precision", b.Precision, 2.0/3.0)
	approx(t, "B recall", b.Recall, 1.0)
	approx(t, "B f1", b.F1, 0.8)
}

func TestPrecisionRecallF1AbsentLabel(t *testing.T) {
	metrics := PrecisionRecallF1([]string{"A"}, []string{"A"}, []string{"A", "C"})
	c := metrics[1]
	if c.Precision != 0 || c.Recall != 0 || c.F1 != 0 {
		t.Fatalf("absent label should score zero: %+v", c)
	}
}

func TestMacroWeighted(t *testing.T) {
	perLabel := []LabelMetrics{
		{Label: "A", Precision: 1.0, Recall: 0.5, F1: 2.0 / 3.0, Support: 2},
		{Label: "B", Precision: 2.0 / 3.0, Recall: 1.0, F1: 0.8, Support: 2},
	}

	avg := MacroWeighted(perLabel)
	approx(t, "precision macro", avg.PrecisionMacro, (1.0+2.0/3.0)/2)
	approx(t, "f1 macro", avg.F1Macro, (2.0/3.0+0.8)/2)
	// Equal support makes weighted equal macro.
	approx(t, "f1 weighted", avg.F1Weighted, avg.F1Macro)
}

func TestMacroWeightedZeroSupport(t *testing.T) {
	avg := MacroWeighted([]LabelMetrics{{Label: "A", Precision: 1}})
	approx(t, "weighted with no support", avg.PrecisionWeighted, 0)
}

func TestPhaseIoU(t *testing.T) {
	yTrue := []string{"A", "A", "B", "B"}
	yPred := []string{"A", "B", "B", "B"}

	iou := PhaseIoU(yTrue, yPred, []string{"A", "B"})
	approx(t, "A iou", iou[0].IoU, 0.5)     // tp 1, fp 0, fn 1
	approx(t, "B iou", iou[1].IoU, 2.0/3.0) // tp 2, fp 1, fn 0
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := []string{"A", "A", "B"}
	yPred := []string{"A", "B", "B"}

	mat := ConfusionMatrix(yTrue, yPred, []string{"A", "B"})
	if mat[0][0] != 1 || mat[0][1] != 1 {
		t.Fatalf("row A wrong: %v", mat[0])
	}
	if mat[1][0] != 0 || mat[1][1] != 1 {
		t.Fatalf("row B wrong: %v", mat[1])
	}
}

func TestTransitions(t *testing.T) {
	trans := Transitions([]string{"Start", "Start", "Descending", "Bottom", "Bottom"})
	if len(trans) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(trans))
	}
	if trans[0].FrameIdx != 2 || trans[0].From != "Start" || trans[0].To != "Descending" {
		t.Fatalf("first transition wrong: %+v", trans[0])
	}
	if trans[1].FrameIdx != 3 || trans[1].To != "Bottom" {
		t.Fatalf("second transition wrong: %+v", trans[1])
	}
}

func TestTransitionAccuracyIgnoresTiming(t *testing.T) {
	gt := []string{"Start", "Descending", "Bottom", "Ascending"}
	// Same transition kinds, delayed by a frame.
	pred := []string{"Start", "Start", "Descending", "Bottom"}

	got := TransitionAccuracy(gt, pred)
	// Pred covers Start→Descending and Descending→Bottom but misses
	// Bottom→Ascending.
	approx(t, "transition accuracy", got, 2.0/3.0)
}

func TestTransitionAccuracyNoGroundTruthTransitions(t *testing.T) {
	approx(t, "flat ground truth", TransitionAccuracy([]string{"A", "A"}, []string{"A", "B"}), 0)
}

func TestCompareReps(t *testing.T) {
	c := CompareReps(8, 10)
	if c.AbsError != 2 {
		t.Fatalf("expected abs error 2, got %d", c.AbsError)
	}
	approx(t, "rep accuracy", c.Accuracy, 0.8)

	zero := CompareReps(3, 0)
	approx(t, "zero ground truth", zero.Accuracy, 0)
}

func TestComputeFullReport(t *testing.T) {
	gt := []string{"Start", "Descending", "Bottom", "Ascending", "Start"}
	pred := []string{"Start", "Descending", "Descending", "Ascending", "Start"}

	report, err := Compute(gt, pred)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	approx(t, "frame accuracy", report.FrameAccuracy, 0.8)
	if len(report.Labels) != 4 {
		t.Fatalf("expected 4 labels, got %v", report.Labels)
	}
	if report.MeanIoU <= 0 || report.MeanIoU > 1 {
		t.Fatalf("mean IoU out of range: %f", report.MeanIoU)
	}

	report.WithReps(1, 1)
	if report.Reps == nil || report.Reps.Accuracy != 1 {
		t.Fatalf("rep comparison wrong: %+v", report.Reps)
	}
}

func TestComputeRejectsMismatchedLengths(t *testing.T) {
	if _, err := Compute([]string{"A"}, []string{"A", "B"}); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if _, err := Compute(nil, nil); err == nil {
		t.Fatal("expected empty sequence error")
	}
}

func TestPerfectAgreement(t *testing.T) {
	seq := []string{"Start", "Descending", "Bottom", "Ascending", "Start"}
	report, err := Compute(seq, seq)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	approx(t, "frame accuracy", report.FrameAccuracy, 1)
	approx(t, "transition accuracy", report.TransitionAccuracy, 1)
	approx(t, "mean IoU", report.MeanIoU, 1)
	approx(t, "f1 macro", report.Averages.F1Macro, 1)
}
