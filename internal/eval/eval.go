// Package eval scores a predicted phase sequence against a labeled
// reference: frame accuracy, per-phase precision/recall/F1 and IoU, a
// confusion matrix, transition agreement, and rep-count error. Everything
// operates on aligned string sequences; the caller joins by frame index.
package eval

import (
	"fmt"
	"math"
	"sort"
)

// #region per-label

// PrecisionRecallF1 computes the per-label metrics over aligned sequences.
func PrecisionRecallF1(yTrue, yPred []string, labels []string) []LabelMetrics {
	out := make([]LabelMetrics, 0, len(labels))
	for _, lab := range labels {
		var tp, fp, fn, support int
		for i := range yTrue {
			t, p := yTrue[i] == lab, yPred[i] == lab
			switch {
			case t && p:
				tp++
			case !t && p:
				fp++
			case t && !p:
				fn++
			}
			if t {
				support++
			}
		}
		m := LabelMetrics{Label: lab, Support: support, TP: tp, FP: fp, FN: fn}
		if tp+fp > 0 {
			m.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			m.Recall = float64(tp) / float64(tp+fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		out = append(out, m)
	}
	return out
}

// MacroWeighted aggregates per-label metrics. Macro treats each label
// equally; weighted scales by support.
func MacroWeighted(perLabel []LabelMetrics) Averages {
	var avg Averages
	if len(perLabel) == 0 {
		return avg
	}

	total := 0
	for _, m := range perLabel {
		avg.PrecisionMacro += m.Precision
		avg.RecallMacro += m.Recall
		avg.F1Macro += m.F1
		avg.PrecisionWeighted += m.Precision * float64(m.Support)
		avg.RecallWeighted += m.Recall * float64(m.Support)
		avg.F1Weighted += m.F1 * float64(m.Support)
		total += m.Support
	}

	n := float64(len(perLabel))
	avg.PrecisionMacro /= n
	avg.RecallMacro /= n
	avg.F1Macro /= n

	if total > 0 {
		avg.PrecisionWeighted /= float64(total)
		avg.RecallWeighted /= float64(total)
		avg.F1Weighted /= float64(total)
	} else {
		avg.PrecisionWeighted, avg.RecallWeighted, avg.F1Weighted = 0, 0, 0
	}
	return avg
}

// PhaseIoU computes per-label intersection-over-union.
func PhaseIoU(yTrue, yPred []string, labels []string) []IoUMetrics {
	out := make([]IoUMetrics, 0, len(labels))
	for _, lab := range labels {
		var tp, fp, fn int
		for i := range yTrue {
			t, p := yTrue[i] == lab, yPred[i] == lab
			switch {
			case t && p:
				tp++
			case !t && p:
				fp++
			case t && !p:
				fn++
			}
		}
		m := IoUMetrics{Label: lab, TP: tp, FP: fp, FN: fn}
		if denom := tp + fp + fn; denom > 0 {
			m.IoU = float64(tp) / float64(denom)
		}
		out = append(out, m)
	}
	return out
}

// ConfusionMatrix counts (ground truth, predicted) pairs. Rows follow
// labels order for ground truth, columns for predictions.
func ConfusionMatrix(yTrue, yPred []string, labels []string) [][]int {
	idx := make(map[string]int, len(labels))
	for i, lab := range labels {
		idx[lab] = i
	}
	mat := make([][]int, len(labels))
	for i := range mat {
		mat[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		ti, tok := idx[yTrue[i]]
		pi, pok := idx[yPred[i]]
		if tok && pok {
			mat[ti][pi]++
		}
	}
	return mat
}

// #endregion per-label

// #region transitions

// Transitions lists the frame indices where the phase changes.
func Transitions(phases []string) []Transition {
	var out []Transition
	for i := 1; i < len(phases); i++ {
		if phases[i] != phases[i-1] {
			out = append(out, Transition{FrameIdx: i, From: phases[i-1], To: phases[i]})
		}
	}
	return out
}

// TransitionAccuracy is the fraction of ground-truth transition kinds
// (from, to) that also occur in the prediction. Frame indices are ignored;
// a transition a few frames late still counts.
func TransitionAccuracy(gtPhases, predPhases []string) float64 {
	type kind struct{ from, to string }

	gt := make(map[kind]bool)
	for _, t := range Transitions(gtPhases) {
		gt[kind{t.From, t.To}] = true
	}
	if len(gt) == 0 {
		return 0
	}

	pred := make(map[kind]bool)
	for _, t := range Transitions(predPhases) {
		pred[kind{t.From, t.To}] = true
	}

	correct := 0
	for k := range gt {
		if pred[k] {
			correct++
		}
	}
	return float64(correct) / float64(len(gt))
}

// #endregion transitions

// #region reps

// CompareReps scores predicted against ground-truth rep counts.
func CompareReps(predicted, actual int) RepComparison {
	ae := predicted - actual
	if ae < 0 {
		ae = -ae
	}
	c := RepComparison{Predicted: predicted, Actual: actual, AbsError: ae}
	if actual > 0 {
		c.Accuracy = 1 - float64(ae)/float64(actual)
	}
	return c
}

// #endregion reps

// #region report

// Compute builds the full agreement report for aligned phase sequences.
// Labels are the sorted union of both sequences.
func Compute(gtPhases, predPhases []string) (*Report, error) {
	if len(gtPhases) == 0 {
		return nil, fmt.Errorf("empty phase sequences")
	}
	if len(gtPhases) != len(predPhases) {
		return nil, fmt.Errorf("sequence length mismatch: %d ground truth, %d predicted",
			len(gtPhases), len(predPhases))
	}

	labelSet := make(map[string]bool)
	for _, p := range gtPhases {
		labelSet[p] = true
	}
	for _, p := range predPhases {
		labelSet[p] = true
	}
	labels := make([]string, 0, len(labelSet))
	for lab := range labelSet {
		labels = append(labels, lab)
	}
	sort.Strings(labels)

	matches := 0
	for i := range gtPhases {
		if gtPhases[i] == predPhases[i] {
			matches++
		}
	}

	perLabel := PrecisionRecallF1(gtPhases, predPhases, labels)
	iou := PhaseIoU(gtPhases, predPhases, labels)
	meanIoU := 0.0
	for _, m := range iou {
		meanIoU += m.IoU
	}
	if len(iou) > 0 {
		meanIoU /= float64(len(iou))
	}

	return &Report{
		Labels:             labels,
		FrameAccuracy:      float64(matches) / float64(len(gtPhases)),
		TransitionAccuracy: TransitionAccuracy(gtPhases, predPhases),
		MeanIoU:            meanIoU,
		PerLabel:           perLabel,
		Averages:           MacroWeighted(perLabel),
		IoU:                iou,
		Confusion:          ConfusionMatrix(gtPhases, predPhases, labels),
	}, nil
}

// WithReps attaches a rep-count comparison to the report.
func (r *Report) WithReps(predicted, actual int) *Report {
	c := CompareReps(predicted, actual)
	r.Reps = &c
	return r
}

// Round trims a metric for display; metrics are ratios so four decimal
// places is plenty.
func Round(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// #endregion report
