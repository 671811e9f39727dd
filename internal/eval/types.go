package eval

// #region types

// LabelMetrics holds precision, recall, and F1 for one label.
type LabelMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
	TP        int
	FP        int
	FN        int
}

// Averages holds macro and support-weighted aggregates over all labels.
type Averages struct {
	PrecisionMacro    float64
	RecallMacro       float64
	F1Macro           float64
	PrecisionWeighted float64
	RecallWeighted    float64
	F1Weighted        float64
}

// IoUMetrics is the intersection-over-union for one label:
// TP / (TP + FP + FN).
type IoUMetrics struct {
	Label string
	IoU   float64
	TP    int
	FP    int
	FN    int
}

// Transition is a phase change at a frame boundary.
type Transition struct {
	FrameIdx int
	From     string
	To       string
}

// RepComparison compares predicted against ground-truth rep counts.
type RepComparison struct {
	Predicted int
	Actual    int
	AbsError  int
	Accuracy  float64 // 1 - AbsError/Actual, 0 when Actual is 0
}

// Report bundles every agreement metric for one labeled sequence pair.
// Confusion is indexed [ground truth][predicted] in Labels order.
type Report struct {
	Labels             []string
	FrameAccuracy      float64
	TransitionAccuracy float64
	MeanIoU            float64
	PerLabel           []LabelMetrics
	Averages           Averages
	IoU                []IoUMetrics
	Confusion          [][]int
	Reps               *RepComparison
}

// #endregion types
