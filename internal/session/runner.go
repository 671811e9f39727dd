// Package session drives one analysis session: frames in, per-frame
// outcomes out, a summary at the end. The runner owns the full chain
// (extract, smooth, classify, segment, count, score, synthesize) and
// rebuilds the stateful tail of it whenever the active exercise changes.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mashrufaorc/posephase/internal/classify"
	"github.com/mashrufaorc/posephase/internal/config"
	"github.com/mashrufaorc/posephase/internal/feature"
	"github.com/mashrufaorc/posephase/internal/feedback"
	"github.com/mashrufaorc/posephase/internal/form"
	"github.com/mashrufaorc/posephase/internal/fsm"
	"github.com/mashrufaorc/posephase/internal/pose"
	"github.com/mashrufaorc/posephase/internal/reps"
	"github.com/mashrufaorc/posephase/internal/smooth"
	"github.com/mashrufaorc/posephase/internal/speech"
	"github.com/mashrufaorc/posephase/internal/store"
)

// #region options

// Options configures one session. Store and Speaker are optional; nil
// disables persistence and speech respectively.
type Options struct {
	SessionID      string
	Source         string // input description, e.g. the stream path
	ForcedExercise string // "" lets the classifier pick per frame
	Store          *store.Store
	Speaker        *speech.Speaker
	Logger         *slog.Logger
}

// #endregion options

// #region outcome

// FrameOutcome is what the runner reports per processed frame.
type FrameOutcome struct {
	FrameIndex int
	TimeS      float64
	Exercise   string
	Confidence float64
	Phase      fsm.Phase
	RepCount   int
	Feedback   feedback.Feedback
	Skipped    bool
}

// #endregion outcome

// #region summary

// maxWarningExamples caps the distinct warning strings kept in the summary.
const maxWarningExamples = 10

// Summary aggregates a finished session. WarningsBreakdown sums to
// WarningsCount.
type Summary struct {
	Exercise          string         `json:"exercise"`
	RepCount          int            `json:"rep_count"`
	PhaseCounts       map[string]int `json:"phase_counts"`
	WarningsCount     int            `json:"warnings_count"`
	WarningsExamples  []string       `json:"warnings_examples"`
	WarningsBreakdown map[string]int `json:"warnings_breakdown"`
	MeanScore         float64        `json:"mean_score"`
}

// MarshalIndent renders the summary as pretty-printed JSON for files and
// the inspect command.
func (s Summary) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	return data, nil
}

// #endregion summary

// #region rep-buffer

// repBuffer accumulates per-frame values between rep completions so the
// finished rep can be logged as one aggregate row.
type repBuffer struct {
	startS    float64
	started   bool
	minKnee   float64
	minElbow  float64
	scoreSum  float64
	frames    int
	warnings  int
	warnTally map[string]int
}

func newRepBuffer() *repBuffer {
	b := &repBuffer{}
	b.reset(0)
	return b
}

func (b *repBuffer) reset(startS float64) {
	b.startS = startS
	b.started = false
	b.minKnee = 0
	b.minElbow = 0
	b.scoreSum = 0
	b.frames = 0
	b.warnings = 0
	b.warnTally = make(map[string]int)
}

func (b *repBuffer) observe(timeS float64, f feature.Vector, fb feedback.Feedback) {
	if !b.started {
		b.startS = timeS
		b.started = true
		b.minKnee = f.Get("knee_angle_avg", 180)
		b.minElbow = f.Get("elbow_angle_avg", 180)
	} else {
		if k := f.Get("knee_angle_avg", 180); k < b.minKnee {
			b.minKnee = k
		}
		if e := f.Get("elbow_angle_avg", 180); e < b.minElbow {
			b.minElbow = e
		}
	}
	b.scoreSum += fb.Score
	b.frames++
	b.warnings += len(fb.Warnings)
	for _, w := range fb.Warnings {
		b.warnTally[w]++
	}
}

// topWarning returns the most frequent warning of the rep, ties broken by
// string order for determinism.
func (b *repBuffer) topWarning() string {
	best, bestN := "", 0
	for w, n := range b.warnTally {
		if n > bestN || (n == bestN && best != "" && w < best) {
			best, bestN = w, n
		}
	}
	return best
}

func (b *repBuffer) meanScore() float64 {
	if b.frames == 0 {
		return 0
	}
	return b.scoreSum / float64(b.frames)
}

// #endregion rep-buffer

// #region runner

// Runner executes the per-frame pipeline. Not safe for concurrent use; one
// goroutine owns a runner for the session's lifetime.
type Runner struct {
	cfg  config.Config
	opts Options
	log  *slog.Logger

	extractor  *feature.Extractor
	smoother   *smooth.Smoother
	classifier *classify.Classifier
	synth      *feedback.Synthesizer

	// Stateful tail, rebuilt together on every exercise switch.
	active    string
	machine   *fsm.Machine
	evaluator form.Evaluator
	counter   *reps.Counter

	rep *repBuffer

	// Session accumulators.
	startedAt   time.Time
	lastTimeS   float64
	phaseCounts map[string]int
	labelCounts map[string]int
	warnTally   map[string]int
	warnExample []string
	warnTotal   int
	scoreSum    float64
	scored      int
	finished    bool
}

// NewRunner validates the config, builds the pipeline, and (when a store is
// configured) opens the session row.
func NewRunner(cfg config.Config, opts Options) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	fbCfg, err := cfg.FeedbackConfig()
	if err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Runner{
		cfg:         cfg,
		opts:        opts,
		log:         opts.Logger,
		extractor:   feature.NewExtractor(0),
		smoother:    smooth.NewSmoother(cfg.SmootherConfig()),
		classifier:  classify.NewClassifier(cfg.ClassifierThresholds()),
		synth:       feedback.NewSynthesizer(fbCfg),
		rep:         newRepBuffer(),
		startedAt:   time.Now(),
		phaseCounts: make(map[string]int),
		labelCounts: make(map[string]int),
		warnTally:   make(map[string]int),
	}

	if opts.ForcedExercise != "" {
		if err := r.swapExercise(opts.ForcedExercise); err != nil {
			return nil, err
		}
	}

	if opts.Store != nil {
		err := opts.Store.BeginSession(store.SessionRecord{
			SessionID: opts.SessionID,
			Source:    opts.Source,
			Exercise:  opts.ForcedExercise,
			Forced:    opts.ForcedExercise != "",
			StartedAt: r.startedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("begin session: %w", err)
		}
	}
	return r, nil
}

// swapExercise rebuilds the phase machine, form evaluator, and rep counter
// as one unit. Counting and scoring state never outlives the exercise it
// was accumulated under.
func (r *Runner) swapExercise(label string) error {
	machine, err := fsm.New(label, r.cfg.FSMThresholds())
	if err != nil {
		return err
	}
	evaluator, err := form.New(label, r.cfg.FormThresholds())
	if err != nil {
		return err
	}
	if r.active != "" {
		r.log.Info("exercise switched", "from", r.active, "to", label)
	}
	r.active = label
	r.machine = machine
	r.evaluator = evaluator
	r.counter = reps.NewCounter()
	r.rep.reset(r.lastTimeS)
	return nil
}

// ProcessFrame runs the full chain for one frame. Undetected frames and
// frames with missing landmarks are skipped, not errors.
func (r *Runner) ProcessFrame(frame pose.Frame) (FrameOutcome, error) {
	out := FrameOutcome{FrameIndex: frame.Index, TimeS: frame.Timestamp}
	r.lastTimeS = frame.Timestamp

	if !frame.Detected {
		out.Skipped = true
		return out, nil
	}

	raw, err := r.extractor.Compute(frame.Landmarks)
	if err != nil {
		if errors.Is(err, feature.ErrMissingLandmark) {
			r.log.Debug("frame skipped", "frame", frame.Index, "error", err)
			out.Skipped = true
			return out, nil
		}
		return out, fmt.Errorf("frame %d: %w", frame.Index, err)
	}
	f := r.smoother.Update(raw)

	var pred classify.Prediction
	if r.opts.ForcedExercise != "" {
		pred = classify.Forced(r.opts.ForcedExercise)
	} else {
		pred = r.classifier.Predict(f)
	}
	if pred.Label != r.active {
		if err := r.swapExercise(pred.Label); err != nil {
			return out, fmt.Errorf("frame %d: %w", frame.Index, err)
		}
	}

	phase := r.machine.Update(f)
	prevCount := r.counter.Count()
	count := r.counter.Update(phase)
	res := r.evaluator.ScorePhase(phase, f)
	fb := r.synth.Generate(phase, res, f, count)

	if r.opts.Speaker != nil {
		r.opts.Speaker.Say(fb.SpeakText)
	}

	r.rep.observe(frame.Timestamp, f, fb)
	if count > prevCount {
		r.flushRep(count, frame.Timestamp)
	}

	r.labelCounts[pred.Label]++
	r.phaseCounts[phase.String()]++
	r.scoreSum += fb.Score
	r.scored++
	r.warnTotal += len(fb.Warnings)
	for _, w := range fb.Warnings {
		if r.warnTally[w] == 0 && len(r.warnExample) < maxWarningExamples {
			r.warnExample = append(r.warnExample, w)
		}
		r.warnTally[w]++
	}

	if r.opts.Store != nil {
		err := r.opts.Store.LogFrame(store.FrameRecord{
			SessionID:  r.opts.SessionID,
			FrameIndex: frame.Index,
			TimeS:      frame.Timestamp,
			Exercise:   pred.Label,
			Confidence: pred.Confidence,
			Phase:      phase.String(),
			KneeAvg:    f.Get("knee_angle_avg", 0),
			ElbowAvg:   f.Get("elbow_angle_avg", 0),
			RepCount:   count,
			Score:      fb.Score,
			Warnings:   joinWarnings(fb.Warnings),
		})
		if err != nil {
			return out, err
		}
	}

	out.Exercise = pred.Label
	out.Confidence = pred.Confidence
	out.Phase = phase
	out.RepCount = count
	out.Feedback = fb
	return out, nil
}

// flushRep logs the just-completed rep's aggregate row and rearms the
// buffer for the next rep.
func (r *Runner) flushRep(repID int, endS float64) {
	if r.opts.Store != nil {
		err := r.opts.Store.LogRep(store.RepRecord{
			SessionID:     r.opts.SessionID,
			RepID:         repID,
			Exercise:      r.active,
			StartS:        r.rep.startS,
			EndS:          endS,
			DurationS:     endS - r.rep.startS,
			MinKnee:       r.rep.minKnee,
			MinElbow:      r.rep.minElbow,
			MeanScore:     r.rep.meanScore(),
			WarningsCount: r.rep.warnings,
			TopWarning:    r.rep.topWarning(),
		})
		if err != nil {
			r.log.Warn("rep row not logged", "rep", repID, "error", err)
		}
	}
	r.log.Info("rep completed", "exercise", r.active, "rep", repID,
		"duration_s", endS-r.rep.startS, "mean_score", r.rep.meanScore())
	r.rep.reset(endS)
}

// Run consumes the source until it ends, then finalizes. A source read
// failure wrapped in ErrStreamEnd still finalizes cleanly.
func (r *Runner) Run(src pose.Source) (Summary, error) {
	for {
		frame, err := src.Next()
		if err != nil {
			if errors.Is(err, pose.ErrStreamEnd) {
				if err != pose.ErrStreamEnd {
					// Wrapped end: the source hit a read failure mid-stream.
					r.log.Warn("stream ended early", "error", err)
				}
				break
			}
			return Summary{}, fmt.Errorf("read frame: %w", err)
		}
		if _, err := r.ProcessFrame(frame); err != nil {
			return Summary{}, err
		}
	}
	return r.Finish()
}

// Finish builds the summary and closes out the session row. Calling it
// twice returns the same summary without touching the store again.
func (r *Runner) Finish() (Summary, error) {
	sum := r.summarize()
	if r.finished {
		return sum, nil
	}
	r.finished = true

	if r.opts.Store != nil {
		data, err := json.Marshal(sum)
		if err != nil {
			return sum, fmt.Errorf("marshal summary: %w", err)
		}
		err = r.opts.Store.FinishSession(store.SessionRecord{
			SessionID:     r.opts.SessionID,
			Exercise:      sum.Exercise,
			FinishedAt:    time.Now(),
			RepCount:      sum.RepCount,
			MeanScore:     sum.MeanScore,
			WarningsCount: sum.WarningsCount,
			SummaryJSON:   string(data),
		})
		if err != nil {
			return sum, err
		}
	}
	r.log.Info("session finished", "session", r.opts.SessionID,
		"exercise", sum.Exercise, "reps", sum.RepCount, "mean_score", sum.MeanScore)
	return sum, nil
}

func (r *Runner) summarize() Summary {
	sum := Summary{
		Exercise:          r.dominantLabel(),
		PhaseCounts:       r.phaseCounts,
		WarningsCount:     r.warnTotal,
		WarningsExamples:  r.warnExample,
		WarningsBreakdown: r.warnTally,
	}
	if r.counter != nil {
		sum.RepCount = r.counter.Count()
	}
	if r.scored > 0 {
		sum.MeanScore = r.scoreSum / float64(r.scored)
	}
	return sum
}

// dominantLabel is the exercise that held the most frames; the forced label
// when one is pinned.
func (r *Runner) dominantLabel() string {
	if r.opts.ForcedExercise != "" {
		return r.opts.ForcedExercise
	}
	best, bestN := "", -1
	for _, label := range classify.Labels {
		if n := r.labelCounts[label]; n > bestN {
			best, bestN = label, n
		}
	}
	if bestN <= 0 {
		return ""
	}
	return best
}

// #endregion runner

// #region helpers

func joinWarnings(ws []string) string {
	out := ""
	for i, w := range ws {
		if i > 0 {
			out += "; "
		}
		out += w
	}
	return out
}

// #endregion helpers
