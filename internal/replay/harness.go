package replay

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mashrufaorc/posephase/internal/config"
	"github.com/mashrufaorc/posephase/internal/pose"
	"github.com/mashrufaorc/posephase/internal/session"
)

// #region types

// FrameResult is the per-frame comparison of actual against expected.
type FrameResult struct {
	Index    int
	TimeS    float64
	Exercise string
	Phase    string
	Expected string // "" when the fixture does not check this frame
	Match    bool   // true when unchecked or equal
	RepCount int
	Skipped  bool
}

// Report aggregates one fixture run.
type Report struct {
	Description  string
	Frames       []FrameResult
	PhaseChecks  int
	PhaseMatches int
	RepCount     int
	ExpectReps   int
}

// Passed reports whether every checked phase matched and the rep count is
// as expected.
func (r *Report) Passed() bool {
	return r.PhaseMatches == r.PhaseChecks && r.RepCount == r.ExpectReps
}

// #endregion types

// #region harness

// Run replays a fixture through the full pipeline in memory, without
// persistence or speech, and compares frame by frame.
func Run(cfg config.Config, fixture *Fixture) (*Report, error) {
	runner, err := session.NewRunner(cfg, session.Options{
		SessionID:      "replay",
		ForcedExercise: fixture.Exercise,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return nil, fmt.Errorf("replay setup: %w", err)
	}

	report := &Report{
		Description: fixture.Description,
		ExpectReps:  fixture.ExpectReps,
	}

	for i, frame := range fixture.PoseFrames() {
		out, err := runner.ProcessFrame(frame)
		if err != nil {
			return nil, fmt.Errorf("replay frame %d: %w", frame.Index, err)
		}

		fr := FrameResult{
			Index:    out.FrameIndex,
			TimeS:    out.TimeS,
			Exercise: out.Exercise,
			RepCount: out.RepCount,
			Skipped:  out.Skipped,
			Expected: fixture.Frames[i].ExpectPhase,
			Match:    true,
		}
		if !out.Skipped {
			fr.Phase = out.Phase.String()
		}
		if fr.Expected != "" {
			report.PhaseChecks++
			fr.Match = fr.Phase == fr.Expected
			if fr.Match {
				report.PhaseMatches++
			}
		}
		report.Frames = append(report.Frames, fr)
		report.RepCount = out.RepCount
	}

	if _, err := runner.Finish(); err != nil {
		return nil, fmt.Errorf("replay finish: %w", err)
	}
	return report, nil
}

// RunSource is Run without expectations: it replays any pose source and
// returns the session summary. Used by offline tooling that only needs the
// pipeline's output.
func RunSource(cfg config.Config, src pose.Source, forced string) (session.Summary, error) {
	runner, err := session.NewRunner(cfg, session.Options{
		SessionID:      "replay",
		ForcedExercise: forced,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return session.Summary{}, fmt.Errorf("replay setup: %w", err)
	}
	return runner.Run(src)
}

// #endregion harness
