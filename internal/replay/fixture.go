// Package replay runs recorded pose streams through the pipeline and
// compares the outcomes against a fixture's expectations. Used for offline
// regression checks on known-good recordings.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mashrufaorc/posephase/internal/pose"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string         `json:"description"`
	Exercise    string         `json:"exercise"` // forced label; "" lets the classifier pick
	Frames      []FixtureFrame `json:"frames"`
	ExpectReps  int            `json:"expect_reps"`
}

// FixtureFrame is one recorded frame plus its expected phase. ExpectPhase
// "" means the frame is not checked.
type FixtureFrame struct {
	T           float64        `json:"t"`
	Detected    *bool          `json:"detected"`
	Landmarks   pose.Landmarks `json:"landmarks"`
	ExpectPhase string         `json:"expect_phase"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Frames) == 0 {
		return nil, fmt.Errorf("fixture %s: no frames", path)
	}
	return &f, nil
}

// PoseFrames converts the fixture's frames to pose frames for the runner.
func (f *Fixture) PoseFrames() []pose.Frame {
	out := make([]pose.Frame, len(f.Frames))
	for i, ff := range f.Frames {
		detected := len(ff.Landmarks) > 0
		if ff.Detected != nil {
			detected = *ff.Detected
		}
		out[i] = pose.Frame{
			Index:     i,
			Timestamp: ff.T,
			Detected:  detected,
			Landmarks: ff.Landmarks,
		}
	}
	return out
}

// #endregion fixture-loader
