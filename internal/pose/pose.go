package pose

import "errors"

// #region types

// Point is a normalized 2D landmark coordinate, x and y in [0, 1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks maps a landmark name (e.g. "left_knee") to its coordinate.
type Landmarks map[string]Point

// Frame is one sample delivered by a pose source. When Detected is false
// the detector found no body in the frame and Landmarks is empty.
type Frame struct {
	Index     int
	Timestamp float64 // seconds since stream start
	Detected  bool
	Landmarks Landmarks
}

// #endregion types

// #region required-landmarks

// Required lists the landmark names every detected frame must carry before
// feature extraction can run.
var Required = []string{
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
}

// #endregion required-landmarks

// #region source

// ErrStreamEnd signals that a pose source has no more frames. Sources also
// return it on unrecoverable read failures; the session loop finalizes
// normally in both cases.
var ErrStreamEnd = errors.New("pose stream ended")

// Source delivers pose frames one at a time. Next returns ErrStreamEnd when
// the stream is exhausted.
type Source interface {
	Next() (Frame, error)
}

// #endregion source
