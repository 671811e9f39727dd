package pose

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// #region jsonl-types

// jsonlFrame mirrors one line of a JSONL pose stream. A line either carries
// a full landmark set or marks a no-detection frame:
//
//	{"t": 0.033, "landmarks": {"left_hip": {"x": 0.51, "y": 0.48}, ...}}
//	{"t": 0.066, "detected": false}
type jsonlFrame struct {
	T         float64   `json:"t"`
	Detected  *bool     `json:"detected"`
	Landmarks Landmarks `json:"landmarks"`
}

// #endregion jsonl-types

// #region jsonl-stream

// JSONLStream reads pose frames from a JSON-lines file.
type JSONLStream struct {
	file    *os.File
	scanner *bufio.Scanner
	index   int
}

// OpenJSONL opens a JSONL pose stream file.
func OpenJSONL(path string) (*JSONLStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pose stream %s: %w", path, err)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &JSONLStream{file: f, scanner: sc}, nil
}

// Next returns the next frame. Blank lines are skipped. A malformed line is
// a read failure: the stream reports ErrStreamEnd so the session finalizes
// cleanly, with the parse error wrapped for logging.
func (s *JSONLStream) Next() (Frame, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		var jf jsonlFrame
		if err := json.Unmarshal([]byte(line), &jf); err != nil {
			return Frame{}, fmt.Errorf("%w: parse line %d: %v", ErrStreamEnd, s.index+1, err)
		}
		detected := len(jf.Landmarks) > 0
		if jf.Detected != nil {
			detected = *jf.Detected
		}
		frame := Frame{
			Index:     s.index,
			Timestamp: jf.T,
			Detected:  detected,
			Landmarks: jf.Landmarks,
		}
		s.index++
		return frame, nil
	}
	if err := s.scanner.Err(); err != nil {
		return Frame{}, fmt.Errorf("%w: read: %v", ErrStreamEnd, err)
	}
	return Frame{}, ErrStreamEnd
}

// Close releases the underlying file.
func (s *JSONLStream) Close() error {
	return s.file.Close()
}

// #endregion jsonl-stream

// #region slice-source

// SliceSource serves frames from memory. Used by the replay harness and tests.
type SliceSource struct {
	frames []Frame
	pos    int
}

// NewSliceSource builds a source over the given frames. Indices are assigned
// sequentially when unset.
func NewSliceSource(frames []Frame) *SliceSource {
	out := make([]Frame, len(frames))
	copy(out, frames)
	for i := range out {
		out[i].Index = i
	}
	return &SliceSource{frames: out}
}

// Next implements Source.
func (s *SliceSource) Next() (Frame, error) {
	if s.pos >= len(s.frames) {
		return Frame{}, ErrStreamEnd
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// #endregion slice-source
