// Package feedback turns a frame's form verdict into the text surfaced to
// the operator: an overlay line, an optional spoken message, and the raw
// warning list.
package feedback

import (
	"fmt"
	"strings"

	"github.com/mashrufaorc/posephase/internal/feature"
	"github.com/mashrufaorc/posephase/internal/form"
	"github.com/mashrufaorc/posephase/internal/fsm"
)

// #region config

// Config tunes praise behavior. PraisePhases nil means praise is allowed in
// any phase.
type Config struct {
	PraiseThreshold float64
	PraisePhases    []fsm.Phase
	PraiseLines     []string
}

// DefaultConfig returns the stock feedback tuning.
func DefaultConfig() Config {
	return Config{
		PraiseThreshold: 0.80,
		PraiseLines: []string{
			"Good form!",
			"Nice rep!",
			"Looking strong!",
			"Great technique!",
			"Excellent movement!",
		},
	}
}

// #endregion config

// #region feedback

// Feedback is the synthesized per-frame output. Ephemeral.
type Feedback struct {
	UIText    string
	SpeakText string
	Warnings  []string
	Score     float64
}

// #endregion feedback

// #region synthesizer

// Synthesizer composes feedback from the phase, form result, features, and
// rep count. Generate is a pure function of its inputs.
type Synthesizer struct {
	cfg Config
}

// NewSynthesizer creates a synthesizer with the given config.
func NewSynthesizer(cfg Config) *Synthesizer {
	if len(cfg.PraiseLines) == 0 {
		cfg.PraiseLines = DefaultConfig().PraiseLines
	}
	return &Synthesizer{cfg: cfg}
}

// Generate builds the frame's feedback. The single spoken message follows
// warnings-first priority: first warning, else praise, else nothing.
func (s *Synthesizer) Generate(phase fsm.Phase, res form.Result, _ feature.Vector, repCount int) Feedback {
	warnings := res.Warnings
	score := res.Score

	praise := ""
	if len(warnings) == 0 && score >= s.cfg.PraiseThreshold && s.phaseAllowed(phase) {
		// Cycle praise lines deterministically by rep count.
		praise = s.cfg.PraiseLines[repCount%len(s.cfg.PraiseLines)]
	}

	speak := ""
	switch {
	case len(warnings) > 0:
		speak = warnings[0]
	case praise != "":
		speak = praise
	}

	var ui string
	switch {
	case len(warnings) > 0:
		ui = fmt.Sprintf("Fix: %s | Score %.2f", strings.Join(warnings, ", "), score)
	case praise != "":
		ui = fmt.Sprintf("%s | Score %.2f", praise, score)
	default:
		ui = fmt.Sprintf("Score %.2f", score)
	}

	return Feedback{
		UIText:    ui,
		SpeakText: speak,
		Warnings:  warnings,
		Score:     score,
	}
}

func (s *Synthesizer) phaseAllowed(phase fsm.Phase) bool {
	if s.cfg.PraisePhases == nil {
		return true
	}
	for _, p := range s.cfg.PraisePhases {
		if p == phase {
			return true
		}
	}
	return false
}

// #endregion synthesizer
