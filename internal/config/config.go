// Package config loads and validates the TOML threshold file. Each pipeline
// package defines its own typed config; this package mirrors those types
// with toml tags and converts at the edge.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/mashrufaorc/posephase/internal/classify"
	"github.com/mashrufaorc/posephase/internal/feedback"
	"github.com/mashrufaorc/posephase/internal/form"
	"github.com/mashrufaorc/posephase/internal/fsm"
	"github.com/mashrufaorc/posephase/internal/smooth"
)

// #region sections

// Smoother selects and tunes the per-feature signal filter.
type Smoother struct {
	Method string  `toml:"method"` // "ema" or "kalman"
	Alpha  float64 `toml:"alpha"`
	Q      float64 `toml:"q"`
	R      float64 `toml:"r"`
}

// Classifier holds the ramp bounds for exercise scoring.
type Classifier struct {
	PushupTrunkMin       float64 `toml:"pushup_trunk_min"`
	PushupWristBelow     float64 `toml:"pushup_wrist_below"`
	PushupTopElbow       float64 `toml:"pushup_top_elbow"`
	PushupElbowFlexRange float64 `toml:"pushup_elbow_flex_range"`
	SquatTrunkMax        float64 `toml:"squat_trunk_max"`
	SquatTrunkRange      float64 `toml:"squat_trunk_range"`
	SquatStandKnee       float64 `toml:"squat_stand_knee"`
	SquatKneeFlexRange   float64 `toml:"squat_knee_flex_range"`
	SquatSymKneeMax      float64 `toml:"squat_sym_knee_max"`
	LungeAsymMin         float64 `toml:"lunge_asym_min"`
	LungeAsymMax         float64 `toml:"lunge_asym_max"`
}

// Squat holds the squat phase-machine thresholds.
type Squat struct {
	StandKnee  float64 `toml:"stand_knee"`
	BottomKnee float64 `toml:"bottom_knee"`
	StandHip   float64 `toml:"stand_hip"`
	VelEps     float64 `toml:"vel_eps"`
}

// Pushup holds the pushup phase-machine thresholds.
type Pushup struct {
	TopElbow    float64 `toml:"top_elbow"`
	BottomElbow float64 `toml:"bottom_elbow"`
	PlankLine   float64 `toml:"plank_line"`
	VelEps      float64 `toml:"vel_eps"`
}

// Lunge holds the lunge phase-machine thresholds.
type Lunge struct {
	StandFrontKnee  float64 `toml:"stand_front_knee"`
	BottomFrontKnee float64 `toml:"bottom_front_knee"`
	StandBackKnee   float64 `toml:"stand_back_knee"`
	BottomBackKnee  float64 `toml:"bottom_back_knee"`
	VelEps          float64 `toml:"vel_eps"`
}

// Form holds the per-exercise form check bounds.
type Form struct {
	Squat  FormSquat  `toml:"squat"`
	Pushup FormPushup `toml:"pushup"`
	Lunge  FormLunge  `toml:"lunge"`
}

// FormSquat bounds the squat form checks.
type FormSquat struct {
	SymKneeMax    float64 `toml:"sym_knee_max"`
	BottomKneeMax float64 `toml:"bottom_knee_max"`
}

// FormPushup bounds the pushup form checks.
type FormPushup struct {
	PlankMin       float64 `toml:"plank_min"`
	BottomElbowMax float64 `toml:"bottom_elbow_max"`
}

// FormLunge bounds the lunge form checks.
type FormLunge struct {
	BottomFrontKneeMax float64 `toml:"bottom_front_knee_max"`
	BottomBackKneeMax  float64 `toml:"bottom_back_knee_max"`
}

// Feedback tunes praise synthesis.
type Feedback struct {
	PraiseThreshold float64  `toml:"praise_threshold"`
	PraisePhases    []string `toml:"praise_phases"`
	PraiseLines     []string `toml:"praise_lines"`
}

// Speech configures the optional TTS worker.
type Speech struct {
	Enabled       bool    `toml:"enabled"`
	Command       string  `toml:"command"` // e.g. "espeak -s 160"
	MinGapSeconds float64 `toml:"min_gap_seconds"`
}

// #endregion sections

// #region config

// Config is the full threshold file.
type Config struct {
	Smoother   Smoother   `toml:"smoother"`
	Classifier Classifier `toml:"classifier"`
	Squat      Squat      `toml:"squat"`
	Pushup     Pushup     `toml:"pushup"`
	Lunge      Lunge      `toml:"lunge"`
	Form       Form       `toml:"form"`
	Feedback   Feedback   `toml:"feedback"`
	Speech     Speech     `toml:"speech"`
}

// Default returns a Config mirroring the per-package defaults.
func Default() Config {
	sm := smooth.DefaultConfig()
	cl := classify.DefaultThresholds()
	ft := fsm.DefaultThresholds()
	fo := form.DefaultThresholds()
	fb := feedback.DefaultConfig()

	return Config{
		Smoother: Smoother{Method: string(sm.Kind), Alpha: sm.Alpha, Q: sm.Q, R: sm.R},
		Classifier: Classifier{
			PushupTrunkMin:       cl.PushupTrunkMin,
			PushupWristBelow:     cl.PushupWristBelow,
			PushupTopElbow:       cl.PushupTopElbow,
			PushupElbowFlexRange: cl.PushupElbowFlexRange,
			SquatTrunkMax:        cl.SquatTrunkMax,
			SquatTrunkRange:      cl.SquatTrunkRange,
			SquatStandKnee:       cl.SquatStandKnee,
			SquatKneeFlexRange:   cl.SquatKneeFlexRange,
			SquatSymKneeMax:      cl.SquatSymKneeMax,
			LungeAsymMin:         cl.LungeAsymMin,
			LungeAsymMax:         cl.LungeAsymMax,
		},
		Squat: Squat{
			StandKnee:  ft.Squat.StandKnee,
			BottomKnee: ft.Squat.BottomKnee,
			StandHip:   ft.Squat.StandHip,
			VelEps:     ft.Squat.VelEps,
		},
		Pushup: Pushup{
			TopElbow:    ft.Pushup.TopElbow,
			BottomElbow: ft.Pushup.BottomElbow,
			PlankLine:   ft.Pushup.PlankLine,
			VelEps:      ft.Pushup.VelEps,
		},
		Lunge: Lunge{
			StandFrontKnee:  ft.Lunge.StandFrontKnee,
			BottomFrontKnee: ft.Lunge.BottomFrontKnee,
			StandBackKnee:   ft.Lunge.StandBackKnee,
			BottomBackKnee:  ft.Lunge.BottomBackKnee,
			VelEps:          ft.Lunge.VelEps,
		},
		Form: Form{
			Squat:  FormSquat{SymKneeMax: fo.Squat.SymKneeMax, BottomKneeMax: fo.Squat.BottomKneeMax},
			Pushup: FormPushup{PlankMin: fo.Pushup.PlankMin, BottomElbowMax: fo.Pushup.BottomElbowMax},
			Lunge: FormLunge{
				BottomFrontKneeMax: fo.Lunge.BottomFrontKneeMax,
				BottomBackKneeMax:  fo.Lunge.BottomBackKneeMax,
			},
		},
		Feedback: Feedback{
			PraiseThreshold: fb.PraiseThreshold,
			PraiseLines:     fb.PraiseLines,
		},
		Speech: Speech{
			MinGapSeconds: 0.8,
		},
	}
}

// Load reads and parses a TOML config file. Fields absent from the file
// keep their Default() values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders the config as TOML, for `config init`.
func (c Config) Marshal() ([]byte, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// #endregion config

// #region converters

// SmootherConfig converts to the smoother's typed config.
func (c *Config) SmootherConfig() smooth.Config {
	return smooth.Config{
		Kind:  smooth.Kind(c.Smoother.Method),
		Alpha: c.Smoother.Alpha,
		Q:     c.Smoother.Q,
		R:     c.Smoother.R,
	}
}

// ClassifierThresholds converts to the classifier's typed thresholds.
func (c *Config) ClassifierThresholds() classify.Thresholds {
	return classify.Thresholds{
		PushupTrunkMin:       c.Classifier.PushupTrunkMin,
		PushupWristBelow:     c.Classifier.PushupWristBelow,
		PushupTopElbow:       c.Classifier.PushupTopElbow,
		PushupElbowFlexRange: c.Classifier.PushupElbowFlexRange,
		SquatTrunkMax:        c.Classifier.SquatTrunkMax,
		SquatTrunkRange:      c.Classifier.SquatTrunkRange,
		SquatStandKnee:       c.Classifier.SquatStandKnee,
		SquatKneeFlexRange:   c.Classifier.SquatKneeFlexRange,
		SquatSymKneeMax:      c.Classifier.SquatSymKneeMax,
		LungeAsymMin:         c.Classifier.LungeAsymMin,
		LungeAsymMax:         c.Classifier.LungeAsymMax,
	}
}

// FSMThresholds converts to the phase-machine factory thresholds.
func (c *Config) FSMThresholds() fsm.Thresholds {
	return fsm.Thresholds{
		Squat: fsm.SquatThresholds{
			StandKnee:  c.Squat.StandKnee,
			BottomKnee: c.Squat.BottomKnee,
			StandHip:   c.Squat.StandHip,
			VelEps:     c.Squat.VelEps,
		},
		Pushup: fsm.PushupThresholds{
			TopElbow:    c.Pushup.TopElbow,
			BottomElbow: c.Pushup.BottomElbow,
			PlankLine:   c.Pushup.PlankLine,
			VelEps:      c.Pushup.VelEps,
		},
		Lunge: fsm.LungeThresholds{
			StandFrontKnee:  c.Lunge.StandFrontKnee,
			BottomFrontKnee: c.Lunge.BottomFrontKnee,
			StandBackKnee:   c.Lunge.StandBackKnee,
			BottomBackKnee:  c.Lunge.BottomBackKnee,
			VelEps:          c.Lunge.VelEps,
		},
	}
}

// FormThresholds converts to the form evaluator factory thresholds.
func (c *Config) FormThresholds() form.Thresholds {
	return form.Thresholds{
		Squat: form.SquatThresholds{
			SymKneeMax:    c.Form.Squat.SymKneeMax,
			BottomKneeMax: c.Form.Squat.BottomKneeMax,
		},
		Pushup: form.PushupThresholds{
			PlankMin:       c.Form.Pushup.PlankMin,
			BottomElbowMax: c.Form.Pushup.BottomElbowMax,
		},
		Lunge: form.LungeThresholds{
			BottomFrontKneeMax: c.Form.Lunge.BottomFrontKneeMax,
			BottomBackKneeMax:  c.Form.Lunge.BottomBackKneeMax,
		},
	}
}

// FeedbackConfig converts to the synthesizer's typed config.
func (c *Config) FeedbackConfig() (feedback.Config, error) {
	out := feedback.Config{
		PraiseThreshold: c.Feedback.PraiseThreshold,
		PraiseLines:     c.Feedback.PraiseLines,
	}
	if len(c.Feedback.PraisePhases) > 0 {
		phases := make([]fsm.Phase, 0, len(c.Feedback.PraisePhases))
		for _, name := range c.Feedback.PraisePhases {
			p, err := phaseByName(name)
			if err != nil {
				return feedback.Config{}, err
			}
			phases = append(phases, p)
		}
		out.PraisePhases = phases
	}
	return out, nil
}

func phaseByName(name string) (fsm.Phase, error) {
	for _, p := range []fsm.Phase{
		fsm.PhaseStart, fsm.PhaseDescending, fsm.PhaseBottom,
		fsm.PhaseAscending, fsm.PhaseTop, fsm.PhaseReset,
	} {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("feedback.praise_phases: unknown phase %q", name)
}

// #endregion converters
