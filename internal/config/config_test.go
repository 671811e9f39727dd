package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mashrufaorc/posephase/internal/fsm"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posephase.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadKeepsDefaultsForAbsentFields(t *testing.T) {
	path := writeConfig(t, `
[squat]
bottom_knee = 95.0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Squat.BottomKnee != 95 {
		t.Fatalf("expected overridden bottom_knee 95, got %f", cfg.Squat.BottomKnee)
	}
	// Untouched fields keep their defaults.
	def := Default()
	if cfg.Squat.StandKnee != def.Squat.StandKnee {
		t.Fatalf("stand_knee lost its default: %f", cfg.Squat.StandKnee)
	}
	if cfg.Smoother.Alpha != def.Smoother.Alpha {
		t.Fatalf("smoother alpha lost its default: %f", cfg.Smoother.Alpha)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	path := writeConfig(t, string(data))
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("round-tripped config must validate: %v", err)
	}
}

func TestValidateNamesBrokenKey(t *testing.T) {
	cfg := Default()
	cfg.Smoother.Alpha = 1.5
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "smoother.alpha") {
		t.Fatalf("error should name the key, got %q", err)
	}
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := Default()
	cfg.Squat.StandKnee = 90 // below bottom_knee
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for stand_knee <= bottom_knee")
	}
}

func TestValidateRejectsUnknownSmootherMethod(t *testing.T) {
	cfg := Default()
	cfg.Smoother.Method = "butterworth"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown smoother method")
	}
}

func TestValidateKalmanNeedsPositiveNoise(t *testing.T) {
	cfg := Default()
	cfg.Smoother.Method = "kalman"
	cfg.Smoother.Q = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero process noise")
	}
}

func TestValidateSpeechCommandRequiredWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.Speech.Enabled = true
	cfg.Speech.Command = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled speech without command")
	}
}

func TestFeedbackConfigParsesPhases(t *testing.T) {
	cfg := Default()
	cfg.Feedback.PraisePhases = []string{"Start", "Top"}

	fb, err := cfg.FeedbackConfig()
	if err != nil {
		t.Fatalf("FeedbackConfig: %v", err)
	}
	if len(fb.PraisePhases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(fb.PraisePhases))
	}
	if fb.PraisePhases[0] != fsm.PhaseStart || fb.PraisePhases[1] != fsm.PhaseTop {
		t.Fatalf("phases parsed wrong: %v", fb.PraisePhases)
	}
}

func TestFeedbackConfigRejectsUnknownPhase(t *testing.T) {
	cfg := Default()
	cfg.Feedback.PraisePhases = []string{"Hovering"}
	if _, err := cfg.FeedbackConfig(); err == nil {
		t.Fatal("expected error for unknown phase name")
	}
}

func TestConvertersMirrorSections(t *testing.T) {
	cfg := Default()
	cfg.Squat.BottomKnee = 97
	cfg.Form.Pushup.BottomElbowMax = 101
	cfg.Classifier.LungeAsymMin = 30

	if got := cfg.FSMThresholds().Squat.BottomKnee; got != 97 {
		t.Fatalf("fsm converter: expected 97, got %f", got)
	}
	if got := cfg.FormThresholds().Pushup.BottomElbowMax; got != 101 {
		t.Fatalf("form converter: expected 101, got %f", got)
	}
	if got := cfg.ClassifierThresholds().LungeAsymMin; got != 30 {
		t.Fatalf("classifier converter: expected 30, got %f", got)
	}
}
