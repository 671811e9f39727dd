package fsm

import (
	"testing"

	"github.com/mashrufaorc/posephase/internal/feature"
)

func squatVec(knee, vel, hip float64) feature.Vector {
	return feature.Vector{
		"knee_angle_avg": knee,
		"knee_vel_avg":   vel,
		"hip_angle_avg":  hip,
	}
}

func pushupVec(elbow, vel, line float64) feature.Vector {
	return feature.Vector{
		"elbow_angle_avg":              elbow,
		"elbow_vel_avg":                vel,
		"shoulder_hip_ankle_angle_avg": line,
	}
}

func lungeVec(front, back, vel float64) feature.Vector {
	return feature.Vector{
		"front_knee_angle": front,
		"back_knee_angle":  back,
		"front_knee_vel":   vel,
	}
}

func TestSquatFullCycle(t *testing.T) {
	m := NewSquat(DefaultSquatThresholds())

	steps := []struct {
		vec  feature.Vector
		want Phase
	}{
		{squatVec(170, 0, 178), PhaseStart},
		{squatVec(150, -20, 170), PhaseDescending},
		{squatVec(120, -30, 150), PhaseDescending},
		{squatVec(96, 1, 140), PhaseBottom},
		{squatVec(120, 24, 150), PhaseAscending},
		{squatVec(150, 30, 170), PhaseAscending}, // knee not yet extended
		{squatVec(172, 22, 178), PhaseStart},
	}
	for i, s := range steps {
		if got := m.Update(s.vec); got != s.want {
			t.Fatalf("step %d: expected %s, got %s", i, s.want, got)
		}
	}
}

func TestSquatShallowRepFallback(t *testing.T) {
	m := NewSquat(DefaultSquatThresholds())

	m.Update(squatVec(150, -20, 170))
	if m.Phase() != PhaseDescending {
		t.Fatalf("expected Descending, got %s", m.Phase())
	}

	// Velocity flips positive near the bottom without a pause frame. Within
	// the fallback margin the machine escapes to Ascending.
	if got := m.Update(squatVec(108, 5, 150)); got != PhaseAscending {
		t.Fatalf("expected fallback to Ascending, got %s", got)
	}
}

func TestSquatNoFallbackHighAboveBottom(t *testing.T) {
	m := NewSquat(DefaultSquatThresholds())

	m.Update(squatVec(150, -20, 170))
	// Reversal far above the bottom margin stalls in Descending.
	if got := m.Update(squatVec(140, 5, 160)); got != PhaseDescending {
		t.Fatalf("expected Descending, got %s", got)
	}
}

func TestSquatAscendRequiresExtendedHip(t *testing.T) {
	m := NewSquat(DefaultSquatThresholds())
	m.Update(squatVec(150, -20, 170))
	m.Update(squatVec(96, 1, 140))
	m.Update(squatVec(130, 20, 150))
	if m.Phase() != PhaseAscending {
		t.Fatalf("expected Ascending, got %s", m.Phase())
	}

	// Knee extended but hip still flexed: not standing yet.
	if got := m.Update(squatVec(170, 10, 140)); got != PhaseAscending {
		t.Fatalf("expected Ascending, got %s", got)
	}
	if got := m.Update(squatVec(170, 5, 175)); got != PhaseStart {
		t.Fatalf("expected Start, got %s", got)
	}
}

func TestPushupCycleStartsAtTop(t *testing.T) {
	m := NewPushup(DefaultPushupThresholds())
	if m.Phase() != PhaseTop {
		t.Fatalf("expected initial Top, got %s", m.Phase())
	}

	steps := []struct {
		vec  feature.Vector
		want Phase
	}{
		{pushupVec(150, -10, 170), PhaseDescending},
		{pushupVec(92, 0.5, 165), PhaseBottom},
		{pushupVec(120, 12, 168), PhaseAscending},
		{pushupVec(165, 8, 140), PhaseAscending}, // sagging body blocks lockout
		{pushupVec(168, 5, 165), PhaseTop},
	}
	for i, s := range steps {
		if got := m.Update(s.vec); got != s.want {
			t.Fatalf("step %d: expected %s, got %s", i, s.want, got)
		}
	}
}

func TestLungeBottomRequiresBothKnees(t *testing.T) {
	m := NewLunge(DefaultLungeThresholds())

	m.Update(lungeVec(150, 145, -8))
	if m.Phase() != PhaseDescending {
		t.Fatalf("expected Descending, got %s", m.Phase())
	}

	// Front knee deep, back knee still high: no Bottom.
	if got := m.Update(lungeVec(95, 135, 0.5)); got != PhaseDescending {
		t.Fatalf("expected Descending, got %s", got)
	}
	if got := m.Update(lungeVec(95, 115, 0.5)); got != PhaseBottom {
		t.Fatalf("expected Bottom, got %s", got)
	}
	if got := m.Update(lungeVec(120, 130, 10)); got != PhaseAscending {
		t.Fatalf("expected Ascending, got %s", got)
	}
	if got := m.Update(lungeVec(165, 155, 5)); got != PhaseStart {
		t.Fatalf("expected Start, got %s", got)
	}
}

func TestUpdateAppliesAtMostOneTransition(t *testing.T) {
	m := NewSquat(DefaultSquatThresholds())

	// This frame satisfies Start→Descending; even though the same frame
	// would also satisfy Descending→Ascending, only the first fires.
	got := m.Update(feature.Vector{
		"knee_angle_avg": 105,
		"knee_vel_avg":   -2, // negative, Start→Descending
		"hip_angle_avg":  150,
	})
	if got != PhaseDescending {
		t.Fatalf("expected Descending, got %s", got)
	}
	if m.ctx.Transitions != 1 {
		t.Fatalf("expected 1 transition, got %d", m.ctx.Transitions)
	}
}

func TestReplayDeterminism(t *testing.T) {
	seq := []feature.Vector{
		squatVec(170, 0, 178),
		squatVec(150, -20, 170),
		squatVec(96, 1, 140),
		squatVec(130, 20, 160),
		squatVec(172, 10, 178),
	}

	a := NewSquat(DefaultSquatThresholds())
	b := NewSquat(DefaultSquatThresholds())
	for i, v := range seq {
		pa, pb := a.Update(v), b.Update(v)
		if pa != pb {
			t.Fatalf("step %d: machines diverged: %s vs %s", i, pa, pb)
		}
	}
}

func TestReset(t *testing.T) {
	m := NewSquat(DefaultSquatThresholds())
	m.Update(squatVec(150, -20, 170))
	if m.Phase() != PhaseDescending {
		t.Fatalf("expected Descending, got %s", m.Phase())
	}

	m.Reset()
	if m.Phase() != PhaseStart {
		t.Fatalf("expected Start after reset, got %s", m.Phase())
	}
	if m.ctx.Transitions != 0 {
		t.Fatalf("expected cleared context, got %d transitions", m.ctx.Transitions)
	}
}

func TestFactory(t *testing.T) {
	th := DefaultThresholds()
	for _, label := range []string{"squat", "pushup", "lunge"} {
		m, err := New(label, th)
		if err != nil {
			t.Fatalf("New(%s): %v", label, err)
		}
		if m.Label() != label {
			t.Fatalf("expected label %s, got %s", label, m.Label())
		}
	}
	if _, err := New("burpee", th); err == nil {
		t.Fatal("expected error for unknown exercise")
	}
}
