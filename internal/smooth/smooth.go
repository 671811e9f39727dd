// Package smooth damps frame-to-frame jitter in the feature stream. Each
// feature name gets its own filter, created lazily on first sight and reused
// for the life of the smoother.
package smooth

import (
	"strings"

	"github.com/mashrufaorc/posephase/internal/feature"
)

// #region config

// Kind selects the filter applied to non-velocity features.
type Kind string

const (
	KindEMA    Kind = "ema"
	KindKalman Kind = "kalman"
)

// Config holds filter parameters. Alpha drives the EMA; Q and R are the
// Kalman process and measurement noise.
type Config struct {
	Kind  Kind
	Alpha float64
	Q     float64
	R     float64
}

// DefaultConfig returns the EMA setup the session runner uses.
func DefaultConfig() Config {
	return Config{Kind: KindEMA, Alpha: 0.25, Q: 0.01, R: 1.0}
}

// #endregion config

// #region filters

type filter interface {
	update(x float64) float64
}

// emaFilter blends new observations into its state; the first observation
// seeds the state directly.
type emaFilter struct {
	alpha  float64
	seeded bool
	state  float64
}

func (f *emaFilter) update(x float64) float64 {
	if !f.seeded {
		f.state = x
		f.seeded = true
		return f.state
	}
	f.state = f.alpha*x + (1-f.alpha)*f.state
	return f.state
}

// kalman1D is a scalar Kalman filter: predict covariance, compute gain,
// correct estimate, shrink covariance.
type kalman1D struct {
	q, r float64
	x, p float64
	k    float64
}

func newKalman1D(q, r float64) *kalman1D {
	return &kalman1D{q: q, r: r, p: 1}
}

func (f *kalman1D) update(z float64) float64 {
	f.p += f.q
	f.k = f.p / (f.p + f.r)
	f.x += f.k * (z - f.x)
	f.p *= 1 - f.k
	return f.x
}

// #endregion filters

// #region smoother

// Smoother applies one filter per feature name. Velocity features pass
// through untouched: smoothing a derivative damps the very transients the
// phase machines key on.
type Smoother struct {
	cfg     Config
	filters map[string]filter
}

// NewSmoother creates a smoother with the given config.
func NewSmoother(cfg Config) *Smoother {
	return &Smoother{cfg: cfg, filters: make(map[string]filter)}
}

// Update returns a smoothed copy of the input vector. The input is not
// mutated.
func (s *Smoother) Update(in feature.Vector) feature.Vector {
	out := make(feature.Vector, len(in))
	for name, v := range in {
		if isVelocity(name) {
			out[name] = v
			continue
		}
		f, ok := s.filters[name]
		if !ok {
			f = s.newFilter()
			s.filters[name] = f
		}
		out[name] = f.update(v)
	}
	return out
}

func (s *Smoother) newFilter() filter {
	if s.cfg.Kind == KindKalman {
		return newKalman1D(s.cfg.Q, s.cfg.R)
	}
	return &emaFilter{alpha: s.cfg.Alpha}
}

// isVelocity reports whether the feature name carries a velocity suffix.
func isVelocity(name string) bool {
	return strings.HasSuffix(name, "_vel") || strings.HasSuffix(name, "_vel_avg")
}

// #endregion smoother
