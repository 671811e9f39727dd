// Package geom holds the small amount of planar geometry the feature
// extractor needs: three-point joint angles and two-value averaging.
package geom

import (
	"math"

	"github.com/mashrufaorc/posephase/internal/pose"
)

// epsilon keeps the dot-product denominator away from zero when two of the
// three points coincide.
const epsilon = 1e-8

// #region angle

// Angle3pt returns the angle in degrees formed at b by the points a-b-c.
// The cosine is clamped to [-1, 1] before arccos so near-degenerate inputs
// stay finite.
func Angle3pt(a, b, c pose.Point) float64 {
	bax := a.X - b.X
	bay := a.Y - b.Y
	bcx := c.X - b.X
	bcy := c.Y - b.Y

	dot := bax*bcx + bay*bcy
	denom := math.Hypot(bax, bay)*math.Hypot(bcx, bcy) + epsilon

	cos := dot / denom
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

// #endregion angle

// #region avg

// Avg returns the arithmetic mean of two values.
func Avg(x, y float64) float64 {
	return (x + y) / 2
}

// #endregion avg
