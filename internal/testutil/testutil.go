// Package testutil provides shared test fixtures.
//
// This package centralises deterministic sample-cloud generators so
// geometry and model-selection tests across packages agree on their
// synthetic inputs.
package testutil

import (
	"math"
	"math/rand"

	"github.com/banshee-data/munsell.report/internal/munsell"
)

// SphereCloud generates n samples whose Cartesian points lie uniformly
// on the sphere of the given radius around center. Deterministic for a
// given seed.
func SphereCloud(n int, radius float64, center munsell.CartesianPoint, seed int64) []munsell.Sample {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]munsell.Sample, n)
	for i := range samples {
		// Normalized Gaussian triple is uniform on the sphere.
		x, y, z := rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()
		norm := math.Sqrt(x*x + y*y + z*z)
		if norm == 0 {
			norm = 1
		}
		h, v, c := munsell.ToMunsell(
			center.X+radius*x/norm,
			center.Y+radius*y/norm,
			center.Z+radius*z/norm,
		)
		samples[i] = munsell.NewSample(h, v, c)
	}
	return samples
}

// BallCloud generates n samples filling the ball of the given radius
// around center, denser toward the center. Useful where interior points
// must survive hull peeling.
func BallCloud(n int, radius float64, center munsell.CartesianPoint, seed int64) []munsell.Sample {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]munsell.Sample, n)
	for i := range samples {
		x, y, z := rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()
		norm := math.Sqrt(x*x + y*y + z*z)
		if norm == 0 {
			norm = 1
		}
		r := radius * rng.Float64()
		h, v, c := munsell.ToMunsell(
			center.X+r*x/norm,
			center.Y+r*y/norm,
			center.Z+r*z/norm,
		)
		samples[i] = munsell.NewSample(h, v, c)
	}
	return samples
}

// ShiftedCloud returns a copy of samples with every hue rotated by
// shiftDeg, simulating a uniformly hue-biased second population.
func ShiftedCloud(samples []munsell.Sample, shiftDeg float64) []munsell.Sample {
	out := make([]munsell.Sample, len(samples))
	for i, s := range samples {
		out[i] = s
		out[i].Hue = munsell.NormalizeHue(s.Hue + shiftDeg)
	}
	return out
}

// Harmonic evaluates a Fourier series with the given coefficients
// [a0, a1, b1, ..., aK, bK] at hue theta (degrees). It mirrors the
// correction-model basis so tests can synthesize tables from a known
// generating function.
func Harmonic(coeffs []float64, thetaDeg float64) float64 {
	rad := munsell.NormalizeHue(thetaDeg) * math.Pi / 180
	out := coeffs[0]
	for k := 1; 2*k < len(coeffs); k++ {
		out += coeffs[2*k-1] * math.Cos(float64(k)*rad)
		out += coeffs[2*k] * math.Sin(float64(k)*rad)
	}
	return out
}
