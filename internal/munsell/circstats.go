package munsell

import (
	"errors"
	"math"
)

// ErrEmptyInput is returned by circular statistics given zero angles.
var ErrEmptyInput = errors.New("circular statistics: empty input")

// Mean computes the weighted circular mean of angles in degrees,
// normalized to [0, 360). A nil weights slice means uniform weights;
// otherwise weights must have the same length as angles.
//
// If the weighted resultant vector is zero (perfectly opposed angles,
// e.g. [0, 90, 180, 270]), the mean direction is undefined and the
// function returns 0 by convention. This is an expected degenerate case,
// not an error.
func Mean(angles, weights []float64) (float64, error) {
	if len(angles) == 0 {
		return 0, ErrEmptyInput
	}
	if weights != nil && len(weights) != len(angles) {
		return 0, errors.New("circular statistics: weights length mismatch")
	}

	var sinSum, cosSum float64
	for i, a := range angles {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		rad := a * math.Pi / 180
		sinSum += w * math.Sin(rad)
		cosSum += w * math.Cos(rad)
	}

	// Zero resultant: no mean direction exists. Return 0 by convention.
	if math.Abs(sinSum) < 1e-12 && math.Abs(cosSum) < 1e-12 {
		return 0, nil
	}
	return NormalizeHue(math.Atan2(sinSum, cosSum) * 180 / math.Pi), nil
}

// Difference returns the signed shortest angular distance a-b in degrees,
// in the half-open interval (-180, 180]. A positive result means a is
// counterclockwise of b.
func Difference(a, b float64) float64 {
	// Shift into (0, 360] so the antipodal case lands on +180, not -180.
	d := math.Mod(a-b+180, 360)
	if d <= 0 {
		d += 360
	}
	return d - 180
}

// StdDev computes the weighted circular standard deviation in degrees,
// sqrt(-2 ln R) where R is the mean resultant length. It is reported for
// diagnostics only; dispersion near the degenerate R=0 case grows without
// bound and is capped at +Inf rather than erroring.
func StdDev(angles, weights []float64) (float64, error) {
	if len(angles) == 0 {
		return 0, ErrEmptyInput
	}
	if weights != nil && len(weights) != len(angles) {
		return 0, errors.New("circular statistics: weights length mismatch")
	}

	var sinSum, cosSum, wSum float64
	for i, a := range angles {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		rad := a * math.Pi / 180
		sinSum += w * math.Sin(rad)
		cosSum += w * math.Cos(rad)
		wSum += w
	}
	if wSum <= 0 {
		return 0, errors.New("circular statistics: non-positive weight sum")
	}

	r := math.Hypot(sinSum, cosSum) / wSum
	if r <= 0 {
		return math.Inf(1), nil
	}
	if r >= 1 {
		return 0, nil
	}
	return math.Sqrt(-2*math.Log(r)) * 180 / math.Pi, nil
}
