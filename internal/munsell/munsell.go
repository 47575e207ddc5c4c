// Package munsell provides the Munsell cylindrical color coordinate types
// shared across the calibration pipeline, the cylindrical-to-Cartesian
// transform used by all solid geometry, and circular statistics for the
// periodic hue dimension.
package munsell

// NeutralChromaEpsilon is the chroma threshold below which a color is
// treated as neutral (on the value axis). Hue is meaningless below this
// threshold: ToMunsell returns hue 0 and bias analysis flags the record
// as hue-undefined instead of feeding it into circular aggregates.
const NeutralChromaEpsilon = 1e-9

// Sample is a single observed color instance in Munsell cylindrical
// coordinates. Weight carries a survey or occurrence count and is never
// below 1. Samples are grouped by category label upstream; the pipeline
// treats them as immutable.
type Sample struct {
	Hue    float64 // degrees, [0, 360)
	Value  float64 // lightness, [0, 10]
	Chroma float64 // radial saturation, >= 0
	Weight float64 // sample count, >= 1
}

// NewSample creates a Sample with weight 1 and the hue normalized
// to [0, 360).
func NewSample(hue, value, chroma float64) Sample {
	return Sample{
		Hue:    NormalizeHue(hue),
		Value:  value,
		Chroma: chroma,
		Weight: 1,
	}
}

// CartesianPoint is a Munsell coordinate in Cartesian form: the hue angle
// and chroma radius unrolled onto the X/Y plane with value on Z. All
// polyhedron geometry operates on this representation.
type CartesianPoint struct {
	X, Y, Z float64
}

// Munsell converts the point back to cylindrical (hue, value, chroma)
// coordinates. See ToMunsell for the neutral-axis hue convention.
func (p CartesianPoint) Munsell() (hue, value, chroma float64) {
	return ToMunsell(p.X, p.Y, p.Z)
}
