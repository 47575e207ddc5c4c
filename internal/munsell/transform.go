package munsell

import "math"

// NormalizeHue maps an angle in degrees onto [0, 360).
func NormalizeHue(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// ToCartesian maps cylindrical Munsell coordinates to Cartesian form:
//
//	x = chroma * cos(hue)
//	y = chroma * sin(hue)
//	z = value
//
// with hue in degrees, normalized to [0, 360) before use. The mapping is
// a bijection for chroma > 0; every hue at chroma 0 collapses onto the
// neutral axis (0, 0, value). The same angular convention must be applied
// to both sample populations being compared, so all geometry in this
// repository goes through this function.
func ToCartesian(hue, value, chroma float64) CartesianPoint {
	rad := NormalizeHue(hue) * math.Pi / 180
	return CartesianPoint{
		X: chroma * math.Cos(rad),
		Y: chroma * math.Sin(rad),
		Z: value,
	}
}

// ToMunsell inverts ToCartesian: chroma = hypot(x, y), hue = atan2(y, x)
// normalized to [0, 360), value = z.
//
// When chroma is below NeutralChromaEpsilon the hue is mathematically
// undefined; the chosen convention is to return hue 0. Callers that care
// about the distinction (bias analysis) must check chroma before using
// the hue, not rely on the returned angle.
func ToMunsell(x, y, z float64) (hue, value, chroma float64) {
	chroma = math.Hypot(x, y)
	if chroma < NeutralChromaEpsilon {
		return 0, z, chroma
	}
	hue = NormalizeHue(math.Atan2(y, x) * 180 / math.Pi)
	return hue, z, chroma
}

// FromSample converts a Sample to its Cartesian point.
func FromSample(s Sample) CartesianPoint {
	return ToCartesian(s.Hue, s.Value, s.Chroma)
}
