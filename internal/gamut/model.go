package gamut

import (
	"fmt"
	"math"

	"github.com/banshee-data/munsell.report/internal/munsell"
)

// ModelKind identifies a correction-model family. The set is closed:
// every switch over ModelKind in this package is exhaustive, so adding a
// family is a compile-visible change rather than a new magic string.
type ModelKind int

const (
	// ModelConstant applies one global hue shift.
	ModelConstant ModelKind = iota
	// ModelPiecewise applies a per-region constant shift over fixed hue
	// sectors. Baseline for comparison against the harmonic family.
	ModelPiecewise
	// ModelFourier applies a trigonometric series over the hue circle.
	// Each harmonic order has a physical reading: k=1 warm/cool
	// asymmetry, k=2 opposite-quadrant effects, k=3 primary spacing,
	// k=4 quadrant-boundary refinement.
	ModelFourier
)

func (k ModelKind) String() string {
	switch k {
	case ModelConstant:
		return "constant"
	case ModelPiecewise:
		return "piecewise"
	case ModelFourier:
		return "fourier"
	}
	return fmt.Sprintf("ModelKind(%d)", int(k))
}

// DefaultPiecewiseBreaks split the hue circle into the four conventional
// quadrant sectors for the piecewise baseline.
var DefaultPiecewiseBreaks = []float64{0, 90, 180, 270}

// Diagnostics records fit quality for one fitted model. All errors are
// mean absolute prediction errors in degrees.
type Diagnostics struct {
	TrainError        float64 // weighted, on the full training table
	CVError           float64 // weighted leave-one-out error
	CVErrorUnweighted float64
	ParamCount        int
	ResidualDOF       int
}

// Gap is cvError − trainError, the absolute generalization gap.
func (d Diagnostics) Gap() float64 {
	return d.CVError - d.TrainError
}

// Ratio is cvError / trainError, the relative generalization gap used by
// the overfitting rejection rule. A zero train error with nonzero CV
// error yields +Inf (maximally overfit); zero over zero yields 1.
func (d Diagnostics) Ratio() float64 {
	if d.TrainError == 0 {
		if d.CVError == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return d.CVError / d.TrainError
}

// CorrectionModel is a fitted hue-correction function f(hue) → degrees
// of correction. Immutable once fit; refitting produces a new value.
//
// Coefficient layout by kind:
//
//	ModelConstant:  Coeffs = [a0]
//	ModelFourier:   Coeffs = [a0, a1, b1, ..., aK, bK], Order = K
//	ModelPiecewise: Coeffs[i] is the constant for the sector starting at
//	                Breaks[i]; sectors wrap around 360.
type CorrectionModel struct {
	Kind        ModelKind
	Order       int
	Coeffs      []float64
	Breaks      []float64
	Diagnostics Diagnostics
}

// Evaluate returns the hue correction in degrees at the given hue.
func (m *CorrectionModel) Evaluate(hueDeg float64) float64 {
	theta := munsell.NormalizeHue(hueDeg)
	switch m.Kind {
	case ModelConstant:
		return m.Coeffs[0]
	case ModelPiecewise:
		return m.Coeffs[pieceSector(m.Breaks, theta)]
	case ModelFourier:
		rad := theta * math.Pi / 180
		out := m.Coeffs[0]
		for k := 1; k <= m.Order; k++ {
			out += m.Coeffs[2*k-1] * math.Cos(float64(k)*rad)
			out += m.Coeffs[2*k] * math.Sin(float64(k)*rad)
		}
		return out
	}
	return 0
}

// pieceSector returns the index of the sector containing theta. Sectors
// are [Breaks[i], Breaks[i+1]) with the last wrapping through 360 back
// to Breaks[0]; theta below the first break also belongs to the last
// (wrapping) sector.
func pieceSector(breaks []float64, theta float64) int {
	if theta < breaks[0] {
		return len(breaks) - 1
	}
	for i := 1; i < len(breaks); i++ {
		if theta < breaks[i] {
			return i - 1
		}
	}
	return len(breaks) - 1
}
