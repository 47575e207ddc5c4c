package gamut

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/munsell.report/internal/munsell"
)

// NeutralCentroidChroma is the chroma below which a category centroid is
// treated as neutral for bias purposes. Neutral centroids have no
// meaningful hue: the record is flagged HueDefined=false and excluded
// from every hue aggregate and fit, because feeding a near-axis hue into
// a circular mean produces extreme spurious shifts (observed with beige
// and gray families). Exclusion, not imputation, is the chosen policy.
const NeutralCentroidChroma = 0.5

// ErrNoBiasRecords is returned by Aggregate when given no records.
var ErrNoBiasRecords = errors.New("gamut: no bias records to aggregate")

// CategoryBias captures the per-dimension offset between the
// screen-derived and reference-derived solids for one category. Offsets
// are screen minus reference. Read-only once created.
type CategoryBias struct {
	Category string

	// HueOffset is the signed shortest angular distance in degrees,
	// in (-180, 180]. Meaningless when HueDefined is false.
	HueOffset    float64
	ValueOffset  float64
	ChromaOffset float64

	// HueDefined is false when either centroid sits within
	// NeutralCentroidChroma of the value axis.
	HueDefined bool

	// AnchorHue is where on the hue circle this category sits: the
	// reference-centroid hue in degrees. Correction models regress
	// HueOffset against this anchor. Zero when HueDefined is false.
	AnchorHue float64

	ScreenSamples    int
	ReferenceSamples int
}

// CompareCategory measures how a screen-derived solid differs from the
// physical-reference solid for the same category. Both polyhedra must
// come from Build so their centroids are filled-solid centroids.
func CompareCategory(screen, reference *Polyhedron, category string) CategoryBias {
	sh, sv, sc := screen.CentroidMunsell()
	rh, rv, rc := reference.CentroidMunsell()

	bias := CategoryBias{
		Category:         category,
		ValueOffset:      sv - rv,
		ChromaOffset:     sc - rc,
		HueDefined:       sc >= NeutralCentroidChroma && rc >= NeutralCentroidChroma,
		ScreenSamples:    screen.SourceSampleCount,
		ReferenceSamples: reference.SourceSampleCount,
	}
	if bias.HueDefined {
		bias.HueOffset = munsell.Difference(sh, rh)
		bias.AnchorHue = rh
	}
	return bias
}

// DistStats is a mean/spread pair for one offset distribution.
type DistStats struct {
	Mean   float64
	StdDev float64
}

// OffsetStats reports one offset dimension both unweighted and weighted
// by screen sample count. Both are always computed: weighting can flip
// conclusions when a few huge categories disagree with many small ones,
// and comparing the two exposes cancellation between oppositely biased
// subpopulations.
type OffsetStats struct {
	Unweighted DistStats
	Weighted   DistStats
}

// GlobalStats aggregates a bias table across categories. Value and
// chroma use arithmetic statistics; hue uses circular statistics over
// the records with HueDefined=true only.
type GlobalStats struct {
	Categories  int
	HueExcluded int

	Value  OffsetStats
	Chroma OffsetStats

	// Hue means are circular means of the signed offsets, reported in
	// (-180, 180]. NaN when no hue-defined records exist.
	Hue OffsetStats
}

// Aggregate reduces a bias table to global statistics.
func Aggregate(biases []CategoryBias) (GlobalStats, error) {
	if len(biases) == 0 {
		return GlobalStats{}, ErrNoBiasRecords
	}

	values := make([]float64, len(biases))
	chromas := make([]float64, len(biases))
	weights := make([]float64, len(biases))
	var hueAngles, hueWeights []float64

	for i, b := range biases {
		values[i] = b.ValueOffset
		chromas[i] = b.ChromaOffset
		weights[i] = float64(b.ScreenSamples)
		if weights[i] < 1 {
			weights[i] = 1
		}
		if b.HueDefined {
			// Circular statistics take angles; signed offsets wrap
			// naturally since Difference output is already an angle.
			hueAngles = append(hueAngles, b.HueOffset)
			hueWeights = append(hueWeights, weights[i])
		}
	}

	stats := GlobalStats{
		Categories:  len(biases),
		HueExcluded: len(biases) - len(hueAngles),
		Value: OffsetStats{
			Unweighted: DistStats{Mean: stat.Mean(values, nil), StdDev: sampleStdDev(values, nil)},
			Weighted:   DistStats{Mean: stat.Mean(values, weights), StdDev: sampleStdDev(values, weights)},
		},
		Chroma: OffsetStats{
			Unweighted: DistStats{Mean: stat.Mean(chromas, nil), StdDev: sampleStdDev(chromas, nil)},
			Weighted:   DistStats{Mean: stat.Mean(chromas, weights), StdDev: sampleStdDev(chromas, weights)},
		},
	}

	if len(hueAngles) == 0 {
		nan := DistStats{Mean: math.NaN(), StdDev: math.NaN()}
		stats.Hue = OffsetStats{Unweighted: nan, Weighted: nan}
		return stats, nil
	}

	stats.Hue.Unweighted = circularDistStats(hueAngles, nil)
	stats.Hue.Weighted = circularDistStats(hueAngles, hueWeights)
	return stats, nil
}

// circularDistStats computes the circular mean (mapped back to the
// signed (-180, 180] range) and circular standard deviation.
func circularDistStats(angles, weights []float64) DistStats {
	mean, err := munsell.Mean(angles, weights)
	if err != nil {
		return DistStats{Mean: math.NaN(), StdDev: math.NaN()}
	}
	sd, err := munsell.StdDev(angles, weights)
	if err != nil {
		sd = math.NaN()
	}
	return DistStats{Mean: munsell.Difference(mean, 0), StdDev: sd}
}

// sampleStdDev wraps stat.StdDev but returns 0 for a single record
// instead of NaN, keeping one-category tables printable.
func sampleStdDev(x, weights []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.StdDev(x, weights)
}
