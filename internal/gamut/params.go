package gamut

import "runtime"

// Default tuning values. These are the single source of truth; the JSON
// tuning config in internal/config overrides them field by field.
const (
	// DefaultPeelLayers is the number of hull-peeling passes applied for
	// outlier removal. The reference behavior is a single layer; raising
	// it changes numerical results, so it is an explicit parameter and
	// recorded with every calibration run.
	DefaultPeelLayers = 1

	// DefaultMaxOrder is the highest Fourier order tried by the selector.
	DefaultMaxOrder = 6

	// DefaultOverfitRatio is the cvError/trainError ceiling above which a
	// candidate order is rejected as overfit.
	DefaultOverfitRatio = 1.5

	// DefaultCVJumpThreshold is the minimum relative increase in CV error
	// between order K and K+1 treated as decisive evidence to stop at K.
	DefaultCVJumpThreshold = 0.20

	// DefaultNearMinTolerance is how far (relative) a candidate's CV
	// error may sit above the global minimum and still count as "at or
	// near" it. Lets the rule prefer a smaller order whose CV error is
	// statistically indistinguishable from the minimum.
	DefaultNearMinTolerance = 0.10

	// DefaultBootstrapIterations is the number of category resamples used
	// for the CV-error confidence interval.
	DefaultBootstrapIterations = 200
)

// BuildParams controls polyhedron construction.
type BuildParams struct {
	// PeelLayers is the number of times the outer hull's vertex set is
	// stripped before the final hull is computed. Zero disables peeling
	// and keeps the raw hull.
	PeelLayers int

	// MaxHullIterations caps the work done by one hull construction,
	// surfacing ErrHullIterationLimit instead of spinning on
	// pathological inputs. Zero scales the cap with the square of the
	// input size.
	MaxHullIterations int
}

// DefaultBuildParams returns the reference single-layer peel settings.
func DefaultBuildParams() BuildParams {
	return BuildParams{PeelLayers: DefaultPeelLayers}
}

// SelectorParams controls correction-model fitting and selection.
type SelectorParams struct {
	MaxOrder            int
	OverfitRatio        float64
	CVJumpThreshold     float64
	NearMinTolerance    float64
	BootstrapIterations int
	// BootstrapSeed makes bootstrap resampling reproducible. Zero means
	// derive from the default source.
	BootstrapSeed int64
}

// DefaultSelectorParams returns the selection thresholds used by the
// reference analysis.
func DefaultSelectorParams() SelectorParams {
	return SelectorParams{
		MaxOrder:            DefaultMaxOrder,
		OverfitRatio:        DefaultOverfitRatio,
		CVJumpThreshold:     DefaultCVJumpThreshold,
		NearMinTolerance:    DefaultNearMinTolerance,
		BootstrapIterations: DefaultBootstrapIterations,
	}
}

// RunParams bundles everything a calibration run needs, so a run record
// can snapshot the exact configuration it executed with.
type RunParams struct {
	Build    BuildParams
	Selector SelectorParams
	// Workers bounds the per-category fan-out. Zero means GOMAXPROCS.
	Workers int
}

// DefaultRunParams returns the canonical defaults.
func DefaultRunParams() RunParams {
	return RunParams{
		Build:    DefaultBuildParams(),
		Selector: DefaultSelectorParams(),
		Workers:  runtime.GOMAXPROCS(0),
	}
}
