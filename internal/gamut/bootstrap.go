package gamut

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// BootstrapResult is a percentile confidence interval on the weighted
// LOOCV error of the selected model order, from resampling categories
// with replacement.
type BootstrapResult struct {
	Iterations int
	// Succeeded counts resamples that could be fit and cross-validated;
	// resamples that drew too few distinct categories for the order are
	// dropped, not imputed.
	Succeeded int

	PointEstimate float64 // CV error of the model on the original table
	Lower         float64 // 2.5th percentile
	Upper         float64 // 97.5th percentile
}

// Bootstrap estimates the sampling variability of the selected model's
// weighted CV error by resampling the hue-defined categories with
// replacement, refitting and re-scoring the same Fourier order on each
// resample. Iterations below 100 are raised to 100 so the percentile
// interval is meaningful. Resamples run in parallel; each draws from its
// own seeded source so results are reproducible for a given seed.
func Bootstrap(biases []CategoryBias, model *CorrectionModel, params SelectorParams) BootstrapResult {
	usable := usableBiases(biases)
	iters := params.BootstrapIterations
	if iters < 100 {
		iters = 100
	}

	res := BootstrapResult{
		Iterations:    iters,
		PointEstimate: model.Diagnostics.CVError,
	}
	if len(usable) == 0 {
		res.Lower, res.Upper = math.NaN(), math.NaN()
		return res
	}

	seed := params.BootstrapSeed
	if seed == 0 {
		seed = 1
	}

	cvErrs := make([]float64, iters)
	valid := make([]bool, iters)
	var wg sync.WaitGroup
	for it := 0; it < iters; it++ {
		wg.Add(1)
		go func(it int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(it)))
			resample := make([]CategoryBias, len(usable))
			for i := range resample {
				resample[i] = usable[rng.Intn(len(usable))]
			}
			if _, err := FitFourier(resample, model.Order); err != nil {
				return
			}
			cv, _ := crossValidate(resample, model.Order)
			if math.IsInf(cv, 1) {
				return
			}
			cvErrs[it] = cv
			valid[it] = true
		}(it)
	}
	wg.Wait()

	var kept []float64
	for i, v := range valid {
		if v {
			kept = append(kept, cvErrs[i])
		}
	}
	res.Succeeded = len(kept)
	if len(kept) == 0 {
		res.Lower, res.Upper = math.NaN(), math.NaN()
		return res
	}
	sort.Float64s(kept)
	res.Lower = stat.Quantile(0.025, stat.Empirical, kept, nil)
	res.Upper = stat.Quantile(0.975, stat.Empirical, kept, nil)
	return res
}
