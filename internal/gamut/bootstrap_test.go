package gamut

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapInterval(t *testing.T) {
	t.Parallel()

	biases := harmonicBiasTable([]float64{2, 3, 1, 1, 0.5}, 28, 0.5, 17)
	model, err := FitFourier(biases, 2)
	require.NoError(t, err)
	cvW, cvU := crossValidate(usableBiases(biases), 2)
	model.Diagnostics.CVError = cvW
	model.Diagnostics.CVErrorUnweighted = cvU

	params := DefaultSelectorParams()
	params.BootstrapIterations = 120
	params.BootstrapSeed = 99

	res := Bootstrap(biases, model, params)

	assert.Equal(t, 120, res.Iterations)
	assert.Greater(t, res.Succeeded, 60, "most resamples must be fittable")
	assert.LessOrEqual(t, res.Lower, res.Upper)
	assert.Positive(t, res.Lower)
	assert.Equal(t, cvW, res.PointEstimate)
}

func TestBootstrapReproducible(t *testing.T) {
	t.Parallel()

	biases := harmonicBiasTable([]float64{1, 2, 2}, 20, 0.3, 23)
	model, err := FitFourier(biases, 1)
	require.NoError(t, err)
	model.Diagnostics.CVError, model.Diagnostics.CVErrorUnweighted = crossValidate(usableBiases(biases), 1)

	params := DefaultSelectorParams()
	params.BootstrapSeed = 4242

	a := Bootstrap(biases, model, params)
	b := Bootstrap(biases, model, params)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("bootstrap not reproducible for fixed seed (-first +second):\n%s", diff)
	}
}

func TestBootstrapMinimumIterations(t *testing.T) {
	t.Parallel()

	biases := harmonicBiasTable([]float64{5}, 12, 0.2, 31)
	model, err := FitFourier(biases, 0)
	require.NoError(t, err)
	model.Diagnostics.CVError, model.Diagnostics.CVErrorUnweighted = crossValidate(usableBiases(biases), 0)

	params := DefaultSelectorParams()
	params.BootstrapIterations = 10 // below the floor

	res := Bootstrap(biases, model, params)
	assert.Equal(t, 100, res.Iterations, "iteration floor enforced")
}

func TestBootstrapNoUsableCategories(t *testing.T) {
	t.Parallel()

	model := &CorrectionModel{Kind: ModelConstant, Coeffs: []float64{0}}
	res := Bootstrap([]CategoryBias{{Category: "gray", HueDefined: false}}, model, DefaultSelectorParams())
	assert.Zero(t, res.Succeeded)
	assert.NotEqual(t, res.Lower, res.Lower, "lower bound is NaN") // NaN != NaN
}
