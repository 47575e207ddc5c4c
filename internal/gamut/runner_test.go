package gamut

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/munsell.report/internal/munsell"
	"github.com/banshee-data/munsell.report/internal/testutil"
)

func TestBuildAllContinuesPastFailures(t *testing.T) {
	t.Parallel()

	clouds := map[string][]munsell.Sample{
		"teal":  testutil.BallCloud(120, 1.5, munsell.ToCartesian(180, 5, 8), 1),
		"red":   testutil.BallCloud(120, 1.5, munsell.ToCartesian(10, 5, 10), 2),
		"bad":   {munsell.NewSample(30, 5, 5), munsell.NewSample(40, 6, 5)},
		"flat":  {munsell.NewSample(0, 5, 2), munsell.NewSample(90, 5, 2), munsell.NewSample(180, 5, 2), munsell.NewSample(270, 5, 2), munsell.NewSample(45, 5, 2)},
	}

	results := BuildAll(clouds, DefaultBuildParams(), 2)
	require.Len(t, results, 4)

	assert.NoError(t, results["teal"].Err)
	assert.NoError(t, results["red"].Err)

	var insufficient *InsufficientSamplesError
	assert.ErrorAs(t, results["bad"].Err, &insufficient)
	assert.ErrorIs(t, results["flat"].Err, ErrDegenerateGeometry)
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	// Sixteen chromatic categories spread around the hue circle, with a
	// screen population rotated by a smooth order-1 bias plus a couple
	// of defective categories. The run must produce a bias table, skip
	// the defects with reasons, and select a low-order model.
	reference := make(map[string][]munsell.Sample)
	screen := make(map[string][]munsell.Sample)
	for i := 0; i < 16; i++ {
		hue := 360 * float64(i) / 16
		name := fmt.Sprintf("family-%02d", i)
		cloud := testutil.BallCloud(150, 1.2, munsell.ToCartesian(hue, 5, 8), int64(100+i))
		reference[name] = cloud
		shift := 10 + 6*testutil.Harmonic([]float64{0, 1, 0}, hue) // 10 + 6cos(hue)
		screen[name] = testutil.ShiftedCloud(cloud, shift)
	}

	// Defects: too few screen samples, and a reference-only category.
	screen["sparse"] = []munsell.Sample{munsell.NewSample(5, 5, 5)}
	reference["sparse"] = testutil.BallCloud(100, 1, munsell.ToCartesian(5, 5, 8), 200)
	reference["orphan"] = testutil.BallCloud(100, 1, munsell.ToCartesian(77, 5, 8), 201)

	report, err := Run(screen, reference, DefaultRunParams())
	require.NoError(t, err)

	assert.Len(t, report.Biases, 16)
	assert.Equal(t, 16, report.ScreenBuilt)
	assert.Equal(t, 18, report.ReferenceBuilt)

	require.Len(t, report.Skipped, 2)
	skippedNames := map[string]string{}
	for _, s := range report.Skipped {
		skippedNames[s.Category] = s.Population
	}
	assert.Equal(t, PopulationScreen, skippedNames["sparse"])
	assert.Equal(t, PopulationScreen, skippedNames["orphan"])

	// The imposed bias is 10 + 6cos(hue); order 1 must be in reach and
	// the fitted curve must track the truth.
	require.NotNil(t, report.Selection.Model)
	assert.GreaterOrEqual(t, report.Selection.Model.Order, 1)
	assert.LessOrEqual(t, report.Selection.Model.Order, 2)
	assert.InDelta(t, 16, report.Selection.Model.Evaluate(0), 1.5)   // 10 + 6
	assert.InDelta(t, 4, report.Selection.Model.Evaluate(180), 1.5)  // 10 - 6
	assert.InDelta(t, 10, report.Selection.Model.Evaluate(90), 1.5)  // 10 + 0

	assert.Positive(t, report.Bootstrap.Succeeded)
	assert.InDelta(t, 10, report.Stats.Hue.Unweighted.Mean, 2.0)
}

func TestRunAllCategoriesFail(t *testing.T) {
	t.Parallel()

	screen := map[string][]munsell.Sample{
		"a": {munsell.NewSample(0, 5, 5)},
	}
	reference := map[string][]munsell.Sample{
		"a": {munsell.NewSample(0, 5, 5)},
	}
	report, err := Run(screen, reference, DefaultRunParams())
	assert.ErrorIs(t, err, ErrNoBiasRecords)
	require.NotNil(t, report)
	assert.Empty(t, report.Biases)
	assert.Len(t, report.Skipped, 1)
}

func TestRunPartialModelFailureStillReportsBiases(t *testing.T) {
	t.Parallel()

	// A single comparable category yields a bias table but no viable
	// model order: the run surfaces ErrNoViableModel while the partial
	// results stay populated.
	cloud := testutil.BallCloud(100, 1, munsell.ToCartesian(200, 5, 8), 5)
	screen := map[string][]munsell.Sample{"only": testutil.ShiftedCloud(cloud, 12)}
	reference := map[string][]munsell.Sample{"only": cloud}

	report, err := Run(screen, reference, DefaultRunParams())
	assert.ErrorIs(t, err, ErrNoViableModel)
	require.NotNil(t, report)
	assert.Len(t, report.Biases, 1)
	assert.InDelta(t, 12, report.Biases[0].HueOffset, 1.0)
	assert.Equal(t, 1, report.Stats.Categories)
}
