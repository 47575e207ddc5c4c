package munsell

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	t.Parallel()

	t.Run("straddles the wraparound", func(t *testing.T) {
		t.Parallel()
		// The naive arithmetic mean of 350 and 10 is 180; the circular
		// mean must be 0.
		got, err := Mean([]float64{350, 10}, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, math.Min(got, 360-got), 1e-9)
	})

	t.Run("simple cluster", func(t *testing.T) {
		t.Parallel()
		got, err := Mean([]float64{80, 90, 100}, nil)
		require.NoError(t, err)
		assert.InDelta(t, 90, got, 1e-9)
	})

	t.Run("weights pull the mean", func(t *testing.T) {
		t.Parallel()
		got, err := Mean([]float64{0, 90}, []float64{3, 1})
		require.NoError(t, err)
		// Heavier weight on 0 pulls the mean below 45.
		assert.Less(t, got, 45.0)
		assert.Greater(t, got, 0.0)
	})

	t.Run("opposed angles return zero by convention", func(t *testing.T) {
		t.Parallel()
		got, err := Mean([]float64{0, 90, 180, 270}, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("opposite offsets cancel", func(t *testing.T) {
		t.Parallel()
		// Two categories biased +40 and -40 with equal weight average
		// to zero. This cancellation is real signal loss, and the reason
		// a constant correction model cannot capture opposite-sign bias.
		got, err := Mean([]float64{40, 320}, []float64{100, 100})
		require.NoError(t, err)
		assert.InDelta(t, 0, math.Min(got, 360-got), 1e-9)
	})

	t.Run("empty input errors", func(t *testing.T) {
		t.Parallel()
		_, err := Mean(nil, nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("weights length mismatch errors", func(t *testing.T) {
		t.Parallel()
		_, err := Mean([]float64{10, 20}, []float64{1})
		assert.Error(t, err)
	})
}

func TestDifference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"no difference", 90, 90, 0},
		{"simple positive", 100, 90, 10},
		{"simple negative", 90, 100, -10},
		{"across wraparound positive", 10, 350, 20},
		{"across wraparound negative", 350, 10, -20},
		{"antipodal maps to +180", 180, 0, 180},
		{"antipodal reversed also +180", 0, 180, 180},
		{"large separation stays short", 270, 0, -90},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, Difference(tt.a, tt.b), 1e-9)
		})
	}
}

func TestStdDev(t *testing.T) {
	t.Parallel()

	t.Run("identical angles have zero spread", func(t *testing.T) {
		t.Parallel()
		got, err := StdDev([]float64{42, 42, 42}, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0, got, 1e-9)
	})

	t.Run("spread grows with dispersion", func(t *testing.T) {
		t.Parallel()
		tight, err := StdDev([]float64{88, 90, 92}, nil)
		require.NoError(t, err)
		wide, err := StdDev([]float64{50, 90, 130}, nil)
		require.NoError(t, err)
		assert.Greater(t, wide, tight)
	})

	t.Run("empty input errors", func(t *testing.T) {
		t.Parallel()
		_, err := StdDev(nil, nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})
}
