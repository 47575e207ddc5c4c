package gamut

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/munsell.report/internal/munsell"
)

func cubeCorners(center munsell.CartesianPoint, half float64) []munsell.CartesianPoint {
	var pts []munsell.CartesianPoint
	for _, dx := range []float64{-half, half} {
		for _, dy := range []float64{-half, half} {
			for _, dz := range []float64{-half, half} {
				pts = append(pts, munsell.CartesianPoint{
					X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz,
				})
			}
		}
	}
	return pts
}

func TestConvexHullCube(t *testing.T) {
	t.Parallel()

	center := munsell.CartesianPoint{X: 1, Y: 2, Z: 5}
	pts := cubeCorners(center, 1)
	// Interior points must not become hull vertices.
	pts = append(pts, center, munsell.CartesianPoint{X: 1.2, Y: 2.1, Z: 5.3})

	mesh, err := convexHull(pts, 0)
	require.NoError(t, err)

	verts := mesh.vertexSet()
	assert.Len(t, verts, 8, "cube hull has exactly its 8 corners")
	// A triangulated cube surface has 12 faces.
	assert.Len(t, mesh.Faces, 12)

	// Every face normal points away from the center.
	for _, f := range mesh.Faces {
		a, b, c := mesh.Points[f[0]], mesh.Points[f[1]], mesh.Points[f[2]]
		assert.Negative(t, planeDistance(a, b, c, center), "face oriented inward")
	}
}

func TestConvexHullErrors(t *testing.T) {
	t.Parallel()

	t.Run("too few points", func(t *testing.T) {
		t.Parallel()
		_, err := convexHull([]munsell.CartesianPoint{{X: 1}, {Y: 1}, {Z: 1}}, 0)
		var insufficient *InsufficientSamplesError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 3, insufficient.Got)
	})

	t.Run("duplicates collapse below minimum", func(t *testing.T) {
		t.Parallel()
		p := munsell.CartesianPoint{X: 1, Y: 2, Z: 3}
		_, err := convexHull([]munsell.CartesianPoint{p, p, p, p, p}, 0)
		var insufficient *InsufficientSamplesError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 1, insufficient.Got)
	})

	t.Run("coplanar cloud", func(t *testing.T) {
		t.Parallel()
		var pts []munsell.CartesianPoint
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				pts = append(pts, munsell.CartesianPoint{X: float64(i), Y: float64(j), Z: 2})
			}
		}
		_, err := convexHull(pts, 0)
		assert.True(t, errors.Is(err, ErrDegenerateGeometry))
	})

	t.Run("collinear cloud", func(t *testing.T) {
		t.Parallel()
		var pts []munsell.CartesianPoint
		for i := 0; i < 8; i++ {
			pts = append(pts, munsell.CartesianPoint{X: float64(i), Y: float64(2 * i), Z: float64(-i)})
		}
		_, err := convexHull(pts, 0)
		assert.True(t, errors.Is(err, ErrDegenerateGeometry))
	})

	t.Run("iteration budget exhausted", func(t *testing.T) {
		t.Parallel()
		pts := cubeCorners(munsell.CartesianPoint{Z: 5}, 1)
		_, err := convexHull(pts, 1)
		assert.True(t, errors.Is(err, ErrHullIterationLimit))
	})
}

func TestConvexHullContainsAllPoints(t *testing.T) {
	t.Parallel()

	// Every input point must be on or inside every face plane.
	pts := []munsell.CartesianPoint{
		{X: 0, Y: 0, Z: 0}, {X: 4, Y: 0, Z: 0}, {X: 0, Y: 4, Z: 0}, {X: 0, Y: 0, Z: 4},
		{X: 1, Y: 1, Z: 1}, {X: 2, Y: 1, Z: 0.5}, {X: 0.5, Y: 2, Z: 0.7},
		{X: 3, Y: 3, Z: 3}, {X: 1, Y: 0.2, Z: 2.5},
	}
	mesh, err := convexHull(pts, 0)
	require.NoError(t, err)

	eps := hullEpsilon(pts)
	for _, p := range pts {
		for _, f := range mesh.Faces {
			a, b, c := mesh.Points[f[0]], mesh.Points[f[1]], mesh.Points[f[2]]
			assert.LessOrEqual(t, planeDistance(a, b, c, p), eps,
				"point %v outside hull face", p)
		}
	}
}
