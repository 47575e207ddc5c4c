package gamut

import (
	"errors"
	"fmt"
)

// ErrDegenerateGeometry is returned when a point cloud has no 3D extent
// (all points coplanar, collinear, or coincident) and no solid hull can
// be constructed. Per-category batch processing records the category as
// skipped and continues.
var ErrDegenerateGeometry = errors.New("gamut: degenerate point cloud, no 3D hull exists")

// ErrHullIterationLimit is returned when incremental hull construction
// exceeds its iteration cap. This indicates a pathological input (or a
// bug), never a routine condition.
var ErrHullIterationLimit = errors.New("gamut: convex hull iteration limit exceeded")

// InsufficientSamplesError is returned when a category has fewer than
// four points, the minimum needed for a 3D convex hull.
type InsufficientSamplesError struct {
	Got int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("gamut: need at least 4 points for a solid hull, got %d", e.Got)
}

// InsufficientDOFError is returned when a candidate harmonic order needs
// more fitted parameters than the usable category count supports. It is
// fatal only for that order; lower orders remain candidates.
type InsufficientDOFError struct {
	Order  int
	Usable int
}

func (e *InsufficientDOFError) Error() string {
	return fmt.Sprintf("gamut: order %d needs %d categories, have %d usable",
		e.Order, 2*e.Order+2, e.Usable)
}
