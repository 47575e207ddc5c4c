package gamut

import (
	"math"

	"github.com/banshee-data/munsell.report/internal/munsell"
)

// hull.go implements incremental 3D convex hull construction. For each
// candidate point the visible faces are found by signed plane distance,
// removed, and replaced with a cone of new faces over the horizon edges.
// Complexity is O(n·f) with f the live face count, which is ample for
// per-category clouds (hundreds to low thousands of points).
//
// Faces are index triples into a flat vertex slice (arena-and-index
// layout, no pointer cycles) and are oriented counterclockwise viewed
// from outside, so face normals point away from the interior.
//
// Construction is deterministic for a given input order: candidate
// points are visited in first-occurrence order and horizon edges are
// gathered by scanning the face list, never by map iteration.

// hullMesh is the internal result of convexHull: the deduplicated input
// points plus outward-oriented triangular faces indexing into them. Only
// indices referenced by Faces are hull vertices.
type hullMesh struct {
	Points []munsell.CartesianPoint
	Faces  [][3]int
}

// vertexSet returns the sorted set of point indices referenced by faces.
func (m *hullMesh) vertexSet() []int {
	seen := make(map[int]bool, len(m.Faces)*2)
	var idx []int
	for _, f := range m.Faces {
		for _, v := range f {
			if !seen[v] {
				seen[v] = true
				idx = append(idx, v)
			}
		}
	}
	// Insertion-sort-sized inputs; keep it simple and deterministic.
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && idx[j] < idx[j-1]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	return idx
}

func sub(a, b munsell.CartesianPoint) munsell.CartesianPoint {
	return munsell.CartesianPoint{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func cross(a, b munsell.CartesianPoint) munsell.CartesianPoint {
	return munsell.CartesianPoint{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func dot(a, b munsell.CartesianPoint) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func norm(a munsell.CartesianPoint) float64 {
	return math.Sqrt(dot(a, a))
}

// planeDistance returns the distance of p from the plane through a, b, c,
// positive on the side the face normal (b-a)×(c-a) points to. Returns 0
// for a degenerate face.
func planeDistance(a, b, c, p munsell.CartesianPoint) float64 {
	n := cross(sub(b, a), sub(c, a))
	ln := norm(n)
	if ln == 0 {
		return 0
	}
	return dot(n, sub(p, a)) / ln
}

// dedupPoints removes exact duplicates, preserving first-occurrence order.
func dedupPoints(points []munsell.CartesianPoint) []munsell.CartesianPoint {
	seen := make(map[munsell.CartesianPoint]struct{}, len(points))
	out := make([]munsell.CartesianPoint, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// hullEpsilon derives a distance tolerance from the cloud's extent so
// visibility tests behave consistently across coordinate scales.
func hullEpsilon(points []munsell.CartesianPoint) float64 {
	var span float64
	minP, maxP := points[0], points[0]
	for _, p := range points[1:] {
		minP.X = math.Min(minP.X, p.X)
		minP.Y = math.Min(minP.Y, p.Y)
		minP.Z = math.Min(minP.Z, p.Z)
		maxP.X = math.Max(maxP.X, p.X)
		maxP.Y = math.Max(maxP.Y, p.Y)
		maxP.Z = math.Max(maxP.Z, p.Z)
	}
	span = math.Max(maxP.X-minP.X, math.Max(maxP.Y-minP.Y, maxP.Z-minP.Z))
	if span == 0 {
		return 1e-12
	}
	return span * 1e-9
}

// initialSimplex picks four points with genuine 3D extent: the two most
// distant axis-extreme points, the point farthest from their line, and
// the point farthest from their plane. Returns ErrDegenerateGeometry if
// the cloud is coincident, collinear, or coplanar within tolerance.
func initialSimplex(pts []munsell.CartesianPoint, eps float64) (i0, i1, i2, i3 int, err error) {
	// Farthest point from the first point.
	i0 = 0
	best := -1.0
	for i, p := range pts {
		if d := norm(sub(p, pts[i0])); d > best {
			best = d
			i1 = i
		}
	}
	if best < eps {
		return 0, 0, 0, 0, ErrDegenerateGeometry
	}

	// Farthest from the line i0-i1.
	dir := sub(pts[i1], pts[i0])
	lineLen := norm(dir)
	best = -1.0
	i2 = -1
	for i, p := range pts {
		d := norm(cross(sub(p, pts[i0]), dir)) / lineLen
		if d > best {
			best = d
			i2 = i
		}
	}
	if best < eps {
		return 0, 0, 0, 0, ErrDegenerateGeometry
	}

	// Farthest from the plane i0-i1-i2, on either side.
	best = -1.0
	i3 = -1
	for i, p := range pts {
		d := math.Abs(planeDistance(pts[i0], pts[i1], pts[i2], p))
		if d > best {
			best = d
			i3 = i
		}
	}
	if best < eps {
		return 0, 0, 0, 0, ErrDegenerateGeometry
	}
	return i0, i1, i2, i3, nil
}

// convexHull computes the convex hull of a point cloud. Duplicates are
// removed first; at least four distinct, non-coplanar points are
// required. maxIterations bounds the face-visibility work; zero scales
// the budget with the square of the input size. Either way pathological
// inputs surface ErrHullIterationLimit instead of spinning.
func convexHull(points []munsell.CartesianPoint, maxIterations int) (*hullMesh, error) {
	pts := dedupPoints(points)
	if len(pts) < 4 {
		return nil, &InsufficientSamplesError{Got: len(pts)}
	}
	eps := hullEpsilon(pts)

	i0, i1, i2, i3, err := initialSimplex(pts, eps)
	if err != nil {
		return nil, err
	}

	// Seed the face list with the simplex, each face oriented so the
	// opposite simplex vertex lies on its negative (interior) side.
	faces := [][3]int{
		{i0, i1, i2},
		{i0, i1, i3},
		{i0, i2, i3},
		{i1, i2, i3},
	}
	opposite := []int{i3, i2, i1, i0}
	for fi, f := range faces {
		if planeDistance(pts[f[0]], pts[f[1]], pts[f[2]], pts[opposite[fi]]) > 0 {
			faces[fi][1], faces[fi][2] = faces[fi][2], faces[fi][1]
		}
	}

	inSimplex := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	budget := maxIterations
	if budget <= 0 {
		budget = 64*len(pts)*len(pts) + 4096
	}
	steps := 0

	for pi := range pts {
		if inSimplex[pi] {
			continue
		}
		p := pts[pi]

		// Faces visible from p.
		visible := make([]bool, len(faces))
		anyVisible := false
		for fi, f := range faces {
			steps++
			if planeDistance(pts[f[0]], pts[f[1]], pts[f[2]], p) > eps {
				visible[fi] = true
				anyVisible = true
			}
		}
		if steps > budget {
			return nil, ErrHullIterationLimit
		}
		if !anyVisible {
			continue // interior point
		}

		// Directed edges of the visible region. An edge whose reverse is
		// absent borders an invisible face: it is on the horizon.
		edges := make(map[[2]int]bool, len(faces)*3)
		for fi, f := range faces {
			if !visible[fi] {
				continue
			}
			edges[[2]int{f[0], f[1]}] = true
			edges[[2]int{f[1], f[2]}] = true
			edges[[2]int{f[2], f[0]}] = true
		}

		next := faces[:0:0]
		for fi, f := range faces {
			if !visible[fi] {
				next = append(next, f)
			}
		}
		for fi, f := range faces {
			if !visible[fi] {
				continue
			}
			for _, e := range [][2]int{{f[0], f[1]}, {f[1], f[2]}, {f[2], f[0]}} {
				steps++
				if edges[[2]int{e[1], e[0]}] {
					continue // interior edge of the visible region
				}
				// Horizon edge keeps its orientation from the visible
				// face, so the cone face (u, v, p) faces outward.
				next = append(next, [3]int{e[0], e[1], pi})
			}
		}
		if steps > budget {
			return nil, ErrHullIterationLimit
		}
		faces = next
	}

	return &hullMesh{Points: pts, Faces: faces}, nil
}
