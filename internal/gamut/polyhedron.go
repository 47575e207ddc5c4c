package gamut

import (
	"errors"
	"math"

	"github.com/banshee-data/munsell.report/internal/munsell"
)

// Polyhedron is the outlier-filtered convex solid for one color category.
// Vertices are stored in a flat slice with Faces as index triples into it
// (arena-and-index layout); faces are oriented outward. A Polyhedron is
// immutable after Build; rebuilding requires a fresh sample set.
type Polyhedron struct {
	Vertices []munsell.CartesianPoint
	Faces    [][3]int

	// Centroid is the filled-solid centroid computed by tetrahedral
	// decomposition, not the arithmetic mean of the boundary vertices.
	Centroid munsell.CartesianPoint
	Volume   float64

	// SourceSampleCount is the total weight of the samples the solid was
	// built from (weights default to 1, so for unweighted input this is
	// the sample count).
	SourceSampleCount int

	// PeeledLayers is the number of peel passes actually applied. It is
	// lower than the requested count when peeling ran out of points and
	// fell back to the last viable hull.
	PeeledLayers int
}

// CentroidMunsell returns the centroid in cylindrical coordinates.
func (p *Polyhedron) CentroidMunsell() (hue, value, chroma float64) {
	return p.Centroid.Munsell()
}

// Build constructs the category solid from a noisy sample cloud:
//
//  1. Convert samples to Cartesian points and compute their convex hull.
//  2. Strip the hull's vertex set from the cloud (boundary-extreme
//     points are the likeliest outliers) and recompute the hull of the
//     remainder. Repeated params.PeelLayers times.
//  3. Compute the filled-solid centroid and volume of the final hull.
//
// If a peel pass leaves fewer than four distinct points, or the
// survivors collapse to a plane, peeling stops and the last viable hull
// is kept. That fallback is intentional degradation for sparse
// categories, not a failure; PeeledLayers records how far peeling got.
//
// Fewer than four distinct points yields InsufficientSamplesError; a
// fully coplanar cloud yields ErrDegenerateGeometry.
func Build(samples []munsell.Sample, params BuildParams) (*Polyhedron, error) {
	points := make([]munsell.CartesianPoint, len(samples))
	var weight float64
	for i, s := range samples {
		points[i] = munsell.FromSample(s)
		w := s.Weight
		if w < 1 {
			w = 1
		}
		weight += w
	}

	cloud := dedupPoints(points)
	mesh, err := convexHull(cloud, params.MaxHullIterations)
	if err != nil {
		return nil, err
	}

	layers := 0
	for layers < params.PeelLayers {
		survivors := removeHullVertices(cloud, mesh)
		if len(survivors) < 4 {
			break
		}
		inner, err := convexHull(survivors, params.MaxHullIterations)
		if errors.Is(err, ErrHullIterationLimit) {
			// A blown budget is a real failure, not sparse-category
			// degradation; let the caller skip the category.
			return nil, err
		}
		if err != nil {
			// Survivors degenerate (coplanar after stripping); keep the
			// outer hull rather than losing the category.
			break
		}
		cloud = survivors
		mesh = inner
		layers++
	}

	centroid, volume := solidCentroid(mesh)

	poly := &Polyhedron{
		Centroid:          centroid,
		Volume:            volume,
		SourceSampleCount: int(math.Round(weight)),
		PeeledLayers:      layers,
	}
	poly.Vertices, poly.Faces = compactMesh(mesh)
	return poly, nil
}

// removeHullVertices returns the points of cloud that are not vertices of
// the hull (the minimal generating set is stripped in full).
func removeHullVertices(cloud []munsell.CartesianPoint, mesh *hullMesh) []munsell.CartesianPoint {
	onHull := make(map[munsell.CartesianPoint]bool)
	for _, vi := range mesh.vertexSet() {
		onHull[mesh.Points[vi]] = true
	}
	survivors := make([]munsell.CartesianPoint, 0, len(cloud))
	for _, p := range cloud {
		if !onHull[p] {
			survivors = append(survivors, p)
		}
	}
	return survivors
}

// solidCentroid computes the centroid and volume of the solid bounded by
// the mesh via tetrahedral decomposition: each face forms a tetrahedron
// with an interior reference point, and the result is the volume-weighted
// mean of the tetrahedron centroids. The reference point is the mean of
// the hull's vertices; signed volumes keep the result exact even if that
// reference falls outside the solid.
func solidCentroid(mesh *hullMesh) (munsell.CartesianPoint, float64) {
	verts := mesh.vertexSet()
	var ref munsell.CartesianPoint
	for _, vi := range verts {
		p := mesh.Points[vi]
		ref.X += p.X
		ref.Y += p.Y
		ref.Z += p.Z
	}
	n := float64(len(verts))
	ref.X /= n
	ref.Y /= n
	ref.Z /= n

	var totalVol float64
	var cx, cy, cz float64
	for _, f := range mesh.Faces {
		a := mesh.Points[f[0]]
		b := mesh.Points[f[1]]
		c := mesh.Points[f[2]]
		// Signed tetrahedron volume; positive for outward faces seen
		// from an interior reference.
		v := dot(sub(a, ref), cross(sub(b, ref), sub(c, ref))) / 6
		totalVol += v
		cx += v * (a.X + b.X + c.X + ref.X) / 4
		cy += v * (a.Y + b.Y + c.Y + ref.Y) / 4
		cz += v * (a.Z + b.Z + c.Z + ref.Z) / 4
	}
	if totalVol == 0 {
		return ref, 0
	}
	return munsell.CartesianPoint{X: cx / totalVol, Y: cy / totalVol, Z: cz / totalVol}, math.Abs(totalVol)
}

// compactMesh re-indexes the mesh onto only its hull vertices, in
// deterministic (first-occurrence of sorted source index) order.
func compactMesh(mesh *hullMesh) ([]munsell.CartesianPoint, [][3]int) {
	verts := mesh.vertexSet()
	remap := make(map[int]int, len(verts))
	out := make([]munsell.CartesianPoint, len(verts))
	for newIdx, oldIdx := range verts {
		remap[oldIdx] = newIdx
		out[newIdx] = mesh.Points[oldIdx]
	}
	faces := make([][3]int, len(mesh.Faces))
	for i, f := range mesh.Faces {
		faces[i] = [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
	}
	return out, faces
}

// EulerCharacteristic returns V − E + F for the polyhedron's boundary
// mesh. A valid closed convex surface always yields 2.
func (p *Polyhedron) EulerCharacteristic() int {
	edges := make(map[[2]int]bool)
	for _, f := range p.Faces {
		for _, e := range [][2]int{{f[0], f[1]}, {f[1], f[2]}, {f[2], f[0]}} {
			a, b := e[0], e[1]
			if a > b {
				a, b = b, a
			}
			edges[[2]int{a, b}] = true
		}
	}
	return len(p.Vertices) - len(edges) + len(p.Faces)
}
