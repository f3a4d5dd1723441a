package kernel

import "github.com/chazu/ifcgeom/pkg/taxonomy"

// Surface is the planar parameterization of a face: the node with surface
// parameters (u, v) lies at Origin + u*U + v*V.
type Surface struct {
	Origin, U, V [3]float64
}

// Point evaluates the surface at uv.
func (s Surface) Point(uv [2]float64) [3]float64 {
	return [3]float64{
		s.Origin[0] + uv[0]*s.U[0] + uv[1]*s.V[0],
		s.Origin[1] + uv[0]*s.U[1] + uv[1]*s.V[1],
		s.Origin[2] + uv[0]*s.U[2] + uv[1]*s.V[2],
	}
}

// Normal is U x V, normalized. It ignores face orientation.
func (s Surface) Normal() [3]float64 {
	return taxonomy.Normalize(taxonomy.Cross(s.U, s.V))
}

// NewSurface builds an orthonormal parameterization of the plane through
// origin with normal n.
func NewSurface(origin, n [3]float64) Surface {
	n = taxonomy.Normalize(n)
	ref := [3]float64{1, 0, 0}
	if n[0] > 0.9 || n[0] < -0.9 {
		ref = [3]float64{0, 1, 0}
	}
	u := taxonomy.Normalize(taxonomy.Cross(ref, n))
	return Surface{Origin: origin, U: u, V: taxonomy.Cross(n, u)}
}

// Parameters projects p onto the surface.
func (s Surface) Parameters(p [3]float64) [2]float64 {
	d := [3]float64{p[0] - s.Origin[0], p[1] - s.Origin[1], p[2] - s.Origin[2]}
	return [2]float64{taxonomy.Dot(d, s.U), taxonomy.Dot(d, s.V)}
}

// Face is one triangulated face of a meshed shape. Triangles wind counter
// clockwise around the surface normal; a Reversed face points the other
// way, so consumers emit its triangles backwards.
type Face struct {
	Shape     Shape
	Surface   Surface
	Reversed  bool
	Nodes     [][3]float64 // shape-local coordinates
	UVs       [][2]float64 // surface parameters of Nodes
	Triangles [][3]int     // indices into Nodes
}

// NodeCount returns the number of nodes.
func (f *Face) NodeCount() int {
	return len(f.Nodes)
}

// TriangleCount returns the number of triangles.
func (f *Face) TriangleCount() int {
	return len(f.Triangles)
}

// IsEmpty returns true if the face has no triangles.
func (f *Face) IsEmpty() bool {
	return len(f.Triangles) == 0
}
