package kernel

import (
	"math"

	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// OrientedTriangles calls fn for every triangle of faces with corners in
// outward winding order.
func OrientedTriangles(faces []Face, fn func(a, b, c [3]float64)) {
	for i := range faces {
		f := &faces[i]
		for _, t := range f.Triangles {
			if f.Reversed {
				fn(f.Nodes[t[2]], f.Nodes[t[1]], f.Nodes[t[0]])
			} else {
				fn(f.Nodes[t[0]], f.Nodes[t[1]], f.Nodes[t[2]])
			}
		}
	}
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// MeshArea sums the triangle areas of faces.
func MeshArea(faces []Face) float64 {
	var area float64
	OrientedTriangles(faces, func(a, b, c [3]float64) {
		n := taxonomy.Cross(sub(b, a), sub(c, a))
		area += math.Sqrt(taxonomy.Dot(n, n)) / 2
	})
	return area
}

// MeshVolume is the enclosed volume of a closed, outward oriented mesh.
func MeshVolume(faces []Face) float64 {
	var vol float64
	OrientedTriangles(faces, func(a, b, c [3]float64) {
		vol += taxonomy.Dot(a, taxonomy.Cross(b, c)) / 6
	})
	return vol
}

// MeshProjectedArea is the area of the upward facing triangles projected
// onto the XY plane.
func MeshProjectedArea(faces []Face) float64 {
	var area float64
	OrientedTriangles(faces, func(a, b, c [3]float64) {
		z := ((b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])) / 2
		if z > 0 {
			area += z
		}
	})
	return area
}
