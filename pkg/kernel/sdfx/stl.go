package sdfx

import (
	"bytes"
	"fmt"

	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// Serialize writes the finest mesh of s as ASCII STL.
func (k *SdfxKernel) Serialize(s kernel.Shape) ([]byte, string, error) {
	faces, err := k.Mesh(s, 0)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	buf.WriteString("solid ifcgeom\n")
	kernel.OrientedTriangles(faces, func(a, b, c [3]float64) {
		n := taxonomy.Normalize(taxonomy.Cross(
			[3]float64{b[0] - a[0], b[1] - a[1], b[2] - a[2]},
			[3]float64{c[0] - a[0], c[1] - a[1], c[2] - a[2]}))
		fmt.Fprintf(&buf, "facet normal %g %g %g\n outer loop\n", n[0], n[1], n[2])
		for _, v := range [][3]float64{a, b, c} {
			fmt.Fprintf(&buf, "  vertex %g %g %g\n", v[0], v[1], v[2])
		}
		buf.WriteString(" endloop\nendfacet\n")
	})
	buf.WriteString("endsolid ifcgeom\n")
	return buf.Bytes(), "stl", nil
}
