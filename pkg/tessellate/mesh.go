package tessellate

import (
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/kernel"
)

// VertexCount returns the number of vertices.
func (t *Triangulation) VertexCount() int {
	return len(t.Verts) / 3
}

// TriangleCount returns the number of triangles.
func (t *Triangulation) TriangleCount() int {
	return len(t.Faces) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (t *Triangulation) IsEmpty() bool {
	return len(t.Faces) == 0
}

// HasNormals reports whether every vertex carries a normal.
func (t *Triangulation) HasNormals() bool {
	return len(t.Normals) > 0 && len(t.Normals) == len(t.Verts)
}

// Bounds returns the bounding box of the vertices.
func (t *Triangulation) Bounds() (kernel.Box, bool) {
	if len(t.Verts) < 3 {
		return kernel.Box{}, false
	}
	first := [3]float64{t.Verts[0], t.Verts[1], t.Verts[2]}
	b := kernel.Box{Min: first, Max: first}
	for i := 3; i+2 < len(t.Verts); i += 3 {
		b.Extend([3]float64{t.Verts[i], t.Verts[i+1], t.Verts[i+2]})
	}
	return b, true
}

// Validate checks that array lengths agree and indices are in range.
func (t *Triangulation) Validate() error {
	n := t.VertexCount()
	if len(t.Verts)%3 != 0 {
		return errors.Newf("triangulation %s: %d coordinates is not a multiple of 3", t.ID, len(t.Verts))
	}
	if len(t.Normals) != 0 && len(t.Normals) != len(t.Verts) {
		return errors.Newf("triangulation %s: %d normal components for %d vertices", t.ID, len(t.Normals), n)
	}
	if len(t.UVs) != 0 && len(t.UVs) != 2*n {
		return errors.Newf("triangulation %s: %d uv components for %d vertices", t.ID, len(t.UVs), n)
	}
	if len(t.Faces)%3 != 0 {
		return errors.Newf("triangulation %s: %d face indices is not a multiple of 3", t.ID, len(t.Faces))
	}
	if len(t.MaterialIDs) != len(t.Faces)/3 {
		return errors.Newf("triangulation %s: %d material ids for %d triangles", t.ID, len(t.MaterialIDs), len(t.Faces)/3)
	}
	for _, i := range t.Faces {
		if i < 0 || i >= n {
			return errors.Newf("triangulation %s: face index %d out of range", t.ID, i)
		}
	}
	if len(t.Edges)%2 != 0 {
		return errors.Newf("triangulation %s: odd edge index count", t.ID)
	}
	for _, i := range t.Edges {
		if i < 0 || i >= n {
			return errors.Newf("triangulation %s: edge index %d out of range", t.ID, i)
		}
	}
	for _, m := range t.MaterialIDs {
		if m < -1 || m >= len(t.Materials) {
			return errors.Newf("triangulation %s: material id %d out of range", t.ID, m)
		}
	}
	return nil
}
