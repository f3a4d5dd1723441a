// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, poly) build solids from taxonomy items and
// answer meshing and measurement queries behind this interface. The
// kernel abstraction allows swapping backends without changing the rest
// of the system.
//
// A Kernel is not safe for concurrent use. Every iterator worker obtains
// its own instance from a Factory.
package kernel

import (
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// Shape is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Shape interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max [3]float64
}

// Extend grows b to contain p.
func (b *Box) Extend(p [3]float64) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Corners returns the eight corners of b.
func (b Box) Corners() [8][3]float64 {
	var out [8][3]float64
	for i := range out {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				out[i][axis] = b.Max[axis]
			} else {
				out[i][axis] = b.Min[axis]
			}
		}
	}
	return out
}

// Kernel is the abstract geometry kernel interface. Queries a backend
// cannot answer return errors.ErrNotSupported; they never return a
// made-up value.
type Kernel interface {
	// Name is the registry name of the backend.
	Name() string

	// Build converts an extrusion or a collection of extrusions into a
	// solid, applying the item's own placement.
	Build(item taxonomy.Item) (Shape, error)

	// Transform returns s moved by m.
	Transform(s Shape, m taxonomy.Matrix4) (Shape, error)

	// Mesh triangulates every face of s within the given deflection.
	Mesh(s Shape, deflection float64) ([]Face, error)

	// SurfaceNormal evaluates the outward normal of a face at surface
	// parameters uv, taking the face orientation into account.
	SurfaceNormal(f *Face, uv [2]float64) ([3]float64, error)

	// Compound groups shapes into one without merging them.
	Compound(shapes []Shape) (Shape, error)

	// Boolean operations
	BooleanSubtract(s Shape, ops []Shape) (Shape, error)
	Slice(s Shape, axis [3]float64, offsets []float64) ([]Shape, error)

	// Topology
	IsManifold(s Shape) (bool, error)
	SurfaceGenus(s Shape) (int, error)

	// Measurement
	BoundingBox(s Shape) (Box, error)
	SurfaceArea(s Shape) (float64, error)
	Volume(s Shape) (float64, error)
	ProjectedArea(s Shape) (float64, error) // footprint on the XY plane

	Clone(s Shape) Shape

	// Serialize encodes s in the backend's native exchange format and
	// returns the bytes with the usual file extension.
	Serialize(s Shape) ([]byte, string, error)
}
