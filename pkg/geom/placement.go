package geom

import (
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// maxPlacementDepth bounds IfcLocalPlacement chains so a cyclic model
// cannot recurse forever.
const maxPlacementDepth = 64

var (
	unitX = [3]float64{1, 0, 0}
	unitZ = [3]float64{0, 0, 1}
)

// point reads an IfcCartesianPoint scaled to meters. Missing coordinates
// are zero.
func (c *Converter) point(e *ifc.Entity) [3]float64 {
	var p [3]float64
	if e == nil {
		return p
	}
	coords, _ := e.Floats("Coordinates")
	for i := 0; i < len(coords) && i < 3; i++ {
		p[i] = coords[i] * c.scale
	}
	return p
}

// direction reads an IfcDirection, falling back to def when absent or
// degenerate.
func direction(e *ifc.Entity, def [3]float64) [3]float64 {
	if e == nil {
		return def
	}
	ratios, ok := e.Floats("DirectionRatios")
	if !ok || len(ratios) == 0 {
		return def
	}
	var d [3]float64
	copy(d[:], ratios)
	if taxonomy.Dot(d, d) == 0 {
		return def
	}
	return taxonomy.Normalize(d)
}

// frame returns a right-handed orthonormal placement with the given z
// axis and x axis projected onto the plane perpendicular to it.
func frame(origin, z, x [3]float64) taxonomy.Matrix4 {
	z = taxonomy.Normalize(z)
	x = sub(x, scale(z, taxonomy.Dot(x, z)))
	if taxonomy.Dot(x, x) < 1e-18 {
		// x parallel to z: pick any perpendicular.
		x = taxonomy.Cross([3]float64{0, 1, 0}, z)
		if taxonomy.Dot(x, x) < 1e-18 {
			x = taxonomy.Cross(unitX, z)
		}
	}
	x = taxonomy.Normalize(x)
	y := taxonomy.Cross(z, x)
	return taxonomy.FromAxes(
		taxonomy.Point3{X: origin[0], Y: origin[1], Z: origin[2]},
		taxonomy.Direction3{X: x[0], Y: x[1], Z: x[2]},
		taxonomy.Direction3{X: y[0], Y: y[1], Z: y[2]},
		taxonomy.Direction3{X: z[0], Y: z[1], Z: z[2]},
	)
}

// axisPlacement maps IfcAxis2Placement3D and IfcAxis2Placement2D.
func (c *Converter) axisPlacement(e *ifc.Entity) (taxonomy.Matrix4, error) {
	if e == nil {
		return taxonomy.Identity(), nil
	}
	origin := c.point(e.Ref("Location"))
	switch {
	case e.Is("IfcAxis2Placement3D"):
		z := direction(e.Ref("Axis"), unitZ)
		x := direction(e.Ref("RefDirection"), unitX)
		return frame(origin, z, x), nil
	case e.Is("IfcAxis2Placement2D"):
		x := direction(e.Ref("RefDirection"), unitX)
		x[2] = 0
		return frame(origin, unitZ, x), nil
	}
	return taxonomy.Matrix4{}, errors.Wrapf(errors.ErrNotSupported, "placement %s", e)
}

// ObjectPlacement resolves the absolute placement of a product in meters.
func (c *Converter) ObjectPlacement(product *ifc.Entity) (taxonomy.Matrix4, error) {
	return c.localPlacement(product.Ref("ObjectPlacement"), 0)
}

func (c *Converter) localPlacement(e *ifc.Entity, depth int) (taxonomy.Matrix4, error) {
	if e == nil {
		return taxonomy.Identity(), nil
	}
	if m, ok := c.placements[e.ID]; ok {
		return m, nil
	}
	if depth > maxPlacementDepth {
		return taxonomy.Matrix4{}, errors.Newf("placement chain through %s is too deep", e)
	}
	if !e.Is("IfcLocalPlacement") {
		return taxonomy.Matrix4{}, errors.Wrapf(errors.ErrNotSupported, "object placement %s", e)
	}
	parent, err := c.localPlacement(e.Ref("PlacementRelTo"), depth+1)
	if err != nil {
		return taxonomy.Matrix4{}, err
	}
	rel, err := c.axisPlacement(e.Ref("RelativePlacement"))
	if err != nil {
		return taxonomy.Matrix4{}, err
	}
	m := parent.Mul(rel)
	c.placements[e.ID] = m
	return m, nil
}

// transformOperator maps IfcCartesianTransformationOperator3D.
func (c *Converter) transformOperator(e *ifc.Entity) taxonomy.Matrix4 {
	if e == nil {
		return taxonomy.Identity()
	}
	origin := c.point(e.Ref("LocalOrigin"))
	z := direction(e.Ref("Axis3"), unitZ)
	x := direction(e.Ref("Axis1"), unitX)
	m := frame(origin, z, x)
	s, ok := e.Float("Scale")
	if !ok || s == 0 || s == 1 {
		return m
	}
	cs := m.Components()
	for i := 0; i < 12; i++ {
		if i%4 != 3 {
			cs[i] *= s
		}
	}
	return taxonomy.NewMatrix4(cs)
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale(v [3]float64, f float64) [3]float64 {
	return [3]float64{v[0] * f, v[1] * f, v[2] * f}
}
