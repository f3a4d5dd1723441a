package geom

import (
	"math"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// pointEpsilon is the distance in meters under which consecutive
// polyline points are merged.
const pointEpsilon = 1e-9

// profile maps an IfcProfileDef to a taxonomy profile in meters, lying in
// the XY plane of the owning solid.
func (c *Converter) profile(e *ifc.Entity) (taxonomy.Item, error) {
	if e == nil {
		return nil, errors.New("missing profile")
	}
	var pos taxonomy.Matrix4
	if e.Is("IfcParameterizedProfileDef") {
		var err error
		if pos, err = c.axisPlacement(e.Ref("Position")); err != nil {
			return nil, err
		}
	}

	switch {
	case e.Is("IfcRectangleProfileDef"):
		x, okx := e.Float("XDim")
		y, oky := e.Float("YDim")
		if !okx || !oky || x <= 0 || y <= 0 {
			return nil, errors.Newf("%s: invalid dimensions", e)
		}
		hx, hy := x*c.scale/2, y*c.scale/2
		return loop(pos, [][2]float64{{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy}}), nil

	case e.Is("IfcCircleProfileDef"):
		r, ok := e.Float("Radius")
		if !ok || r <= 0 {
			return nil, errors.Newf("%s: invalid radius", e)
		}
		return &taxonomy.Circle{Radius: r * c.scale, Matrix: pos}, nil

	case e.Is("IfcEllipseProfileDef"):
		a, oka := e.Float("SemiAxis1")
		b, okb := e.Float("SemiAxis2")
		if !oka || !okb || a <= 0 || b <= 0 {
			return nil, errors.Newf("%s: invalid semi axes", e)
		}
		return &taxonomy.Ellipse{Radius: a * c.scale, Radius2: b * c.scale, Matrix: pos}, nil

	case e.Is("IfcArbitraryProfileDefWithVoids"):
		if len(e.Refs("InnerCurves")) > 0 {
			return nil, errors.Wrapf(errors.ErrNotSupported, "%s: profile voids", e)
		}
		fallthrough
	case e.Is("IfcArbitraryClosedProfileDef"):
		pts, err := c.polyline(e.Ref("OuterCurve"))
		if err != nil {
			return nil, errors.Wrapf(err, "%s", e)
		}
		return loop(taxonomy.Matrix4{}, pts), nil
	}
	return nil, errors.Wrapf(errors.ErrNotSupported, "profile %s", e.Type)
}

// polyline reads the 2D points of a closed IfcPolyline, dropping the
// repeated closing point and zero length edges.
func (c *Converter) polyline(e *ifc.Entity) ([][2]float64, error) {
	if e == nil {
		return nil, errors.New("missing outer curve")
	}
	if !e.Is("IfcPolyline") {
		return nil, errors.Wrapf(errors.ErrNotSupported, "outer curve %s", e.Type)
	}
	var pts [][2]float64
	for _, p := range e.Refs("Points") {
		q := c.point(p)
		pt := [2]float64{q[0], q[1]}
		if n := len(pts); n > 0 && near2(pts[n-1], pt) {
			continue
		}
		pts = append(pts, pt)
	}
	if n := len(pts); n > 1 && near2(pts[0], pts[n-1]) {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return nil, errors.Newf("polyline %s has %d distinct points", e, len(pts))
	}
	return pts, nil
}

// loop closes pts into a collection of straight edges.
func loop(m taxonomy.Matrix4, pts [][2]float64) *taxonomy.Collection {
	edges := make([]taxonomy.Item, len(pts))
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		edges[i] = taxonomy.Segment(taxonomy.Point3{X: p[0], Y: p[1]}, taxonomy.Point3{X: q[0], Y: q[1]})
	}
	return &taxonomy.Collection{Children: edges, Matrix: m}
}

func near2(a, b [2]float64) bool {
	return math.Hypot(a[0]-b[0], a[1]-b[1]) < pointEpsilon
}
