package sdfx

import (
	"math"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// transformedSDF evaluates s in the frame of an affine placement. Rigid
// placements preserve distances; scaled ones only preserve the sign.
type transformedSDF struct {
	s   sdf.SDF3
	inv taxonomy.Matrix4
	bb  sdf.Box3
}

func transform(s sdf.SDF3, m taxonomy.Matrix4) (sdf.SDF3, error) {
	if !m.Present() || m.IsIdentity() {
		return s, nil
	}
	inv, ok := m.Inverse()
	if !ok {
		return nil, errors.New("sdfx: singular placement")
	}
	// Collapse nested placements into one.
	if t, ok := s.(*transformedSDF); ok {
		fwd, _ := t.inv.Inverse()
		return transform(t.s, m.Mul(fwd))
	}
	return &transformedSDF{s: s, inv: inv, bb: transformBox(s.BoundingBox(), m)}, nil
}

func transformBox(bb sdf.Box3, m taxonomy.Matrix4) sdf.Box3 {
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < 8; i++ {
		c := [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
		if i&1 != 0 {
			c[0] = bb.Max.X
		}
		if i&2 != 0 {
			c[1] = bb.Max.Y
		}
		if i&4 != 0 {
			c[2] = bb.Max.Z
		}
		p := m.Apply(c)
		for j := 0; j < 3; j++ {
			lo[j] = math.Min(lo[j], p[j])
			hi[j] = math.Max(hi[j], p[j])
		}
	}
	return sdf.Box3{Min: vec(lo), Max: vec(hi)}
}

// Evaluate returns the distance at p.
func (t *transformedSDF) Evaluate(p v3.Vec) float64 {
	q := t.inv.Apply([3]float64{p.X, p.Y, p.Z})
	return t.s.Evaluate(vec(q))
}

// BoundingBox returns the transformed bounds.
func (t *transformedSDF) BoundingBox() sdf.Box3 {
	return t.bb
}

// slabSDF is the region lo <= p.axis <= hi. Infinite bounds leave that
// side open.
type slabSDF struct {
	axis   [3]float64
	lo, hi float64
	bb     sdf.Box3
}

// Evaluate returns the distance at p.
func (s *slabSDF) Evaluate(p v3.Vec) float64 {
	d := taxonomy.Dot(s.axis, [3]float64{p.X, p.Y, p.Z})
	return math.Max(s.lo-d, d-s.hi)
}

// BoundingBox returns the bounds of the sliced shape.
func (s *slabSDF) BoundingBox() sdf.Box3 {
	return s.bb
}
