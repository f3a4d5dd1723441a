package taxonomy

import (
	"math"

	"github.com/chazu/ifcgeom/pkg/errors"
)

// DefaultCircleSegments is used when discretizing conics for kernels that
// only understand polygons.
const DefaultCircleSegments = 32

// ProfileLoop flattens a closed profile into a polygon in the profile's
// parent frame (the XY plane of the owning extrusion). Supported profiles
// are circles, ellipses and collections of trimmed curves whose ends
// chain. Conic arcs are discretized with the given segment count for a
// full turn.
func ProfileLoop(profile Item, segments int) ([][2]float64, error) {
	if segments < 3 {
		segments = DefaultCircleSegments
	}
	switch p := profile.(type) {
	case *Circle:
		return conicLoop(p.Radius, p.Radius, p.Matrix, 0, 2*math.Pi, segments, false), nil
	case *Ellipse:
		return conicLoop(p.Radius, p.Radius2, p.Matrix, 0, 2*math.Pi, segments, false), nil
	case *Collection:
		var loop [][2]float64
		for _, child := range p.Children {
			tc, ok := child.(*TrimmedCurve)
			if !ok {
				return nil, errors.Wrapf(errors.ErrNotSupported, "profile edge of kind %s", child.Kind())
			}
			pts, err := edgePoints(tc, segments)
			if err != nil {
				return nil, err
			}
			// Each edge contributes all but its end point; the next edge
			// starts there.
			for _, q := range pts[:len(pts)-1] {
				r := p.Matrix.Apply([3]float64{q[0], q[1], 0})
				loop = append(loop, [2]float64{r[0], r[1]})
			}
		}
		if len(loop) < 3 {
			return nil, errors.Newf("profile has %d distinct points, need at least 3", len(loop))
		}
		return loop, nil
	default:
		return nil, errors.Wrapf(errors.ErrNotSupported, "profile of kind %s", profile.Kind())
	}
}

func edgePoints(tc *TrimmedCurve, segments int) ([][2]float64, error) {
	switch basis := tc.Basis.(type) {
	case nil:
		if tc.Start.Point == nil || tc.End.Point == nil {
			return nil, errors.New("straight edge needs point trims")
		}
		a, b := *tc.Start.Point, *tc.End.Point
		if !tc.Orientation {
			a, b = b, a
		}
		return [][2]float64{{a.X, a.Y}, {b.X, b.Y}}, nil
	case *Circle:
		return arcPoints(basis.Radius, basis.Radius, basis.Matrix, tc, segments)
	case *Ellipse:
		return arcPoints(basis.Radius, basis.Radius2, basis.Matrix, tc, segments)
	default:
		return nil, errors.Wrapf(errors.ErrNotSupported, "trimmed curve basis of kind %s", tc.Basis.Kind())
	}
}

func arcPoints(r1, r2 float64, m Matrix4, tc *TrimmedCurve, segments int) ([][2]float64, error) {
	start, err := trimAngle(tc.Start, r1, r2, m)
	if err != nil {
		return nil, err
	}
	end, err := trimAngle(tc.End, r1, r2, m)
	if err != nil {
		return nil, err
	}
	if tc.Orientation {
		for end <= start {
			end += 2 * math.Pi
		}
	} else {
		for end >= start {
			end -= 2 * math.Pi
		}
	}
	n := int(math.Ceil(math.Abs(end-start) / (2 * math.Pi) * float64(segments)))
	if n < 1 {
		n = 1
	}
	loop := conicLoop(r1, r2, m, start, end, n, true)
	return loop, nil
}

// trimAngle converts a trim to a conic parameter. Point trims are
// projected into the conic's local frame.
func trimAngle(t TrimParam, r1, r2 float64, m Matrix4) (float64, error) {
	if t.Point == nil {
		return t.Param, nil
	}
	inv, ok := m.Inverse()
	if !ok {
		return 0, errors.New("conic placement is singular")
	}
	q := inv.Apply([3]float64{t.Point.X, t.Point.Y, t.Point.Z})
	return math.Atan2(q[1]/r2, q[0]/r1), nil
}

// conicLoop samples x = r1 cos t, y = r2 sin t between from and to.
// includeEnd adds the point at t = to.
func conicLoop(r1, r2 float64, m Matrix4, from, to float64, n int, includeEnd bool) [][2]float64 {
	count := n
	if includeEnd {
		count = n + 1
	}
	pts := make([][2]float64, 0, count)
	for i := 0; i < count; i++ {
		t := from + (to-from)*float64(i)/float64(n)
		q := m.Apply([3]float64{r1 * math.Cos(t), r2 * math.Sin(t), 0})
		pts = append(pts, [2]float64{q[0], q[1]})
	}
	return pts
}

// SignedArea returns the shoelace area of a polygon; positive when the
// loop winds counter-clockwise.
func SignedArea(loop [][2]float64) float64 {
	var a float64
	for i := range loop {
		j := (i + 1) % len(loop)
		a += loop[i][0]*loop[j][1] - loop[j][0]*loop[i][1]
	}
	return a / 2
}
