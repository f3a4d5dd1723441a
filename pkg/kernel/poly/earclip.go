package poly

import (
	"github.com/chazu/ifcgeom/pkg/errors"
)

const earEps = 1e-12

func cross2(o, a, b [2]float64) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// inTriangle reports whether p lies inside or on the edges of the counter
// clockwise triangle abc.
func inTriangle(p, a, b, c [2]float64) bool {
	return cross2(a, b, p) >= -earEps && cross2(b, c, p) >= -earEps && cross2(c, a, p) >= -earEps
}

// earClip triangulates a simple counter clockwise polygon. Collinear
// vertices that never become ears are dropped.
func earClip(pts [][2]float64) ([][3]int, error) {
	n := len(pts)
	if n < 3 {
		return nil, errors.Newf("poly: face with %d nodes", n)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	tris := make([][3]int, 0, n-2)

	for len(idx) > 3 {
		clipped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if cross2(pts[prev], pts[cur], pts[next]) <= earEps {
				continue
			}
			ear := true
			for _, o := range idx {
				if o == prev || o == cur || o == next || pts[o] == pts[prev] || pts[o] == pts[cur] || pts[o] == pts[next] {
					continue
				}
				if inTriangle(pts[o], pts[prev], pts[cur], pts[next]) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if clipped {
			continue
		}
		// No ear: drop a degenerate vertex or give up.
		dropped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			next := idx[(i+1)%len(idx)]
			c := cross2(pts[prev], pts[idx[i]], pts[next])
			if c > -earEps && c < earEps {
				idx = append(idx[:i], idx[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			return nil, errors.New("poly: polygon is not simple")
		}
	}
	if cross2(pts[idx[0]], pts[idx[1]], pts[idx[2]]) > earEps {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris, nil
}
