package sdfx

import (
	"math"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"github.com/deadsy/sdfx/render"
)

// cells picks the marching cubes resolution for a deflection tolerance.
// Zero asks for the finest mesh.
func (k *SdfxKernel) cells(s kernel.Shape, deflection float64) int {
	if deflection <= 0 {
		return k.maxCells
	}
	min, max := s.BoundingBox()
	extent := math.Max(max[0]-min[0], math.Max(max[1]-min[1], max[2]-min[2]))
	n := int(math.Ceil(extent / deflection))
	if n < minMeshCells {
		return minMeshCells
	}
	if n > k.maxCells {
		return k.maxCells
	}
	return n
}

// planeKey groups coplanar triangles into one face.
type planeKey struct {
	nx, ny, nz, d int64
}

func keyOf(n [3]float64, p [3]float64, step float64) planeKey {
	q := func(f float64) int64 { return int64(math.Round(f * 1e3)) }
	return planeKey{q(n[0]), q(n[1]), q(n[2]), int64(math.Round(taxonomy.Dot(n, p) / step))}
}

// Mesh converts s to faces using marching cubes. Triangles sharing a
// plane (within the grid resolution) form one face.
func (k *SdfxKernel) Mesh(s kernel.Shape, deflection float64) ([]kernel.Face, error) {
	u, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	n := k.cells(s, deflection)
	min, max := s.BoundingBox()
	extent := math.Max(max[0]-min[0], math.Max(max[1]-min[1], max[2]-min[2]))
	if extent <= 0 {
		return nil, errors.New("sdfx: empty bounding box")
	}
	step := extent / float64(n) / 4

	renderer := render.NewMarchingCubesUniform(n)
	triangles := render.ToTriangles(u, renderer)

	var faces []kernel.Face
	byPlane := make(map[planeKey]int)
	nodeIndex := make([]map[[3]float64]int, 0)

	for _, tri := range triangles {
		nv := tri.Normal()
		normal := [3]float64{nv.X, nv.Y, nv.Z}
		if taxonomy.Dot(normal, normal) < 0.5 || math.IsNaN(normal[0]) {
			continue // degenerate
		}
		var corners [3][3]float64
		for j := 0; j < 3; j++ {
			v := tri[j]
			corners[j] = [3]float64{v.X, v.Y, v.Z}
		}
		key := keyOf(normal, corners[0], step)
		fi, ok := byPlane[key]
		if !ok {
			fi = len(faces)
			byPlane[key] = fi
			faces = append(faces, kernel.Face{Shape: s, Surface: kernel.NewSurface(corners[0], normal)})
			nodeIndex = append(nodeIndex, make(map[[3]float64]int))
		}
		f := &faces[fi]
		var t [3]int
		for j, c := range corners {
			idx, seen := nodeIndex[fi][c]
			if !seen {
				idx = len(f.Nodes)
				nodeIndex[fi][c] = idx
				f.Nodes = append(f.Nodes, c)
				f.UVs = append(f.UVs, f.Surface.Parameters(c))
			}
			t[j] = idx
		}
		f.Triangles = append(f.Triangles, t)
	}
	if len(faces) == 0 {
		return nil, errors.New("sdfx: marching cubes produced no triangles")
	}
	return faces, nil
}

// SurfaceNormal returns the normalized SDF gradient at the surface point
// for uv, falling back to the plane normal where the gradient vanishes.
func (k *SdfxKernel) SurfaceNormal(f *kernel.Face, uv [2]float64) ([3]float64, error) {
	u, err := unwrap(f.Shape)
	if err != nil {
		return [3]float64{}, err
	}
	p := f.Surface.Point(uv)
	min, max := f.Shape.BoundingBox()
	h := 1e-6 * math.Max(1, math.Max(max[0]-min[0], math.Max(max[1]-min[1], max[2]-min[2])))

	var g [3]float64
	for i := 0; i < 3; i++ {
		a, b := p, p
		a[i] += h
		b[i] -= h
		g[i] = (u.Evaluate(vec(a)) - u.Evaluate(vec(b))) / (2 * h)
	}
	n := taxonomy.Normalize(g)
	if taxonomy.Dot(n, n) < 0.5 {
		n = f.Surface.Normal()
	}
	if f.Reversed {
		n = [3]float64{-n[0], -n[1], -n[2]}
	}
	return n, nil
}
