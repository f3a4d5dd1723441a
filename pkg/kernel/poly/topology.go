package poly

import (
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/kernel"
)

type edge struct{ a, b int }

// directedEdges counts the outward oriented edges of a solid.
func (p *solid) directedEdges() map[edge]int {
	edges := make(map[edge]int)
	for _, f := range p.faces {
		n := len(f.loop)
		for i := 0; i < n; i++ {
			a, b := f.loop[i], f.loop[(i+1)%n]
			if f.reversed {
				a, b = b, a
			}
			edges[edge{a, b}]++
		}
	}
	return edges
}

// manifold reports whether every edge is shared by exactly two faces
// that traverse it in opposite directions.
func (p *solid) manifold() bool {
	edges := p.directedEdges()
	for e, count := range edges {
		if count != 1 || edges[edge{e.b, e.a}] != 1 {
			return false
		}
	}
	return true
}

// IsManifold reports whether every part of s is a closed, consistently
// oriented 2-manifold.
func (k *PolyKernel) IsManifold(s kernel.Shape) (bool, error) {
	p, err := unwrap(s)
	if err != nil {
		return false, err
	}
	for _, part := range p.parts {
		if !part.manifold() {
			return false, nil
		}
	}
	return true, nil
}

// SurfaceGenus sums the genus of every part from its Euler characteristic.
func (k *PolyKernel) SurfaceGenus(s kernel.Shape) (int, error) {
	p, err := unwrap(s)
	if err != nil {
		return 0, err
	}
	genus := 0
	for _, part := range p.parts {
		if !part.manifold() {
			return 0, errors.New("poly: genus of a non-manifold shape")
		}
		used := make(map[int]bool)
		for _, f := range part.faces {
			for _, v := range f.loop {
				used[v] = true
			}
		}
		edges := len(part.directedEdges()) / 2
		chi := len(used) - edges + len(part.faces)
		genus += (2 - chi) / 2
	}
	return genus, nil
}
