// Package poly implements the kernel.Kernel interface with exact planar
// polyhedra. Extrusions of polygonal profiles are represented without
// approximation; conic profiles are discretized. Boolean operations are
// not available.
package poly

import (
	"math"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// Name is the registry name of this backend.
const Name = "poly"

// Compile-time interface checks.
var _ kernel.Kernel = (*PolyKernel)(nil)
var _ kernel.Shape = (*polyShape)(nil)

func init() {
	kernel.Register(Name, func() (kernel.Kernel, error) { return New(), nil })
}

// polyFace is a planar polygon. The loop winds counter clockwise around
// its natural normal; reversed faces point the other way.
type polyFace struct {
	loop     []int
	reversed bool
}

// solid is one closed polyhedron.
type solid struct {
	verts [][3]float64
	faces []polyFace
}

// polyShape is a compound of solids.
type polyShape struct {
	parts []*solid
}

// BoundingBox returns the axis-aligned bounding box.
func (s *polyShape) BoundingBox() (min, max [3]float64) {
	first := true
	for _, p := range s.parts {
		for _, v := range p.verts {
			if first {
				min, max = v, v
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				min[i] = math.Min(min[i], v[i])
				max[i] = math.Max(max[i], v[i])
			}
		}
	}
	return min, max
}

// PolyKernel implements kernel.Kernel with planar polyhedra.
type PolyKernel struct {
	segments int
}

// Option configures a PolyKernel.
type Option func(*PolyKernel)

// WithSegments sets the number of segments used for a full circle.
func WithSegments(n int) Option {
	return func(k *PolyKernel) { k.segments = n }
}

// New returns a new PolyKernel.
func New(opts ...Option) *PolyKernel {
	k := &PolyKernel{segments: taxonomy.DefaultCircleSegments}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Name implements kernel.Kernel.
func (k *PolyKernel) Name() string { return Name }

// unwrap extracts the underlying polyhedra from a kernel.Shape.
func unwrap(s kernel.Shape) (*polyShape, error) {
	p, ok := s.(*polyShape)
	if !ok || p == nil {
		return nil, errors.Newf("poly: foreign shape %T", s)
	}
	return p, nil
}

// Build converts an extrusion, or a collection of them, into polyhedra.
func (k *PolyKernel) Build(item taxonomy.Item) (kernel.Shape, error) {
	switch it := item.(type) {
	case *taxonomy.Extrusion:
		sol, err := k.extrude(it)
		if err != nil {
			return nil, err
		}
		return &polyShape{parts: []*solid{sol}}, nil
	case *taxonomy.Collection:
		out := &polyShape{}
		for _, child := range it.Children {
			s, err := k.Build(child)
			if err != nil {
				return nil, err
			}
			out.parts = append(out.parts, s.(*polyShape).parts...)
		}
		if len(out.parts) == 0 {
			return nil, errors.New("poly: empty collection")
		}
		return transform(out, it.Matrix), nil
	default:
		return nil, errors.Wrapf(errors.ErrNotSupported, "poly: cannot build %s", item.Kind())
	}
}

func (k *PolyKernel) extrude(e *taxonomy.Extrusion) (*solid, error) {
	if e.Depth <= 0 {
		return nil, errors.Newf("poly: extrusion depth %g must be positive", e.Depth)
	}
	loop, err := taxonomy.ProfileLoop(e.Basis, k.segments)
	if err != nil {
		return nil, err
	}
	loop = dedupeLoop(loop)
	if len(loop) < 3 {
		return nil, errors.New("poly: degenerate profile")
	}
	if taxonomy.SignedArea(loop) < 0 {
		for i, j := 0, len(loop)-1; i < j; i, j = i+1, j-1 {
			loop[i], loop[j] = loop[j], loop[i]
		}
	}

	dir := taxonomy.Normalize([3]float64{e.Direction.X, e.Direction.Y, e.Direction.Z})
	if dir[2] <= 1e-9 {
		return nil, errors.New("poly: extrusion direction must point out of the profile plane")
	}
	off := [3]float64{dir[0] * e.Depth, dir[1] * e.Depth, dir[2] * e.Depth}

	n := len(loop)
	sol := &solid{verts: make([][3]float64, 0, 2*n)}
	for _, p := range loop {
		sol.verts = append(sol.verts, [3]float64{p[0], p[1], 0})
	}
	for _, p := range loop {
		sol.verts = append(sol.verts, [3]float64{p[0] + off[0], p[1] + off[1], off[2]})
	}

	bottom := polyFace{loop: make([]int, n), reversed: true}
	top := polyFace{loop: make([]int, n)}
	for i := 0; i < n; i++ {
		bottom.loop[i] = i
		top.loop[i] = n + i
	}
	sol.faces = append(sol.faces, top, bottom)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sol.faces = append(sol.faces, polyFace{loop: []int{i, j, n + j, n + i}})
	}

	shape := transform(&polyShape{parts: []*solid{sol}}, e.Matrix)
	return shape.parts[0], nil
}

// dedupeLoop drops consecutive repeated points, including a closing point
// equal to the first.
func dedupeLoop(loop [][2]float64) [][2]float64 {
	const eps = 1e-12
	same := func(a, b [2]float64) bool {
		return math.Abs(a[0]-b[0]) < eps && math.Abs(a[1]-b[1]) < eps
	}
	out := make([][2]float64, 0, len(loop))
	for _, p := range loop {
		if len(out) > 0 && same(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && same(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// transform applies m to every vertex. A mirroring matrix flips face
// orientation so that faces keep pointing outwards.
func transform(s *polyShape, m taxonomy.Matrix4) *polyShape {
	if !m.Present() || m.IsIdentity() {
		return s
	}
	c := m.Components()
	det := c[0]*(c[5]*c[10]-c[9]*c[6]) - c[4]*(c[1]*c[10]-c[9]*c[2]) + c[8]*(c[1]*c[6]-c[5]*c[2])
	out := &polyShape{parts: make([]*solid, len(s.parts))}
	for i, p := range s.parts {
		q := p.clone()
		for j, v := range q.verts {
			q.verts[j] = m.Apply(v)
		}
		if det < 0 {
			for j := range q.faces {
				q.faces[j].reversed = !q.faces[j].reversed
			}
		}
		out.parts[i] = q
	}
	return out
}

func (p *solid) clone() *solid {
	q := &solid{
		verts: append([][3]float64(nil), p.verts...),
		faces: make([]polyFace, len(p.faces)),
	}
	for i, f := range p.faces {
		q.faces[i] = polyFace{loop: append([]int(nil), f.loop...), reversed: f.reversed}
	}
	return q
}

// Transform returns s moved by m.
func (k *PolyKernel) Transform(s kernel.Shape, m taxonomy.Matrix4) (kernel.Shape, error) {
	p, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return transform(p, m), nil
}

// Compound collects the parts of shapes into one shape.
func (k *PolyKernel) Compound(shapes []kernel.Shape) (kernel.Shape, error) {
	out := &polyShape{}
	for _, s := range shapes {
		p, err := unwrap(s)
		if err != nil {
			return nil, err
		}
		out.parts = append(out.parts, p.parts...)
	}
	if len(out.parts) == 0 {
		return nil, errors.New("poly: empty compound")
	}
	return out, nil
}

// Clone returns a deep copy of s.
func (k *PolyKernel) Clone(s kernel.Shape) kernel.Shape {
	p, err := unwrap(s)
	if err != nil {
		return s
	}
	out := &polyShape{parts: make([]*solid, len(p.parts))}
	for i, part := range p.parts {
		out.parts[i] = part.clone()
	}
	return out
}

// newell returns the normal of a polygon, oriented by its winding.
func newell(verts [][3]float64, loop []int) [3]float64 {
	var n [3]float64
	for i := range loop {
		a, b := verts[loop[i]], verts[loop[(i+1)%len(loop)]]
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	return taxonomy.Normalize(n)
}

// Mesh triangulates every face exactly; deflection is irrelevant for
// planar faces.
func (k *PolyKernel) Mesh(s kernel.Shape, deflection float64) ([]kernel.Face, error) {
	p, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	var faces []kernel.Face
	for _, part := range p.parts {
		for _, pf := range part.faces {
			n := newell(part.verts, pf.loop)
			f := kernel.Face{
				Shape:    s,
				Surface:  kernel.NewSurface(part.verts[pf.loop[0]], n),
				Reversed: pf.reversed,
			}
			for _, vi := range pf.loop {
				f.Nodes = append(f.Nodes, part.verts[vi])
				f.UVs = append(f.UVs, f.Surface.Parameters(part.verts[vi]))
			}
			tris, err := earClip(f.UVs)
			if err != nil {
				return nil, err
			}
			f.Triangles = tris
			faces = append(faces, f)
		}
	}
	return faces, nil
}

// SurfaceNormal returns the plane normal, flipped for reversed faces.
func (k *PolyKernel) SurfaceNormal(f *kernel.Face, uv [2]float64) ([3]float64, error) {
	n := f.Surface.Normal()
	if f.Reversed {
		n = [3]float64{-n[0], -n[1], -n[2]}
	}
	return n, nil
}

// BooleanSubtract is not available for polyhedra.
func (k *PolyKernel) BooleanSubtract(s kernel.Shape, ops []kernel.Shape) (kernel.Shape, error) {
	return nil, errors.Wrap(errors.ErrNotSupported, "poly: boolean subtraction")
}

// Slice is not available for polyhedra.
func (k *PolyKernel) Slice(s kernel.Shape, axis [3]float64, offsets []float64) ([]kernel.Shape, error) {
	return nil, errors.Wrap(errors.ErrNotSupported, "poly: slicing")
}

// BoundingBox returns the axis-aligned bounds of s.
func (k *PolyKernel) BoundingBox(s kernel.Shape) (kernel.Box, error) {
	p, err := unwrap(s)
	if err != nil {
		return kernel.Box{}, err
	}
	min, max := p.BoundingBox()
	return kernel.Box{Min: min, Max: max}, nil
}

// SurfaceArea returns the total face area.
func (k *PolyKernel) SurfaceArea(s kernel.Shape) (float64, error) {
	faces, err := k.Mesh(s, 0)
	if err != nil {
		return 0, err
	}
	return kernel.MeshArea(faces), nil
}

// Volume returns the enclosed volume.
func (k *PolyKernel) Volume(s kernel.Shape) (float64, error) {
	faces, err := k.Mesh(s, 0)
	if err != nil {
		return 0, err
	}
	return kernel.MeshVolume(faces), nil
}

// ProjectedArea returns the footprint on the XY plane.
func (k *PolyKernel) ProjectedArea(s kernel.Shape) (float64, error) {
	faces, err := k.Mesh(s, 0)
	if err != nil {
		return 0, err
	}
	return kernel.MeshProjectedArea(faces), nil
}
