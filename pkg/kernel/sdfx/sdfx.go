// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Solids are signed
// distance functions; meshes come from marching cubes, so results are
// approximate and carry no topology.
package sdfx

import (
	"math"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Name is the registry name of this backend.
const Name = "sdfx"

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// minMeshCells keeps coarse tolerances from collapsing small parts.
const minMeshCells = 8

func init() {
	kernel.Register(Name, func() (kernel.Kernel, error) { return New(), nil })
}

// sdfxShape wraps an sdf.SDF3 to implement kernel.Shape.
type sdfxShape struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxShape) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	maxCells int
	segments int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMaxCells caps the marching cubes resolution along the longest axis.
func WithMaxCells(n int) Option {
	return func(k *SdfxKernel) { k.maxCells = n }
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{maxCells: defaultMeshCells, segments: taxonomy.DefaultCircleSegments}
	for _, o := range opts {
		o(k)
	}
	if k.maxCells < minMeshCells {
		k.maxCells = minMeshCells
	}
	return k
}

// Name implements kernel.Kernel.
func (k *SdfxKernel) Name() string { return Name }

// unwrap extracts the underlying sdf.SDF3 from a kernel.Shape.
func unwrap(s kernel.Shape) (sdf.SDF3, error) {
	w, ok := s.(*sdfxShape)
	if !ok || w == nil {
		return nil, errors.Newf("sdfx: foreign shape %T", s)
	}
	return w.s, nil
}

// wrap creates a kernel.Shape from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Shape {
	return &sdfxShape{s: s}
}

// Build converts an extrusion, or a collection of them, into an SDF.
func (k *SdfxKernel) Build(item taxonomy.Item) (kernel.Shape, error) {
	s, err := k.build(item)
	if err != nil {
		return nil, err
	}
	return wrap(s), nil
}

func (k *SdfxKernel) build(item taxonomy.Item) (sdf.SDF3, error) {
	switch it := item.(type) {
	case *taxonomy.Extrusion:
		return k.extrude(it)
	case *taxonomy.Collection:
		var parts []sdf.SDF3
		for _, child := range it.Children {
			s, err := k.build(child)
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
		}
		switch len(parts) {
		case 0:
			return nil, errors.New("sdfx: empty collection")
		case 1:
			return transform(parts[0], it.Matrix)
		}
		return transform(sdf.Union3D(parts...), it.Matrix)
	default:
		return nil, errors.Wrapf(errors.ErrNotSupported, "sdfx: cannot build %s", item.Kind())
	}
}

// extrude builds a straight extrusion. sdf.Extrude3D is centered on the
// XY plane, so the result is shifted to start at z = 0.
func (k *SdfxKernel) extrude(e *taxonomy.Extrusion) (sdf.SDF3, error) {
	if e.Depth <= 0 {
		return nil, errors.Newf("sdfx: extrusion depth %g must be positive", e.Depth)
	}
	dir := taxonomy.Normalize([3]float64{e.Direction.X, e.Direction.Y, e.Direction.Z})
	if math.Abs(dir[0]) > 1e-9 || math.Abs(dir[1]) > 1e-9 || dir[2] == 0 {
		return nil, errors.Wrap(errors.ErrNotSupported, "sdfx: oblique extrusion")
	}

	var (
		profile sdf.SDF2
		err     error
		place   taxonomy.Matrix4
	)
	if c, ok := e.Basis.(*taxonomy.Circle); ok {
		profile, err = sdf.Circle2D(c.Radius)
		place = c.Matrix
	} else {
		var loop [][2]float64
		loop, err = taxonomy.ProfileLoop(e.Basis, k.segments)
		if err != nil {
			return nil, err
		}
		vs := make([]v2.Vec, 0, len(loop))
		for _, p := range loop {
			vs = append(vs, v2.Vec{X: p[0], Y: p[1]})
		}
		profile, err = sdf.Polygon2D(vs)
	}
	if err != nil {
		return nil, errors.Wrap(err, "sdfx: profile")
	}

	shift := e.Depth / 2
	if dir[2] < 0 {
		shift = -shift
	}
	s, err := transform(sdf.Extrude3D(profile, e.Depth), taxonomy.Translation(0, 0, shift))
	if err != nil {
		return nil, err
	}
	if place.Present() {
		if s, err = transform(s, place); err != nil {
			return nil, err
		}
	}
	return transform(s, e.Matrix)
}

// Transform returns s moved by m.
func (k *SdfxKernel) Transform(s kernel.Shape, m taxonomy.Matrix4) (kernel.Shape, error) {
	u, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	t, err := transform(u, m)
	if err != nil {
		return nil, err
	}
	return wrap(t), nil
}

// Clone returns s; SDFs are immutable and safe to share.
func (k *SdfxKernel) Clone(s kernel.Shape) kernel.Shape {
	u, err := unwrap(s)
	if err != nil {
		return s
	}
	return wrap(u)
}

// Compound returns the union of shapes.
func (k *SdfxKernel) Compound(shapes []kernel.Shape) (kernel.Shape, error) {
	parts := make([]sdf.SDF3, 0, len(shapes))
	for _, s := range shapes {
		u, err := unwrap(s)
		if err != nil {
			return nil, err
		}
		parts = append(parts, u)
	}
	switch len(parts) {
	case 0:
		return nil, errors.New("sdfx: empty compound")
	case 1:
		return wrap(parts[0]), nil
	}
	return wrap(sdf.Union3D(parts...)), nil
}

// BooleanSubtract returns s minus the union of ops.
func (k *SdfxKernel) BooleanSubtract(s kernel.Shape, ops []kernel.Shape) (kernel.Shape, error) {
	base, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return s, nil
	}
	tools := make([]sdf.SDF3, 0, len(ops))
	for _, o := range ops {
		t, err := unwrap(o)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	tool := tools[0]
	if len(tools) > 1 {
		tool = sdf.Union3D(tools...)
	}
	return wrap(sdf.Difference3D(base, tool)), nil
}

// Slice cuts s with planes perpendicular to axis at the given offsets and
// returns len(offsets)+1 pieces ordered along the axis.
func (k *SdfxKernel) Slice(s kernel.Shape, axis [3]float64, offsets []float64) ([]kernel.Shape, error) {
	base, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	axis = taxonomy.Normalize(axis)
	if taxonomy.Dot(axis, axis) == 0 {
		return nil, errors.New("sdfx: zero slicing axis")
	}
	bounds := append([]float64{math.Inf(-1)}, offsets...)
	bounds = append(bounds, math.Inf(1))
	pieces := make([]kernel.Shape, 0, len(offsets)+1)
	for i := 0; i+1 < len(bounds); i++ {
		if bounds[i+1] < bounds[i] {
			return nil, errors.Newf("sdfx: slice offsets must ascend, got %v", offsets)
		}
		slab := &slabSDF{axis: axis, lo: bounds[i], hi: bounds[i+1], bb: base.BoundingBox()}
		pieces = append(pieces, wrap(sdf.Intersect3D(base, slab)))
	}
	return pieces, nil
}

// IsManifold is not available: marching cubes output is a triangle soup.
func (k *SdfxKernel) IsManifold(s kernel.Shape) (bool, error) {
	return false, errors.Wrap(errors.ErrNotSupported, "sdfx: manifold check")
}

// SurfaceGenus is not available: marching cubes output is a triangle soup.
func (k *SdfxKernel) SurfaceGenus(s kernel.Shape) (int, error) {
	return 0, errors.Wrap(errors.ErrNotSupported, "sdfx: surface genus")
}

// BoundingBox returns the SDF bounds.
func (k *SdfxKernel) BoundingBox(s kernel.Shape) (kernel.Box, error) {
	u, err := unwrap(s)
	if err != nil {
		return kernel.Box{}, err
	}
	bb := u.BoundingBox()
	return kernel.Box{
		Min: [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z},
		Max: [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z},
	}, nil
}

// SurfaceArea measures the finest mesh.
func (k *SdfxKernel) SurfaceArea(s kernel.Shape) (float64, error) {
	faces, err := k.Mesh(s, 0)
	if err != nil {
		return 0, err
	}
	return kernel.MeshArea(faces), nil
}

// Volume measures the finest mesh.
func (k *SdfxKernel) Volume(s kernel.Shape) (float64, error) {
	faces, err := k.Mesh(s, 0)
	if err != nil {
		return 0, err
	}
	return kernel.MeshVolume(faces), nil
}

// ProjectedArea measures the finest mesh.
func (k *SdfxKernel) ProjectedArea(s kernel.Shape) (float64, error) {
	faces, err := k.Mesh(s, 0)
	if err != nil {
		return 0, err
	}
	return kernel.MeshProjectedArea(faces), nil
}

func vec(p [3]float64) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
