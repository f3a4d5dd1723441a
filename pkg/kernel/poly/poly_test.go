package poly

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// polyline returns a closed profile through pts.
func polyline(pts ...[2]float64) *taxonomy.Collection {
	c := &taxonomy.Collection{}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		c.Children = append(c.Children, taxonomy.Segment(
			taxonomy.Point3{X: a[0], Y: a[1]}, taxonomy.Point3{X: b[0], Y: b[1]}))
	}
	return c
}

func rect(w, h float64) *taxonomy.Collection {
	return polyline([2]float64{0, 0}, [2]float64{w, 0}, [2]float64{w, h}, [2]float64{0, h})
}

func extrusion(profile taxonomy.Item, depth float64) *taxonomy.Extrusion {
	return &taxonomy.Extrusion{Basis: profile, Direction: taxonomy.Direction3{Z: 1}, Depth: depth}
}

func mustBuild(t *testing.T, k *PolyKernel, item taxonomy.Item) kernel.Shape {
	t.Helper()
	s, err := k.Build(item)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return s
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestBoxMeasures(t *testing.T) {
	k := New()
	box := mustBuild(t, k, extrusion(rect(2, 3), 4))

	vol, err := k.Volume(box)
	if err != nil || !near(vol, 24, 1e-9) {
		t.Errorf("Volume() = %v, %v; want 24", vol, err)
	}
	area, err := k.SurfaceArea(box)
	if err != nil || !near(area, 52, 1e-9) {
		t.Errorf("SurfaceArea() = %v, %v; want 52", area, err)
	}
	proj, err := k.ProjectedArea(box)
	if err != nil || !near(proj, 6, 1e-9) {
		t.Errorf("ProjectedArea() = %v, %v; want 6", proj, err)
	}

	bb, err := k.BoundingBox(box)
	if err != nil {
		t.Fatalf("BoundingBox() failed: %v", err)
	}
	if bb.Min != [3]float64{0, 0, 0} || bb.Max != [3]float64{2, 3, 4} {
		t.Errorf("BoundingBox() = %+v", bb)
	}

	ok, err := k.IsManifold(box)
	if err != nil || !ok {
		t.Errorf("IsManifold() = %v, %v; want true", ok, err)
	}
	g, err := k.SurfaceGenus(box)
	if err != nil || g != 0 {
		t.Errorf("SurfaceGenus() = %v, %v; want 0", g, err)
	}
}

func TestMeshFaces(t *testing.T) {
	k := New()
	box := mustBuild(t, k, extrusion(rect(1, 1), 1))
	faces, err := k.Mesh(box, 1e-3)
	if err != nil {
		t.Fatalf("Mesh() failed: %v", err)
	}
	if len(faces) != 6 {
		t.Fatalf("len(faces) = %d, want 6", len(faces))
	}
	tris := 0
	reversed := 0
	for i := range faces {
		f := &faces[i]
		tris += f.TriangleCount()
		n, err := k.SurfaceNormal(f, f.UVs[0])
		if err != nil {
			t.Fatalf("SurfaceNormal() failed: %v", err)
		}
		if f.Reversed {
			reversed++
			if !near(n[2], -1, 1e-12) {
				t.Errorf("reversed face normal = %v, want -Z", n)
			}
		}
	}
	if tris != 12 {
		t.Errorf("triangles = %d, want 12", tris)
	}
	if reversed != 1 {
		t.Errorf("reversed faces = %d, want 1 (bottom cap)", reversed)
	}
}

func TestLShape(t *testing.T) {
	k := New()
	profile := polyline(
		[2]float64{0, 0}, [2]float64{5, 0}, [2]float64{5, 2},
		[2]float64{2, 2}, [2]float64{2, 4}, [2]float64{0, 4},
		[2]float64{0, 0}, // closing point repeated
	)
	slab := mustBuild(t, k, extrusion(profile, 0.2))
	vol, err := k.Volume(slab)
	if err != nil || !near(vol, 14*0.2, 1e-9) {
		t.Errorf("Volume() = %v, %v; want 2.8", vol, err)
	}
	proj, _ := k.ProjectedArea(slab)
	if !near(proj, 14, 1e-9) {
		t.Errorf("ProjectedArea() = %v, want 14", proj)
	}
}

func TestClockwiseProfile(t *testing.T) {
	k := New()
	cw := polyline([2]float64{0, 0}, [2]float64{0, 1}, [2]float64{1, 1}, [2]float64{1, 0})
	s := mustBuild(t, k, extrusion(cw, 1))
	vol, _ := k.Volume(s)
	if !near(vol, 1, 1e-9) {
		t.Errorf("Volume() = %v, want 1", vol)
	}
}

func TestCircleProfile(t *testing.T) {
	k := New(WithSegments(64))
	col := mustBuild(t, k, extrusion(&taxonomy.Circle{Radius: 0.15}, 2.8))
	vol, err := k.Volume(col)
	if err != nil {
		t.Fatalf("Volume() failed: %v", err)
	}
	want := math.Pi * 0.15 * 0.15 * 2.8
	if math.Abs(vol-want)/want > 0.01 {
		t.Errorf("Volume() = %v, want about %v", vol, want)
	}
}

func TestObliqueExtrusion(t *testing.T) {
	k := New()
	e := &taxonomy.Extrusion{
		Basis:     rect(2, 3),
		Direction: taxonomy.Direction3{Y: 1, Z: 1},
		Depth:     math.Sqrt2,
	}
	s := mustBuild(t, k, e)
	vol, _ := k.Volume(s)
	if !near(vol, 6, 1e-9) {
		t.Errorf("Volume() = %v, want 6", vol)
	}
	_, max := s.BoundingBox()
	if !near(max[1], 4, 1e-9) || !near(max[2], 1, 1e-9) {
		t.Errorf("BoundingBox max = %v, want y=4 z=1", max)
	}
}

func TestPlacementAndMirror(t *testing.T) {
	k := New()
	e := extrusion(rect(1, 2), 3)
	e.Matrix = taxonomy.Translation(10, 0, 0)
	s := mustBuild(t, k, e)
	min, _ := s.BoundingBox()
	if min[0] != 10 {
		t.Errorf("min x = %v, want 10", min[0])
	}

	mirror := taxonomy.NewMatrix4([16]float64{
		-1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	m, err := k.Transform(s, mirror)
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}
	vol, _ := k.Volume(m)
	if !near(vol, 6, 1e-9) {
		t.Errorf("Volume(mirrored) = %v, want 6", vol)
	}
	if ok, _ := k.IsManifold(m); !ok {
		t.Error("mirrored shape is not manifold")
	}
	// The original is untouched.
	min, _ = s.BoundingBox()
	if min[0] != 10 {
		t.Errorf("Transform() mutated its input")
	}
}

func TestCollection(t *testing.T) {
	k := New()
	a := extrusion(rect(1, 1), 1)
	b := extrusion(rect(1, 1), 1)
	b.Matrix = taxonomy.Translation(5, 0, 0)
	s := mustBuild(t, k, &taxonomy.Collection{Children: []taxonomy.Item{a, b}, Matrix: taxonomy.Translation(0, 0, 1)})

	vol, _ := k.Volume(s)
	if !near(vol, 2, 1e-9) {
		t.Errorf("Volume() = %v, want 2", vol)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 1} || max != [3]float64{6, 1, 2} {
		t.Errorf("BoundingBox() = %v %v", min, max)
	}
	if g, err := k.SurfaceGenus(s); err != nil || g != 0 {
		t.Errorf("SurfaceGenus() = %v, %v", g, err)
	}
}

func TestClone(t *testing.T) {
	k := New()
	s := mustBuild(t, k, extrusion(rect(1, 1), 1))
	c := k.Clone(s)
	s.(*polyShape).parts[0].verts[0] = [3]float64{-5, -5, -5}
	min, _ := c.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Clone() shares vertices: min = %v", min)
	}
}

func TestNotSupported(t *testing.T) {
	k := New()
	s := mustBuild(t, k, extrusion(rect(1, 1), 1))

	if _, err := k.BooleanSubtract(s, []kernel.Shape{s}); !errors.Is(err, errors.ErrNotSupported) {
		t.Errorf("BooleanSubtract() error = %v, want ErrNotSupported", err)
	}
	if _, err := k.Slice(s, [3]float64{0, 0, 1}, []float64{0.5}); !errors.Is(err, errors.ErrNotSupported) {
		t.Errorf("Slice() error = %v, want ErrNotSupported", err)
	}
	if _, err := k.Build(&taxonomy.Circle{Radius: 1}); !errors.Is(err, errors.ErrNotSupported) {
		t.Errorf("Build(circle) error = %v, want ErrNotSupported", err)
	}
}

func TestBuildErrors(t *testing.T) {
	k := New()
	tests := []struct {
		name string
		item *taxonomy.Extrusion
	}{
		{"zero depth", extrusion(rect(1, 1), 0)},
		{"direction in profile plane", &taxonomy.Extrusion{Basis: rect(1, 1), Direction: taxonomy.Direction3{X: 1}, Depth: 1}},
		{"degenerate profile", extrusion(polyline([2]float64{0, 0}, [2]float64{1, 0}), 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := k.Build(tt.item); err == nil {
				t.Error("Build() succeeded, want error")
			}
		})
	}
}

func TestSerializeOFF(t *testing.T) {
	k := New()
	s := mustBuild(t, k, extrusion(rect(1, 1), 1))
	data, ext, err := k.Serialize(s)
	if err != nil {
		t.Fatalf("Serialize() failed: %v", err)
	}
	if ext != "off" {
		t.Errorf("ext = %q, want off", ext)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "OFF" || lines[1] != "8 6 0" {
		t.Errorf("header = %q %q", lines[0], lines[1])
	}
	if len(lines) != 2+8+6 {
		t.Errorf("len(lines) = %d, want 16", len(lines))
	}
}

func TestEarClip(t *testing.T) {
	tests := []struct {
		name string
		pts  [][2]float64
		want int
	}{
		{"triangle", [][2]float64{{0, 0}, {1, 0}, {0, 1}}, 1},
		{"square", [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, 2},
		{"L shape", [][2]float64{{0, 0}, {5, 0}, {5, 2}, {2, 2}, {2, 4}, {0, 4}}, 4},
		{"collinear midpoint", [][2]float64{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {0, 1}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris, err := earClip(tt.pts)
			if err != nil {
				t.Fatalf("earClip() failed: %v", err)
			}
			if len(tris) != tt.want {
				t.Errorf("len(tris) = %d, want %d", len(tris), tt.want)
			}
			var area float64
			for _, tr := range tris {
				area += cross2(tt.pts[tr[0]], tt.pts[tr[1]], tt.pts[tr[2]]) / 2
			}
			if !near(area, taxonomy.SignedArea(tt.pts), 1e-12) {
				t.Errorf("triangulated area = %v, want %v", area, taxonomy.SignedArea(tt.pts))
			}
		})
	}
}

func TestCompound(t *testing.T) {
	k := New()
	a := mustBuild(t, k, extrusion(rect(1, 1), 1))
	b, err := k.Transform(a, taxonomy.Translation(3, 0, 0))
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}
	c, err := k.Compound([]kernel.Shape{a, b})
	if err != nil {
		t.Fatalf("Compound() failed: %v", err)
	}
	vol, _ := k.Volume(c)
	if !near(vol, 2, 1e-9) {
		t.Errorf("Volume() = %v, want 2", vol)
	}
	if _, err := k.Compound(nil); err == nil {
		t.Error("Compound(nil) succeeded")
	}
}
