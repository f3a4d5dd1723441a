package kernel

import (
	"math"
	"testing"

	"github.com/chazu/ifcgeom/pkg/errors"
)

// unitCube returns the six faces of [0,1]^3. The bottom face is stored
// with an upward surface and marked reversed.
func unitCube() []Face {
	quad := func(s Surface, reversed bool) Face {
		f := Face{Surface: s, Reversed: reversed}
		for _, uv := range [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
			f.Nodes = append(f.Nodes, s.Point(uv))
			f.UVs = append(f.UVs, uv)
		}
		f.Triangles = [][3]int{{0, 1, 2}, {0, 2, 3}}
		return f
	}
	return []Face{
		quad(Surface{Origin: [3]float64{0, 0, 1}, U: [3]float64{1, 0, 0}, V: [3]float64{0, 1, 0}}, false), // top
		quad(Surface{Origin: [3]float64{0, 0, 0}, U: [3]float64{1, 0, 0}, V: [3]float64{0, 1, 0}}, true),  // bottom
		quad(Surface{Origin: [3]float64{0, 0, 0}, U: [3]float64{0, 1, 0}, V: [3]float64{0, 0, 1}}, true),  // x=0
		quad(Surface{Origin: [3]float64{1, 0, 0}, U: [3]float64{0, 1, 0}, V: [3]float64{0, 0, 1}}, false), // x=1
		quad(Surface{Origin: [3]float64{0, 0, 0}, U: [3]float64{1, 0, 0}, V: [3]float64{0, 0, 1}}, false), // y=0
		quad(Surface{Origin: [3]float64{0, 1, 0}, U: [3]float64{1, 0, 0}, V: [3]float64{0, 0, 1}}, true),  // y=1
	}
}

func TestMeshMeasures(t *testing.T) {
	faces := unitCube()
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"area", MeshArea(faces), 6},
		{"volume", MeshVolume(faces), 1},
		{"projected", MeshProjectedArea(faces), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-12 {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestSurface(t *testing.T) {
	s := NewSurface([3]float64{1, 2, 3}, [3]float64{0, 0, 2})
	n := s.Normal()
	if math.Abs(n[2]-1) > 1e-12 {
		t.Errorf("Normal() = %v, want +Z", n)
	}
	p := [3]float64{4, -1, 3}
	uv := s.Parameters(p)
	back := s.Point(uv)
	for i := range p {
		if math.Abs(back[i]-p[i]) > 1e-12 {
			t.Fatalf("Point(Parameters(%v)) = %v", p, back)
		}
	}
}

func TestBoxExtend(t *testing.T) {
	b := Box{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 1}}
	b.Extend([3]float64{-1, 0.5, 2})
	if b.Min != [3]float64{-1, 0, 0} || b.Max != [3]float64{1, 1, 2} {
		t.Errorf("Extend() = %+v", b)
	}
}

func TestBoxCorners(t *testing.T) {
	b := Box{Min: [3]float64{0, 0, -1}, Max: [3]float64{2, 3, 1}}
	c := b.Corners()
	if c[0] != b.Min || c[7] != b.Max {
		t.Errorf("Corners() ends = %v, %v", c[0], c[7])
	}
	if c[5] != [3]float64{2, 0, 1} {
		t.Errorf("Corners()[5] = %v, want [2 0 1]", c[5])
	}
}

func TestFaceCounts(t *testing.T) {
	f := unitCube()[0]
	if f.NodeCount() != 4 || f.TriangleCount() != 2 || f.IsEmpty() {
		t.Errorf("counts = %d/%d empty=%v", f.NodeCount(), f.TriangleCount(), f.IsEmpty())
	}
	if !(&Face{}).IsEmpty() {
		t.Error("IsEmpty() = false for empty face, want true")
	}
}

func TestRegistry(t *testing.T) {
	Register("test-null", func() (Kernel, error) { return nil, errors.ErrNotSupported })

	found := false
	for _, n := range Names() {
		if n == "test-null" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Names() = %v, missing test-null", Names())
	}

	if _, err := New("test-null"); !errors.Is(err, errors.ErrNotSupported) {
		t.Errorf("New(test-null) error = %v, want ErrNotSupported", err)
	}
	if _, err := New("nope"); !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("New(nope) error = %v, want ErrInvalidConfig", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("second Register did not panic")
		}
	}()
	Register("test-null", nil)
}
