package taxonomy

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func approx3(a, b [3]float64) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}

func TestAbsentMatrixIsIdentity(t *testing.T) {
	var m Matrix4
	if m.Present() {
		t.Fatal("zero Matrix4 should be absent")
	}
	if !m.IsIdentity() {
		t.Error("absent matrix should act as identity")
	}
	p := [3]float64{1, 2, 3}
	if got := m.Apply(p); got != p {
		t.Errorf("Apply() = %v, want %v", got, p)
	}
	if got := m.Mul(Matrix4{}); got.Present() {
		t.Error("absent * absent should stay absent")
	}
}

func TestMulOrder(t *testing.T) {
	// Rotate 90 degrees about Z, then translate.
	rot := FromAxes(Point3{}, Direction3{0, 1, 0}, Direction3{-1, 0, 0}, Direction3{0, 0, 1})
	tr := Translation(10, 0, 0)
	m := tr.Mul(rot)

	got := m.Apply([3]float64{1, 0, 0})
	want := [3]float64{10, 1, 0}
	if !approx3(got, want) {
		t.Errorf("(T*R).Apply(x) = %v, want %v", got, want)
	}
}

func TestInverse(t *testing.T) {
	m := FromAxes(Point3{3, -2, 5}, Direction3{0, 1, 0}, Direction3{0, 0, 1}, Direction3{1, 0, 0})
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse() reported singular for a rotation")
	}
	p := [3]float64{0.5, 7, -1}
	if got := inv.Apply(m.Apply(p)); !approx3(got, p) {
		t.Errorf("inv(m)(m(p)) = %v, want %v", got, p)
	}

	singular := NewMatrix4([16]float64{})
	if _, ok := singular.Inverse(); ok {
		t.Error("Inverse() of zero matrix should fail")
	}
}

func TestApplyVectorIgnoresTranslation(t *testing.T) {
	m := Translation(5, 5, 5)
	v := [3]float64{0, 0, 1}
	if got := m.ApplyVector(v); got != v {
		t.Errorf("ApplyVector() = %v, want %v", got, v)
	}
}

func TestScaleTranslation(t *testing.T) {
	m := Translation(1000, 2000, 3000).ScaleTranslation(1 / 0.001)
	want := [3]float64{1e6, 2e6, 3e6}
	if got := m.Translation(); !approx3(got, want) {
		t.Errorf("Translation() = %v, want %v", got, want)
	}
}

func TestProfileLoop(t *testing.T) {
	square := &Collection{Children: []Item{
		Segment(Point3{0, 0, 0}, Point3{2, 0, 0}),
		Segment(Point3{2, 0, 0}, Point3{2, 1, 0}),
		Segment(Point3{2, 1, 0}, Point3{0, 1, 0}),
		Segment(Point3{0, 1, 0}, Point3{0, 0, 0}),
	}}
	loop, err := ProfileLoop(square, 0)
	if err != nil {
		t.Fatalf("ProfileLoop(square) error: %v", err)
	}
	if len(loop) != 4 {
		t.Fatalf("ProfileLoop(square) has %d points, want 4", len(loop))
	}
	if a := SignedArea(loop); !approx(a, 2) {
		t.Errorf("SignedArea() = %v, want 2", a)
	}

	circle, err := ProfileLoop(&Circle{Radius: 1}, 64)
	if err != nil {
		t.Fatalf("ProfileLoop(circle) error: %v", err)
	}
	if len(circle) != 64 {
		t.Errorf("ProfileLoop(circle) has %d points, want 64", len(circle))
	}
	if a := SignedArea(circle); math.Abs(a-math.Pi) > 0.01 {
		t.Errorf("circle area = %v, want about pi", a)
	}

	if _, err := ProfileLoop(&Line{}, 0); err == nil {
		t.Error("ProfileLoop(line) should fail")
	}
}
