// Package taxonomy defines the kernel-independent geometric items that
// representations are mapped to before a kernel builds them.
//
// Items form a closed set of variants. Each carries a Kind, and every
// pair of items is ordered by Compare: kind first, then the variant's
// fields in a fixed sequence. The order is used to deduplicate shapes
// and to canonicalize styles into material ids.
package taxonomy

import "fmt"

// Kind discriminates item variants. The declaration order is the sort
// order between kinds.
type Kind int

const (
	KindPoint3 Kind = iota
	KindDirection3
	KindMatrix4
	KindLine
	KindPlane
	KindCircle
	KindEllipse
	KindBSplineCurve
	KindTrimmedCurve
	KindExtrusion
	KindCollection
	KindStyle
)

func (k Kind) String() string {
	switch k {
	case KindPoint3:
		return "point3"
	case KindDirection3:
		return "direction3"
	case KindMatrix4:
		return "matrix4"
	case KindLine:
		return "line"
	case KindPlane:
		return "plane"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	case KindBSplineCurve:
		return "bspline_curve"
	case KindTrimmedCurve:
		return "trimmed_curve"
	case KindExtrusion:
		return "extrusion"
	case KindCollection:
		return "collection"
	case KindStyle:
		return "style"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Item is any taxonomy variant.
type Item interface {
	Kind() Kind
}

// Point3 is a cartesian point.
type Point3 struct {
	X, Y, Z float64
}

func (Point3) Kind() Kind { return KindPoint3 }

// Add returns p + d.
func (p Point3) Add(d Direction3) Point3 {
	return Point3{p.X + d.X, p.Y + d.Y, p.Z + d.Z}
}

// Sub returns the vector from q to p.
func (p Point3) Sub(q Point3) Direction3 {
	return Direction3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Direction3 is a free vector. It is not normalized implicitly.
type Direction3 struct {
	X, Y, Z float64
}

func (Direction3) Kind() Kind { return KindDirection3 }

// Line is an infinite line along the local X axis of Matrix.
type Line struct {
	Matrix Matrix4
}

func (*Line) Kind() Kind { return KindLine }

// Plane is the local XY plane of Matrix.
type Plane struct {
	Matrix Matrix4
}

func (*Plane) Kind() Kind { return KindPlane }

// Circle lies in the local XY plane of Matrix, centered on its origin.
type Circle struct {
	Radius float64
	Matrix Matrix4
}

func (*Circle) Kind() Kind { return KindCircle }

// Ellipse lies in the local XY plane of Matrix. Radius is along local X,
// Radius2 along local Y.
type Ellipse struct {
	Radius  float64
	Radius2 float64
	Matrix  Matrix4
}

func (*Ellipse) Kind() Kind { return KindEllipse }

// BSplineCurve is carried through the pipeline but cannot be ordered.
type BSplineCurve struct {
	Degree         int
	ControlPoints  []Point3
	Knots          []float64
	Multiplicities []int
	Matrix         Matrix4
}

func (*BSplineCurve) Kind() Kind { return KindBSplineCurve }

// TrimParam is one end of a trimmed curve: either a point or a curve
// parameter. Point takes precedence when set.
type TrimParam struct {
	Point *Point3
	Param float64
}

// AtPoint returns a trim at a cartesian point.
func AtPoint(p Point3) TrimParam {
	return TrimParam{Point: &p}
}

// AtParam returns a trim at a curve parameter. Angles are radians.
func AtParam(v float64) TrimParam {
	return TrimParam{Param: v}
}

// index mirrors the variant index: points sort before parameters.
func (t TrimParam) index() int {
	if t.Point != nil {
		return 0
	}
	return 1
}

// TrimmedCurve is a bounded segment of Basis. Without a basis it is the
// straight edge between two point trims.
type TrimmedCurve struct {
	Basis       Item
	Start, End  TrimParam
	Orientation bool // true follows the basis direction
}

func (*TrimmedCurve) Kind() Kind { return KindTrimmedCurve }

// Segment returns a straight edge from a to b.
func Segment(a, b Point3) *TrimmedCurve {
	return &TrimmedCurve{Start: AtPoint(a), End: AtPoint(b), Orientation: true}
}

// Extrusion sweeps the Basis profile along Direction for Depth. The
// profile lives in the local XY plane of Matrix.
type Extrusion struct {
	Basis     Item
	Direction Direction3
	Depth     float64
	Matrix    Matrix4
}

func (*Extrusion) Kind() Kind { return KindExtrusion }

// Collection groups items under a common placement and style. A
// collection of trimmed curves is also how closed profiles are spelled.
type Collection struct {
	Children []Item
	Matrix   Matrix4
	Style    *Style
}

func (*Collection) Kind() Kind { return KindCollection }

// Color is linear RGB in [0,1].
type Color [3]float64

// Style is a surface appearance. Absent optionals sort first.
type Style struct {
	Name         string
	Diffuse      *Color
	Specular     *Color
	Specularity  *float64
	Transparency *float64
}

func (*Style) Kind() Kind { return KindStyle }

// HasTransparency reports whether the style sets a non-zero transparency.
func (s *Style) HasTransparency() bool {
	return s != nil && s.Transparency != nil && *s.Transparency > 0
}

// Float returns a pointer to v, for optional style fields.
func Float(v float64) *float64 {
	return &v
}

// RGB returns a pointer to a color, for optional style fields.
func RGB(r, g, b float64) *Color {
	return &Color{r, g, b}
}
