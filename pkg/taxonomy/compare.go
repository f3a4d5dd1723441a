package taxonomy

import (
	"cmp"
	"slices"

	"github.com/chazu/ifcgeom/pkg/errors"
)

// Compare orders two items: kind first, then variant fields in a fixed
// sequence. It returns -1, 0 or +1. Comparing b-spline curves of equal
// kind fails with errors.ErrNotSupported; such a pair is never treated as
// equal.
func Compare(a, b Item) (int, error) {
	if a == nil || b == nil {
		return 0, errors.New("taxonomy: compare of nil item")
	}
	if ka, kb := a.Kind(), b.Kind(); ka != kb {
		return cmp.Compare(ka, kb), nil
	}

	switch x := a.(type) {
	case Point3:
		return comparePoint(x, b.(Point3)), nil
	case Direction3:
		y := b.(Direction3)
		return compareTriple([3]float64{x.X, x.Y, x.Z}, [3]float64{y.X, y.Y, y.Z}), nil
	case Matrix4:
		return compareMatrix(x, b.(Matrix4)), nil
	case *Line:
		return compareMatrix(x.Matrix, b.(*Line).Matrix), nil
	case *Plane:
		return compareMatrix(x.Matrix, b.(*Plane).Matrix), nil
	case *Circle:
		y := b.(*Circle)
		if c := cmp.Compare(x.Radius, y.Radius); c != 0 {
			return c, nil
		}
		return compareMatrix(x.Matrix, y.Matrix), nil
	case *Ellipse:
		y := b.(*Ellipse)
		if c := cmp.Compare(x.Radius, y.Radius); c != 0 {
			return c, nil
		}
		if c := cmp.Compare(x.Radius2, y.Radius2); c != 0 {
			return c, nil
		}
		return compareMatrix(x.Matrix, y.Matrix), nil
	case *BSplineCurve:
		return 0, errors.Wrap(errors.ErrNotSupported, "taxonomy: ordering of bspline curves")
	case *TrimmedCurve:
		return compareTrimmed(x, b.(*TrimmedCurve))
	case *Extrusion:
		return compareExtrusion(x, b.(*Extrusion))
	case *Collection:
		return compareCollection(x, b.(*Collection))
	case *Style:
		return compareStyle(x, b.(*Style)), nil
	default:
		return 0, errors.Newf("taxonomy: compare of unknown item type %T", a)
	}
}

// Less reports whether a sorts strictly before b.
func Less(a, b Item) (bool, error) {
	c, err := Compare(a, b)
	return c < 0, err
}

// Equal reports structural equality: neither item sorts before the other.
func Equal(a, b Item) (bool, error) {
	c, err := Compare(a, b)
	return c == 0 && err == nil, err
}

// Sort orders items in place, stably. The first comparison error aborts
// the result; the slice order is then unspecified.
func Sort(items []Item) error {
	var firstErr error
	slices.SortStableFunc(items, func(a, b Item) int {
		c, err := Compare(a, b)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return c
	})
	return firstErr
}

func comparePoint(a, b Point3) int {
	return compareTriple([3]float64{a.X, a.Y, a.Z}, [3]float64{b.X, b.Y, b.Z})
}

func compareTriple(a, b [3]float64) int {
	for i := range a {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compareMatrix puts absent before present, then compares components
// lexicographically.
func compareMatrix(a, b Matrix4) int {
	if a.present != b.present {
		if !a.present {
			return -1
		}
		return 1
	}
	if !a.present {
		return 0
	}
	for i := range a.c {
		if c := cmp.Compare(a.c[i], b.c[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareTrim(a, b TrimParam) int {
	if a.Point != nil {
		return comparePoint(*a.Point, *b.Point)
	}
	return cmp.Compare(a.Param, b.Param)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareTrimmed(a, b *TrimmedCurve) (int, error) {
	if c := compareBool(a.Orientation, b.Orientation); c != 0 {
		return c, nil
	}
	if c := cmp.Compare(a.Start.index(), b.Start.index()); c != 0 {
		return c, nil
	}
	if c := cmp.Compare(a.End.index(), b.End.index()); c != 0 {
		return c, nil
	}
	if c := compareTrim(a.Start, b.Start); c != 0 {
		return c, nil
	}
	if c := compareTrim(a.End, b.End); c != 0 {
		return c, nil
	}
	if c := compareBool(a.Basis != nil, b.Basis != nil); c != 0 {
		return c, nil
	}
	if a.Basis == nil {
		return 0, nil
	}
	return Compare(a.Basis, b.Basis)
}

func compareExtrusion(a, b *Extrusion) (int, error) {
	c, err := compareOptionalItem(a.Basis, b.Basis)
	if err != nil || c != 0 {
		return c, err
	}
	d1 := [3]float64{a.Direction.X, a.Direction.Y, a.Direction.Z}
	d2 := [3]float64{b.Direction.X, b.Direction.Y, b.Direction.Z}
	if c := compareTriple(d1, d2); c != 0 {
		return c, nil
	}
	if c := cmp.Compare(a.Depth, b.Depth); c != 0 {
		return c, nil
	}
	return compareMatrix(a.Matrix, b.Matrix), nil
}

func compareCollection(a, b *Collection) (int, error) {
	if c := cmp.Compare(len(a.Children), len(b.Children)); c != 0 {
		return c, nil
	}
	for i := range a.Children {
		c, err := Compare(a.Children[i], b.Children[i])
		if err != nil || c != 0 {
			return c, err
		}
	}
	if c := compareMatrix(a.Matrix, b.Matrix); c != 0 {
		return c, nil
	}
	if c := compareBool(a.Style != nil, b.Style != nil); c != 0 {
		return c, nil
	}
	if a.Style == nil {
		return 0, nil
	}
	return compareStyle(a.Style, b.Style), nil
}

func compareOptionalItem(a, b Item) (int, error) {
	if c := compareBool(a != nil, b != nil); c != 0 {
		return c, nil
	}
	if a == nil {
		return 0, nil
	}
	return Compare(a, b)
}

func compareStyle(a, b *Style) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := compareOptional(a.Diffuse, b.Diffuse, compareColor); c != 0 {
		return c
	}
	if c := compareOptional(a.Specular, b.Specular, compareColor); c != 0 {
		return c
	}
	if c := compareOptional(a.Specularity, b.Specularity, cmpFloat); c != 0 {
		return c
	}
	return compareOptional(a.Transparency, b.Transparency, cmpFloat)
}

func compareColor(a, b Color) int {
	return compareTriple(a, b)
}

func cmpFloat(a, b float64) int {
	return cmp.Compare(a, b)
}

// compareOptional puts absent before present.
func compareOptional[T any](a, b *T, f func(T, T) int) int {
	if c := compareBool(a != nil, b != nil); c != 0 {
		return c
	}
	if a == nil {
		return 0
	}
	return f(*a, *b)
}
