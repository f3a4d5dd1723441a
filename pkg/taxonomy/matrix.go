package taxonomy

import "math"

// Matrix4 is a column-major 4x4 affine transform. The zero value is the
// absent matrix: it behaves as identity and sorts before any present
// matrix, including an explicit identity.
type Matrix4 struct {
	c       [16]float64
	present bool
}

func (Matrix4) Kind() Kind { return KindMatrix4 }

var identity = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// NewMatrix4 returns a present matrix from column-major components.
func NewMatrix4(c [16]float64) Matrix4 {
	return Matrix4{c: c, present: true}
}

// Identity returns a present identity matrix.
func Identity() Matrix4 {
	return NewMatrix4(identity)
}

// Translation returns a present pure translation.
func Translation(x, y, z float64) Matrix4 {
	c := identity
	c[12], c[13], c[14] = x, y, z
	return NewMatrix4(c)
}

// FromAxes builds a placement whose columns are the given axes and origin.
func FromAxes(origin Point3, x, y, z Direction3) Matrix4 {
	return NewMatrix4([16]float64{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		origin.X, origin.Y, origin.Z, 1,
	})
}

// Present reports whether the matrix was set explicitly.
func (m Matrix4) Present() bool { return m.present }

// Components returns the column-major components, identity when absent.
func (m Matrix4) Components() [16]float64 {
	if !m.present {
		return identity
	}
	return m.c
}

// At returns the component in the given row and column.
func (m Matrix4) At(row, col int) float64 {
	c := m.Components()
	return c[col*4+row]
}

// IsIdentity reports whether the matrix acts as identity.
func (m Matrix4) IsIdentity() bool {
	return m.Components() == identity
}

// Mul returns m*n, so n is applied first. The product of two absent
// matrices stays absent.
func (m Matrix4) Mul(n Matrix4) Matrix4 {
	if !m.present && !n.present {
		return Matrix4{}
	}
	if !m.present {
		return n
	}
	if !n.present {
		return m
	}
	var r [16]float64
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += m.c[k*4+row] * n.c[col*4+k]
			}
			r[col*4+row] = s
		}
	}
	return NewMatrix4(r)
}

// Inverse returns the inverse of an affine matrix. ok is false when the
// linear part is singular.
func (m Matrix4) Inverse() (inv Matrix4, ok bool) {
	if !m.present {
		return Matrix4{}, true
	}
	c := m.c
	a, b, d := c[0], c[4], c[8]
	e, f, g := c[1], c[5], c[9]
	h, i, j := c[2], c[6], c[10]

	det := a*(f*j-g*i) - b*(e*j-g*h) + d*(e*i-f*h)
	if math.Abs(det) < 1e-15 {
		return Matrix4{}, false
	}
	inv3 := [9]float64{
		(f*j - g*i) / det, (d*i - b*j) / det, (b*g - d*f) / det,
		(g*h - e*j) / det, (a*j - d*h) / det, (d*e - a*g) / det,
		(e*i - f*h) / det, (b*h - a*i) / det, (a*f - b*e) / det,
	}
	tx, ty, tz := c[12], c[13], c[14]
	var r [16]float64
	// inv3 is row-major.
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r[col*4+row] = inv3[row*3+col]
		}
		r[12+row] = -(inv3[row*3]*tx + inv3[row*3+1]*ty + inv3[row*3+2]*tz)
	}
	r[15] = 1
	return NewMatrix4(r), true
}

// Apply transforms a point.
func (m Matrix4) Apply(p [3]float64) [3]float64 {
	if !m.present {
		return p
	}
	c := m.c
	return [3]float64{
		c[0]*p[0] + c[4]*p[1] + c[8]*p[2] + c[12],
		c[1]*p[0] + c[5]*p[1] + c[9]*p[2] + c[13],
		c[2]*p[0] + c[6]*p[1] + c[10]*p[2] + c[14],
	}
}

// ApplyVector transforms a direction by the linear 3x3 part only.
func (m Matrix4) ApplyVector(v [3]float64) [3]float64 {
	if !m.present {
		return v
	}
	c := m.c
	return [3]float64{
		c[0]*v[0] + c[4]*v[1] + c[8]*v[2],
		c[1]*v[0] + c[5]*v[1] + c[9]*v[2],
		c[2]*v[0] + c[6]*v[1] + c[10]*v[2],
	}
}

// TransformPoint applies the matrix to a taxonomy point.
func (m Matrix4) TransformPoint(p Point3) Point3 {
	r := m.Apply([3]float64{p.X, p.Y, p.Z})
	return Point3{r[0], r[1], r[2]}
}

// Translation returns the translation column.
func (m Matrix4) Translation() [3]float64 {
	c := m.Components()
	return [3]float64{c[12], c[13], c[14]}
}

// WithTranslation returns a present copy with the translation replaced.
func (m Matrix4) WithTranslation(t [3]float64) Matrix4 {
	c := m.Components()
	c[12], c[13], c[14] = t[0], t[1], t[2]
	return NewMatrix4(c)
}

// ScaleTranslation multiplies the translation column by f. Passing the
// reciprocal of the unit magnitude expresses a placement in the file's
// own length unit again.
func (m Matrix4) ScaleTranslation(f float64) Matrix4 {
	t := m.Translation()
	return m.WithTranslation([3]float64{t[0] * f, t[1] * f, t[2] * f})
}

// Normalize returns v scaled to unit length, or v unchanged when its
// length is zero.
func Normalize(v [3]float64) [3]float64 {
	l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return [3]float64{v[0] / l, v[1] / l, v[2] / l}
}

// Cross returns a x b.
func Cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Dot returns a . b.
func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
