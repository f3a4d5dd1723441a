package element

import "github.com/chazu/ifcgeom/pkg/taxonomy"

// Transformation is the placement of an element in the model. Matrix is
// in meters unless it was built with convertBack, in which case the
// translation is expressed in file units.
type Transformation struct {
	Matrix taxonomy.Matrix4
}

// NewTransformation wraps m. With convertBack set, translation components
// are divided by the length-unit magnitude.
func NewTransformation(m taxonomy.Matrix4, convertBack bool, magnitude float64) Transformation {
	if convertBack && magnitude != 0 && magnitude != 1 {
		m = m.ScaleTranslation(1 / magnitude)
	}
	return Transformation{Matrix: m}
}

// Apply maps a point from element space into model space.
func (t Transformation) Apply(p [3]float64) [3]float64 {
	return t.Matrix.Apply(p)
}
