package element

import (
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/tessellate"
	"go.uber.org/zap"
)

// Stage is a conversion result: *Native, *Triangulated or *Serialized.
type Stage interface {
	Base() *Element
	stage()
}

// Native holds the kernel geometry of an element.
type Native struct {
	*Element
	Geometry   *BRep
	Quantities *Quantities
}

// Triangulated holds the mesh of an element.
type Triangulated struct {
	*Element
	Geometry *tessellate.Triangulation
}

// Serialized holds a kernel-specific encoding of an element's geometry.
// Ext is the file extension of the encoding.
type Serialized struct {
	*Element
	Geometry []byte
	Ext      string
}

func (*Native) stage()       {}
func (*Triangulated) stage() {}
func (*Serialized) stage()   {}

var (
	_ Stage = (*Native)(nil)
	_ Stage = (*Triangulated)(nil)
	_ Stage = (*Serialized)(nil)
)

// NewNative pairs an element with its shared geometry.
func NewNative(e *Element, geometry *BRep) *Native {
	return &Native{Element: e, Geometry: geometry}
}

// NewTriangulated meshes the geometry of n.
func NewTriangulated(n *Native, log *zap.SugaredLogger) (*Triangulated, error) {
	t, err := n.Geometry.Triangulate(log)
	if err != nil {
		return nil, errors.Wrapf(err, "triangulate %s", n.UniqueID)
	}
	return NewTriangulatedFrom(n.Element, t), nil
}

// NewTriangulatedFrom pairs a copy of e with an existing mesh, typically
// one cached for a shared representation.
func NewTriangulatedFrom(e *Element, t *tessellate.Triangulation) *Triangulated {
	c := *e
	return &Triangulated{Element: &c, Geometry: t}
}

// NewSerialized encodes the geometry of n with its kernel. Several items
// are combined into one compound first.
func NewSerialized(n *Native) (*Serialized, error) {
	b := n.Geometry
	shapes, err := b.Placed()
	if err != nil {
		return nil, err
	}
	var shape kernel.Shape
	switch len(shapes) {
	case 0:
		return nil, errors.Newf("%s: nothing to serialize", n.UniqueID)
	case 1:
		shape = shapes[0]
	default:
		if shape, err = b.Kernel.Compound(shapes); err != nil {
			return nil, errors.Wrapf(err, "compound %s", n.UniqueID)
		}
	}
	data, ext, err := b.Kernel.Serialize(shape)
	if err != nil {
		return nil, errors.Wrapf(err, "serialize %s", n.UniqueID)
	}
	c := *n.Element
	return &Serialized{Element: &c, Geometry: data, Ext: ext}, nil
}
