package element

import (
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"github.com/chazu/ifcgeom/pkg/tessellate"
	"go.uber.org/zap"
)

// ShapeItem is one built item of a representation, positioned relative
// to the element.
type ShapeItem struct {
	ItemID    int
	Placement taxonomy.Matrix4
	Shape     kernel.Shape
	Style     *taxonomy.Style
}

// BRep is the kernel geometry of one representation. It is shared by
// every element whose product uses the same representation and must not
// be modified once published. Kernel is the instance that built the
// shapes; only its read-only operations are used afterwards.
type BRep struct {
	ID       string
	Items    []ShapeItem
	Kernel   kernel.Kernel
	Settings tessellate.Settings
}

// Triangulate meshes every item into a fresh triangulation.
func (b *BRep) Triangulate(log *zap.SugaredLogger) (*tessellate.Triangulation, error) {
	t := tessellate.New(b.ID, b.Settings, log)
	for _, it := range b.Items {
		styleID, err := t.AddStyle(it.Style)
		if err != nil {
			return nil, errors.Wrapf(err, "item #%d style", it.ItemID)
		}
		tessellate.Triangulate(b.Kernel, it.Shape, it.Placement, styleID, t)
	}
	return t, nil
}

// Placed returns every item shape moved by its placement.
func (b *BRep) Placed() ([]kernel.Shape, error) {
	out := make([]kernel.Shape, 0, len(b.Items))
	for _, it := range b.Items {
		s := it.Shape
		if it.Placement.Present() && !it.Placement.IsIdentity() {
			var err error
			if s, err = b.Kernel.Transform(s, it.Placement); err != nil {
				return nil, errors.Wrapf(err, "item #%d placement", it.ItemID)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// Bounds returns the box around all placed items.
func (b *BRep) Bounds() (kernel.Box, error) {
	shapes, err := b.Placed()
	if err != nil {
		return kernel.Box{}, err
	}
	var box kernel.Box
	for i, s := range shapes {
		bb, err := b.Kernel.BoundingBox(s)
		if err != nil {
			return kernel.Box{}, err
		}
		if i == 0 {
			box = bb
			continue
		}
		box.Extend(bb.Min)
		box.Extend(bb.Max)
	}
	if len(shapes) == 0 {
		return box, errors.New("empty representation")
	}
	return box, nil
}

// ItemQuantities are the topological checks of one item. A nil field
// means the kernel cannot answer it.
type ItemQuantities struct {
	ItemID   int
	Manifold *bool
	Genus    *int
}

// Quantities are measured on the placed items, in meters.
type Quantities struct {
	SurfaceArea   float64
	Volume        float64
	ProjectedArea float64
	Items         []ItemQuantities
}

// Measure computes the quantities of b. Operations the kernel reports as
// not supported leave their value unset; other failures are returned.
func (b *BRep) Measure() (*Quantities, error) {
	shapes, err := b.Placed()
	if err != nil {
		return nil, err
	}
	q := &Quantities{}
	for i, s := range shapes {
		area, err := b.Kernel.SurfaceArea(s)
		if err != nil {
			return nil, errors.Wrap(err, "surface area")
		}
		vol, err := b.Kernel.Volume(s)
		if err != nil {
			return nil, errors.Wrap(err, "volume")
		}
		proj, err := b.Kernel.ProjectedArea(s)
		if err != nil {
			return nil, errors.Wrap(err, "projected area")
		}
		q.SurfaceArea += area
		q.Volume += vol
		q.ProjectedArea += proj

		iq := ItemQuantities{ItemID: b.Items[i].ItemID}
		if m, err := b.Kernel.IsManifold(s); err == nil {
			iq.Manifold = &m
		} else if !errors.Is(err, errors.ErrNotSupported) {
			return nil, errors.Wrap(err, "manifold check")
		}
		if g, err := b.Kernel.SurfaceGenus(s); err == nil {
			iq.Genus = &g
		} else if !errors.Is(err, errors.ErrNotSupported) {
			return nil, errors.Wrap(err, "genus")
		}
		q.Items = append(q.Items, iq)
	}
	return q, nil
}
