package geom

import (
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// cutter is an opening item positioned in the frame of the product it
// voids.
type cutter struct {
	openingID int
	placement taxonomy.Matrix4
	shape     kernel.Shape
}

// openings builds the geometry of every IfcOpeningElement voiding
// product. Openings that cannot be built are logged and ignored.
func (c *Converter) openings(product *ifc.Entity, place taxonomy.Matrix4) []cutter {
	rels := c.file.Inverse(product, "IfcRelVoidsElement", "RelatingBuildingElement")
	if len(rels) == 0 {
		return nil
	}
	inv, ok := place.Inverse()
	if !ok {
		c.log.Warnw("singular placement, openings ignored", "id", product.ID)
		return nil
	}
	var out []cutter
	for _, rel := range rels {
		op := rel.Ref("RelatedOpeningElement")
		if op == nil {
			continue
		}
		opPlace, err := c.ObjectPlacement(op)
		if err != nil {
			c.log.Warnw("opening ignored", "id", product.ID, "opening", op.ID, "error", err)
			continue
		}
		rel := inv.Mul(opPlace)
		for _, g := range representations(op) {
			for _, rep := range g.reps {
				for _, mi := range c.mapRepresentation(rep, taxonomy.Identity(), nil, 0) {
					s, err := c.build(mi.item)
					if err != nil {
						c.log.Warnw("opening item not built", "id", product.ID, "opening", op.ID, "item", mi.id, "error", err)
						continue
					}
					out = append(out, cutter{openingID: op.ID, placement: rel.Mul(mi.placement), shape: s})
				}
			}
		}
	}
	return out
}

// subtractOpenings moves every cutter into the frame of mi and subtracts
// them from shape in one operation.
func (c *Converter) subtractOpenings(product *ifc.Entity, mi mappedItem, shape kernel.Shape, cutters []cutter) kernel.Shape {
	inv, ok := mi.placement.Inverse()
	if !ok {
		c.log.Warnw("singular item placement, openings ignored", "id", product.ID, "item", mi.id)
		return shape
	}
	ops := make([]kernel.Shape, 0, len(cutters))
	for _, ct := range cutters {
		m := inv.Mul(ct.placement)
		s := ct.shape
		if !m.IsIdentity() {
			var err error
			if s, err = c.kernel.Transform(s, m); err != nil {
				c.log.Warnw("opening not placed", "id", product.ID, "opening", ct.openingID, "error", err)
				continue
			}
		}
		ops = append(ops, s)
	}
	if len(ops) == 0 {
		return shape
	}
	return c.subtract(product, mi.id, shape, ops)
}
