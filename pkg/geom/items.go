package geom

import (
	"strings"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// maxMappingDepth bounds nested IfcMappedItem chains.
const maxMappingDepth = 16

// mappedItem is a representation item ready to be built. placement is
// relative to the product; cut holds boolean difference operands in the
// item's own frame.
type mappedItem struct {
	id        int
	placement taxonomy.Matrix4
	item      taxonomy.Item
	cut       []taxonomy.Item
	style     *taxonomy.Style
}

// mapRepresentation maps every item of rep. Items that cannot be mapped
// are logged and skipped.
func (c *Converter) mapRepresentation(rep *ifc.Entity, placement taxonomy.Matrix4, style *taxonomy.Style, depth int) []mappedItem {
	var out []mappedItem
	for _, it := range rep.Refs("Items") {
		own := c.styles.ItemStyle(it)
		if it.Is("IfcMappedItem") {
			if depth >= maxMappingDepth {
				c.log.Warnw("mapped item nesting too deep", "item", it.ID)
				continue
			}
			source := it.Ref("MappingSource")
			if source == nil || source.Ref("MappedRepresentation") == nil {
				c.log.Warnw("mapped item without source", "item", it.ID)
				continue
			}
			origin, err := c.axisPlacement(source.Ref("MappingOrigin"))
			if err != nil {
				c.log.Warnw("skipping mapped item", "item", it.ID, "error", err)
				continue
			}
			m := placement.Mul(c.transformOperator(it.Ref("MappingTarget"))).Mul(origin)
			inherited := own
			if inherited == nil {
				inherited = style
			}
			out = append(out, c.mapRepresentation(source.Ref("MappedRepresentation"), m, inherited, depth+1)...)
			continue
		}
		mi, err := c.mapSolid(it)
		if err != nil {
			c.log.Warnw("skipping representation item", "item", it.ID, "type", it.Type, "error", err)
			continue
		}
		mi.placement = placement
		// Own style first, then a boolean operand's, then the mapped item's.
		switch {
		case own != nil:
			mi.style = own
		case mi.style == nil:
			mi.style = style
		}
		out = append(out, mi)
	}
	return out
}

// mapSolid maps a solid representation item.
func (c *Converter) mapSolid(e *ifc.Entity) (mappedItem, error) {
	if e == nil {
		return mappedItem{}, errors.New("missing operand")
	}
	switch {
	case e.Is("IfcExtrudedAreaSolid"):
		item, err := c.extrusion(e)
		if err != nil {
			return mappedItem{}, err
		}
		return mappedItem{id: e.ID, item: item}, nil

	case e.Is("IfcBooleanResult"):
		op, _ := e.Str("Operator")
		if !strings.EqualFold(op, "DIFFERENCE") {
			return mappedItem{}, errors.Wrapf(errors.ErrNotSupported, "boolean %s", op)
		}
		first, err := c.mapSolid(e.Ref("FirstOperand"))
		if err != nil {
			return mappedItem{}, errors.Wrap(err, "first operand")
		}
		second, err := c.mapSolid(e.Ref("SecondOperand"))
		if err != nil {
			return mappedItem{}, errors.Wrap(err, "second operand")
		}
		if first.style == nil {
			first.style = c.styles.ItemStyle(e.Ref("FirstOperand"))
		}
		first.id = e.ID
		first.cut = append(first.cut, second.item)
		first.cut = append(first.cut, second.cut...)
		return first, nil
	}
	return mappedItem{}, errors.Wrapf(errors.ErrNotSupported, "item %s", e.Type)
}

func (c *Converter) extrusion(e *ifc.Entity) (*taxonomy.Extrusion, error) {
	basis, err := c.profile(e.Ref("SweptArea"))
	if err != nil {
		return nil, err
	}
	pos, err := c.axisPlacement(e.Ref("Position"))
	if err != nil {
		return nil, err
	}
	depth, ok := e.Float("Depth")
	if !ok || depth <= 0 {
		return nil, errors.Newf("%s: invalid depth", e)
	}
	d := direction(e.Ref("ExtrudedDirection"), unitZ)
	return &taxonomy.Extrusion{
		Basis:     basis,
		Direction: taxonomy.Direction3{X: d[0], Y: d[1], Z: d[2]},
		Depth:     depth * c.scale,
		Matrix:    pos,
	}, nil
}
