package geom

import (
	"math"
	"strings"

	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// layerUsage describes how a product is divided into material layers.
// offsets are the interior layer boundaries along axis in the product
// frame, ascending; styles has one entry per layer in the same order.
type layerUsage struct {
	axis    [3]float64
	offsets []float64
	styles  []*taxonomy.Style
}

// layerUsage reads the IfcMaterialLayerSetUsage associated with product.
// It returns nil when there is none or it has fewer than two layers.
func (c *Converter) layerUsage(product *ifc.Entity) *layerUsage {
	for _, rel := range c.file.Inverse(product, "IfcRelAssociatesMaterial", "RelatedObjects") {
		u := rel.Ref("RelatingMaterial")
		if u == nil || !u.Is("IfcMaterialLayerSetUsage") {
			continue
		}
		set := u.Ref("ForLayerSet")
		if set == nil {
			continue
		}

		var axis [3]float64
		dir, _ := u.Str("LayerSetDirection")
		switch strings.ToUpper(dir) {
		case "AXIS1":
			axis = [3]float64{1, 0, 0}
		case "AXIS3":
			axis = [3]float64{0, 0, 1}
		default:
			axis = [3]float64{0, 1, 0}
		}
		sign := 1.0
		if sense, _ := u.Str("DirectionSense"); strings.EqualFold(sense, "NEGATIVE") {
			sign = -1
		}
		off, _ := u.Float("OffsetFromReferenceLine")

		pos := off * c.scale
		bounds := []float64{pos}
		var styles []*taxonomy.Style
		for _, l := range set.Refs("MaterialLayers") {
			th, _ := l.Float("LayerThickness")
			if th <= 0 {
				continue
			}
			pos += sign * th * c.scale
			bounds = append(bounds, pos)
			styles = append(styles, c.layerStyle(l))
		}
		if len(styles) < 2 {
			return nil
		}
		if sign < 0 {
			reverse(bounds)
			reverse(styles)
		}
		return &layerUsage{axis: axis, offsets: bounds[1 : len(bounds)-1], styles: styles}
	}
	return nil
}

// layerStyle returns the configured style of a layer's material. Nil
// means the layer keeps the style of the item.
func (c *Converter) layerStyle(layer *ifc.Entity) *taxonomy.Style {
	mat := layer.Ref("Material")
	if mat == nil {
		return nil
	}
	name, _ := mat.Str("Name")
	return c.styles.materials.ForMaterial(name)
}

// slice splits shape into one piece per material layer. The layer
// boundaries are moved into the frame of mi first.
func (c *Converter) slice(product *ifc.Entity, mi mappedItem, shape kernel.Shape, style *taxonomy.Style, u *layerUsage) ([]kernel.Shape, []*taxonomy.Style) {
	whole := []kernel.Shape{shape}
	wholeStyle := []*taxonomy.Style{style}

	// A point p of the item lies at dot(axis, M p) along the product
	// axis, which is dot(R^T axis, p) + dot(axis, t).
	local := transpose3(mi.placement).ApplyVector(u.axis)
	length := math.Sqrt(taxonomy.Dot(local, local))
	if length == 0 {
		return whole, wholeStyle
	}
	shift := taxonomy.Dot(u.axis, mi.placement.Translation())
	offsets := make([]float64, len(u.offsets))
	for i, o := range u.offsets {
		offsets[i] = (o - shift) / length
	}
	local = scale(local, 1/length)

	pieces, err := c.kernel.Slice(shape, local, offsets)
	if err != nil {
		c.log.Warnw("layer slicing failed, keeping item whole", "id", product.ID, "item", mi.id, "kernel", c.kernel.Name(), "error", err)
		return whole, wholeStyle
	}
	if len(pieces) != len(u.styles) {
		c.log.Warnw("layer slicing returned unexpected piece count", "id", product.ID, "item", mi.id, "pieces", len(pieces), "layers", len(u.styles))
		return whole, wholeStyle
	}
	styles := make([]*taxonomy.Style, len(u.styles))
	for i, s := range u.styles {
		styles[i] = s
		if s == nil {
			styles[i] = style
		}
	}
	return pieces, styles
}

// transpose3 returns the transpose of the linear part of m.
func transpose3(m taxonomy.Matrix4) taxonomy.Matrix4 {
	var cs [16]float64
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			cs[col*4+r] = m.At(col, r)
		}
	}
	cs[15] = 1
	return taxonomy.NewMatrix4(cs)
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
