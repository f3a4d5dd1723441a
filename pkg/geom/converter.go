package geom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/graph"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"github.com/chazu/ifcgeom/pkg/tessellate"
	"go.uber.org/zap"
)

// Settings are the options that change how products are converted.
type Settings struct {
	Mesh                       tessellate.Settings
	UseWorldCoords             bool
	DisableOpeningSubtractions bool
	EnableLayersetSlicing      bool
	ComputeQuantities          bool
	Materials                  *Materials
}

// NewSettings derives converter settings from the geometry configuration
// and loads the default material file it names. The unit magnitude is
// filled in by NewConverter.
func NewSettings(g config.GeometryConfig) (Settings, error) {
	m, err := LoadMaterials(g.DefaultMaterialFile)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Mesh: tessellate.Settings{
			DeflectionTolerance: g.DeflectionTolerance,
			WeldVertices:        g.WeldVertices,
			NoNormals:           g.NoNormals,
			GenerateUVs:         g.GenerateUVs,
			ConvertBackUnits:    g.ConvertBackUnits,
		},
		UseWorldCoords:             g.UseWorldCoords,
		DisableOpeningSubtractions: g.DisableOpeningSubtractions,
		EnableLayersetSlicing:      g.EnableLayersetSlicing,
		ComputeQuantities:          g.ComputeQuantities,
		Materials:                  m,
	}, nil
}

// Converter turns products into native elements. It owns a kernel and
// caches keyed by representation, so it must not be shared between
// goroutines.
type Converter struct {
	file     *ifc.File
	graph    *graph.Graph
	kernel   kernel.Kernel
	settings Settings
	styles   *styleResolver
	scale    float64 // meters per file unit
	log      *zap.SugaredLogger

	placements map[int]taxonomy.Matrix4
	canon      *taxonomy.Canonicalizer
	shapes     map[taxonomy.Item]kernel.Shape
	breps      map[string]*element.BRep
	meshes     map[string]*tessellate.Triangulation
	quantities map[*element.BRep]*element.Quantities
	hierarchy  map[int]int
}

// NewConverter prepares a converter for f. g may be nil, in which case
// the decomposition graph is built here.
func NewConverter(f *ifc.File, g *graph.Graph, k kernel.Kernel, s Settings, log *zap.SugaredLogger) *Converter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if g == nil {
		g = graph.Build(f)
	}
	_, mag := f.LengthUnit()
	if mag <= 0 {
		mag = 1
	}
	s.Mesh.UnitMagnitude = mag
	return &Converter{
		file:       f,
		graph:      g,
		kernel:     k,
		settings:   s,
		styles:     newStyleResolver(s.Materials),
		scale:      mag,
		log:        log,
		placements: map[int]taxonomy.Matrix4{},
		canon:      taxonomy.NewCanonicalizer(),
		shapes:     map[taxonomy.Item]kernel.Shape{},
		breps:      map[string]*element.BRep{},
		meshes:     map[string]*tessellate.Triangulation{},
		quantities: map[*element.BRep]*element.Quantities{},
	}
}

// Kernel returns the kernel the converter builds with.
func (c *Converter) Kernel() kernel.Kernel {
	return c.kernel
}

// SetHierarchy maps entity ids of spatial structure elements to their
// index in the hierarchy arena. The map is only read afterwards.
func (c *Converter) SetHierarchy(index map[int]int) {
	c.hierarchy = index
}

// Convert produces one native element per representation context of
// product. A product without geometry yields nothing and no error.
func (c *Converter) Convert(product *ifc.Entity) ([]*element.Native, error) {
	groups := representations(product)
	if len(groups) == 0 {
		return nil, nil
	}
	place, err := c.ObjectPlacement(product)
	if err != nil {
		return nil, errors.Wrapf(err, "placement of %s", product)
	}

	var cutters []cutter
	if !c.settings.DisableOpeningSubtractions {
		cutters = c.openings(product, place)
	}
	var layers *layerUsage
	if c.settings.EnableLayersetSlicing {
		layers = c.layerUsage(product)
	}

	var out []*element.Native
	var firstErr error
	for _, g := range groups {
		b, err := c.brep(product, place, g, cutters, layers)
		if err != nil {
			c.log.Warnw("representation not converted", "id", product.ID, "type", product.Type, "context", g.context, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		n := element.NewNative(c.element(product, g.context, place), b)
		if c.settings.ComputeQuantities {
			if n.Quantities, err = c.measure(b); err != nil {
				c.log.Warnw("quantities not computed", "id", product.ID, "error", err)
			}
		}
		out = append(out, n)
	}
	if len(out) == 0 && firstErr != nil {
		return nil, errors.Wrapf(firstErr, "%s", product)
	}
	return out, nil
}

// Triangulate meshes n, reusing the mesh of a representation another
// product already triangulated on this converter.
func (c *Converter) Triangulate(n *element.Native) (*element.Triangulated, error) {
	if t, ok := c.meshes[n.Geometry.ID]; ok {
		return element.NewTriangulatedFrom(n.Element, t), nil
	}
	t, err := n.Geometry.Triangulate(c.log)
	if err != nil {
		return nil, errors.Wrapf(err, "triangulate %s", n.UniqueID)
	}
	c.meshes[n.Geometry.ID] = t
	return element.NewTriangulatedFrom(n.Element, t), nil
}

// SpatialElement describes a spatial structure element without geometry,
// for the hierarchy arena.
func (c *Converter) SpatialElement(product *ifc.Entity) (*element.Element, error) {
	place, err := c.ObjectPlacement(product)
	if err != nil {
		return nil, errors.Wrapf(err, "placement of %s", product)
	}
	return c.element(product, "", place), nil
}

func (c *Converter) element(product *ifc.Entity, context string, place taxonomy.Matrix4) *element.Element {
	if c.settings.UseWorldCoords {
		place = taxonomy.Identity()
	}
	t := element.NewTransformation(place, c.settings.Mesh.ConvertBackUnits, c.settings.Mesh.UnitMagnitude)

	var parentID int
	if p := c.graph.SpatialParent(graph.NodeID(product.ID)); p != nil {
		parentID = int(p.ID)
	}
	name, _ := product.Str("Name")
	guid, _ := product.Str("GlobalId")
	e := element.New(product.ID, parentID, name, product.Type, guid, context, t, product, c.log)
	for _, n := range c.graph.SpatialChain(graph.NodeID(product.ID)) {
		if i, ok := c.hierarchy[int(n.ID)]; ok {
			e.Parents = append(e.Parents, i)
		}
	}
	return e
}

func (c *Converter) measure(b *element.BRep) (*element.Quantities, error) {
	if q, ok := c.quantities[b]; ok {
		return q, nil
	}
	q, err := b.Measure()
	if err != nil {
		return nil, err
	}
	c.quantities[b] = q
	return q, nil
}

// repGroup is the set of representations of one context type.
type repGroup struct {
	context string
	reps    []*ifc.Entity
}

// representations selects the Body and Facetation representations of a
// product, or all of them when it has neither, grouped by context type
// in order of appearance.
func representations(product *ifc.Entity) []repGroup {
	shape := product.Ref("Representation")
	if shape == nil {
		return nil
	}
	all := shape.Refs("Representations")
	var selected []*ifc.Entity
	for _, r := range all {
		id, _ := r.Str("RepresentationIdentifier")
		if id == "Body" || id == "Facetation" {
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		selected = all
	}

	var groups []repGroup
	index := map[string]int{}
	for _, r := range selected {
		ctx := contextType(r.Ref("ContextOfItems"))
		i, ok := index[ctx]
		if !ok {
			i = len(groups)
			index[ctx] = i
			groups = append(groups, repGroup{context: ctx})
		}
		groups[i].reps = append(groups[i].reps, r)
	}
	return groups
}

// contextType returns the ContextType of a representation context,
// inherited from the parent context when a sub context leaves it unset.
func contextType(ctx *ifc.Entity) string {
	for depth := 0; ctx != nil && depth < 8; depth++ {
		if t, ok := ctx.Str("ContextType"); ok && t != "" {
			return t
		}
		ctx = ctx.Ref("ParentContext")
	}
	return ""
}

// representationKey names the geometry of a set of representations.
// Representations made only of one mapped item source under one target
// share their key, so every product instancing them shares a BRep.
func (c *Converter) representationKey(reps []*ifc.Entity) string {
	var source, target string
	shared := true
	var ids []string
	for _, r := range reps {
		ids = append(ids, fmt.Sprint(r.ID))
		for _, it := range r.Refs("Items") {
			if !shared {
				break
			}
			if !it.Is("IfcMappedItem") || c.styles.ItemStyle(it) != nil {
				shared = false
				break
			}
			s, t := refID(it, "MappingSource"), refID(it, "MappingTarget")
			if source == "" {
				source, target = s, t
			} else if s != source || t != target {
				shared = false
			}
		}
	}
	if shared && source != "" {
		return "map-" + source + "-" + target
	}
	return "rep-" + strings.Join(ids, "-")
}

func refID(e *ifc.Entity, attr string) string {
	if r := e.Ref(attr); r != nil {
		return fmt.Sprint(r.ID)
	}
	return "0"
}

// brep builds, or fetches from the cache, the geometry of one
// representation group. Geometry that depends on the product itself
// (world coordinates, openings, layer slicing) is keyed by product.
func (c *Converter) brep(product *ifc.Entity, place taxonomy.Matrix4, g repGroup, cutters []cutter, layers *layerUsage) (*element.BRep, error) {
	fallback := c.styles.materials.ForType(product.Type)
	key := c.representationKey(g.reps)
	switch {
	case c.settings.UseWorldCoords || len(cutters) > 0 || layers != nil:
		key = fmt.Sprintf("product-%d-%s", product.ID, key)
	case fallback != nil:
		// Unstyled items take the product's type style.
		key += "-" + fallback.Name
	}
	if b, ok := c.breps[key]; ok {
		return b, nil
	}

	var items []mappedItem
	for _, rep := range g.reps {
		items = append(items, c.mapRepresentation(rep, taxonomy.Identity(), nil, 0)...)
	}
	if len(items) == 0 {
		return nil, errors.New("no supported representation items")
	}

	b := &element.BRep{ID: key, Kernel: c.kernel, Settings: c.settings.Mesh}
	for _, mi := range items {
		shape, err := c.build(mi.item)
		if err != nil {
			c.log.Warnw("item not built", "id", product.ID, "item", mi.id, "error", err)
			continue
		}
		if len(mi.cut) > 0 {
			shape = c.subtractItems(product, mi, shape)
		}
		if len(cutters) > 0 {
			shape = c.subtractOpenings(product, mi, shape, cutters)
		}
		style := mi.style
		if style == nil {
			style = fallback
		}
		placement := mi.placement
		if c.settings.UseWorldCoords {
			placement = place.Mul(placement)
		}

		pieces, styles := []kernel.Shape{shape}, []*taxonomy.Style{style}
		if layers != nil {
			pieces, styles = c.slice(product, mi, shape, style, layers)
		}
		for i, p := range pieces {
			b.Items = append(b.Items, element.ShapeItem{ItemID: mi.id, Placement: placement, Shape: p, Style: styles[i]})
		}
	}
	if len(b.Items) == 0 {
		return nil, errors.New("no representation item could be built")
	}
	c.breps[key] = b
	return b, nil
}

// build creates the kernel shape of an item, sharing it with every
// structurally equal item converted before.
func (c *Converter) build(item taxonomy.Item) (kernel.Shape, error) {
	canonical, _, err := c.canon.Intern(item)
	if err != nil {
		// Not comparable, build it uncached.
		return c.kernel.Build(item)
	}
	if s, ok := c.shapes[canonical]; ok {
		return s, nil
	}
	s, err := c.kernel.Build(canonical)
	if err != nil {
		return nil, err
	}
	c.shapes[canonical] = s
	return s, nil
}

// subtractItems applies the difference operands of an IfcBooleanResult.
func (c *Converter) subtractItems(product *ifc.Entity, mi mappedItem, shape kernel.Shape) kernel.Shape {
	ops := make([]kernel.Shape, 0, len(mi.cut))
	for _, it := range mi.cut {
		s, err := c.build(it)
		if err != nil {
			c.log.Warnw("boolean operand not built", "id", product.ID, "item", mi.id, "error", err)
			return shape
		}
		ops = append(ops, s)
	}
	return c.subtract(product, mi.id, shape, ops)
}

func (c *Converter) subtract(product *ifc.Entity, itemID int, shape kernel.Shape, ops []kernel.Shape) kernel.Shape {
	out, err := c.kernel.BooleanSubtract(shape, ops)
	if err != nil {
		if errors.Is(err, errors.ErrNotSupported) {
			c.log.Warnw("subtraction not supported by kernel, keeping item uncut", "id", product.ID, "item", itemID, "kernel", c.kernel.Name())
		} else {
			c.log.Warnw("subtraction failed, keeping item uncut", "id", product.ID, "item", itemID, "error", err)
		}
		return shape
	}
	return out
}

// cacheKeys lists the keys of the cached representations.
func (c *Converter) cacheKeys() []string {
	keys := make([]string, 0, len(c.breps))
	for k := range c.breps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
