package geom

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

// MaterialConfig is one entry of a default material file. Unset fields
// keep the built-in value.
type MaterialConfig struct {
	Diffuse      []float64 `toml:"diffuse"`
	Specular     []float64 `toml:"specular"`
	Specularity  *float64  `toml:"specularity"`
	Transparency *float64  `toml:"transparency"`
}

// materialFile is the layout of a default material file:
//
//	[types.IfcWall]
//	diffuse = [0.8, 0.8, 0.8]
//
//	[materials.Concrete]
//	diffuse = [0.6, 0.6, 0.6]
//	transparency = 0.0
type materialFile struct {
	Types     map[string]MaterialConfig `toml:"types"`
	Materials map[string]MaterialConfig `toml:"materials"`
}

// Materials holds the fallback styles used for items without an
// IfcStyledItem, keyed by entity type and by material name. It is read
// only once built and shared by all workers.
type Materials struct {
	types     map[string]*taxonomy.Style // upper-case type name
	materials map[string]*taxonomy.Style
}

func defaultStyle(name string, r, g, b float64) *taxonomy.Style {
	return &taxonomy.Style{Name: name, Diffuse: taxonomy.RGB(r, g, b)}
}

// DefaultMaterials returns the built-in per-type styles.
func DefaultMaterials() *Materials {
	m := &Materials{types: map[string]*taxonomy.Style{}, materials: map[string]*taxonomy.Style{}}
	add := func(s *taxonomy.Style) { m.types[strings.ToUpper(s.Name)] = s }

	add(defaultStyle("IfcSite", 0.75, 0.8, 0.65))
	add(defaultStyle("IfcSlab", 0.4, 0.4, 0.4))
	add(defaultStyle("IfcWallStandardCase", 0.9, 0.9, 0.9))
	add(defaultStyle("IfcWall", 0.9, 0.9, 0.9))
	add(defaultStyle("IfcDoor", 0.55, 0.3, 0.15))
	add(defaultStyle("IfcBeam", 0.75, 0.7, 0.7))
	add(defaultStyle("IfcRailing", 0.65, 0.6, 0.6))
	add(defaultStyle("IfcMember", 0.65, 0.6, 0.6))
	add(defaultStyle("IfcPlate", 0.8, 0.8, 0.8))

	window := defaultStyle("IfcWindow", 0.75, 0.8, 0.75)
	window.Transparency = taxonomy.Float(0.3)
	add(window)

	space := defaultStyle("IfcSpace", 0.65, 0.75, 0.8)
	space.Transparency = taxonomy.Float(0.8)
	add(space)
	return m
}

// LoadMaterials reads a TOML material file on top of the built-in
// styles. An empty path returns the defaults.
func LoadMaterials(path string) (*Materials, error) {
	m := DefaultMaterials()
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to read material file %s", path), errors.ErrInvalidConfig)
	}
	var f materialFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse material file %s", path), errors.ErrInvalidConfig)
	}
	for name, cfg := range f.Types {
		key := strings.ToUpper(name)
		s, err := cfg.apply(m.types[key], ifc.CanonicalName(name))
		if err != nil {
			return nil, errors.Wrapf(err, "%s: types.%s", path, name)
		}
		m.types[key] = s
	}
	for name, cfg := range f.Materials {
		s, err := cfg.apply(m.materials[name], name)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: materials.%s", path, name)
		}
		m.materials[name] = s
	}
	return m, nil
}

func (c MaterialConfig) apply(base *taxonomy.Style, name string) (*taxonomy.Style, error) {
	s := &taxonomy.Style{Name: name}
	if base != nil {
		*s = *base
	}
	color := func(v []float64, what string) (*taxonomy.Color, error) {
		if len(v) != 3 {
			return nil, errors.Mark(errors.Newf("%s needs 3 components, got %d", what, len(v)), errors.ErrInvalidConfig)
		}
		for _, x := range v {
			if x < 0 || x > 1 {
				return nil, errors.Mark(errors.Newf("%s component %g outside [0,1]", what, x), errors.ErrInvalidConfig)
			}
		}
		return taxonomy.RGB(v[0], v[1], v[2]), nil
	}
	var err error
	if c.Diffuse != nil {
		if s.Diffuse, err = color(c.Diffuse, "diffuse"); err != nil {
			return nil, err
		}
	}
	if c.Specular != nil {
		if s.Specular, err = color(c.Specular, "specular"); err != nil {
			return nil, err
		}
	}
	if c.Specularity != nil {
		s.Specularity = taxonomy.Float(*c.Specularity)
	}
	if c.Transparency != nil {
		t := *c.Transparency
		if t < 0 || t > 1 {
			return nil, errors.Mark(errors.Newf("transparency %g outside [0,1]", t), errors.ErrInvalidConfig)
		}
		s.Transparency = taxonomy.Float(t)
	}
	return s, nil
}

// ForType returns the style of the nearest supertype of typ that has
// one, or nil.
func (m *Materials) ForType(typ string) *taxonomy.Style {
	for _, t := range ifc.Supertypes(typ) {
		if s, ok := m.types[strings.ToUpper(t)]; ok {
			return s
		}
	}
	return nil
}

// ForMaterial returns the style configured for a material name, or nil.
func (m *Materials) ForMaterial(name string) *taxonomy.Style {
	return m.materials[name]
}

// styleResolver reads IfcStyledItem assignments. It caches per item and
// belongs to one converter.
type styleResolver struct {
	materials *Materials
	items     map[int]*taxonomy.Style
}

func newStyleResolver(m *Materials) *styleResolver {
	if m == nil {
		m = DefaultMaterials()
	}
	return &styleResolver{materials: m, items: map[int]*taxonomy.Style{}}
}

// ItemStyle returns the surface style assigned to a representation item,
// or nil when there is none.
func (r *styleResolver) ItemStyle(item *ifc.Entity) *taxonomy.Style {
	if s, ok := r.items[item.ID]; ok {
		return s
	}
	var style *taxonomy.Style
	for _, si := range item.File().Inverse(item, "IfcStyledItem", "Item") {
		if style = surfaceStyle(si.Refs("Styles")); style != nil {
			break
		}
	}
	r.items[item.ID] = style
	return style
}

// surfaceStyle finds the first IfcSurfaceStyle among styles, looking
// through IfcPresentationStyleAssignment wrappers.
func surfaceStyle(styles []*ifc.Entity) *taxonomy.Style {
	for _, s := range styles {
		switch {
		case s.Is("IfcPresentationStyleAssignment"):
			if st := surfaceStyle(s.Refs("Styles")); st != nil {
				return st
			}
		case s.Is("IfcSurfaceStyle"):
			return fromSurfaceStyle(s)
		}
	}
	return nil
}

func fromSurfaceStyle(e *ifc.Entity) *taxonomy.Style {
	name, _ := e.Str("Name")
	st := &taxonomy.Style{Name: name}
	for _, sub := range e.Refs("Styles") {
		if !sub.Is("IfcSurfaceStyleShading") {
			continue
		}
		if c := colour(sub.Ref("SurfaceColour")); c != nil {
			st.Diffuse = c
		}
		if t, ok := sub.Float("Transparency"); ok {
			st.Transparency = taxonomy.Float(t)
		}
		if !sub.Is("IfcSurfaceStyleRendering") {
			continue
		}
		if c := colour(sub.Ref("DiffuseColour")); c != nil {
			st.Diffuse = c
		}
		if c := colour(sub.Ref("SpecularColour")); c != nil {
			st.Specular = c
		}
		if v, ok := sub.Attr("SpecularHighlight"); ok {
			if h, ok := ifc.AsFloat(v); ok {
				if strings.EqualFold(v.Str, "IFCSPECULARROUGHNESS") && h > 0 {
					h = 1 / h
				}
				st.Specularity = taxonomy.Float(h)
			}
		}
	}
	return st
}

func colour(e *ifc.Entity) *taxonomy.Color {
	if e == nil || !e.Is("IfcColourRgb") {
		return nil
	}
	r, _ := e.Float("Red")
	g, _ := e.Float("Green")
	b, _ := e.Float("Blue")
	return taxonomy.RGB(r, g, b)
}
