// Package ifc is a small IFC model over parsed ISO 10303-21 records: an
// instance table, a subtype-aware type index, an inverse reference index
// and the few schema-level services geometry conversion needs (GUID
// formatting, length units, layer assignments).
package ifc

import (
	"os"
	"sort"
	"strings"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/step"
)

type inverseRef struct {
	from *Entity
	attr int
}

// File is a loaded model. It is read-only once indexed and safe for
// concurrent readers.
type File struct {
	Schema string

	byID    map[int]*Entity
	ordered []*Entity
	inverse map[int][]inverseRef
	indexed bool
}

// NewFile returns an empty model for the given schema identifier.
func NewFile(schemaName string) *File {
	return &File{Schema: schemaName, byID: map[int]*Entity{}}
}

// Open parses the file at path.
func Open(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer fh.Close()

	sf, err := step.Parse(fh)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return FromStep(sf)
}

// FromStep builds a model from parsed records.
func FromStep(sf *step.File) (*File, error) {
	schemaName := ""
	if len(sf.Schemas) > 0 {
		schemaName = sf.Schemas[0]
	}
	f := NewFile(schemaName)
	for _, r := range sf.Records {
		if _, dup := f.byID[r.ID]; dup {
			return nil, errors.Mark(errors.Newf("line %d: duplicate instance #%d", r.Line, r.ID), errors.ErrParse)
		}
		f.Add(r.ID, r.Type, r.Args...)
	}
	f.Index()
	return f, nil
}

// Add inserts an instance. It is meant for building models in code; call
// Index once all instances are added.
func (f *File) Add(id int, typ string, args ...step.Value) *Entity {
	e := &Entity{ID: id, Type: CanonicalName(typ), Args: args, file: f}
	f.byID[id] = e
	f.indexed = false
	return e
}

// Index builds the id-ordered instance list and the inverse reference
// index.
func (f *File) Index() {
	f.ordered = f.ordered[:0]
	for _, e := range f.byID {
		f.ordered = append(f.ordered, e)
	}
	sort.Slice(f.ordered, func(i, j int) bool { return f.ordered[i].ID < f.ordered[j].ID })

	f.inverse = map[int][]inverseRef{}
	for _, e := range f.ordered {
		for i, a := range e.Args {
			f.indexValue(e, i, a)
		}
	}
	f.indexed = true
}

func (f *File) indexValue(from *Entity, attr int, v step.Value) {
	switch v.Kind {
	case step.KindRef:
		f.inverse[v.Ref] = append(f.inverse[v.Ref], inverseRef{from: from, attr: attr})
	case step.KindList:
		for _, m := range v.List {
			f.indexValue(from, attr, m)
		}
	}
}

// ByID returns the instance with the given id, or nil.
func (f *File) ByID(id int) *Entity {
	return f.byID[id]
}

// Len returns the number of instances.
func (f *File) Len() int {
	return len(f.byID)
}

// ByType returns instances of name or its subtypes in ascending id order.
func (f *File) ByType(name string) []*Entity {
	f.mustBeIndexed()
	var out []*Entity
	for _, e := range f.ordered {
		if e.Is(name) {
			out = append(out, e)
		}
	}
	return out
}

// Inverse returns instances of relType that reference e through the
// named attribute, in ascending id order.
func (f *File) Inverse(e *Entity, relType, attr string) []*Entity {
	f.mustBeIndexed()
	var out []*Entity
	seen := map[int]bool{}
	for _, ref := range f.inverse[e.ID] {
		if !ref.from.Is(relType) || seen[ref.from.ID] {
			continue
		}
		if i, ok := attributeIndex(ref.from.Type, attr); !ok || i != ref.attr {
			continue
		}
		seen[ref.from.ID] = true
		out = append(out, ref.from)
	}
	return out
}

// Referrers returns every instance that references e, in ascending id
// order.
func (f *File) Referrers(e *Entity) []*Entity {
	f.mustBeIndexed()
	var out []*Entity
	seen := map[int]bool{}
	for _, ref := range f.inverse[e.ID] {
		if !seen[ref.from.ID] {
			seen[ref.from.ID] = true
			out = append(out, ref.from)
		}
	}
	return out
}

func (f *File) mustBeIndexed() {
	if !f.indexed {
		panic("ifc: File used before Index()")
	}
}

// Project returns the single IfcProject, or nil.
func (f *File) Project() *Entity {
	ps := f.ByType("IfcProject")
	if len(ps) == 0 {
		return nil
	}
	return ps[0]
}

// LayerNames returns the presentation layers a product's shape
// representations (or their items) are assigned to.
func (f *File) LayerNames(product *Entity) []string {
	shape := product.Ref("Representation")
	if shape == nil {
		return nil
	}
	targets := []*Entity{}
	for _, rep := range shape.Refs("Representations") {
		targets = append(targets, rep)
		targets = append(targets, rep.Refs("Items")...)
	}
	var names []string
	seen := map[string]bool{}
	for _, t := range targets {
		for _, layer := range f.Inverse(t, "IfcPresentationLayerAssignment", "AssignedItems") {
			name, _ := layer.Str("Name")
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// SchemaIs reports whether the file schema identifier starts with prefix,
// ignoring case, e.g. SchemaIs("IFC2X3").
func (f *File) SchemaIs(prefix string) bool {
	return strings.HasPrefix(strings.ToUpper(f.Schema), strings.ToUpper(prefix))
}
