package ifc

import (
	"fmt"

	"github.com/chazu/ifcgeom/pkg/step"
)

// Entity is one instance in a model. Attribute access goes through the
// schema table, so only attributes known to it can be read by name.
type Entity struct {
	ID   int
	Type string // canonical spelling, e.g. IfcWallStandardCase
	Args []step.Value

	file *File
}

func (e *Entity) String() string {
	return fmt.Sprintf("#%d=%s", e.ID, e.Type)
}

// Is reports whether the entity is of type name or one of its subtypes.
func (e *Entity) Is(name string) bool {
	return IsSubtype(e.Type, name)
}

// File returns the model the entity belongs to.
func (e *Entity) File() *File {
	return e.file
}

// Attr returns the raw value of a named attribute. ok is false when the
// attribute is unknown for this type or the instance is too short.
func (e *Entity) Attr(name string) (step.Value, bool) {
	i, ok := attributeIndex(e.Type, name)
	if !ok || i >= len(e.Args) {
		return step.Value{}, false
	}
	return e.Args[i], true
}

// IsNull reports whether a named attribute is absent or $.
func (e *Entity) IsNull(name string) bool {
	v, ok := e.Attr(name)
	return !ok || v.Kind == step.KindNull || v.Kind == step.KindDerived
}

// Str returns a string, enumeration or label attribute. Typed values
// such as IFCLABEL('x') are unwrapped.
func (e *Entity) Str(name string) (string, bool) {
	v, ok := e.Attr(name)
	if !ok {
		return "", false
	}
	return AsString(v)
}

// Float returns a numeric attribute.
func (e *Entity) Float(name string) (float64, bool) {
	v, ok := e.Attr(name)
	if !ok {
		return 0, false
	}
	return AsFloat(v)
}

// Ref follows an entity reference attribute.
func (e *Entity) Ref(name string) *Entity {
	v, ok := e.Attr(name)
	if !ok || v.Kind != step.KindRef || e.file == nil {
		return nil
	}
	return e.file.ByID(v.Ref)
}

// Refs follows an aggregate of references. Non-reference members are
// skipped.
func (e *Entity) Refs(name string) []*Entity {
	v, ok := e.Attr(name)
	if !ok || v.Kind != step.KindList || e.file == nil {
		return nil
	}
	out := make([]*Entity, 0, len(v.List))
	for _, m := range v.List {
		if m.Kind != step.KindRef {
			continue
		}
		if r := e.file.ByID(m.Ref); r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Floats returns an aggregate of numbers, e.g. point coordinates.
func (e *Entity) Floats(name string) ([]float64, bool) {
	v, ok := e.Attr(name)
	if !ok || v.Kind != step.KindList {
		return nil, false
	}
	out := make([]float64, 0, len(v.List))
	for _, m := range v.List {
		f, ok := AsFloat(m)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

// AsString unwraps a string-like value.
func AsString(v step.Value) (string, bool) {
	switch v.Kind {
	case step.KindString, step.KindEnum:
		return v.Str, true
	case step.KindTyped:
		return AsString(v.List[0])
	}
	return "", false
}

// AsFloat unwraps a numeric value.
func AsFloat(v step.Value) (float64, bool) {
	switch v.Kind {
	case step.KindReal:
		return v.Real, true
	case step.KindInteger:
		return float64(v.Int), true
	case step.KindTyped:
		return AsFloat(v.List[0])
	}
	return 0, false
}
