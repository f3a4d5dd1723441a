package filter

import (
	"strconv"

	"github.com/chazu/ifcgeom/pkg/engine"
	"github.com/chazu/ifcgeom/pkg/ifc"
)

// Subject exposes an entity to filter expressions.
type Subject struct {
	Entity *ifc.Entity
}

var _ engine.Subject = (*Subject)(nil)

func (s *Subject) EntityType() string { return s.Entity.Type }

func (s *Subject) Is(typ string) bool { return s.Entity.Is(typ) }

// Attr renders string-like and numeric attributes.
func (s *Subject) Attr(name string) (string, bool) {
	v, ok := s.Entity.Attr(name)
	if !ok {
		return "", false
	}
	if str, ok := ifc.AsString(v); ok {
		return str, true
	}
	if f, ok := ifc.AsFloat(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}
	return "", false
}

func (s *Subject) Number(name string) (float64, bool) { return s.Entity.Float(name) }

func (s *Subject) Layers() []string {
	if s.Entity.File() == nil {
		return nil
	}
	return s.Entity.File().LayerNames(s.Entity)
}
