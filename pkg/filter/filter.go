// Package filter decides which products are converted. A Chain holds
// one Filter per criterion; a product is a candidate when it passes all
// of them.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/ifcgeom/pkg/engine"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/gobwas/glob"
)

// Kind is the criterion a filter matches on.
type Kind int

const (
	KindUnused Kind = iota
	KindEntity      // entity type names, case-insensitive, subtype aware
	KindLayer       // presentation layer names, case-sensitive globs
	KindAttribute   // attribute values, case-sensitive globs
	KindExpr        // Lisp predicates
)

func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entities"
	case KindLayer:
		return "layers"
	case KindAttribute:
		return "arg"
	case KindExpr:
		return "expr"
	default:
		return "unused"
	}
}

// FilterableAttributes are the attributes an attribute filter may test.
var FilterableAttributes = []string{"GlobalId", "Name", "Description", "Tag"}

func filterableAttribute(name string) bool {
	for _, a := range FilterableAttributes {
		if a == name {
			return true
		}
	}
	return false
}

// Filter is one compiled criterion.
type Filter struct {
	Include   bool
	Traverse  bool
	Kind      Kind
	Attribute string   // KindAttribute only
	Values    []string // type names, patterns or expressions

	globs []glob.Glob
	preds []*engine.Predicate
	eng   *engine.Engine
}

// newFilter validates and compiles a criterion.
func newFilter(s Spec, eng *engine.Engine) (*Filter, error) {
	f := &Filter{
		Include:   s.Include,
		Traverse:  s.Traverse,
		Kind:      s.Kind,
		Attribute: s.Arg,
		Values:    s.Values,
	}
	if len(f.Values) == 0 {
		return nil, errors.Mark(errors.Newf("%s filter without values", f.Kind), errors.ErrInvalidFilter)
	}
	switch f.Kind {
	case KindEntity:
	case KindAttribute:
		if !filterableAttribute(f.Attribute) {
			return nil, errors.WithHintf(
				errors.Mark(errors.Newf("attribute %q cannot be filtered on", f.Attribute), errors.ErrInvalidFilter),
				"supported attributes: %s", strings.Join(FilterableAttributes, ", "))
		}
		fallthrough
	case KindLayer:
		for _, v := range f.Values {
			g, err := glob.Compile(v)
			if err != nil {
				return nil, errors.Mark(errors.Wrapf(err, "pattern %q", v), errors.ErrInvalidFilter)
			}
			f.globs = append(f.globs, g)
		}
	case KindExpr:
		if eng == nil {
			eng = engine.NewEngine()
		}
		f.eng = eng
		for _, v := range f.Values {
			p, evalErrs, err := eng.Compile(v)
			if err != nil {
				return nil, err
			}
			if len(evalErrs) > 0 {
				return nil, errors.Mark(errors.Wrapf(evalErrs[0], "expression %q", v), errors.ErrInvalidFilter)
			}
			f.preds = append(f.preds, p)
		}
	default:
		return nil, errors.Mark(errors.Newf("unknown filter kind %d", int(f.Kind)), errors.ErrInvalidFilter)
	}
	return f, nil
}

// Match reports whether e itself meets the criterion.
func (f *Filter) Match(e *ifc.Entity) (bool, error) {
	switch f.Kind {
	case KindEntity:
		for _, t := range f.Values {
			if e.Is(t) {
				return true, nil
			}
		}
		return false, nil
	case KindLayer:
		if e.File() == nil {
			return false, nil
		}
		for _, l := range e.File().LayerNames(e) {
			if f.matchGlob(l) {
				return true, nil
			}
		}
		return false, nil
	case KindAttribute:
		v, ok := e.Str(f.Attribute)
		return ok && f.matchGlob(v), nil
	case KindExpr:
		subj := &Subject{Entity: e}
		for _, p := range f.preds {
			ok, err := f.eng.Match(p, subj)
			if err != nil {
				return false, errors.Wrapf(err, "%s", e)
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}

func (f *Filter) matchGlob(s string) bool {
	for _, g := range f.globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// Describe renders the filter for logs, e.g.
// `excluding entities: IfcOpeningElement, IfcSpace`.
func (f *Filter) Describe() string {
	verb := "excluding"
	if f.Include {
		verb = "including"
	}
	what := f.Kind.String()
	switch f.Kind {
	case KindAttribute:
		what = "entities with " + f.Attribute
	case KindExpr:
		what = "entities matching"
	}
	s := fmt.Sprintf("%s %s: %s", verb, what, strings.Join(f.Values, ", "))
	if f.Traverse {
		s += " (and their decomposition)"
	}
	return s
}

// sortedUnion merges b into a, dropping duplicates. Expressions keep
// their order; everything else is sorted.
func sortedUnion(kind Kind, a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, v := range append(append([]string(nil), a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	if kind != KindExpr {
		sort.Strings(out)
	}
	return out
}
