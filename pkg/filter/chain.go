package filter

import (
	"strings"

	"github.com/chazu/ifcgeom/pkg/engine"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/graph"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"go.uber.org/zap"
)

// DefaultExcluded are skipped when no entity filter is given.
var DefaultExcluded = []string{"IfcOpeningElement", "IfcSpace"}

// Options tune Build.
type Options struct {
	// OutputExt is the extension of the output file, including the dot.
	// Floor plans (".svg") keep spaces and drop everything else by default.
	OutputExt string
	// Graph resolves traversal. When nil, Candidates builds one.
	Graph  *graph.Graph
	Engine *engine.Engine
	Log    *zap.SugaredLogger
}

// Chain is the conjunction of all filters of a run.
type Chain struct {
	Filters []*Filter

	graph *graph.Graph
	log   *zap.SugaredLogger
}

// Build compiles the specs of s into a chain and adds the default
// entity filter when none was given.
func (s *Set) Build(o Options) (*Chain, error) {
	log := o.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &Chain{graph: o.Graph, log: log}

	hasEntity := false
	for _, sp := range s.Specs() {
		if sp.Kind == KindEntity {
			hasEntity = true
			for _, t := range sp.Values {
				if !ifc.KnownType(t) {
					log.Warnw("entity type not in schema, matching by name only", "type", t)
				}
			}
		}
		f, err := newFilter(sp, o.Engine)
		if err != nil {
			return nil, errors.Wrapf(err, "--%s", slotFor(sp))
		}
		c.Filters = append(c.Filters, f)
	}

	if !hasEntity {
		def := Spec{Kind: KindEntity, Values: DefaultExcluded}
		if strings.EqualFold(o.OutputExt, ".svg") {
			def = Spec{Kind: KindEntity, Include: true, Values: []string{"IfcSpace"}}
		}
		f, err := newFilter(def, nil)
		if err != nil {
			return nil, err
		}
		c.Filters = append(c.Filters, f)
	}
	return c, nil
}

func slotFor(sp Spec) Slot {
	switch {
	case sp.Include && sp.Traverse:
		return SlotIncludeTraverse
	case sp.Include:
		return SlotInclude
	case sp.Traverse:
		return SlotExcludeTraverse
	}
	return SlotExclude
}

// Pass reports whether e passes every filter. A traversing filter
// matches when e or any of its ancestors in the decomposition matches.
func (c *Chain) Pass(e *ifc.Entity) (bool, error) {
	for _, f := range c.Filters {
		m, err := c.match(f, e)
		if err != nil {
			return false, err
		}
		if m != f.Include {
			return false, nil
		}
	}
	return true, nil
}

func (c *Chain) match(f *Filter, e *ifc.Entity) (bool, error) {
	m, err := f.Match(e)
	if err != nil || m || !f.Traverse || c.graph == nil || e.File() == nil {
		return m, err
	}
	for _, id := range c.graph.Ancestors(graph.NodeID(e.ID)) {
		anc := e.File().ByID(int(id))
		if anc == nil {
			continue
		}
		if m, err := f.Match(anc); err != nil || m {
			return m, err
		}
	}
	return false, nil
}

// Candidates returns the products of f that pass, in ascending id order.
// An expression that cannot be evaluated aborts with an error.
func (c *Chain) Candidates(f *ifc.File) ([]*ifc.Entity, error) {
	if c.graph == nil && c.traverses() {
		c.graph = graph.Build(f)
	}
	var out []*ifc.Entity
	for _, e := range f.ByType("IfcProduct") {
		ok, err := c.Pass(e)
		if err != nil {
			return nil, errors.Mark(err, errors.ErrInvalidFilter)
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *Chain) traverses() bool {
	for _, f := range c.Filters {
		if f.Traverse {
			return true
		}
	}
	return false
}

// Describe returns one line per filter.
func (c *Chain) Describe() []string {
	out := make([]string, len(c.Filters))
	for i, f := range c.Filters {
		out[i] = f.Describe()
	}
	return out
}
