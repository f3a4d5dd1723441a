package graph

import (
	"sort"
)

// Graph is the decomposition DAG. It is built once per model and read
// concurrently afterwards.
type Graph struct {
	Nodes map[NodeID]*Node
	Roots []NodeID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[NodeID]*Node)}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *Graph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
}

// AddEdge links parent to child. Repeated identical edges are ignored;
// a child may have several parents of different kinds. Endpoints that
// are not in the graph are still recorded on the side that is, so that
// Validate can report them.
func (g *Graph) AddEdge(parent, child NodeID, kind EdgeKind) {
	c := g.Nodes[child]
	p := g.Nodes[parent]
	if c != nil {
		for _, e := range c.Parents {
			if e.Parent == parent && e.Kind == kind {
				return
			}
		}
		c.Parents = append(c.Parents, Edge{Parent: parent, Kind: kind})
	}
	if p != nil {
		p.Children = append(p.Children, child)
	}
}

// ComputeRoots records every node without parents, in id order.
func (g *Graph) ComputeRoots() {
	g.Roots = g.Roots[:0]
	for id, n := range g.Nodes {
		if len(n.Parents) == 0 {
			g.Roots = append(g.Roots, id)
		}
	}
	sort.Slice(g.Roots, func(i, j int) bool { return g.Roots[i] < g.Roots[j] })
}

// Get returns the node with the given ID, or nil.
func (g *Graph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Children returns the child nodes of the given node.
func (g *Graph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// Ancestors returns every node reachable through parent edges,
// breadth-first, nearest first. Each ancestor appears once.
func (g *Graph) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	seen := map[NodeID]bool{id: true}
	queue := []NodeID{id}
	for len(queue) > 0 {
		n := g.Nodes[queue[0]]
		queue = queue[1:]
		if n == nil {
			continue
		}
		for _, e := range n.Parents {
			if seen[e.Parent] {
				continue
			}
			seen[e.Parent] = true
			out = append(out, e.Parent)
			queue = append(queue, e.Parent)
		}
	}
	return out
}

// Descendants returns every node reachable through child edges,
// breadth-first.
func (g *Graph) Descendants(id NodeID) []NodeID {
	var out []NodeID
	seen := map[NodeID]bool{id: true}
	queue := []NodeID{id}
	for len(queue) > 0 {
		n := g.Nodes[queue[0]]
		queue = queue[1:]
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

// SpatialParent returns the nearest spatial structure node that
// aggregates or contains id. Openings and fillers resolve through the
// element they void or fill.
func (g *Graph) SpatialParent(id NodeID) *Node {
	seen := map[NodeID]bool{}
	for cur := g.Nodes[id]; cur != nil && !seen[cur.ID]; {
		seen[cur.ID] = true
		var next *Node
		for _, e := range cur.Parents {
			p := g.Nodes[e.Parent]
			if p == nil {
				continue
			}
			if p.Kind.Spatial() && (e.Kind == EdgeContains || e.Kind == EdgeAggregates) {
				return p
			}
			if next == nil {
				next = p
			}
		}
		cur = next
	}
	return nil
}

// SpatialChain returns the spatial ancestors of id from the root down to
// its immediate spatial parent, e.g. project, site, building, storey.
func (g *Graph) SpatialChain(id NodeID) []*Node {
	var chain []*Node
	seen := map[NodeID]bool{}
	for p := g.SpatialParent(id); p != nil && !seen[p.ID]; p = g.SpatialParent(p.ID) {
		seen[p.ID] = true
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Storeys returns the storey nodes ordered by elevation; storeys without
// an elevation sort last by id.
func (g *Graph) Storeys() []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodeStorey {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Elevation != nil && b.Elevation != nil && *a.Elevation != *b.Elevation:
			return *a.Elevation < *b.Elevation
		case a.Elevation != nil && b.Elevation == nil:
			return true
		case a.Elevation == nil && b.Elevation != nil:
			return false
		}
		return a.ID < b.ID
	})
	return out
}
