package graph

import (
	"github.com/chazu/ifcgeom/pkg/ifc"
)

// Build constructs the decomposition graph of a model. Every IfcProduct
// and the IfcProject become nodes; relationship entities become edges.
func Build(f *ifc.File) *Graph {
	g := New()
	for _, e := range f.ByType("IfcProject") {
		g.AddNode(newNode(e))
	}
	for _, e := range f.ByType("IfcProduct") {
		g.AddNode(newNode(e))
	}

	for _, rel := range f.ByType("IfcRelAggregates") {
		linkMany(g, rel.Ref("RelatingObject"), rel.Refs("RelatedObjects"), EdgeAggregates)
	}
	for _, rel := range f.ByType("IfcRelNests") {
		linkMany(g, rel.Ref("RelatingObject"), rel.Refs("RelatedObjects"), EdgeAggregates)
	}
	for _, rel := range f.ByType("IfcRelContainedInSpatialStructure") {
		linkMany(g, rel.Ref("RelatingStructure"), rel.Refs("RelatedElements"), EdgeContains)
	}
	for _, rel := range f.ByType("IfcRelVoidsElement") {
		link(g, rel.Ref("RelatingBuildingElement"), rel.Ref("RelatedOpeningElement"), EdgeVoids)
	}
	for _, rel := range f.ByType("IfcRelFillsElement") {
		link(g, rel.Ref("RelatingOpeningElement"), rel.Ref("RelatedBuildingElement"), EdgeFills)
	}

	g.ComputeRoots()
	return g
}

func newNode(e *ifc.Entity) *Node {
	n := &Node{ID: NodeID(e.ID), Kind: kindOf(e), Type: e.Type}
	n.Name, _ = e.Str("Name")
	if n.Kind == NodeStorey {
		if elev, ok := e.Float("Elevation"); ok {
			n.Elevation = &elev
		}
	}
	return n
}

func kindOf(e *ifc.Entity) NodeKind {
	switch {
	case e.Is("IfcProject"):
		return NodeProject
	case e.Is("IfcSite"):
		return NodeSite
	case e.Is("IfcBuilding"):
		return NodeBuilding
	case e.Is("IfcBuildingStorey"):
		return NodeStorey
	case e.Is("IfcSpace"):
		return NodeSpace
	case e.Is("IfcOpeningElement"):
		return NodeOpening
	default:
		return NodeElement
	}
}

func link(g *Graph, parent, child *ifc.Entity, kind EdgeKind) {
	if parent == nil || child == nil {
		return
	}
	g.AddEdge(NodeID(parent.ID), NodeID(child.ID), kind)
}

func linkMany(g *Graph, parent *ifc.Entity, children []*ifc.Entity, kind EdgeKind) {
	for _, c := range children {
		link(g, parent, c, kind)
	}
}
