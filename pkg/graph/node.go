package graph

import "fmt"

// NodeID is the entity instance id of the node.
type NodeID int

// IsZero reports whether the id is unset.
func (id NodeID) IsZero() bool { return id == 0 }

func (id NodeID) String() string { return fmt.Sprintf("#%d", int(id)) }

// NodeKind enumerates the roles a product plays in the decomposition.
type NodeKind int

const (
	NodeProject  NodeKind = iota // IfcProject
	NodeSite                     // IfcSite
	NodeBuilding                 // IfcBuilding
	NodeStorey                   // IfcBuildingStorey
	NodeSpace                    // IfcSpace
	NodeElement                  // any other product
	NodeOpening                  // IfcOpeningElement
)

func (k NodeKind) String() string {
	switch k {
	case NodeProject:
		return "project"
	case NodeSite:
		return "site"
	case NodeBuilding:
		return "building"
	case NodeStorey:
		return "storey"
	case NodeSpace:
		return "space"
	case NodeElement:
		return "element"
	case NodeOpening:
		return "opening"
	default:
		return "unknown"
	}
}

// Spatial reports whether nodes of this kind form the spatial structure.
func (k NodeKind) Spatial() bool {
	return k <= NodeSpace
}

// EdgeKind names the relationship that produced a parent-child edge.
type EdgeKind int

const (
	EdgeAggregates EdgeKind = iota // IfcRelAggregates, IfcRelNests
	EdgeContains                   // IfcRelContainedInSpatialStructure
	EdgeVoids                      // IfcRelVoidsElement: element -> opening
	EdgeFills                      // IfcRelFillsElement: opening -> filler
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeAggregates:
		return "aggregates"
	case EdgeContains:
		return "contains"
	case EdgeVoids:
		return "voids"
	case EdgeFills:
		return "fills"
	default:
		return "unknown"
	}
}

// Edge points at a parent.
type Edge struct {
	Parent NodeID
	Kind   EdgeKind
}

// Node is one product in the decomposition.
type Node struct {
	ID        NodeID
	Kind      NodeKind
	Type      string   // IFC entity type
	Name      string   // Name attribute, may be empty
	Elevation *float64 // storeys only, in file units
	Children  []NodeID
	Parents   []Edge
}
