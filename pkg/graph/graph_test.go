package graph

import (
	"testing"

	"github.com/chazu/ifcgeom/pkg/ifc/ifctest"
)

func TestBuildSample(t *testing.T) {
	g := Build(ifctest.Sample(t))

	if got := g.NodeCount(); got != 12 {
		t.Fatalf("NodeCount() = %d, want 12", got)
	}
	if len(g.Roots) != 1 || g.Roots[0] != ifctest.ProjectID {
		t.Fatalf("Roots = %v, want [#%d]", g.Roots, ifctest.ProjectID)
	}

	tests := []struct {
		id   int
		kind NodeKind
	}{
		{ifctest.ProjectID, NodeProject},
		{ifctest.SiteID, NodeSite},
		{ifctest.BuildingID, NodeBuilding},
		{ifctest.GroundID, NodeStorey},
		{ifctest.SpaceID, NodeSpace},
		{ifctest.WallID, NodeElement},
		{ifctest.OpeningID, NodeOpening},
	}
	for _, tt := range tests {
		n := g.Get(NodeID(tt.id))
		if n == nil {
			t.Fatalf("Get(#%d) = nil", tt.id)
		}
		if n.Kind != tt.kind {
			t.Errorf("Get(#%d).Kind = %v, want %v", tt.id, n.Kind, tt.kind)
		}
	}
}

func TestSpatialParent(t *testing.T) {
	g := Build(ifctest.Sample(t))

	tests := []struct {
		name string
		id   int
		want int
	}{
		{"contained wall", ifctest.WallID, ifctest.GroundID},
		{"opening resolves through wall", ifctest.OpeningID, ifctest.GroundID},
		{"door contained directly", ifctest.DoorID, ifctest.GroundID},
		{"column on first floor", ifctest.Column1ID, ifctest.FirstID},
		{"storey in building", ifctest.GroundID, ifctest.BuildingID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := g.SpatialParent(NodeID(tt.id))
			if p == nil {
				t.Fatalf("SpatialParent(#%d) = nil", tt.id)
			}
			if p.ID != NodeID(tt.want) {
				t.Errorf("SpatialParent(#%d) = %s, want #%d", tt.id, p.ID, tt.want)
			}
		})
	}

	if p := g.SpatialParent(ifctest.ProjectID); p != nil {
		t.Errorf("SpatialParent(project) = %s, want nil", p.ID)
	}
}

func TestSpatialChain(t *testing.T) {
	g := Build(ifctest.Sample(t))
	chain := g.SpatialChain(ifctest.OpeningID)
	want := []NodeID{ifctest.ProjectID, ifctest.SiteID, ifctest.BuildingID, ifctest.GroundID}
	if len(chain) != len(want) {
		t.Fatalf("len(SpatialChain) = %d, want %d", len(chain), len(want))
	}
	for i, n := range chain {
		if n.ID != want[i] {
			t.Errorf("SpatialChain[%d] = %s, want %s", i, n.ID, want[i])
		}
	}
}

func TestAncestorsNearestFirst(t *testing.T) {
	g := Build(ifctest.Sample(t))
	anc := g.Ancestors(ifctest.DoorID)
	if len(anc) == 0 {
		t.Fatal("Ancestors(door) is empty")
	}
	// The door is filled into the opening and contained in the ground
	// floor; both are direct parents and precede the wall.
	pos := map[NodeID]int{}
	for i, id := range anc {
		pos[id] = i
	}
	for _, id := range []NodeID{ifctest.OpeningID, ifctest.GroundID, ifctest.WallID, ifctest.ProjectID} {
		if _, ok := pos[id]; !ok {
			t.Fatalf("Ancestors(door) missing %s: %v", id, anc)
		}
	}
	if pos[ifctest.OpeningID] > pos[ifctest.WallID] {
		t.Errorf("opening after wall in %v", anc)
	}
	if pos[ifctest.ProjectID] != len(anc)-1 {
		t.Errorf("project is not the farthest ancestor in %v", anc)
	}
}

func TestDescendants(t *testing.T) {
	g := Build(ifctest.Sample(t))
	got := g.Descendants(ifctest.ProjectID)
	if len(got) != g.NodeCount()-1 {
		t.Errorf("len(Descendants(project)) = %d, want %d", len(got), g.NodeCount()-1)
	}
}

func TestStoreysByElevation(t *testing.T) {
	g := Build(ifctest.Sample(t))
	storeys := g.Storeys()
	if len(storeys) != 2 {
		t.Fatalf("len(Storeys()) = %d, want 2", len(storeys))
	}
	if storeys[0].ID != ifctest.GroundID || storeys[1].ID != ifctest.FirstID {
		t.Errorf("Storeys() = [%s %s], want [#%d #%d]", storeys[0].ID, storeys[1].ID, ifctest.GroundID, ifctest.FirstID)
	}
}

func TestAddEdgeIgnoresDuplicates(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: 1, Kind: NodeProject})
	g.AddNode(&Node{ID: 2, Kind: NodeSite})
	g.AddEdge(1, 2, EdgeAggregates)
	g.AddEdge(1, 2, EdgeAggregates)
	if got := len(g.Get(2).Parents); got != 1 {
		t.Errorf("len(Parents) = %d, want 1", got)
	}
	if got := len(g.Get(1).Children); got != 1 {
		t.Errorf("len(Children) = %d, want 1", got)
	}
}
