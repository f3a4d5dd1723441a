package graph

import (
	"fmt"
	"sort"
)

const (
	// DefaultSliceTolerance widens every storey slice downwards and upwards.
	DefaultSliceTolerance = 0.3
	// DefaultSliceExtent bounds the lowest and highest storey slice.
	DefaultSliceExtent = 1e4
	// misplacedRatio is the share of the best overlap an element must have
	// with its assigned storey to pass.
	misplacedRatio = 0.9
)

// ZRange is a closed interval along the vertical axis.
type ZRange struct {
	Min, Max float64
}

// Overlaps reports whether the ranges share any part.
func (r ZRange) Overlaps(o ZRange) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

// ContainmentInput drives ValidateContainment. Overlap returns how much of
// the element's geometry lies inside the slice; the caller decides the
// measure (volume, height). Elements without geometry are left out of
// Elements.
type ContainmentInput struct {
	Elements  []NodeID
	Overlap   func(id NodeID, slice ZRange) float64
	Scale     float64 // applied to storey elevations; zero means 1
	Tolerance float64 // zero means DefaultSliceTolerance
	Extent    float64 // zero means DefaultSliceExtent
}

// StoreySlice pairs a storey with the vertical band it owns.
type StoreySlice struct {
	Storey *Node
	Range  ZRange
}

// StoreySlices divides the vertical axis into one band per storey, from
// the storey's elevation to the next one up, widened by the tolerance.
// The lowest band extends down to -extent, the highest up to +extent.
func StoreySlices(g *Graph, scale, tolerance, extent float64) []StoreySlice {
	if scale == 0 {
		scale = 1
	}
	storeys := g.Storeys()
	elev := func(n *Node) float64 {
		if n.Elevation == nil {
			return 0
		}
		return *n.Elevation * scale
	}
	sort.SliceStable(storeys, func(i, j int) bool { return elev(storeys[i]) < elev(storeys[j]) })

	slices := make([]StoreySlice, len(storeys))
	for i, s := range storeys {
		lo, hi := elev(s), extent
		if i == 0 {
			lo = -extent
		}
		if i+1 < len(storeys) {
			hi = elev(storeys[i+1])
		}
		slices[i] = StoreySlice{Storey: s, Range: ZRange{Min: lo - tolerance, Max: hi + tolerance}}
	}
	return slices
}

// ValidateContainment warns about elements contained in one storey while
// most of their geometry lies in the band of another. Only elements
// directly contained in a storey are considered.
func ValidateContainment(g *Graph, c ContainmentInput) []ValidationWarning {
	if c.Overlap == nil {
		return nil
	}
	tol := c.Tolerance
	if tol == 0 {
		tol = DefaultSliceTolerance
	}
	extent := c.Extent
	if extent == 0 {
		extent = DefaultSliceExtent
	}
	slices := StoreySlices(g, c.Scale, tol, extent)
	if len(slices) == 0 {
		return nil
	}

	var warnings []ValidationWarning
	for _, id := range c.Elements {
		assigned := containingStorey(g, id)
		if assigned == nil {
			continue
		}
		best, assignedIdx := -1, -1
		overlaps := make([]float64, len(slices))
		for i, s := range slices {
			overlaps[i] = c.Overlap(id, s.Range)
			if best < 0 || overlaps[i] > overlaps[best] {
				best = i
			}
			if s.Storey.ID == assigned.ID {
				assignedIdx = i
			}
		}
		if assignedIdx < 0 || overlaps[best] <= 0 {
			continue
		}
		if overlaps[assignedIdx] < overlaps[best]*misplacedRatio {
			warnings = append(warnings, ValidationWarning{
				NodeID: id,
				Message: fmt.Sprintf("contained in storey %s %q but located on storey %s %q",
					assigned.ID, assigned.Name, slices[best].Storey.ID, slices[best].Storey.Name),
			})
		}
	}
	sort.SliceStable(warnings, func(i, j int) bool { return warnings[i].NodeID < warnings[j].NodeID })
	return warnings
}

func containingStorey(g *Graph, id NodeID) *Node {
	n := g.Nodes[id]
	if n == nil {
		return nil
	}
	for _, e := range n.Parents {
		if e.Kind != EdgeContains {
			continue
		}
		if p := g.Nodes[e.Parent]; p != nil && p.Kind == NodeStorey {
			return p
		}
	}
	return nil
}
