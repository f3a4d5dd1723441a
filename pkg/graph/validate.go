package graph

import (
	"fmt"
	"sort"
)

// ValidationSeverity indicates whether a validation finding makes the
// model unusable for hierarchy output or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks hierarchical output
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

func (w ValidationWarning) String() string {
	if w.NodeID.IsZero() {
		return w.Message
	}
	return fmt.Sprintf("node %s: %s", w.NodeID, w.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from the structural and containment checks.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs the structural checks on the decomposition graph and
// returns its findings, sorted by node id. An empty slice means the
// graph is well formed. The graph is never mutated.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateSingleContainer(g)...)
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].NodeID < errs[j].NodeID })
	return errs
}

// ValidateAll runs the structural checks and, when extents are given,
// the storey containment check.
func ValidateAll(g *Graph, c *ContainmentInput) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	if c != nil {
		result.Warnings = append(result.Warnings, ValidateContainment(g, *c)...)
	}
	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Visit in id order so the reported node is deterministic.
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if color[id] == white && visit(id) {
			// One cycle error is sufficient; stop early.
			break
		}
	}

	return errs
}

// validateReferences reports edges whose other end is not a product in
// the graph.
func validateReferences(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s is not a product", childID),
					Severity: SeverityError,
				})
			}
		}
		for _, e := range node.Parents {
			if _, ok := g.Nodes[e.Parent]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("%s parent %s is not a product", e.Kind, e.Parent),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateRoots expects a single project root and warns about products
// that are not placed anywhere in the spatial structure.
func validateRoots(g *Graph) []ValidationError {
	var errs []ValidationError

	projects := 0
	for _, rid := range g.Roots {
		n := g.Nodes[rid]
		if n == nil {
			continue
		}
		if n.Kind == NodeProject {
			projects++
			continue
		}
		errs = append(errs, ValidationError{
			NodeID:   rid,
			Message:  fmt.Sprintf("%s %q is not part of the spatial structure (orphan)", n.Type, n.Name),
			Severity: SeverityWarning,
		})
	}
	if projects != 1 {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("expected exactly one project root, found %d", projects),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateSingleContainer warns when an element is contained in more than
// one spatial structure element.
func validateSingleContainer(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.Nodes {
		containers := 0
		for _, e := range n.Parents {
			if e.Kind == EdgeContains {
				containers++
			}
		}
		if containers > 1 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("contained in %d spatial structure elements", containers),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
