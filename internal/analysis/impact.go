package analysis

import (
	"cpatminer/internal/graph"
)

// ImpactReport summarizes what a change graph changes.
//
// Deleted and Inserted hold core actions that exist in only one version:
// an old action with no mapping edge out of it, or a new action with no
// mapping edge into it. Mapped counts the action pairs matched across
// versions. Affected holds the nodes that directly depend on a deleted or
// inserted action.
type ImpactReport struct {
	Deleted  []*graph.Node
	Inserted []*graph.Node
	Mapped   int
	Affected []*graph.Node
}

// Analyzer performs impact analysis on a change graph.
type Analyzer struct {
	g *graph.Graph
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// AnalyzeImpact classifies the core actions of the graph by version and
// collects their dependents.
func (a *Analyzer) AnalyzeImpact() *ImpactReport {
	report := &ImpactReport{
		Deleted:  []*graph.Node{},
		Inserted: []*graph.Node{},
		Affected: []*graph.Node{},
	}
	if a.g == nil {
		return report
	}

	direct := make(map[graph.NodeID]bool)

	// 1. Find unmatched actions
	for _, node := range a.g.Nodes() {
		if !node.CoreAction {
			continue
		}
		switch node.Version {
		case graph.Old:
			if hasMapping(a.g.OutEdges(node.ID)) {
				report.Mapped++
				continue
			}
			report.Deleted = append(report.Deleted, node)
			direct[node.ID] = true
		case graph.New:
			if hasMapping(a.g.InEdges(node.ID)) {
				continue
			}
			report.Inserted = append(report.Inserted, node)
			direct[node.ID] = true
		}
	}

	// 2. Find dependents
	seen := make(map[graph.NodeID]bool)
	for _, group := range [][]*graph.Node{report.Deleted, report.Inserted} {
		for _, node := range group {
			for _, e := range a.g.OutEdges(node.ID) {
				if e.Label == graph.EdgeMapping || direct[e.Dst] || seen[e.Dst] {
					continue
				}
				seen[e.Dst] = true
				report.Affected = append(report.Affected, a.g.Node(e.Dst))
			}
		}
	}

	return report
}

func hasMapping(edges []*graph.Edge) bool {
	for _, e := range edges {
		if e.Label == graph.EdgeMapping {
			return true
		}
	}
	return false
}
