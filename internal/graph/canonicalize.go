package graph

import "unicode/utf8"

// repeatedLiteralShift is added to the first character of the second literal
// of a repeated group.
const repeatedLiteralShift = 128

// Passes selects which canonicalization passes run.
type Passes struct {
	Assignments    bool `yaml:"assignments"`
	Unary          bool `yaml:"unary"`
	Literals       bool `yaml:"literals"`
	DuplicateEdges bool `yaml:"duplicate_edges"`
}

// AllPasses enables every pass.
func AllPasses() Passes {
	return Passes{
		Assignments:    true,
		Unary:          true,
		Literals:       true,
		DuplicateEdges: true,
	}
}

// PassResult records what one pass removed.
type PassResult struct {
	Name         string
	NodesRemoved int
	EdgesRemoved int
	EdgesAdded   int
}

// CanonicalReport summarizes a Canonicalize run.
type CanonicalReport struct {
	Passes []PassResult
}

// NodesRemoved totals the nodes removed by all passes.
func (r CanonicalReport) NodesRemoved() int {
	total := 0
	for _, p := range r.Passes {
		total += p.NodesRemoved
	}
	return total
}

// Canonicalize runs the selected passes in order: assignment elision, unary
// elision, literal collapsing, duplicate-edge pruning.
func Canonicalize(g *Graph, passes Passes) CanonicalReport {
	var report CanonicalReport
	run := func(name string, enabled bool, pass func()) {
		if !enabled {
			return
		}
		nodes, edges := g.NumNodes(), g.NumEdges()
		added := len(g.edges)
		pass()
		added = len(g.edges) - added
		report.Passes = append(report.Passes, PassResult{
			Name:         name,
			NodesRemoved: nodes - g.NumNodes(),
			EdgesRemoved: edges + added - g.NumEdges(),
			EdgesAdded:   added,
		})
	}

	run("assignments", passes.Assignments, g.ElideAssignments)
	run("unary", passes.Unary, g.ElideUnaryOperations)
	run("literals", passes.Literals, g.CollapseLiterals)
	run("duplicate_edges", passes.DuplicateEdges, g.PruneDuplicateEdges)
	return report
}

// ElideAssignments removes assignment nodes. Before an assignment is deleted,
// every parameter source gets a shortcut edge to every definition target it
// is not already linked to, carrying the definition edge's label.
func (g *Graph) ElideAssignments() {
	for _, node := range g.Nodes() {
		if g.Node(node.ID) == nil || !node.Assignment {
			continue
		}
		defs := g.OutEdges(node.ID)
		for _, ie := range g.InEdges(node.ID) {
			if ie.Label != EdgeParameter {
				continue
			}
			for _, oe := range defs {
				if oe.Label != EdgeDefinition {
					continue
				}
				if !g.HasEdge(ie.Src, oe.Dst) {
					g.AddEdge(ie.Src, oe.Dst, oe.Label)
				}
			}
		}
		g.DeleteNode(node.ID)
	}
}

// ElideUnaryOperations deletes prefix and postfix expression nodes without rewiring.
func (g *Graph) ElideUnaryOperations() {
	for _, node := range g.Nodes() {
		if node.Unary {
			g.DeleteNode(node.ID)
		}
	}
}

// CollapseLiterals bounds repeated literal in-neighbors. For each node, literal
// in-neighbors are grouped by label: the first of a group is kept, the second
// is relabeled as a repeated literal, the rest are deleted.
func (g *Graph) CollapseLiterals() {
	for _, node := range g.Nodes() {
		if g.Node(node.ID) == nil {
			continue
		}
		groups := make(map[string][]*Node)
		var labels []string
		for _, n := range g.InNodes(node.ID) {
			if !n.Literal {
				continue
			}
			if _, ok := groups[n.Label]; !ok {
				labels = append(labels, n.Label)
			}
			groups[n.Label] = append(groups[n.Label], n)
		}
		for _, label := range labels {
			lits := groups[label]
			if len(lits) < 2 {
				continue
			}
			g.SetLabel(lits[1].ID, repeatedLiteralLabel(label))
			for _, n := range lits[2:] {
				g.DeleteNode(n.ID)
			}
		}
	}
}

// repeatedLiteralLabel is the single character whose code point is the
// label's first character shifted by repeatedLiteralShift.
func repeatedLiteralLabel(label string) string {
	r, _ := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return label
	}
	return string(r + repeatedLiteralShift)
}

// PruneDuplicateEdges keeps one edge of each group of mapped edges. An edge
// whose endpoints carry the same label is preferred; otherwise the earliest
// edge survives.
func (g *Graph) PruneDuplicateEdges() {
	for _, node := range g.Nodes() {
		for _, group := range g.MappedEdges(node.ID) {
			keep := group[0]
			for _, e := range group {
				if g.nodes[e.Src].Label == g.nodes[e.Dst].Label {
					keep = e
					break
				}
			}
			for _, e := range group {
				if e.ID != keep.ID {
					g.DeleteEdge(e.ID)
				}
			}
		}
	}
}
