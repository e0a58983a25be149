package graph

// Stats summarizes the composition of a graph.
type Stats struct {
	Nodes       int
	Edges       int
	OldNodes    int
	NewNodes    int
	CoreActions int
	Literals    int
	EdgeKinds   map[EdgeKind]int
}

func (g *Graph) Stats() Stats {
	s := Stats{EdgeKinds: make(map[EdgeKind]int)}
	if g == nil {
		return s
	}
	s.Nodes = g.NumNodes()
	s.Edges = g.NumEdges()
	for _, n := range g.Nodes() {
		switch n.Version {
		case Old:
			s.OldNodes++
		case New:
			s.NewNodes++
		}
		if n.CoreAction {
			s.CoreActions++
		}
		if n.Literal {
			s.Literals++
		}
	}
	for _, e := range g.Edges() {
		s.EdgeKinds[e.Label]++
	}
	return s
}
