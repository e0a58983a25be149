package graph

type mappedKey struct {
	srcLabel string
	label    EdgeKind
}

// MappedEdges returns the groups of redundant edges ending at id.
//
// Two in-edges are mapped onto each other when their sources carry the same
// label and the edges carry the same label: a label-based matcher cannot tell
// them apart. Only groups with more than one edge are returned, each in edge
// order, groups ordered by their first edge.
func (g *Graph) MappedEdges(id NodeID) [][]*Edge {
	groups := make(map[mappedKey][]*Edge)
	var order []mappedKey
	for _, e := range g.InEdges(id) {
		k := mappedKey{srcLabel: g.nodes[e.Src].Label, label: e.Label}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	var out [][]*Edge
	for _, k := range order {
		if len(groups[k]) > 1 {
			out = append(out, groups[k])
		}
	}
	return out
}

// HasDuplicateEdge reports whether any node has a group of mapped edges.
func (g *Graph) HasDuplicateEdge() bool {
	for _, n := range g.nodes {
		if n != nil && len(g.MappedEdges(n.ID)) > 0 {
			return true
		}
	}
	return false
}
