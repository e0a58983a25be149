package graph

import (
	"fmt"

	"cpatminer/internal/kinds"
)

// NodeID addresses a node within its graph.
type NodeID int

// EdgeID addresses an edge within its graph.
type EdgeID int

// Node is one syntax-tree node participating in a change.
// The classification flags are fixed when the node is created.
type Node struct {
	ID      NodeID
	Label   string
	Kind    kinds.Kind
	Version Version

	CoreAction bool
	Literal    bool
	Assignment bool
	Unary      bool

	// Incident edges, kept in creation order by AddEdge and DeleteEdge.
	in  []EdgeID
	out []EdgeID
}

// Edge represents a directed, labeled relationship between two nodes.
type Edge struct {
	ID    EdgeID
	Src   NodeID
	Dst   NodeID
	Label EdgeKind
}

// Graph owns the nodes and edges of one change.
// Nodes and edges live in arenas addressed by id; deleted slots stay nil so
// ids are never reused within a graph.
type Graph struct {
	ID        int
	PatternID int
	Project   string
	Name      string

	nodes    []*Node
	edges    []*Edge
	numNodes int
	numEdges int
}

// NewGraph creates an empty graph.
func NewGraph(id int) *Graph {
	return &Graph{
		ID:        id,
		PatternID: -1,
	}
}

// AddNode creates a node and classifies it by its syntax kind.
func (g *Graph) AddNode(label string, kind kinds.Kind, version Version) (*Node, error) {
	if !version.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, int(version))
	}
	n := &Node{
		ID:         NodeID(len(g.nodes)),
		Label:      label,
		Kind:       kind,
		Version:    version,
		CoreAction: kind.IsCoreAction(),
		Literal:    kind.IsLiteral(),
		Assignment: kind.IsAssignment(),
		Unary:      kind.IsUnary(),
	}
	g.nodes = append(g.nodes, n)
	g.numNodes++
	return n, nil
}

// AddEdge links two live nodes. It returns nil if either endpoint is absent.
func (g *Graph) AddEdge(src, dst NodeID, label EdgeKind) *Edge {
	s, d := g.Node(src), g.Node(dst)
	if s == nil || d == nil {
		return nil
	}
	e := &Edge{
		ID:    EdgeID(len(g.edges)),
		Src:   src,
		Dst:   dst,
		Label: label,
	}
	g.edges = append(g.edges, e)
	g.numEdges++
	s.out = append(s.out, e.ID)
	d.in = append(d.in, e.ID)
	return e
}

// DeleteEdge removes an edge. Deleting an absent edge is a no-op.
func (g *Graph) DeleteEdge(id EdgeID) {
	e := g.Edge(id)
	if e == nil {
		return
	}
	g.edges[id] = nil
	g.numEdges--
	if s := g.Node(e.Src); s != nil {
		s.out = removeEdgeID(s.out, id)
	}
	if d := g.Node(e.Dst); d != nil {
		d.in = removeEdgeID(d.in, id)
	}
}

// DeleteNode removes a node together with every edge it is an endpoint of.
// Deleting an absent node is a no-op.
func (g *Graph) DeleteNode(id NodeID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	incident := make([]EdgeID, 0, len(n.in)+len(n.out))
	incident = append(incident, n.in...)
	incident = append(incident, n.out...)
	for _, eid := range incident {
		g.DeleteEdge(eid)
	}
	g.nodes[id] = nil
	g.numNodes--
}

// Node returns the live node with the given id, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Edge returns the live edge with the given id, or nil.
func (g *Graph) Edge(id EdgeID) *Edge {
	if id < 0 || int(id) >= len(g.edges) {
		return nil
	}
	return g.edges[id]
}

// Nodes returns a snapshot of the live nodes in id order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, g.numNodes)
	for _, n := range g.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns a snapshot of the live edges in id order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, g.numEdges)
	for _, e := range g.edges {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (g *Graph) NumNodes() int { return g.numNodes }

func (g *Graph) NumEdges() int { return g.numEdges }

// InEdges returns a snapshot of the edges ending at id.
func (g *Graph) InEdges(id NodeID) []*Edge {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	return g.resolveEdges(n.in)
}

// OutEdges returns a snapshot of the edges starting at id.
func (g *Graph) OutEdges(id NodeID) []*Edge {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	return g.resolveEdges(n.out)
}

// InNodes returns the distinct sources of the edges ending at id, in edge order.
func (g *Graph) InNodes(id NodeID) []*Node {
	var out []*Node
	seen := make(map[NodeID]bool)
	for _, e := range g.InEdges(id) {
		if seen[e.Src] {
			continue
		}
		seen[e.Src] = true
		out = append(out, g.nodes[e.Src])
	}
	return out
}

// OutNodes returns the distinct destinations of the edges starting at id, in edge order.
func (g *Graph) OutNodes(id NodeID) []*Node {
	var out []*Node
	seen := make(map[NodeID]bool)
	for _, e := range g.OutEdges(id) {
		if seen[e.Dst] {
			continue
		}
		seen[e.Dst] = true
		out = append(out, g.nodes[e.Dst])
	}
	return out
}

// HasEdge reports whether any edge leads from src to dst.
func (g *Graph) HasEdge(src, dst NodeID) bool {
	n := g.Node(src)
	if n == nil {
		return false
	}
	for _, eid := range n.out {
		if g.edges[eid].Dst == dst {
			return true
		}
	}
	return false
}

// SetLabel changes the display label of a live node.
func (g *Graph) SetLabel(id NodeID, label string) {
	if n := g.Node(id); n != nil {
		n.Label = label
	}
}

// SetPatternID records the mined pattern this graph was recognized as.
func (g *Graph) SetPatternID(id int) {
	g.PatternID = id
}

func (g *Graph) resolveEdges(ids []EdgeID) []*Edge {
	out := make([]*Edge, 0, len(ids))
	for _, eid := range ids {
		out = append(out, g.edges[eid])
	}
	return out
}

func removeEdgeID(ids []EdgeID, id EdgeID) []EdgeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
