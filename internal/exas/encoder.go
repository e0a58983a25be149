package exas

import (
	"fmt"

	"cpatminer/internal/graph"
)

// Encoder computes fingerprints for the label sequences of one graph.
// Node codes come from the graph's own label table; an Encoder must not be
// shared across graphs.
type Encoder struct {
	nodes *NodeTable
}

// NewEncoder registers the labels of g's live nodes in id order.
func NewEncoder(g *graph.Graph) *Encoder {
	t := NewNodeTable()
	if g != nil {
		for _, n := range g.Nodes() {
			t.Register(n.Label)
		}
	}
	return &Encoder{nodes: t}
}

// Table exposes the node-label codes of the encoder.
func (e *Encoder) Table() *NodeTable { return e.nodes }

// Encode folds an alternating node/edge label sequence into one fingerprint.
// Node positions add their code; edge positions shift the accumulator left by
// 8 bits and add the edge code shifted left by 5. Arithmetic wraps at 32 bits.
func (e *Encoder) Encode(labels []string) (int32, error) {
	if len(labels) == 0 {
		return 0, ErrEmptySequence
	}
	if len(labels) > MaxLength {
		return 0, fmt.Errorf("%w: %d positions", ErrSequenceTooLong, len(labels))
	}

	var f int32
	for i, label := range labels {
		if i%2 == 0 {
			f += e.nodes.Code(label)
			continue
		}
		f <<= 8
		f += EdgeCode(label) << 5
	}
	return f, nil
}

// Single is the fingerprint of a lone node label: its node code.
func (e *Encoder) Single(label string) int32 {
	return e.nodes.Code(label)
}

// Fingerprint is the code of one path starting at Node.
type Fingerprint struct {
	Node   graph.NodeID
	Labels []string
	Value  int32
}

// Fingerprints encodes every path of up to MaxNodes nodes starting at each
// live node of g, nodes in id order.
func (e *Encoder) Fingerprints(g *graph.Graph) []Fingerprint {
	var out []Fingerprint
	for _, n := range g.Nodes() {
		for _, path := range Paths(g, n.ID, MaxNodes) {
			v, err := e.Encode(path)
			if err != nil {
				continue
			}
			out = append(out, Fingerprint{Node: n.ID, Labels: path, Value: v})
		}
	}
	return out
}

// Paths lists the alternating label sequences of the simple paths that start
// at start and follow out-edges, visiting at most maxNodes nodes. The lone
// start node is the first path. maxNodes is clamped to [1, MaxNodes].
func Paths(g *graph.Graph, start graph.NodeID, maxNodes int) [][]string {
	n := g.Node(start)
	if n == nil {
		return nil
	}
	if maxNodes < 1 {
		maxNodes = 1
	}
	if maxNodes > MaxNodes {
		maxNodes = MaxNodes
	}

	var out [][]string
	onPath := map[graph.NodeID]bool{start: true}

	var walk func(id graph.NodeID, labels []string, depth int)
	walk = func(id graph.NodeID, labels []string, depth int) {
		path := make([]string, len(labels))
		copy(path, labels)
		out = append(out, path)
		if depth >= maxNodes {
			return
		}
		for _, e := range g.OutEdges(id) {
			if onPath[e.Dst] {
				continue
			}
			onPath[e.Dst] = true
			walk(e.Dst, append(labels, string(e.Label), g.Node(e.Dst).Label), depth+1)
			onPath[e.Dst] = false
		}
	}
	walk(start, []string{n.Label}, 1)
	return out
}
