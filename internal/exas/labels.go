package exas

import "cpatminer/internal/graph"

const (
	// MaxNodes is the largest number of node labels in one sequence.
	MaxNodes = 4

	// MaxLength is the largest number of positions in one sequence:
	// MaxNodes node labels interleaved with the edge labels between them.
	MaxLength = MaxNodes*2 - 1
)

var edgeCodes = map[graph.EdgeKind]int32{
	graph.EdgeQualifier:  0,
	graph.EdgeCondition:  1,
	graph.EdgeControl:    2,
	graph.EdgeDefinition: 3,
	graph.EdgeMapping:    4,
	graph.EdgeParameter:  5,
	graph.EdgeReceiver:   6,
	graph.EdgeReference:  7,
}

// EdgeCode returns the fixed code of an edge label, or 0 when unrecognized.
func EdgeCode(label string) int32 {
	return edgeCodes[graph.EdgeKind(label)]
}

// NodeTable assigns node-label codes in first-seen order, starting at 1.
// Code 0 is reserved for labels that were never registered.
type NodeTable struct {
	codes  map[string]int32
	labels []string
}

func NewNodeTable() *NodeTable {
	return &NodeTable{codes: make(map[string]int32)}
}

// Register returns the code of label, assigning the next one if it is new.
func (t *NodeTable) Register(label string) int32 {
	if c, ok := t.codes[label]; ok {
		return c
	}
	t.labels = append(t.labels, label)
	c := int32(len(t.labels))
	t.codes[label] = c
	return c
}

// Code returns the code of label, or 0 when it was never registered.
func (t *NodeTable) Code(label string) int32 {
	return t.codes[label]
}

// Labels returns the registered labels in code order.
func (t *NodeTable) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

func (t *NodeTable) Len() int { return len(t.labels) }
