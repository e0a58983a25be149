package graph

import "fmt"

// Version tags a change node with the side of the change it belongs to.
type Version int

const (
	Old Version = 0
	New Version = 1
)

func (v Version) Valid() bool {
	return v == Old || v == New
}

func (v Version) String() string {
	switch v {
	case Old:
		return "old"
	case New:
		return "new"
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// EdgeKind is the label of a change edge.
type EdgeKind string

const (
	EdgeQualifier  EdgeKind = "_qual_"
	EdgeCondition  EdgeKind = "_cond_"
	EdgeControl    EdgeKind = "_control_"
	EdgeDefinition EdgeKind = "_def_"
	EdgeMapping    EdgeKind = "_map_"
	EdgeParameter  EdgeKind = "_para_"
	EdgeReceiver   EdgeKind = "_recv_"
	EdgeReference  EdgeKind = "_ref_"
)

// EdgeKinds lists the recognized edge labels in code order.
var EdgeKinds = []EdgeKind{
	EdgeQualifier,
	EdgeCondition,
	EdgeControl,
	EdgeDefinition,
	EdgeMapping,
	EdgeParameter,
	EdgeReceiver,
	EdgeReference,
}

// Descriptor is the producer-side description of one change dependency graph.
// Edges address nodes by their index in Nodes.
type Descriptor struct {
	Project string     `json:"project,omitempty"`
	Name    string     `json:"name,omitempty"`
	Nodes   []NodeSpec `json:"nodes"`
	Edges   []EdgeSpec `json:"edges"`
}

type NodeSpec struct {
	Label   string `json:"label"`
	Kind    int    `json:"kind"`
	Version int    `json:"version"`
}

type EdgeSpec struct {
	Src   int    `json:"src"`
	Dst   int    `json:"dst"`
	Label string `json:"label"`
}

// FragmentNode addresses one node of a source graph.
type FragmentNode struct {
	Graph *Graph
	ID    NodeID
}

// Fragment is a candidate subgraph whose nodes may come from several graphs.
// Its edge set is implied: every edge of a source graph whose endpoints are
// both fragment nodes.
type Fragment struct {
	Project string
	Name    string
	Nodes   []FragmentNode
}
