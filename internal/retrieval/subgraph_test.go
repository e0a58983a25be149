package retrieval

import (
	"testing"

	"cpatminer/internal/graph"
	"cpatminer/internal/kinds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addNode(t *testing.T, g *graph.Graph, label string, kind kinds.Kind) graph.NodeID {
	t.Helper()
	n, err := g.AddNode(label, kind, graph.New)
	require.NoError(t, err)
	return n.ID
}

// chain builds a -para-> op -def-> b -ref-> c.
func chain(t *testing.T) *graph.Graph {
	g := graph.NewGraph(1)
	g.Name = "change"
	a := addNode(t, g, "a", kinds.SimpleName)
	op := addNode(t, g, "+", kinds.InfixExpression)
	b := addNode(t, g, "b", kinds.SimpleName)
	c := addNode(t, g, "c", kinds.SimpleName)
	g.AddEdge(a, op, graph.EdgeParameter)
	g.AddEdge(op, b, graph.EdgeDefinition)
	g.AddEdge(b, c, graph.EdgeReference)
	return g
}

func TestExtractAround_BasicHopTraversal(t *testing.T) {
	g := chain(t)

	sg := ExtractAround(g, 1, Config{MaxHops: 1})
	assert.Equal(t, []graph.NodeID{1, 2, 0}, sg.NodeIDs, "out-neighbors before in-neighbors")
	assert.Equal(t, 1, sg.Depths[0])
	assert.Equal(t, 0, sg.Depths[1])

	sg = ExtractAround(g, 1, Config{MaxHops: 2})
	assert.Equal(t, []graph.NodeID{1, 2, 0, 3}, sg.NodeIDs)
	assert.Equal(t, 2, sg.Depths[3])
}

func TestExtractAround_MaxNodes(t *testing.T) {
	g := chain(t)
	sg := ExtractAround(g, 1, Config{MaxHops: 5, MaxNodes: 2})
	assert.Equal(t, []graph.NodeID{1, 2}, sg.NodeIDs)
}

func TestExtractAround_FiltersByEdgeKind(t *testing.T) {
	g := chain(t)
	sg := ExtractAround(g, 1, Config{
		MaxHops:      3,
		AllowedKinds: map[graph.EdgeKind]bool{graph.EdgeParameter: true},
	})
	assert.Equal(t, []graph.NodeID{1, 0}, sg.NodeIDs)
}

func TestExtractAround_AbsentSeed(t *testing.T) {
	g := chain(t)
	sg := ExtractAround(g, 9, DefaultConfig())
	assert.Empty(t, sg.NodeIDs)
}

func TestExtractFragments(t *testing.T) {
	g := chain(t)
	neg := addNode(t, g, "!", kinds.PrefixExpression)
	g.AddEdge(neg, 1, graph.EdgeParameter)
	ret := addNode(t, g, "return", kinds.ReturnStatement)
	g.AddEdge(3, ret, graph.EdgeControl)

	sgs := ExtractFragments(g, Config{MaxHops: 1, MaxNodes: 8})
	require.Len(t, sgs, 3)
	assert.Equal(t, graph.NodeID(1), sgs[0].Seed)
	assert.Equal(t, graph.NodeID(4), sgs[1].Seed)
	assert.Equal(t, graph.NodeID(5), sgs[2].Seed)

	f := sgs[0].Fragment(g)
	assert.Equal(t, "change#1", f.Name)
	require.Len(t, f.Nodes, 4)
	assert.Same(t, g, f.Nodes[0].Graph)

	rebuilt, err := graph.FromFragment(2, f)
	require.NoError(t, err)
	assert.Equal(t, 4, rebuilt.NumNodes())
	assert.Equal(t, 3, rebuilt.NumEdges())
	assert.Equal(t, kinds.InfixExpression.ID(), rebuilt.Node(0).Label)

	t.Run("Duplicate node sets are dropped", func(t *testing.T) {
		g := graph.NewGraph(3)
		x := addNode(t, g, "x", kinds.SimpleName)
		op1 := addNode(t, g, "+", kinds.InfixExpression)
		op2 := addNode(t, g, "-", kinds.InfixExpression)
		g.AddEdge(x, op1, graph.EdgeParameter)
		g.AddEdge(x, op2, graph.EdgeParameter)
		g.AddEdge(op1, op2, graph.EdgeParameter)

		sgs := ExtractFragments(g, Config{MaxHops: 1})
		require.Len(t, sgs, 1)
		assert.Equal(t, op1, sgs[0].Seed)
	})

	assert.Nil(t, ExtractFragments(nil, DefaultConfig()))
}
