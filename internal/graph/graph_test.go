package graph

import (
	"testing"

	"cpatminer/internal/kinds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNode(t *testing.T, g *Graph, label string, kind kinds.Kind, v Version) *Node {
	t.Helper()
	n, err := g.AddNode(label, kind, v)
	require.NoError(t, err)
	return n
}

func TestGraph_AddNodeClassification(t *testing.T) {
	g := NewGraph(1)

	assign := mustNode(t, g, "=", kinds.Assignment, Old)
	assert.True(t, assign.Assignment)
	assert.True(t, assign.CoreAction)
	assert.False(t, assign.Literal)

	lit := mustNode(t, g, "5", kinds.NumberLiteral, New)
	assert.True(t, lit.Literal)
	assert.False(t, lit.CoreAction)

	inc := mustNode(t, g, "++", kinds.PostfixExpression, New)
	assert.True(t, inc.Unary)

	call := mustNode(t, g, "println", kinds.MethodInvocation, New)
	assert.False(t, call.CoreAction)
	assert.False(t, call.Unary)

	assert.Equal(t, -1, g.PatternID)
	g.SetPatternID(7)
	assert.Equal(t, 7, g.PatternID)
}

func TestGraph_InvalidVersion(t *testing.T) {
	g := NewGraph(1)
	_, err := g.AddNode("x", kinds.SimpleName, Version(2))
	require.ErrorIs(t, err, ErrInvalidVersion)
	assert.Equal(t, 0, g.NumNodes())
}

func TestGraph_DeleteNodeCascades(t *testing.T) {
	g := NewGraph(1)
	a := mustNode(t, g, "a", kinds.SimpleName, Old)
	b := mustNode(t, g, "b", kinds.SimpleName, Old)
	c := mustNode(t, g, "c", kinds.SimpleName, Old)
	g.AddEdge(a.ID, b.ID, EdgeParameter)
	g.AddEdge(b.ID, c.ID, EdgeDefinition)
	g.AddEdge(a.ID, c.ID, EdgeReference)
	g.AddEdge(b.ID, b.ID, EdgeReference)

	g.DeleteNode(b.ID)

	assert.Nil(t, g.Node(b.ID))
	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, 1, g.NumEdges())
	for _, e := range g.Edges() {
		assert.NotEqual(t, b.ID, e.Src)
		assert.NotEqual(t, b.ID, e.Dst)
	}
	assert.Len(t, g.OutEdges(a.ID), 1)
	assert.Len(t, g.InEdges(c.ID), 1)

	t.Run("Idempotent", func(t *testing.T) {
		g.DeleteNode(b.ID)
		g.DeleteEdge(EdgeID(0))
		g.DeleteEdge(EdgeID(99))
		assert.Equal(t, 2, g.NumNodes())
		assert.Equal(t, 1, g.NumEdges())
	})
}

func TestGraph_CascadeEveryNode(t *testing.T) {
	for victim := 0; victim < 4; victim++ {
		g := NewGraph(1)
		for i := 0; i < 4; i++ {
			mustNode(t, g, "n", kinds.SimpleName, Old)
		}
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				g.AddEdge(NodeID(i), NodeID(j), EdgeReference)
			}
		}
		g.DeleteNode(NodeID(victim))

		assert.Equal(t, 9, g.NumEdges())
		for _, e := range g.Edges() {
			assert.NotEqual(t, NodeID(victim), e.Src)
			assert.NotEqual(t, NodeID(victim), e.Dst)
		}
	}
}

func TestGraph_AddEdgeToAbsentNode(t *testing.T) {
	g := NewGraph(1)
	a := mustNode(t, g, "a", kinds.SimpleName, Old)
	assert.Nil(t, g.AddEdge(a.ID, NodeID(5), EdgeParameter))
	assert.Equal(t, 0, g.NumEdges())
}

func TestGraph_NeighborsAreDistinct(t *testing.T) {
	g := NewGraph(1)
	a := mustNode(t, g, "a", kinds.SimpleName, Old)
	b := mustNode(t, g, "b", kinds.SimpleName, Old)
	g.AddEdge(a.ID, b.ID, EdgeParameter)
	g.AddEdge(a.ID, b.ID, EdgeReference)

	assert.Len(t, g.InEdges(b.ID), 2)
	assert.Len(t, g.InNodes(b.ID), 1)
	assert.Len(t, g.OutNodes(a.ID), 1)
	assert.True(t, g.HasEdge(a.ID, b.ID))
	assert.False(t, g.HasEdge(b.ID, a.ID))
}

func TestFromDescriptor(t *testing.T) {
	d := &Descriptor{
		Project: "proj",
		Name:    "commit-1",
		Nodes: []NodeSpec{
			{Label: "x", Kind: int(kinds.SimpleName), Version: 0},
			{Label: "=", Kind: int(kinds.Assignment), Version: 1},
		},
		Edges: []EdgeSpec{
			{Src: 0, Dst: 1, Label: "_para_"},
		},
	}

	g, err := FromDescriptor(3, d)
	require.NoError(t, err)
	assert.Equal(t, 3, g.ID)
	assert.Equal(t, "proj", g.Project)
	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, 1, g.NumEdges())
	assert.Equal(t, New, g.Node(1).Version)
	assert.True(t, g.Node(1).Assignment)

	t.Run("Invalid version is fatal", func(t *testing.T) {
		bad := &Descriptor{Nodes: []NodeSpec{{Label: "x", Version: 3}}}
		_, err := FromDescriptor(4, bad)
		require.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("Dangling edge", func(t *testing.T) {
		bad := &Descriptor{
			Nodes: []NodeSpec{{Label: "x"}},
			Edges: []EdgeSpec{{Src: 0, Dst: 4, Label: "_ref_"}},
		}
		_, err := FromDescriptor(5, bad)
		require.ErrorIs(t, err, ErrUnknownEndpoint)
	})
}

func TestGraph_Descriptor(t *testing.T) {
	g := NewGraph(1)
	g.Name = "change"
	a := mustNode(t, g, "x", kinds.SimpleName, Old)
	b := mustNode(t, g, "=", kinds.Assignment, New)
	c := mustNode(t, g, "y", kinds.SimpleName, New)
	g.AddEdge(a.ID, c.ID, EdgeReference)
	g.AddEdge(b.ID, c.ID, EdgeDefinition)
	g.DeleteNode(b.ID)

	d := g.Descriptor()
	assert.Equal(t, "change", d.Name)
	assert.Equal(t, []NodeSpec{
		{Label: "x", Kind: int(kinds.SimpleName), Version: 0},
		{Label: "y", Kind: int(kinds.SimpleName), Version: 1},
	}, d.Nodes)
	assert.Equal(t, []EdgeSpec{{Src: 0, Dst: 1, Label: "_ref_"}}, d.Edges)

	rebuilt, err := FromDescriptor(2, d)
	require.NoError(t, err)
	assert.Equal(t, g.NumNodes(), rebuilt.NumNodes())
	assert.Equal(t, g.NumEdges(), rebuilt.NumEdges())
}

func TestFromFragment(t *testing.T) {
	src := NewGraph(1)
	src.Project = "proj"
	a := mustNode(t, src, "x", kinds.SimpleName, Old)
	op := mustNode(t, src, "+", kinds.InfixExpression, New)
	out := mustNode(t, src, "y", kinds.SimpleName, New)
	src.AddEdge(a.ID, op.ID, EdgeParameter)
	src.AddEdge(op.ID, out.ID, EdgeDefinition)

	f := Fragment{
		Project: "proj",
		Name:    "frag",
		Nodes: []FragmentNode{
			{Graph: src, ID: op.ID},
			{Graph: src, ID: out.ID},
			{Graph: src, ID: out.ID},
		},
	}

	g, err := FromFragment(10, f)
	require.NoError(t, err)

	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, 1, g.NumEdges(), "edge from x crosses the fragment boundary")

	copied := g.Nodes()
	assert.Equal(t, kinds.InfixExpression.ID(), copied[0].Label)
	assert.Equal(t, "y", copied[1].Label)
	assert.Equal(t, NodeID(0), copied[0].ID)

	t.Run("Source graph untouched", func(t *testing.T) {
		assert.Equal(t, "+", src.Node(op.ID).Label)
		assert.Equal(t, 3, src.NumNodes())
		assert.Equal(t, 2, src.NumEdges())
	})

	t.Run("Spans several graphs", func(t *testing.T) {
		other := NewGraph(2)
		z := mustNode(t, other, "z", kinds.SimpleName, Old)
		f.Nodes = append(f.Nodes, FragmentNode{Graph: other, ID: z.ID}, FragmentNode{Graph: other, ID: NodeID(0)})
		g, err := FromFragment(11, f)
		require.NoError(t, err)
		assert.Equal(t, 3, g.NumNodes())
		assert.Equal(t, 1, g.NumEdges())
	})

	t.Run("Invalid version is fatal", func(t *testing.T) {
		bad := NewGraph(3)
		n := mustNode(t, bad, "x", kinds.SimpleName, Old)
		n.Version = Version(9)
		_, err := FromFragment(12, Fragment{Nodes: []FragmentNode{{Graph: bad, ID: n.ID}}})
		require.ErrorIs(t, err, ErrInvalidVersion)
	})
}

func TestGraph_Stats(t *testing.T) {
	g := NewGraph(1)
	a := mustNode(t, g, "5", kinds.NumberLiteral, Old)
	b := mustNode(t, g, "+", kinds.InfixExpression, New)
	g.AddEdge(a.ID, b.ID, EdgeParameter)

	s := g.Stats()
	assert.Equal(t, 2, s.Nodes)
	assert.Equal(t, 1, s.Edges)
	assert.Equal(t, 1, s.OldNodes)
	assert.Equal(t, 1, s.NewNodes)
	assert.Equal(t, 1, s.CoreActions)
	assert.Equal(t, 1, s.Literals)
	assert.Equal(t, 1, s.EdgeKinds[EdgeParameter])
}
