package analysis

import (
	"testing"

	"cpatminer/internal/graph"
	"cpatminer/internal/kinds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addNode(t *testing.T, g *graph.Graph, label string, kind kinds.Kind, v graph.Version) *graph.Node {
	t.Helper()
	n, err := g.AddNode(label, kind, v)
	require.NoError(t, err)
	return n
}

func labels(nodes []*graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Label)
	}
	return out
}

func TestAnalyzer_AnalyzeImpact(t *testing.T) {
	g := graph.NewGraph(1)
	oldAssign := addNode(t, g, "=", kinds.Assignment, graph.Old)
	oldMul := addNode(t, g, "*", kinds.InfixExpression, graph.Old)
	newAssign := addNode(t, g, "*=", kinds.Assignment, graph.New)
	newIf := addNode(t, g, "if", kinds.IfStatement, graph.New)
	oldFor := addNode(t, g, "for", kinds.EnhancedForStatement, graph.Old)
	newFor := addNode(t, g, "for", kinds.EnhancedForStatement, graph.New)
	target := addNode(t, g, "v", kinds.SimpleName, graph.New)

	g.AddEdge(oldFor.ID, newFor.ID, graph.EdgeMapping)
	g.AddEdge(oldMul.ID, oldAssign.ID, graph.EdgeParameter)
	g.AddEdge(newIf.ID, newAssign.ID, graph.EdgeControl)
	g.AddEdge(newAssign.ID, target.ID, graph.EdgeDefinition)
	g.AddEdge(newFor.ID, target.ID, graph.EdgeDefinition)

	report := NewAnalyzer(g).AnalyzeImpact()

	assert.Equal(t, 1, report.Mapped)
	assert.Equal(t, []string{"=", "*"}, labels(report.Deleted))
	assert.Equal(t, []string{"*=", "if"}, labels(report.Inserted))
	assert.Equal(t, []string{"v"}, labels(report.Affected), "dependents are reported once and exclude direct changes")
}

func TestAnalyzer_NilGraph(t *testing.T) {
	report := NewAnalyzer(nil).AnalyzeImpact()
	assert.Empty(t, report.Deleted)
	assert.Empty(t, report.Inserted)
	assert.Empty(t, report.Affected)
}
