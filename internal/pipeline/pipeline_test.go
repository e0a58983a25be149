package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"cpatminer/internal/graph"
	"cpatminer/internal/index"
	"cpatminer/internal/kinds"
	"cpatminer/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sumDescriptor is "y = x + 1" in the new version.
func sumDescriptor(name string) *graph.Descriptor {
	return &graph.Descriptor{
		Project: "proj",
		Name:    name,
		Nodes: []graph.NodeSpec{
			{Label: "x", Kind: int(kinds.SimpleName), Version: int(graph.New)},
			{Label: "+", Kind: int(kinds.InfixExpression), Version: int(graph.New)},
			{Label: "1", Kind: int(kinds.NumberLiteral), Version: int(graph.New)},
			{Label: "=", Kind: int(kinds.Assignment), Version: int(graph.New)},
			{Label: "y", Kind: int(kinds.SimpleName), Version: int(graph.New)},
		},
		Edges: []graph.EdgeSpec{
			{Src: 0, Dst: 1, Label: string(graph.EdgeParameter)},
			{Src: 2, Dst: 1, Label: string(graph.EdgeParameter)},
			{Src: 1, Dst: 3, Label: string(graph.EdgeParameter)},
			{Src: 3, Dst: 4, Label: string(graph.EdgeDefinition)},
		},
	}
}

func brokenDescriptor() *graph.Descriptor {
	return &graph.Descriptor{
		Name:  "broken",
		Nodes: []graph.NodeSpec{{Label: "x", Kind: int(kinds.SimpleName), Version: 5}},
	}
}

// saveFailingStore rejects every mined graph.
type saveFailingStore struct {
	*storage.SQLiteStore
}

func (saveFailingStore) SaveMined(context.Context, string, *graph.Graph, []index.Entry) error {
	return errors.New("disk full")
}

func corpus() []Input {
	return []Input{
		{ID: 0, Source: "a.json", Descriptor: sumDescriptor("a")},
		{ID: 1, Source: "b.json", Descriptor: sumDescriptor("b")},
		{ID: 2, Source: "broken.json", Descriptor: brokenDescriptor()},
	}
}

func TestMiner_Process(t *testing.T) {
	m := NewMiner(DefaultOptions(), nil, nil, quietLogger())

	r := m.Process(Input{ID: 3, Descriptor: sumDescriptor("a")})
	require.NoError(t, r.Err)

	assert.Equal(t, 4, r.Graph.NumNodes(), "assignment node is elided")
	assert.True(t, r.Graph.HasEdge(1, 4), "operand flows straight into the definition")
	require.NotEmpty(t, r.Report.Passes)
	assert.Equal(t, "assignments", r.Report.Passes[0].Name)
	assert.Equal(t, 1, r.Report.Passes[0].NodesRemoved)

	require.Len(t, r.Entries, 1)
	assert.Equal(t, 3, r.Entries[0].GraphID)
	assert.Equal(t, "a#1", r.Entries[0].Fragment)
	assert.NotEmpty(t, r.Entries[0].Signature.Key)
	assert.Equal(t, 4, r.Entries[0].Signature.Nodes)
	assert.Positive(t, m.Registry().Len())
}

func TestMiner_Process_InvalidVersion(t *testing.T) {
	m := NewMiner(DefaultOptions(), nil, nil, quietLogger())

	r := m.Process(Input{ID: 1, Descriptor: brokenDescriptor()})
	assert.ErrorIs(t, r.Err, graph.ErrInvalidVersion)
	assert.Nil(t, r.Graph)
	assert.Empty(t, r.Entries)
}

func TestMiner_Mine(t *testing.T) {
	ctx := context.Background()

	t.Run("Failed graph does not stop siblings", func(t *testing.T) {
		idx := index.NewIndex()
		opts := DefaultOptions()
		opts.Workers = 2
		m := NewMiner(opts, idx, nil, quietLogger())

		res, err := m.Mine(ctx, "corpus", corpus())
		require.NoError(t, err)

		assert.NotEmpty(t, res.RunID)
		assert.Equal(t, 2, res.Processed)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, 2, res.Fragments)
		assert.Equal(t, 2, res.Pruned["assignments"])
		require.Len(t, res.Graphs, 3)
		assert.Equal(t, "broken.json", res.Graphs[2].Source)
		assert.Error(t, res.Graphs[2].Err)

		assert.Equal(t, 2, idx.Len())
		buckets := idx.Buckets(2)
		require.Len(t, buckets, 1, "identical changes share a bucket")
		assert.Len(t, buckets[0].Entries, 2)
	})

	t.Run("Persists into the store", func(t *testing.T) {
		store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "mine.db"))
		require.NoError(t, err)
		defer store.Close()

		m := NewMiner(DefaultOptions(), nil, store, quietLogger())
		res, err := m.Mine(ctx, "corpus", corpus())
		require.NoError(t, err)

		run, err := store.LatestRun(ctx)
		require.NoError(t, err)
		assert.Equal(t, res.RunID, run.ID)
		assert.Equal(t, "corpus", run.Root)
		assert.Equal(t, 2, run.Graphs)
		assert.Equal(t, 1, run.Failed)

		g, err := store.LoadGraph(ctx, res.RunID, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, g.NumNodes())

		buckets, err := store.Buckets(ctx, res.RunID, 2)
		require.NoError(t, err)
		require.Len(t, buckets, 1)
		assert.Len(t, buckets[0].Entries, 2)
	})

	t.Run("Store failure fails the graph", func(t *testing.T) {
		store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "mine.db"))
		require.NoError(t, err)
		defer store.Close()

		idx := index.NewIndex()
		m := NewMiner(DefaultOptions(), idx, saveFailingStore{store}, quietLogger())
		res, err := m.Mine(ctx, "corpus", corpus())
		require.NoError(t, err)

		assert.Equal(t, 0, res.Processed)
		assert.Equal(t, 3, res.Failed)
		assert.ErrorContains(t, res.Graphs[0].Err, "disk full")
		assert.Zero(t, idx.Len())

		_, err = store.LoadGraph(ctx, res.RunID, 0)
		assert.ErrorIs(t, err, storage.ErrGraphNotFound)

		run, err := store.LatestRun(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, run.Failed)
	})

	t.Run("Cancelled context aborts", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		m := NewMiner(DefaultOptions(), nil, nil, quietLogger())
		_, err := m.Mine(cctx, "corpus", corpus())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewMiner_Defaults(t *testing.T) {
	m := NewMiner(Options{Workers: 0}, nil, nil, nil)
	assert.Equal(t, 1, m.opts.Workers)
	assert.NotNil(t, m.Index())
	assert.NotNil(t, m.logger)
}
