package storage

import (
	"context"
	"time"

	"cpatminer/internal/graph"
	"cpatminer/internal/index"
)

// Store combines graph and signature storage capabilities.
type Store interface {
	RunStore
	GraphStore
	SignatureStore

	// SaveMined stores a canonical graph and its fragment signatures
	// atomically.
	SaveMined(ctx context.Context, runID string, g *graph.Graph, entries []index.Entry) error

	Close() error
}

// Run is one mining pass over a corpus.
type Run struct {
	ID        string
	Root      string
	StartedAt time.Time
	Graphs    int
	Failed    int
}

// RunStore records mining runs.
type RunStore interface {
	// BeginRun registers a new run over root and returns it.
	BeginRun(ctx context.Context, root string) (Run, error)

	// FinishRun stores the final counters of a run.
	FinishRun(ctx context.Context, runID string, graphs, failed int) error

	// LatestRun returns the most recently started run.
	LatestRun(ctx context.Context) (Run, error)
}

// GraphStore persists canonical change graphs.
type GraphStore interface {
	// SaveGraph replaces the stored snapshot of g within the run.
	SaveGraph(ctx context.Context, runID string, g *graph.Graph) error

	// LoadGraph rebuilds a stored graph. Node ids are renumbered densely.
	LoadGraph(ctx context.Context, runID string, id int) (*graph.Graph, error)
}

// SignatureStore persists fragment signatures and answers bucket queries.
type SignatureStore interface {
	SaveSignatures(ctx context.Context, runID string, entries []index.Entry) error

	// Buckets groups the run's fragments by signature key.
	Buckets(ctx context.Context, runID string, minSize int) ([]index.Bucket, error)

	// Candidates returns fragments sharing at least one fingerprint value.
	Candidates(ctx context.Context, runID string, values []int32) ([]index.Entry, error)
}
