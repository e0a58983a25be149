package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cpatminer/internal/exas"
	"cpatminer/internal/graph"
	"cpatminer/internal/index"
	"cpatminer/internal/retrieval"
	"cpatminer/internal/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Options configures a Miner.
type Options struct {
	Workers   int
	Passes    graph.Passes
	Fragments retrieval.Config
}

// DefaultOptions runs every canonicalization pass with the default fragment
// bounds on eight workers.
func DefaultOptions() Options {
	return Options{
		Workers:   8,
		Passes:    graph.AllPasses(),
		Fragments: retrieval.DefaultConfig(),
	}
}

// Input is one change graph to mine.
type Input struct {
	ID         int
	Source     string
	Descriptor *graph.Descriptor
}

// GraphResult is the outcome for one change graph. Err is set when the graph
// could not be built or stored; the other fields are then partial.
type GraphResult struct {
	GraphID int
	Source  string
	Graph   *graph.Graph
	Report  graph.CanonicalReport
	Entries []index.Entry
	Err     error
}

// Result summarizes a mining run.
type Result struct {
	RunID     string
	Graphs    []GraphResult
	Processed int
	Failed    int
	Fragments int
	Features  int
	Pruned    map[string]int
	Duration  time.Duration
}

// Miner canonicalizes change graphs, extracts fragments and indexes their
// fingerprints. Graphs are processed in parallel; each graph is owned by a
// single worker for its whole lifetime.
type Miner struct {
	opts     Options
	index    *index.Index
	registry *exas.Registry
	store    storage.Store
	logger   *slog.Logger
}

// NewMiner creates a miner that adds fragments to idx. store may be nil, in
// which case nothing is persisted.
func NewMiner(opts Options, idx *index.Index, store storage.Store, logger *slog.Logger) *Miner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if idx == nil {
		idx = index.NewIndex()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{
		opts:     opts,
		index:    idx,
		registry: exas.NewRegistry(),
		store:    store,
		logger:   logger,
	}
}

// Index returns the index fragments are added to.
func (m *Miner) Index() *index.Index { return m.index }

// Registry returns the feature registry shared by the miner's workers.
func (m *Miner) Registry() *exas.Registry { return m.registry }

// Mine processes inputs and returns one GraphResult per input, in input order.
// A graph that fails is logged and counted; it never stops its siblings.
// Only context cancellation or a store failure outside a single graph
// aborts the run.
func (m *Miner) Mine(ctx context.Context, root string, inputs []Input) (*Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Mine",
		trace.WithAttributes(
			attribute.String("corpus.root", root),
			attribute.Int("corpus.graphs", len(inputs)),
		),
	)
	defer span.End()

	start := time.Now()
	runID, err := m.beginRun(ctx, root)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin run failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("run.id", runID))
	m.logger.Info("mining started",
		slog.String("run_id", runID),
		slog.String("root", root),
		slog.Int("graphs", len(inputs)),
		slog.Int("workers", m.opts.Workers),
	)

	results := make([]GraphResult, len(inputs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = m.Process(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mining cancelled")
		return nil, fmt.Errorf("mining cancelled: %w", err)
	}

	res := &Result{RunID: runID, Graphs: results}
	for i := range results {
		r := &results[i]
		if r.Err == nil {
			m.persist(ctx, runID, r)
		}
		recordGraphMetrics(ctx, r)

		if r.Err != nil {
			res.Failed++
			m.logger.Warn("skipping change graph",
				slog.Int("graph_id", r.GraphID),
				slog.String("source", r.Source),
				slog.Any("error", r.Err),
			)
			continue
		}
		res.Processed++
		res.Fragments += len(r.Entries)
		for _, e := range r.Entries {
			m.index.Add(e)
		}
	}
	res.Features = m.registry.Len()
	res.Pruned = prunedByPass(results)
	res.Duration = time.Since(start)

	if m.store != nil {
		if err := m.store.FinishRun(ctx, runID, res.Processed, res.Failed); err != nil {
			span.RecordError(err)
			return res, fmt.Errorf("failed to finish run %s: %w", runID, err)
		}
	}

	span.SetAttributes(
		attribute.Int("graphs.processed", res.Processed),
		attribute.Int("graphs.failed", res.Failed),
		attribute.Int("fragments", res.Fragments),
	)
	m.logger.Info("mining finished",
		slog.String("run_id", runID),
		slog.Int("processed", res.Processed),
		slog.Int("failed", res.Failed),
		slog.Int("fragments", res.Fragments),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

func (m *Miner) beginRun(ctx context.Context, root string) (string, error) {
	if m.store == nil {
		return uuid.NewString(), nil
	}
	run, err := m.store.BeginRun(ctx, root)
	if err != nil {
		return "", fmt.Errorf("failed to begin run: %w", err)
	}
	return run.ID, nil
}

// persist runs on the calling goroutine; the store sees one writer.
func (m *Miner) persist(ctx context.Context, runID string, r *GraphResult) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveMined(ctx, runID, r.Graph, r.Entries); err != nil {
		r.Err = fmt.Errorf("failed to save graph: %w", err)
	}
}

// Process runs the per-graph stages: build, canonicalize, extract fragments,
// encode and sign each fragment.
func (m *Miner) Process(in Input) GraphResult {
	r := GraphResult{GraphID: in.ID, Source: in.Source}

	g, err := graph.FromDescriptor(in.ID, in.Descriptor)
	if err != nil {
		r.Err = fmt.Errorf("failed to build graph: %w", err)
		return r
	}
	r.Graph = g
	r.Report = graph.Canonicalize(g, m.opts.Passes)

	m.logger.Debug("canonicalized change graph",
		slog.Int("graph_id", in.ID),
		slog.String("name", g.Name),
		slog.Int("nodes", g.NumNodes()),
		slog.Int("edges", g.NumEdges()),
		slog.Int("pruned", r.Report.NodesRemoved()),
	)

	for k, sg := range retrieval.ExtractFragments(g, m.opts.Fragments) {
		frag := sg.Fragment(g)
		fg, err := graph.FromFragment(k, frag)
		if err != nil {
			r.Err = fmt.Errorf("failed to copy fragment %s: %w", frag.Name, err)
			return r
		}

		fps := exas.NewEncoder(fg).Fingerprints(fg)
		for _, fp := range fps {
			if _, err := m.registry.Sequence(fp.Labels); err != nil {
				r.Err = fmt.Errorf("failed to intern %v: %w", fp.Labels, err)
				return r
			}
		}

		r.Entries = append(r.Entries, index.Entry{
			GraphID:   in.ID,
			Fragment:  frag.Name,
			Signature: exas.NewSignature(fg, fps),
		})
	}
	return r
}
