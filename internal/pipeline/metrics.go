package pipeline

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("cpatminer.pipeline")
	meter  = otel.Meter("cpatminer.pipeline")
)

var (
	graphsProcessed metric.Int64Counter
	nodesPruned     metric.Int64Counter
	fragmentsFound  metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		graphsProcessed, err = meter.Int64Counter(
			"cpatminer_graphs_processed_total",
			metric.WithDescription("Change graphs processed, by status"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesPruned, err = meter.Int64Counter(
			"cpatminer_nodes_pruned_total",
			metric.WithDescription("Nodes removed by canonicalization, by pass"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		fragmentsFound, err = meter.Int64Histogram(
			"cpatminer_fragments_per_graph",
			metric.WithDescription("Fragments extracted per change graph"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordGraphMetrics(ctx context.Context, r *GraphResult) {
	if err := initMetrics(); err != nil {
		return
	}

	status := "ok"
	if r.Err != nil {
		status = "failed"
	}
	graphsProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if r.Err != nil {
		return
	}

	for _, p := range r.Report.Passes {
		nodesPruned.Add(ctx, int64(p.NodesRemoved), metric.WithAttributes(attribute.String("pass", p.Name)))
	}
	fragmentsFound.Record(ctx, int64(len(r.Entries)))
}

// prunedByPass totals the nodes each pass removed over a run.
func prunedByPass(results []GraphResult) map[string]int {
	out := make(map[string]int)
	for _, r := range results {
		for _, p := range r.Report.Passes {
			out[p.Name] += p.NodesRemoved
		}
	}
	return out
}
