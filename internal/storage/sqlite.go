package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cpatminer/internal/graph"
	"cpatminer/internal/index"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var _ Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT,
			started_at TIMESTAMP,
			graphs INTEGER DEFAULT 0,
			failed INTEGER DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS graphs (
			run_id TEXT,
			id INTEGER,
			project TEXT,
			name TEXT,
			pattern_id INTEGER,
			PRIMARY KEY (run_id, id)
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			run_id TEXT,
			graph_id INTEGER,
			id INTEGER,
			label TEXT,
			kind INTEGER,
			version INTEGER,
			PRIMARY KEY (run_id, graph_id, id)
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			run_id TEXT,
			graph_id INTEGER,
			id INTEGER,
			src INTEGER,
			dst INTEGER,
			label TEXT,
			PRIMARY KEY (run_id, graph_id, id)
		);`,
		`CREATE TABLE IF NOT EXISTS fragments (
			run_id TEXT,
			graph_id INTEGER,
			name TEXT,
			sig_key TEXT,
			num_nodes INTEGER,
			num_edges INTEGER,
			fingerprint_values JSON,
			PRIMARY KEY (run_id, graph_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS fingerprints (
			run_id TEXT,
			graph_id INTEGER,
			fragment TEXT,
			value INTEGER,
			PRIMARY KEY (run_id, graph_id, fragment, value)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_key ON fragments(run_id, sig_key);`,
		`CREATE INDEX IF NOT EXISTS idx_fingerprints_value ON fingerprints(run_id, value);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- RunStore Implementation ---

func (s *SQLiteStore) BeginRun(ctx context.Context, root string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Root:      root,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, root, started_at) VALUES (?, ?, ?)",
		run.ID, run.Root, run.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, graphs, failed int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET graphs = ?, failed = ? WHERE id = ?",
		graphs, failed, runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, root, started_at, graphs, failed FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1")

	var run Run
	if err := row.Scan(&run.ID, &run.Root, &run.StartedAt, &run.Graphs, &run.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	return run, nil
}

// --- GraphStore Implementation ---

func (s *SQLiteStore) SaveGraph(ctx context.Context, runID string, g *graph.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveGraphTx(ctx, tx, runID, g); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveMined stores g and the signatures of its fragments in one transaction;
// on error neither is kept.
func (s *SQLiteStore) SaveMined(ctx context.Context, runID string, g *graph.Graph, entries []index.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveGraphTx(ctx, tx, runID, g); err != nil {
		return err
	}
	if err := saveSignaturesTx(ctx, tx, runID, entries); err != nil {
		return err
	}
	return tx.Commit()
}

func saveGraphTx(ctx context.Context, tx *sql.Tx, runID string, g *graph.Graph) error {
	// 1. Replace the previous snapshot
	for _, q := range []string{
		"DELETE FROM nodes WHERE run_id = ? AND graph_id = ?",
		"DELETE FROM edges WHERE run_id = ? AND graph_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, runID, g.ID); err != nil {
			return fmt.Errorf("failed to clear graph %d: %w", g.ID, err)
		}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO graphs (run_id, id, project, name, pattern_id) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, id) DO UPDATE SET
			project=excluded.project,
			name=excluded.name,
			pattern_id=excluded.pattern_id
	`, runID, g.ID, g.Project, g.Name, g.PatternID)
	if err != nil {
		return fmt.Errorf("failed to save graph %d: %w", g.ID, err)
	}

	// 2. Save Nodes
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO nodes (run_id, graph_id, id, label, kind, version) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range g.Nodes() {
		if _, err := stmt.ExecContext(ctx, runID, g.ID, int(n.ID), n.Label, int(n.Kind), int(n.Version)); err != nil {
			return err
		}
	}

	// 3. Save Edges
	edgeStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO edges (run_id, graph_id, id, src, dst, label) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for _, e := range g.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, runID, g.ID, int(e.ID), int(e.Src), int(e.Dst), string(e.Label)); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) LoadGraph(ctx context.Context, runID string, id int) (*graph.Graph, error) {
	d := &graph.Descriptor{}
	patternID := -1
	row := s.db.QueryRowContext(ctx,
		"SELECT project, name, pattern_id FROM graphs WHERE run_id = ? AND id = ?", runID, id)
	if err := row.Scan(&d.Project, &d.Name, &patternID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrGraphNotFound, id)
		}
		return nil, fmt.Errorf("failed to scan graph: %w", err)
	}

	// 1. Load Nodes, remembering where each stored id landed
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, label, kind, version FROM nodes WHERE run_id = ? AND graph_id = ? ORDER BY id", runID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	positions := make(map[int]int)
	for rows.Next() {
		var nodeID int
		var spec graph.NodeSpec
		if err := rows.Scan(&nodeID, &spec.Label, &spec.Kind, &spec.Version); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		positions[nodeID] = len(d.Nodes)
		d.Nodes = append(d.Nodes, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 2. Load Edges
	edgeRows, err := s.db.QueryContext(ctx,
		"SELECT src, dst, label FROM edges WHERE run_id = ? AND graph_id = ? ORDER BY id", runID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var src, dst int
		var label string
		if err := edgeRows.Scan(&src, &dst, &label); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		srcPos, okSrc := positions[src]
		dstPos, okDst := positions[dst]
		if !okSrc || !okDst {
			return nil, fmt.Errorf("edge %d -> %d of graph %d: %w", src, dst, id, graph.ErrUnknownEndpoint)
		}
		d.Edges = append(d.Edges, graph.EdgeSpec{Src: srcPos, Dst: dstPos, Label: label})
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	g, err := graph.FromDescriptor(id, d)
	if err != nil {
		return nil, err
	}
	g.SetPatternID(patternID)
	return g, nil
}

// --- SignatureStore Implementation ---

func (s *SQLiteStore) SaveSignatures(ctx context.Context, runID string, entries []index.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveSignaturesTx(ctx, tx, runID, entries); err != nil {
		return err
	}
	return tx.Commit()
}

func saveSignaturesTx(ctx context.Context, tx *sql.Tx, runID string, entries []index.Entry) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fragments (run_id, graph_id, name, sig_key, num_nodes, num_edges, fingerprint_values)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, graph_id, name) DO UPDATE SET
			sig_key=excluded.sig_key,
			num_nodes=excluded.num_nodes,
			num_edges=excluded.num_edges,
			fingerprint_values=excluded.fingerprint_values
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	fpStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fingerprints (run_id, graph_id, fragment, value) VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, graph_id, fragment, value) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer fpStmt.Close()

	for _, e := range entries {
		values, err := json.Marshal(e.Signature.Values)
		if err != nil {
			return fmt.Errorf("failed to encode fingerprints of %s: %w", e.Fragment, err)
		}
		sig := e.Signature
		if _, err := stmt.ExecContext(ctx, runID, e.GraphID, e.Fragment, sig.Key, sig.Nodes, sig.Edges, values); err != nil {
			return err
		}
		for _, v := range sig.Values {
			if _, err := fpStmt.ExecContext(ctx, runID, e.GraphID, e.Fragment, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SQLiteStore) Buckets(ctx context.Context, runID string, minSize int) ([]index.Bucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.graph_id, f.name, f.sig_key, f.num_nodes, f.num_edges, f.fingerprint_values
		FROM fragments f
		JOIN (
			SELECT sig_key, COUNT(*) AS size FROM fragments
			WHERE run_id = ? GROUP BY sig_key HAVING COUNT(*) >= ?
		) b ON b.sig_key = f.sig_key
		WHERE f.run_id = ?
		ORDER BY b.size DESC, f.sig_key, f.rowid
	`, runID, minSize, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	var buckets []index.Bucket
	for _, e := range entries {
		if n := len(buckets); n > 0 && buckets[n-1].Key == e.Signature.Key {
			buckets[n-1].Entries = append(buckets[n-1].Entries, e)
			continue
		}
		buckets = append(buckets, index.Bucket{Key: e.Signature.Key, Entries: []index.Entry{e}})
	}
	return buckets, nil
}

func (s *SQLiteStore) Candidates(ctx context.Context, runID string, values []int32) ([]index.Entry, error) {
	if len(values) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	args := make([]any, 0, len(values)+2)
	args = append(args, runID, runID)
	for _, v := range values {
		args = append(args, v)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.graph_id, f.name, f.sig_key, f.num_nodes, f.num_edges, f.fingerprint_values
		FROM fragments f
		WHERE f.run_id = ? AND EXISTS (
			SELECT 1 FROM fingerprints p
			WHERE p.run_id = ? AND p.graph_id = f.graph_id AND p.fragment = f.name
			AND p.value IN (`+placeholders+`)
		)
		ORDER BY f.rowid
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]index.Entry, error) {
	var out []index.Entry
	for rows.Next() {
		var e index.Entry
		var values []byte
		if err := rows.Scan(&e.GraphID, &e.Fragment, &e.Signature.Key, &e.Signature.Nodes, &e.Signature.Edges, &values); err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}
		if len(values) > 0 {
			if err := json.Unmarshal(values, &e.Signature.Values); err != nil {
				return nil, fmt.Errorf("failed to decode fingerprints of %s: %w", e.Fragment, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
