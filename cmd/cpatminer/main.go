package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cpatminer/internal/analysis"
	"cpatminer/internal/config"
	"cpatminer/internal/crawler"
	"cpatminer/internal/exas"
	"cpatminer/internal/extractor"
	"cpatminer/internal/git"
	"cpatminer/internal/graph"
	"cpatminer/internal/index"
	"cpatminer/internal/pipeline"
	"cpatminer/internal/retrieval"
	"cpatminer/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "cpatminer",
		Short: "Mine recurring code change patterns from change graphs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if dbPath != "" {
				cfg.Store.Path = dbPath
			}
			setupLogging(cfg)
			return nil
		},
		SilenceUsage: true,
	}

	configPath string
	dbPath     string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the SQLite database (overrides config)")

	canonCmd.Flags().StringP("out", "o", "", "Write the canonical graph to this descriptor file")
	scanCmd.Flags().String("index", "", "Also save the fingerprint index as JSON")
	commitCmd.Flags().StringP("out", "o", "", "Write change descriptors into this directory")
	commitCmd.Flags().Bool("no-mine", false, "Only extract descriptors, do not mine them")
	bucketsCmd.Flags().String("run", "", "Run id (defaults to the latest run)")
	bucketsCmd.Flags().String("index", "", "Read buckets from a saved JSON index instead of the database")
	bucketsCmd.Flags().Int("min-size", 0, "Minimum bucket size (defaults to mining.min_bucket_size)")

	rootCmd.AddCommand(canonCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(encodeCmd)
}

// initStore opens the configured SQLite store.
func initStore() (*storage.SQLiteStore, error) {
	return storage.NewSQLiteStore(cfg.Store.Path)
}

func minerOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Workers = cfg.Mining.Workers
	opts.Passes = cfg.Mining.Passes
	opts.Fragments = retrieval.Config{
		MaxHops:  cfg.Mining.MaxHops,
		MaxNodes: cfg.Mining.MaxFragmentNodes,
	}
	return opts
}

func printResult(res *pipeline.Result) {
	fmt.Printf("✅ Run %s finished in %v\n", res.RunID, res.Duration.Round(time.Millisecond))
	fmt.Printf("  -> Graphs: %d processed, %d failed\n", res.Processed, res.Failed)
	fmt.Printf("  -> Fragments: %d, distinct features: %d\n", res.Fragments, res.Features)
	for _, pass := range []string{"assignments", "unary", "literals", "duplicate_edges"} {
		if n, ok := res.Pruned[pass]; ok {
			fmt.Printf("  -> Pruned by %s: %d nodes\n", pass, n)
		}
	}
}

var canonCmd = &cobra.Command{
	Use:   "canon <descriptor.json>",
	Short: "Canonicalize one change graph and report what each pass removed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := crawler.ReadDescriptor(args[0])
		if err != nil {
			return err
		}
		g, err := graph.FromDescriptor(0, d)
		if err != nil {
			return fmt.Errorf("failed to build graph: %w", err)
		}

		before := g.Stats()
		report := graph.Canonicalize(g, cfg.Mining.Passes)
		after := g.Stats()

		fmt.Printf("📊 %s: %d nodes, %d edges -> %d nodes, %d edges\n",
			g.Name, before.Nodes, before.Edges, after.Nodes, after.Edges)
		for _, p := range report.Passes {
			fmt.Printf("  -> %-16s nodes -%d, edges -%d +%d\n", p.Name, p.NodesRemoved, p.EdgesRemoved, p.EdgesAdded)
		}
		fmt.Printf("  -> old/new nodes: %d/%d, core actions: %d, literals: %d\n",
			after.OldNodes, after.NewNodes, after.CoreActions, after.Literals)

		impact := analysis.NewAnalyzer(g).AnalyzeImpact()
		fmt.Printf("  -> actions mapped: %d, deleted: %d, inserted: %d, dependents affected: %d\n",
			impact.Mapped, len(impact.Deleted), len(impact.Inserted), len(impact.Affected))

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := crawler.WriteDescriptor(out, g.Descriptor()); err != nil {
				return err
			}
			fmt.Printf("💾 Canonical graph written to %s\n", out)
		}
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [corpus-dir]",
	Short: "Mine every change descriptor of a corpus directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.Corpus.Root
		if len(args) > 0 {
			root = args[0]
		}

		cr, err := crawler.NewCrawler(cfg.Corpus.Pattern, nil)
		if err != nil {
			return err
		}

		fmt.Printf("📂 Scanning corpus: %s\n", root)
		var inputs []pipeline.Input
		err = cr.ScanCorpus(root, func(path string, d *graph.Descriptor) {
			inputs = append(inputs, pipeline.Input{ID: len(inputs), Source: path, Descriptor: d})
		})
		if err != nil {
			return fmt.Errorf("failed to scan corpus: %w", err)
		}
		fmt.Printf("🚀 Mining %d change graphs...\n", len(inputs))

		store, err := initStore()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		idx := index.NewIndex()
		miner := pipeline.NewMiner(minerOptions(), idx, store, nil)
		res, err := miner.Mine(cmd.Context(), root, inputs)
		if err != nil {
			return err
		}
		printResult(res)

		if path, _ := cmd.Flags().GetString("index"); path != "" {
			if err := idx.Save(path); err != nil {
				return fmt.Errorf("failed to save index: %w", err)
			}
			fmt.Printf("💾 Index saved to %s\n", path)
		}
		return nil
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit <repo> <rev>",
	Short: "Extract change graphs for the Go functions a commit modified",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, rev := args[0], args[1]
		ctx := cmd.Context()

		repo, err := git.Open(repoPath)
		if err != nil {
			return err
		}
		isGo := func(path string) bool { return strings.HasSuffix(path, ".go") }
		changes, err := repo.ChangedFiles(rev, isGo)
		if err != nil {
			return err
		}
		fmt.Printf("📝 %s changed %d Go files.\n", rev, len(changes))

		descs, err := extractChanges(ctx, filepath.Base(repoPath), changes)
		if err != nil {
			return err
		}
		fmt.Printf("  -> %d modified functions\n", len(descs))

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			for i, d := range descs {
				path := filepath.Join(out, fmt.Sprintf("%04d.json", i))
				if err := crawler.WriteDescriptor(path, d); err != nil {
					return err
				}
			}
			fmt.Printf("💾 Descriptors written to %s\n", out)
		}

		if noMine, _ := cmd.Flags().GetBool("no-mine"); noMine || len(descs) == 0 {
			return nil
		}

		store, err := initStore()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		inputs := make([]pipeline.Input, len(descs))
		for i, d := range descs {
			inputs[i] = pipeline.Input{ID: i, Source: d.Name, Descriptor: d}
		}
		miner := pipeline.NewMiner(minerOptions(), nil, store, nil)
		res, err := miner.Mine(ctx, repoPath+"@"+rev, inputs)
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

// extractChanges skips added and deleted files; only functions present on
// both sides of a change carry an old and a new version.
func extractChanges(ctx context.Context, project string, changes []git.ChangedFile) ([]*graph.Descriptor, error) {
	ext, err := extractor.NewExtractor("go")
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	var out []*graph.Descriptor
	for _, ch := range changes {
		if ch.Before == nil || ch.After == nil {
			continue
		}
		descs, err := ext.ExtractChange(ctx, project, ch.Path, ch.Before, ch.After)
		if err != nil {
			return nil, err
		}
		out = append(out, descs...)
	}
	return out, nil
}

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List groups of fragments with identical fingerprint signatures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		minSize, _ := cmd.Flags().GetInt("min-size")
		if minSize <= 0 {
			minSize = cfg.Mining.MinBucketSize
		}

		var buckets []index.Bucket
		if path, _ := cmd.Flags().GetString("index"); path != "" {
			idx, err := index.Load(path)
			if err != nil {
				return err
			}
			buckets = idx.Buckets(minSize)
		} else {
			store, err := initStore()
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			runID, _ := cmd.Flags().GetString("run")
			if runID == "" {
				run, err := store.LatestRun(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to find latest run: %w", err)
				}
				runID = run.ID
			}
			if buckets, err = store.Buckets(cmd.Context(), runID, minSize); err != nil {
				return err
			}
		}

		fmt.Printf("🔍 %d buckets with at least %d fragments\n", len(buckets), minSize)
		for _, b := range buckets {
			fmt.Printf("\n[%s] %d fragments\n", shortKey(b.Key), len(b.Entries))
			for _, e := range b.Entries {
				fmt.Printf("  - %s (graph %d, %d nodes)\n", e.Fragment, e.GraphID, e.Signature.Nodes)
			}
		}
		return nil
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode <descriptor.json> [label...]",
	Short: "Print the fingerprint of a label sequence, or every fingerprint of a graph",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := crawler.ReadDescriptor(args[0])
		if err != nil {
			return err
		}
		g, err := graph.FromDescriptor(0, d)
		if err != nil {
			return fmt.Errorf("failed to build graph: %w", err)
		}
		enc := exas.NewEncoder(g)

		if labels := args[1:]; len(labels) > 0 {
			f, err := enc.Encode(labels)
			if err != nil {
				return err
			}
			fmt.Printf("%s = %d\n", strings.Join(labels, " "), f)
			return nil
		}

		fps := enc.Fingerprints(g)
		for _, fp := range fps {
			fmt.Printf("%4d  %-48s %d\n", fp.Node, strings.Join(fp.Labels, " "), fp.Value)
		}
		sig := exas.NewSignature(g, fps)
		fmt.Printf("\nsignature %s (%d fingerprints)\n", sig.Key, len(sig.Values))
		return nil
	},
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
