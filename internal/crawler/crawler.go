package crawler

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"cpatminer/internal/graph"

	"github.com/bmatcuk/doublestar/v4"
)

// Crawler scans a corpus directory for change-graph descriptors.
type Crawler struct {
	pattern string
	ignored []string
	logger  *slog.Logger
}

// NewCrawler creates a crawler matching corpus-relative paths against a
// doublestar pattern such as "**/*.json". If logger is nil, slog.Default() is used.
func NewCrawler(pattern string, logger *slog.Logger) (*Crawler, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid corpus pattern %q", pattern)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		pattern: pattern,
		ignored: []string{".git", "vendor", "node_modules"},
		logger:  logger,
	}, nil
}

// ScanCorpus walks root and decodes every matching descriptor file.
// It uses a callback to stream descriptors, preventing large memory buildup.
// Files that fail to decode are logged and skipped.
func (c *Crawler) ScanCorpus(root string, onDescriptor func(path string, d *graph.Descriptor)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		match, err := doublestar.Match(c.pattern, filepath.ToSlash(rel))
		if err != nil || !match {
			return nil
		}

		desc, err := ReadDescriptor(path)
		if err != nil {
			c.logger.Warn("skipping unreadable descriptor",
				slog.String("path", path),
				slog.Any("error", err))
			return nil
		}

		onDescriptor(path, desc)
		return nil
	})
}

// ReadDescriptor decodes one descriptor file. A descriptor without a name is
// named after its file.
func ReadDescriptor(path string) (*graph.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	var d graph.Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode descriptor %s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = filepath.Base(path)
	}
	return &d, nil
}

// WriteDescriptor encodes d as indented JSON.
func WriteDescriptor(path string, d *graph.Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create descriptor directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
