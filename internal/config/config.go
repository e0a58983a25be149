package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"cpatminer/internal/graph"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Corpus struct {
		Root    string `yaml:"root"`
		Pattern string `yaml:"pattern"`
	} `yaml:"corpus"`
	Mining struct {
		Workers          int          `yaml:"workers"`
		MaxHops          int          `yaml:"max_hops"`
		MaxFragmentNodes int          `yaml:"max_fragment_nodes"`
		MinBucketSize    int          `yaml:"min_bucket_size"`
		Passes           graph.Passes `yaml:"passes"`
	} `yaml:"mining"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Store.Path = "cpatminer.db"
	cfg.Corpus.Root = "."
	cfg.Corpus.Pattern = "**/*.json"
	cfg.Mining.Workers = 8
	cfg.Mining.MaxHops = 2
	cfg.Mining.MaxFragmentNodes = 8
	cfg.Mining.MinBucketSize = 2
	cfg.Mining.Passes = graph.AllPasses()
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if db := os.Getenv("CPATMINER_DB"); db != "" {
		cfg.Store.Path = db
	}
	if workers := os.Getenv("CPATMINER_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return nil, fmt.Errorf("invalid CPATMINER_WORKERS %q: %w", workers, err)
		}
		cfg.Mining.Workers = n
	}
	if level := os.Getenv("CPATMINER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if cfg.Mining.Workers < 1 {
		cfg.Mining.Workers = 1
	}
	return cfg, nil
}
