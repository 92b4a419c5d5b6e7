package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/chainkv/pkg/store/badgerdb"
)

// SpawnMode selects how blocking store operations are dispatched
// (spec §5). chainkv's Go implementation runs every Store method on
// the caller's own goroutine either way — Go's goroutines already
// are the "blocking pool" — but the knob is kept so operators can
// record and reason about the intended execution model, and so a
// future executor-aware caller has somewhere to read it from.
type SpawnMode string

const (
	SpawnBlockingPool SpawnMode = "blocking_pool"
	SpawnInPlace      SpawnMode = "in_place"
)

// Config is chainkv's top-level configuration (spec §6).
type Config struct {
	Path              string    `yaml:"path"`
	SpawnMode         SpawnMode `yaml:"spawn_mode"`
	MaxStreamQueries  int       `yaml:"max_stream_queries"`
	CacheBytes        int       `yaml:"cache_bytes"`
	CacheEntries      int       `yaml:"cache_entries"`
	MaxKeySize        int       `yaml:"max_key_size"`
	MaxValueSize      int       `yaml:"max_value_size"`
	MaxBatchSize      int       `yaml:"max_batch_size"`
	MaxBatchTotalSize int       `yaml:"max_batch_total_size"`
}

// Option configures a Config built with New.
type Option func(*Config)

// WithPath sets the backend data directory.
func WithPath(path string) Option { return func(c *Config) { c.Path = path } }

// WithSpawnMode sets the spawn policy.
func WithSpawnMode(mode SpawnMode) Option { return func(c *Config) { c.SpawnMode = mode } }

// WithCacheLimits sets the LRU cache's entry and byte caps.
func WithCacheLimits(entries, bytes int) Option {
	return func(c *Config) { c.CacheEntries = entries; c.CacheBytes = bytes }
}

// WithMaxStreamQueries sets the range-scan concurrency hint.
func WithMaxStreamQueries(n int) Option { return func(c *Config) { c.MaxStreamQueries = n } }

// New builds a Config from defaults plus opts.
func New(opts ...Option) *Config {
	cfg := &Config{
		SpawnMode:         SpawnBlockingPool,
		MaxStreamQueries:  badgerdb.DefaultMaxStreamQueries,
		CacheEntries:      4096,
		CacheBytes:        64 * 1 << 20,
		MaxKeySize:        badgerdb.DefaultMaxKeySize,
		MaxValueSize:      badgerdb.DefaultMaxValueSize,
		MaxBatchSize:      badgerdb.DefaultMaxBatchSize,
		MaxBatchTotalSize: badgerdb.DefaultMaxBatchTotalSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a Config from a YAML file at path, applying New's
// defaults for any field the file leaves out.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg := New()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// BackendOptions derives badgerdb.Options for namespaceDir from cfg.
func (c *Config) BackendOptions(namespaceDir string) badgerdb.Options {
	return badgerdb.Options{
		Path:              namespaceDir,
		MaxKeySize:        c.MaxKeySize,
		MaxValueSize:      c.MaxValueSize,
		MaxBatchSize:      c.MaxBatchSize,
		MaxBatchTotalSize: c.MaxBatchTotalSize,
		MaxStreamQueries:  c.MaxStreamQueries,
	}
}
