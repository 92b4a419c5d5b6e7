package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	cfg := New()
	require.Equal(t, SpawnBlockingPool, cfg.SpawnMode)
	require.Greater(t, cfg.MaxKeySize, 0)
	require.Greater(t, cfg.MaxValueSize, 0)
}

func TestWithOptionsOverrideDefaults(t *testing.T) {
	cfg := New(WithPath("/tmp/chainkv"), WithCacheLimits(10, 100), WithSpawnMode(SpawnInPlace))
	require.Equal(t, "/tmp/chainkv", cfg.Path)
	require.Equal(t, 10, cfg.CacheEntries)
	require.Equal(t, 100, cfg.CacheBytes)
	require.Equal(t, SpawnInPlace, cfg.SpawnMode)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "path: /data/chainkv\nmax_stream_queries: 20\ncache_entries: 512\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/chainkv", cfg.Path)
	require.Equal(t, 20, cfg.MaxStreamQueries)
	require.Equal(t, 512, cfg.CacheEntries)
}

func TestBackendOptionsDerivesPath(t *testing.T) {
	cfg := New()
	opts := cfg.BackendOptions("/data/chainkv/ns1")
	require.Equal(t, "/data/chainkv/ns1", opts.Path)
	require.Equal(t, cfg.MaxKeySize, opts.MaxKeySize)
}
