package lru

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cuemby/chainkv/pkg/kv"
	"github.com/cuemby/chainkv/pkg/metrics"
)

// defaultPrefixCacheEntries bounds the small prefix-scan cache
// independently of the point-value cache's entry count.
const defaultPrefixCacheEntries = 256

// Layer wraps an inner kv.Store with an LRU cache for point reads and
// small prefix scans (spec §4.5).
type Layer struct {
	inner kv.Store

	mu          sync.Mutex
	values      *lru.Cache[string, []byte]
	valueBytes  int
	maxBytes    int
	prefixScans *lru.Cache[string, []kv.KeyValue]
}

// Config controls the cache's capacity.
type Config struct {
	// CacheEntries bounds the number of point-value entries.
	CacheEntries int
	// CacheBytes bounds the total byte size of cached values, layered
	// on top of golang-lru's own count-based eviction.
	CacheBytes int
	// PrefixCacheEntries bounds the small prefix-scan cache. Zero uses
	// defaultPrefixCacheEntries.
	PrefixCacheEntries int
}

// New wraps inner with an LRU cache sized per cfg.
func New(inner kv.Store, cfg Config) *Layer {
	if cfg.CacheEntries <= 0 {
		cfg.CacheEntries = 1024
	}
	if cfg.PrefixCacheEntries <= 0 {
		cfg.PrefixCacheEntries = defaultPrefixCacheEntries
	}
	l := &Layer{inner: inner, maxBytes: cfg.CacheBytes}

	values, err := lru.NewWithEvict[string, []byte](cfg.CacheEntries, func(_ string, value []byte) {
		l.valueBytes -= len(value)
		metrics.CacheEntriesGauge.Dec()
	})
	if err != nil {
		// cfg.CacheEntries <=0 is already guarded above; this can only
		// happen on a genuinely invalid size, which is a programmer error.
		panic(err)
	}
	l.values = values

	prefixScans, err := lru.New[string, []kv.KeyValue](cfg.PrefixCacheEntries)
	if err != nil {
		panic(err)
	}
	l.prefixScans = prefixScans

	return l
}

// Limits implements kv.Reader.
func (l *Layer) Limits() kv.Limits { return l.inner.Limits() }

// MaxStreamQueries implements kv.Reader.
func (l *Layer) MaxStreamQueries() int { return l.inner.MaxStreamQueries() }

// ReadValue implements kv.Reader, consulting the cache first.
func (l *Layer) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	l.mu.Lock()
	if value, ok := l.values.Get(string(key)); ok {
		l.mu.Unlock()
		metrics.CacheHitsTotal.WithLabelValues("value").Inc()
		return value, nil
	}
	l.mu.Unlock()
	metrics.CacheMissesTotal.WithLabelValues("value").Inc()

	value, err := l.inner.ReadValue(ctx, key)
	if err != nil {
		return nil, err
	}
	l.putValue(key, value)
	return value, nil
}

// ContainsKey implements kv.Reader.
func (l *Layer) ContainsKey(ctx context.Context, key []byte) (bool, error) {
	l.mu.Lock()
	if value, ok := l.values.Get(string(key)); ok {
		l.mu.Unlock()
		metrics.CacheHitsTotal.WithLabelValues("value").Inc()
		return value != nil, nil
	}
	l.mu.Unlock()
	return l.inner.ContainsKey(ctx, key)
}

// ContainsKeys implements kv.Reader.
func (l *Layer) ContainsKeys(ctx context.Context, keys [][]byte) ([]bool, error) {
	result := make([]bool, len(keys))
	for i, key := range keys {
		ok, err := l.ContainsKey(ctx, key)
		if err != nil {
			return nil, err
		}
		result[i] = ok
	}
	return result, nil
}

// ReadMultiValues implements kv.Reader.
func (l *Layer) ReadMultiValues(ctx context.Context, keys [][]byte) ([][]byte, error) {
	result := make([][]byte, len(keys))
	for i, key := range keys {
		v, err := l.ReadValue(ctx, key)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

// FindKeysByPrefix implements kv.Reader. It is derived from the
// prefix-scan cache when present, otherwise delegates without
// populating the scan cache (only FindKeyValuesByPrefix populates it,
// to avoid two different cached shapes for the same prefix).
func (l *Layer) FindKeysByPrefix(ctx context.Context, prefix []byte) ([][]byte, error) {
	l.mu.Lock()
	if kvs, ok := l.prefixScans.Get(string(prefix)); ok {
		l.mu.Unlock()
		metrics.CacheHitsTotal.WithLabelValues("prefix").Inc()
		keys := make([][]byte, len(kvs))
		for i, kv := range kvs {
			keys[i] = kv.Key
		}
		return keys, nil
	}
	l.mu.Unlock()
	metrics.CacheMissesTotal.WithLabelValues("prefix").Inc()
	return l.inner.FindKeysByPrefix(ctx, prefix)
}

// FindKeyValuesByPrefix implements kv.Reader, caching the result set.
func (l *Layer) FindKeyValuesByPrefix(ctx context.Context, prefix []byte) ([]kv.KeyValue, error) {
	l.mu.Lock()
	if kvs, ok := l.prefixScans.Get(string(prefix)); ok {
		l.mu.Unlock()
		metrics.CacheHitsTotal.WithLabelValues("prefix").Inc()
		return kvs, nil
	}
	l.mu.Unlock()
	metrics.CacheMissesTotal.WithLabelValues("prefix").Inc()

	kvs, err := l.inner.FindKeyValuesByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.prefixScans.Add(string(prefix), kvs)
	l.mu.Unlock()
	return kvs, nil
}

// WriteBatch implements kv.Writer. It applies to the inner store
// first; only on success does it touch the cache, so a failed write
// never leaves the cache out of sync with the backend.
func (l *Layer) WriteBatch(ctx context.Context, batch *kv.Batch) error {
	if err := l.inner.WriteBatch(ctx, batch); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, op := range batch.Operations() {
		switch op.Kind {
		case kv.OpPut:
			l.setValueLocked(op.Key, op.Value)
		case kv.OpDelete:
			l.values.Remove(string(op.Key))
		case kv.OpDeletePrefix:
			prefix := string(op.Key)
			for _, k := range l.values.Keys() {
				if strings.HasPrefix(k, prefix) {
					l.values.Remove(k)
				}
			}
		}
	}
	// Any write invalidates the prefix-scan cache outright: computing
	// precise overlap between a write's key(s) and every cached
	// prefix is not worth the complexity this layer is meant to avoid.
	if !batch.IsEmpty() {
		l.prefixScans.Purge()
	}
	return nil
}

// ClearJournal implements kv.Writer by delegating to the inner store.
// The cache holds no journal state of its own.
func (l *Layer) ClearJournal(ctx context.Context) error {
	return l.inner.ClearJournal(ctx)
}

func (l *Layer) putValue(key, value []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setValueLocked(key, value)
}

func (l *Layer) setValueLocked(key, value []byte) {
	if old, ok := l.values.Peek(string(key)); ok {
		l.valueBytes -= len(old)
	} else {
		metrics.CacheEntriesGauge.Inc()
	}
	l.values.Add(string(key), value)
	l.valueBytes += len(value)

	if l.maxBytes <= 0 {
		return
	}
	for l.valueBytes > l.maxBytes {
		_, _, ok := l.values.RemoveOldest()
		if !ok {
			break
		}
	}
}

var _ kv.Store = (*Layer)(nil)
