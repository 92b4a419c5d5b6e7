package metering

import (
	"context"

	"github.com/cuemby/chainkv/pkg/kv"
	"github.com/cuemby/chainkv/pkg/metrics"
)

// Layer wraps an inner kv.Store with prometheus instrumentation,
// transparent to every caller above it (spec's metering layer is
// optional and changes no semantics).
type Layer struct {
	inner kv.Store
	kind  string
}

// New wraps inner with metering. kind labels every metric this layer
// emits (e.g. "badgerdb", "bboltdb").
func New(inner kv.Store, kind string) *Layer {
	return &Layer{inner: inner, kind: kind}
}

func (l *Layer) Limits() kv.Limits     { return l.inner.Limits() }
func (l *Layer) MaxStreamQueries() int { return l.inner.MaxStreamQueries() }

func (l *Layer) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.BackendOpDuration, l.kind, "meter_read_value")
	v, err := l.inner.ReadValue(ctx, key)
	l.record("read_value", err)
	return v, err
}

func (l *Layer) ContainsKey(ctx context.Context, key []byte) (bool, error) {
	ok, err := l.inner.ContainsKey(ctx, key)
	l.record("contains_key", err)
	return ok, err
}

func (l *Layer) ContainsKeys(ctx context.Context, keys [][]byte) ([]bool, error) {
	result, err := l.inner.ContainsKeys(ctx, keys)
	l.record("contains_keys", err)
	return result, err
}

func (l *Layer) ReadMultiValues(ctx context.Context, keys [][]byte) ([][]byte, error) {
	result, err := l.inner.ReadMultiValues(ctx, keys)
	l.record("read_multi_values", err)
	return result, err
}

func (l *Layer) FindKeysByPrefix(ctx context.Context, prefix []byte) ([][]byte, error) {
	result, err := l.inner.FindKeysByPrefix(ctx, prefix)
	l.record("find_keys_by_prefix", err)
	return result, err
}

func (l *Layer) FindKeyValuesByPrefix(ctx context.Context, prefix []byte) ([]kv.KeyValue, error) {
	result, err := l.inner.FindKeyValuesByPrefix(ctx, prefix)
	l.record("find_key_values_by_prefix", err)
	return result, err
}

func (l *Layer) WriteBatch(ctx context.Context, batch *kv.Batch) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.BackendOpDuration, l.kind, "meter_write_batch")
	err := l.inner.WriteBatch(ctx, batch)
	l.record("write_batch", err)
	return err
}

func (l *Layer) ClearJournal(ctx context.Context) error {
	err := l.inner.ClearJournal(ctx)
	l.record("clear_journal", err)
	return err
}

func (l *Layer) record(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.BackendOpsTotal.WithLabelValues(l.kind, op, result).Inc()
}

var _ kv.Store = (*Layer)(nil)
