package splitting

import (
	"context"
	"fmt"
	"math"

	"github.com/cuemby/chainkv/internal/kverr"
	"github.com/cuemby/chainkv/pkg/kv"
	"github.com/cuemby/chainkv/pkg/metrics"
)

// Layer wraps an inner kv.Store and hides its MaxValueSize ceiling
// from callers, per spec §4.3.
type Layer struct {
	inner kv.Store
}

// New wraps inner with the value-splitting layer.
func New(inner kv.Store) *Layer {
	return &Layer{inner: inner}
}

// maxChunkSize is the largest payload this layer will store in one
// physical entry, reserving one byte for the direct/split marker.
func (l *Layer) maxChunkSize() int {
	size := l.inner.Limits().MaxValueSize - 1
	if size < 1 {
		size = 1
	}
	return size
}

// Limits implements kv.Reader. MaxValueSize is reported as
// effectively unbounded: this layer's entire purpose is to hide the
// inner value ceiling from callers above it. MaxKeySize is reduced to
// leave room for the chunk-key suffix this layer appends internally.
func (l *Layer) Limits() kv.Limits {
	inner := l.inner.Limits()
	maxKey := inner.MaxKeySize - 5 // 1 tag byte + 4-byte chunk index
	if maxKey < 1 {
		maxKey = 1
	}
	return kv.Limits{
		MaxKeySize:        maxKey,
		MaxValueSize:      math.MaxInt32,
		MaxBatchSize:      inner.MaxBatchSize,
		MaxBatchTotalSize: inner.MaxBatchTotalSize,
	}
}

// MaxStreamQueries implements kv.Reader.
func (l *Layer) MaxStreamQueries() int { return l.inner.MaxStreamQueries() }

// ReadValue implements kv.Reader, transparently reassembling split
// values.
func (l *Layer) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	raw, err := l.inner.ReadValue(ctx, entryKey(key))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return l.reassemble(ctx, key, raw)
}

func (l *Layer) reassemble(ctx context.Context, key, raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("splitting: %w", kverr.ErrMalformedBlock)
	}
	switch raw[0] {
	case directMarker:
		return raw[1:], nil
	case splitMarker:
		chunkCount, totalLen, ok := decodeSplitIndex(raw)
		if !ok {
			return nil, fmt.Errorf("splitting: %w", kverr.ErrMalformedBlock)
		}
		out := make([]byte, 0, totalLen)
		for i := uint32(0); i < chunkCount; i++ {
			chunk, err := l.inner.ReadValue(ctx, chunkKey(key, i))
			if err != nil {
				return nil, err
			}
			if chunk == nil || len(chunk) == 0 || chunk[0] != directMarker {
				return nil, fmt.Errorf("splitting: missing chunk %d: %w", i, kverr.ErrMalformedBlock)
			}
			out = append(out, chunk[1:]...)
		}
		if uint64(len(out)) != totalLen {
			return nil, fmt.Errorf("splitting: reassembled length mismatch: %w", kverr.ErrMalformedBlock)
		}
		metrics.SplitValuesTotal.Inc()
		return out, nil
	default:
		return nil, fmt.Errorf("splitting: %w", kverr.ErrMalformedBlock)
	}
}

// ContainsKey implements kv.Reader.
func (l *Layer) ContainsKey(ctx context.Context, key []byte) (bool, error) {
	return l.inner.ContainsKey(ctx, entryKey(key))
}

// ContainsKeys implements kv.Reader.
func (l *Layer) ContainsKeys(ctx context.Context, keys [][]byte) ([]bool, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = entryKey(k)
	}
	return l.inner.ContainsKeys(ctx, out)
}

// ReadMultiValues implements kv.Reader.
func (l *Layer) ReadMultiValues(ctx context.Context, keys [][]byte) ([][]byte, error) {
	result := make([][]byte, len(keys))
	for i, k := range keys {
		v, err := l.ReadValue(ctx, k)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

// FindKeysByPrefix implements kv.Reader.
func (l *Layer) FindKeysByPrefix(ctx context.Context, prefix []byte) ([][]byte, error) {
	return l.inner.FindKeysByPrefix(ctx, entryPrefix(prefix))
}

// FindKeyValuesByPrefix implements kv.Reader.
func (l *Layer) FindKeyValuesByPrefix(ctx context.Context, prefix []byte) ([]kv.KeyValue, error) {
	raw, err := l.inner.FindKeyValuesByPrefix(ctx, entryPrefix(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]kv.KeyValue, 0, len(raw))
	for _, kvPair := range raw {
		fullKey := append(append([]byte{}, prefix...), kvPair.Key...)
		value, err := l.reassemble(ctx, fullKey, kvPair.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, kv.KeyValue{Key: kvPair.Key, Value: value})
	}
	return out, nil
}

// WriteBatch implements kv.Writer, expanding oversized Puts into
// chunk entries plus a split index, and propagating deletes to every
// chunk a key previously owned.
func (l *Layer) WriteBatch(ctx context.Context, batch *kv.Batch) error {
	if batch.IsEmpty() {
		return nil
	}
	physical := kv.NewBatch()
	maxChunk := l.maxChunkSize()

	for _, op := range batch.Operations() {
		switch op.Kind {
		case kv.OpPut:
			priorChunks, err := l.priorChunkCount(ctx, op.Key)
			if err != nil {
				return err
			}
			if len(op.Value) <= maxChunk {
				physical.Put(entryKey(op.Key), encodeDirectValue(op.Value))
				for i := uint32(0); i < priorChunks; i++ {
					physical.Delete(chunkKey(op.Key, i))
				}
				continue
			}
			chunkCount := uint32((len(op.Value) + maxChunk - 1) / maxChunk)
			for i := uint32(0); i < chunkCount; i++ {
				start := int(i) * maxChunk
				end := start + maxChunk
				if end > len(op.Value) {
					end = len(op.Value)
				}
				physical.Put(chunkKey(op.Key, i), encodeDirectValue(op.Value[start:end]))
			}
			physical.Put(entryKey(op.Key), encodeSplitIndex(chunkCount, uint64(len(op.Value))))
			for i := chunkCount; i < priorChunks; i++ {
				physical.Delete(chunkKey(op.Key, i))
			}

		case kv.OpDelete:
			priorChunks, err := l.priorChunkCount(ctx, op.Key)
			if err != nil {
				return err
			}
			physical.Delete(entryKey(op.Key))
			for i := uint32(0); i < priorChunks; i++ {
				physical.Delete(chunkKey(op.Key, i))
			}

		case kv.OpDeletePrefix:
			physical.DeletePrefix(entryPrefix(op.Key))
			physical.DeletePrefix(chunkPrefix(op.Key))
		}
	}

	return l.inner.WriteBatch(ctx, physical)
}

// priorChunkCount reads how many chunks, if any, key currently owns so
// WriteBatch can clean up chunks orphaned by an overwrite.
func (l *Layer) priorChunkCount(ctx context.Context, key []byte) (uint32, error) {
	raw, err := l.inner.ReadValue(ctx, entryKey(key))
	if err != nil {
		return 0, err
	}
	if raw == nil || len(raw) == 0 || raw[0] != splitMarker {
		return 0, nil
	}
	chunkCount, _, ok := decodeSplitIndex(raw)
	if !ok {
		return 0, nil
	}
	return chunkCount, nil
}

// ClearJournal implements kv.Writer by delegating to the inner store.
func (l *Layer) ClearJournal(ctx context.Context) error {
	return l.inner.ClearJournal(ctx)
}

var _ kv.Store = (*Layer)(nil)
