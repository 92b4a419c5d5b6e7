package rootkeyview

import (
	"context"
	"sync/atomic"

	"github.com/cuemby/chainkv/pkg/kv"
)

// RootKeyIndex records that a root key has seen its first write, so
// the Database façade's list_root_keys can enumerate active
// partitions. Implementations must tolerate being called more than
// once for the same root key.
type RootKeyIndex interface {
	RecordRootKey(namespace string, rootKey []byte) error
}

// Layer prepends rootKey to every physical key before delegating to
// inner, and strips it back off on the way out.
type Layer struct {
	inner     kv.Store
	namespace string
	rootKey   []byte
	index     RootKeyIndex
	written   atomic.Bool
}

// New wraps inner, scoping every key to rootKey.
func New(inner kv.Store, namespace string, rootKey []byte, index RootKeyIndex) *Layer {
	return &Layer{inner: inner, namespace: namespace, rootKey: append([]byte{}, rootKey...), index: index}
}

func (l *Layer) physicalKey(key []byte) []byte {
	out := make([]byte, 0, len(l.rootKey)+len(key))
	out = append(out, l.rootKey...)
	out = append(out, key...)
	return out
}

func (l *Layer) physicalPrefix(prefix []byte) []byte {
	return l.physicalKey(prefix)
}

// Limits implements kv.Reader, reducing MaxKeySize by the root key
// prefix's own length.
func (l *Layer) Limits() kv.Limits {
	inner := l.inner.Limits()
	maxKey := inner.MaxKeySize - len(l.rootKey)
	if maxKey < 1 {
		maxKey = 1
	}
	inner.MaxKeySize = maxKey
	return inner
}

func (l *Layer) MaxStreamQueries() int { return l.inner.MaxStreamQueries() }

func (l *Layer) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	return l.inner.ReadValue(ctx, l.physicalKey(key))
}

func (l *Layer) ContainsKey(ctx context.Context, key []byte) (bool, error) {
	return l.inner.ContainsKey(ctx, l.physicalKey(key))
}

func (l *Layer) ContainsKeys(ctx context.Context, keys [][]byte) ([]bool, error) {
	physical := make([][]byte, len(keys))
	for i, k := range keys {
		physical[i] = l.physicalKey(k)
	}
	return l.inner.ContainsKeys(ctx, physical)
}

func (l *Layer) ReadMultiValues(ctx context.Context, keys [][]byte) ([][]byte, error) {
	physical := make([][]byte, len(keys))
	for i, k := range keys {
		physical[i] = l.physicalKey(k)
	}
	return l.inner.ReadMultiValues(ctx, physical)
}

func (l *Layer) FindKeysByPrefix(ctx context.Context, prefix []byte) ([][]byte, error) {
	return l.inner.FindKeysByPrefix(ctx, l.physicalPrefix(prefix))
}

func (l *Layer) FindKeyValuesByPrefix(ctx context.Context, prefix []byte) ([]kv.KeyValue, error) {
	return l.inner.FindKeyValuesByPrefix(ctx, l.physicalPrefix(prefix))
}

func (l *Layer) WriteBatch(ctx context.Context, batch *kv.Batch) error {
	if batch.IsEmpty() {
		return nil
	}
	physical := kv.NewBatch()
	for _, op := range batch.Operations() {
		switch op.Kind {
		case kv.OpPut:
			physical.Put(l.physicalKey(op.Key), op.Value)
		case kv.OpDelete:
			physical.Delete(l.physicalKey(op.Key))
		case kv.OpDeletePrefix:
			physical.DeletePrefix(l.physicalPrefix(op.Key))
		}
	}
	if err := l.inner.WriteBatch(ctx, physical); err != nil {
		return err
	}
	if l.index != nil && l.written.CompareAndSwap(false, true) {
		if err := l.index.RecordRootKey(l.namespace, l.rootKey); err != nil {
			return err
		}
	}
	return nil
}

func (l *Layer) ClearJournal(ctx context.Context) error {
	return l.inner.ClearJournal(ctx)
}

var _ kv.Store = (*Layer)(nil)
