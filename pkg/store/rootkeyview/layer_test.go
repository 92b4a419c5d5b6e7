package rootkeyview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/chainkv/pkg/kv"
	"github.com/cuemby/chainkv/pkg/store/badgerdb"
)

type recordingIndex struct {
	calls []string
}

func (r *recordingIndex) RecordRootKey(namespace string, rootKey []byte) error {
	r.calls = append(r.calls, namespace+":"+string(rootKey))
	return nil
}

func newBackend(t *testing.T) *badgerdb.Backend {
	t.Helper()
	b, err := badgerdb.New(badgerdb.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestRootKeyViewPartitionIsolation(t *testing.T) {
	backend := newBackend(t)
	idx := &recordingIndex{}
	a := New(backend, "ns", []byte("rootA"), idx)
	b := New(backend, "ns", []byte("rootB"), idx)
	ctx := context.Background()

	require.NoError(t, a.WriteBatch(ctx, kv.NewBatch().Put([]byte("k"), []byte("a-value"))))
	require.NoError(t, b.WriteBatch(ctx, kv.NewBatch().Put([]byte("k"), []byte("b-value"))))

	va, err := a.ReadValue(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("a-value"), va)

	vb, err := b.ReadValue(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("b-value"), vb)

	keysA, err := a.FindKeysByPrefix(ctx, []byte(""))
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("k")}, keysA)
}

func TestRootKeyViewRecordsFirstWriteOnce(t *testing.T) {
	backend := newBackend(t)
	idx := &recordingIndex{}
	l := New(backend, "ns", []byte("root"), idx)
	ctx := context.Background()

	require.NoError(t, l.WriteBatch(ctx, kv.NewBatch().Put([]byte("a"), []byte("1"))))
	require.NoError(t, l.WriteBatch(ctx, kv.NewBatch().Put([]byte("b"), []byte("2"))))

	require.Equal(t, []string{"ns:root"}, idx.calls)
}
