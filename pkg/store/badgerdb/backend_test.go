package badgerdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/chainkv/pkg/kv"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackendPutGet(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	batch := kv.NewBatch().Put([]byte("a"), []byte("1")).Put([]byte("b"), []byte("2"))
	require.NoError(t, b.WriteBatch(ctx, batch))

	value, err := b.ReadValue(ctx, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), value)

	value, err = b.ReadValue(ctx, []byte("missing"))
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestBackendContainsKey(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.WriteBatch(ctx, kv.NewBatch().Put([]byte("k"), []byte("v"))))

	ok, err := b.ContainsKey(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.ContainsKey(ctx, []byte("nope"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBackendDelete(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.WriteBatch(ctx, kv.NewBatch().Put([]byte("k"), []byte("v"))))
	require.NoError(t, b.WriteBatch(ctx, kv.NewBatch().Delete([]byte("k"))))

	value, err := b.ReadValue(ctx, []byte("k"))
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestBackendDeletePrefix(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.WriteBatch(ctx, kv.NewBatch().
		Put([]byte("ns/a"), []byte("1")).
		Put([]byte("ns/b"), []byte("2")).
		Put([]byte("other/c"), []byte("3"))))

	require.NoError(t, b.WriteBatch(ctx, kv.NewBatch().DeletePrefix([]byte("ns/"))))

	keys, err := b.FindKeysByPrefix(ctx, []byte(""))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, []byte("other/c"), keys[0])
}

func TestBackendFindKeyValuesByPrefix(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.WriteBatch(ctx, kv.NewBatch().
		Put([]byte("p/2"), []byte("two")).
		Put([]byte("p/1"), []byte("one")).
		Put([]byte("q/1"), []byte("other"))))

	kvs, err := b.FindKeyValuesByPrefix(ctx, []byte("p/"))
	require.NoError(t, err)
	require.Len(t, kvs, 2)
	require.Equal(t, []byte("1"), kvs[0].Key)
	require.Equal(t, []byte("one"), kvs[0].Value)
	require.Equal(t, []byte("2"), kvs[1].Key)
	require.Equal(t, []byte("two"), kvs[1].Value)
}

func TestBackendReadMultiValuesAndContainsKeys(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.WriteBatch(ctx, kv.NewBatch().Put([]byte("a"), []byte("1"))))

	values, err := b.ReadMultiValues(ctx, [][]byte{[]byte("a"), []byte("missing")})
	require.NoError(t, err)
	require.Equal(t, []byte("1"), values[0])
	require.Nil(t, values[1])

	present, err := b.ContainsKeys(ctx, [][]byte{[]byte("a"), []byte("missing")})
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, present)
}

func TestBackendWriteBatchRejectsOversizedValue(t *testing.T) {
	opts := Options{InMemory: true, MaxValueSize: 4}
	b, err := New(opts)
	require.NoError(t, err)
	defer b.Close()

	err = b.WriteBatch(context.Background(), kv.NewBatch().Put([]byte("k"), []byte("toolong")))
	require.Error(t, err)
}

func TestBackendClearJournalIsNoop(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.ClearJournal(context.Background()))
}

func TestBackendLimitsAndMaxStreamQueries(t *testing.T) {
	b := newTestBackend(t)
	limits := b.Limits()
	require.Equal(t, DefaultMaxKeySize, limits.MaxKeySize)
	require.Equal(t, DefaultMaxValueSize, limits.MaxValueSize)
	require.Equal(t, DefaultMaxStreamQueries, b.MaxStreamQueries())
}
