package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/chainkv/internal/kverr"
	"github.com/cuemby/chainkv/pkg/kv"
	"github.com/cuemby/chainkv/pkg/store/badgerdb"
)

// crashingStore wraps a real kv.Store and fails every WriteBatch call
// starting from the (1-indexed) failAt'th call, simulating a process
// crash partway through a slow-path write. 0 disables failure.
type crashingStore struct {
	kv.Store
	calls  int
	failAt int
}

func (c *crashingStore) WriteBatch(ctx context.Context, batch *kv.Batch) error {
	c.calls++
	if c.failAt > 0 && c.calls >= c.failAt {
		return errors.New("simulated crash")
	}
	return c.Store.WriteBatch(ctx, batch)
}

func newTestBackend(t *testing.T, maxBatchSize, maxValueSize, maxBatchTotalSize int) *badgerdb.Backend {
	t.Helper()
	b, err := badgerdb.New(badgerdb.Options{
		InMemory:          true,
		MaxBatchSize:      maxBatchSize,
		MaxValueSize:      maxValueSize,
		MaxBatchTotalSize: maxBatchTotalSize,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestFastPathWrite(t *testing.T) {
	backend := newTestBackend(t, 1000, 1<<20, 1<<20)
	l := New(backend, true, "test")
	ctx := context.Background()

	require.NoError(t, l.WriteBatch(ctx, kv.NewBatch().Put([]byte("a"), []byte("1")).Put([]byte("b"), []byte("2"))))

	v, err := l.ReadValue(ctx, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	raw, err := backend.ReadValue(ctx, headerKey())
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestSlowPathWriteWithForcedSmallLimits(t *testing.T) {
	backend := newTestBackend(t, 3, 8, 1<<20)
	l := New(backend, true, "test")
	ctx := context.Background()

	batch := kv.NewBatch()
	for i := 0; i < 10; i++ {
		batch.Put([]byte{byte('a' + i)}, []byte("0000"))
	}
	require.NoError(t, l.WriteBatch(ctx, batch))

	for i := 0; i < 10; i++ {
		v, err := l.ReadValue(ctx, []byte{byte('a' + i)})
		require.NoError(t, err)
		require.Equal(t, []byte("0000"), v)
	}

	raw, err := backend.ReadValue(ctx, headerKey())
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestCrashBetweenBlocksLeavesNoUserEffect(t *testing.T) {
	backend := newTestBackend(t, 3, 8, 1<<20)
	crasher := &crashingStore{Store: backend, failAt: 2}
	l := New(crasher, true, "test")
	ctx := context.Background()

	batch := kv.NewBatch()
	for i := 0; i < 10; i++ {
		batch.Put([]byte{byte('a' + i)}, []byte("0000"))
	}
	err := l.WriteBatch(ctx, batch)
	require.Error(t, err)

	// no header should exist, and none of the values should be visible.
	raw, rerr := backend.ReadValue(ctx, headerKey())
	require.NoError(t, rerr)
	require.Nil(t, raw)

	for i := 0; i < 10; i++ {
		v, rerr := backend.ReadValue(ctx, []byte{byte('a' + i)})
		require.NoError(t, rerr)
		require.Nil(t, v)
	}
}

func TestCrashAfterHeaderCommitThenClearJournal(t *testing.T) {
	backend := newTestBackend(t, 3, 8, 1<<20)
	l := New(backend, true, "test")
	ctx := context.Background()

	batch := kv.NewBatch()
	for i := 0; i < 10; i++ {
		batch.Put([]byte{byte('a' + i)}, []byte("0000"))
	}

	blocks := packBlocks(batch.Operations(), backend.Limits())
	require.NoError(t, l.flushTransactions(ctx, blocks))
	require.NoError(t, backend.WriteBatch(ctx, kv.NewBatch().Put(headerKey(), encodeHeader(uint32(len(blocks))))))

	// simulate reopening the store and running recovery.
	reopened := New(backend, true, "test")
	require.NoError(t, reopened.ClearJournal(ctx))

	for i := 0; i < 10; i++ {
		v, err := reopened.ReadValue(ctx, []byte{byte('a' + i)})
		require.NoError(t, err)
		require.Equal(t, []byte("0000"), v)
	}
	raw, err := backend.ReadValue(ctx, headerKey())
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestClearJournalIsIdempotent(t *testing.T) {
	backend := newTestBackend(t, 3, 8, 1<<20)
	l := New(backend, true, "test")
	ctx := context.Background()

	require.NoError(t, l.ClearJournal(ctx))
	require.NoError(t, l.ClearJournal(ctx))
}

func TestPrefixDelete(t *testing.T) {
	backend := newTestBackend(t, 1000, 1<<20, 1<<20)
	l := New(backend, true, "test")
	ctx := context.Background()

	require.NoError(t, l.WriteBatch(ctx, kv.NewBatch().
		Put([]byte("p/1"), []byte("1")).
		Put([]byte("p/2"), []byte("2")).
		Put([]byte("q/1"), []byte("3"))))

	require.NoError(t, l.WriteBatch(ctx, kv.NewBatch().DeletePrefix([]byte("p/"))))

	keys, err := l.FindKeysByPrefix(ctx, []byte(""))
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("q/1")}, keys)
}

func TestSharedModeRejectsSlowPath(t *testing.T) {
	backend := newTestBackend(t, 3, 8, 1<<20)
	l := New(backend, false, "test")
	ctx := context.Background()

	batch := kv.NewBatch()
	for i := 0; i < 10; i++ {
		batch.Put([]byte{byte('a' + i)}, []byte("0000"))
	}
	err := l.WriteBatch(ctx, batch)
	require.Error(t, err)
	require.True(t, errors.Is(err, kverr.ErrJournalRequiresExclusiveAccess))

	keys, err := l.FindKeysByPrefix(ctx, []byte(""))
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestPackBlocksRespectsOpCountCeiling(t *testing.T) {
	limits := kv.Limits{MaxKeySize: 1024, MaxValueSize: 1024, MaxBatchSize: 4, MaxBatchTotalSize: 1 << 20}
	ops := make([]kv.Operation, 0, 10)
	for i := 0; i < 10; i++ {
		ops = append(ops, kv.Operation{Kind: kv.OpPut, Key: []byte{byte(i)}, Value: []byte("v")})
	}
	blocks := packBlocks(ops, limits)
	for _, b := range blocks {
		require.LessOrEqual(t, len(b), limits.MaxBatchSize-2)
	}
}

func TestBlockCodecRoundTrip(t *testing.T) {
	ops := []kv.Operation{
		{Kind: kv.OpPut, Key: []byte("k1"), Value: []byte("v1")},
		{Kind: kv.OpDelete, Key: []byte("k2")},
		{Kind: kv.OpDeletePrefix, Key: []byte("p/")},
	}
	encoded := encodeBlock(ops)
	decoded, err := decodeBlock(encoded)
	require.NoError(t, err)
	require.Equal(t, ops, decoded)
}

func TestDecodeBlockRejectsTruncated(t *testing.T) {
	ops := []kv.Operation{{Kind: kv.OpPut, Key: []byte("k"), Value: []byte("v")}}
	encoded := encodeBlock(ops)
	_, err := decodeBlock(encoded[:len(encoded)-2])
	require.Error(t, err)
	require.True(t, errors.Is(err, kverr.ErrFailureToRetrieveJournalBlock))
}

func TestHeaderCodecRoundTrip(t *testing.T) {
	encoded := encodeHeader(42)
	count, err := decodeHeader(encoded)
	require.NoError(t, err)
	require.Equal(t, uint32(42), count)
}

func TestDecodeHeaderRejectsWrongSize(t *testing.T) {
	_, err := decodeHeader([]byte{1, 2, 3})
	require.Error(t, err)
	require.True(t, errors.Is(err, kverr.ErrMalformedHeader))
}
