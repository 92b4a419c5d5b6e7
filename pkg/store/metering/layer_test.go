package metering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/chainkv/pkg/kv"
	"github.com/cuemby/chainkv/pkg/store/badgerdb"
)

func TestMeteringPassesThroughSemantics(t *testing.T) {
	backend, err := badgerdb.New(badgerdb.Options{InMemory: true})
	require.NoError(t, err)
	defer backend.Close()

	l := New(backend, "badgerdb")
	ctx := context.Background()

	require.NoError(t, l.WriteBatch(ctx, kv.NewBatch().Put([]byte("k"), []byte("v"))))

	v, err := l.ReadValue(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)

	ok, err := l.ContainsKey(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.ClearJournal(ctx))
}
