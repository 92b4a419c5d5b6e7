package kv

import "context"

// KeyValue is a single entry returned by a prefix scan. Key is relative
// to the scanned prefix (the prefix itself is stripped).
type KeyValue struct {
	Key   []byte
	Value []byte
}

// Limits are the backend-imposed ceilings every layer above the
// backend must respect without hardcoding. A layer reads these from
// the Store it wraps rather than assuming constants of its own.
type Limits struct {
	MaxKeySize        int
	MaxValueSize      int
	MaxBatchSize      int // max number of operations in one backend transaction
	MaxBatchTotalSize int // max total byte size of one backend transaction
}

// Reader is the read half of the layered store contract (spec §4.1).
type Reader interface {
	// ReadValue returns the value for key, or (nil, nil) if absent.
	ReadValue(ctx context.Context, key []byte) ([]byte, error)

	// ContainsKey reports whether key is present.
	ContainsKey(ctx context.Context, key []byte) (bool, error)

	// ContainsKeys reports, for each key, whether it is present. The
	// result is positionally aligned with keys.
	ContainsKeys(ctx context.Context, keys [][]byte) ([]bool, error)

	// ReadMultiValues returns the value for each key, or nil for keys
	// that are absent. The result is positionally aligned with keys.
	ReadMultiValues(ctx context.Context, keys [][]byte) ([][]byte, error)

	// FindKeysByPrefix returns every key starting with prefix, with the
	// prefix stripped, in ascending lexicographic order, with no
	// duplicates.
	FindKeysByPrefix(ctx context.Context, prefix []byte) ([][]byte, error)

	// FindKeyValuesByPrefix is FindKeysByPrefix but also returns values.
	FindKeyValuesByPrefix(ctx context.Context, prefix []byte) ([]KeyValue, error)

	// MaxStreamQueries is a concurrency hint for range scanning callers.
	MaxStreamQueries() int

	// Limits returns the backend ceilings visible through this layer.
	Limits() Limits
}

// Writer is the write half of the layered store contract (spec §4.1).
type Writer interface {
	// WriteBatch applies batch atomically: either every operation in
	// it takes effect, or none do, even across a process crash.
	WriteBatch(ctx context.Context, batch *Batch) error

	// ClearJournal completes any in-progress journaled batch left over
	// from a prior crash. It is idempotent and safe to call on a clean
	// store; the Database façade calls it before serving the first user
	// operation on a root key.
	ClearJournal(ctx context.Context) error
}

// Store is the full layered-store contract. Every layer — backend,
// splitting, journaling, LRU caching, metering — implements it and, in
// turn, consumes another Store as its inner layer.
type Store interface {
	Reader
	Writer
}
