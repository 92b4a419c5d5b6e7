package badgerdb

const (
	mib = 1 << 20
	gib = 1 << 30

	// DefaultMaxKeySize and DefaultMaxValueSize mirror the reference
	// backend ceilings from spec §3: "8 MiB - 400" and "3 GiB - 400".
	// The 400-byte margin leaves room for the backend's own per-entry
	// framing (badger's internal key/value header and checksum).
	DefaultMaxKeySize   = 8*mib - 400
	DefaultMaxValueSize = 3*gib - 400

	// DefaultMaxBatchSize and DefaultMaxBatchTotalSize are the
	// recommended backend-imposed batch ceilings (spec §4.6: "no hard
	// batch-op limit but a recommended MAX_BATCH_TOTAL_SIZE"). chainkv
	// still enforces an operation-count ceiling above the backend so
	// the journaling layer has a concrete MAX_BATCH_SIZE to reserve
	// slots against.
	DefaultMaxBatchSize      = 100_000
	DefaultMaxBatchTotalSize = 32 * mib

	// DefaultMaxStreamQueries is the concurrency hint surfaced through
	// the layered trait to callers doing range scans.
	DefaultMaxStreamQueries = 10
)

// Options configures a Backend. Zero values fall back to the defaults
// above.
type Options struct {
	Path              string
	MaxKeySize        int
	MaxValueSize      int
	MaxBatchSize      int
	MaxBatchTotalSize int
	MaxStreamQueries  int

	// InMemory runs badger without touching disk, for tests.
	InMemory bool

	// ValueLogFileSize overrides badger's default, useful for tests
	// that want to force small on-disk segments.
	ValueLogFileSize int64
}

func (o *Options) withDefaults() {
	if o.MaxKeySize <= 0 {
		o.MaxKeySize = DefaultMaxKeySize
	}
	if o.MaxValueSize <= 0 {
		o.MaxValueSize = DefaultMaxValueSize
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = DefaultMaxBatchSize
	}
	if o.MaxBatchTotalSize <= 0 {
		o.MaxBatchTotalSize = DefaultMaxBatchTotalSize
	}
	if o.MaxStreamQueries <= 0 {
		o.MaxStreamQueries = DefaultMaxStreamQueries
	}
}
