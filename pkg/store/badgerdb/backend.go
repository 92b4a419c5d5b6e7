package badgerdb

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/cuemby/chainkv/internal/kverr"
	"github.com/cuemby/chainkv/pkg/kv"
	"github.com/cuemby/chainkv/pkg/metrics"
)

// BackendKind identifies this backend in metrics and BackendError.
const BackendKind = "badgerdb"

// Backend is the reference embedded key-value backend (spec §4.6): an
// LSM-tree with ordered iteration, point gets, atomic batched writes,
// and a native per-table bloom filter. It implements kv.Store directly
// — there is no narrower "raw" interface, since every layer above it
// consumes the same contract.
type Backend struct {
	db     *badger.DB
	opts   Options
	limits kv.Limits
}

// New opens (creating if absent) a badger-backed Backend at opts.Path.
func New(opts Options) (*Backend, error) {
	opts.withDefaults()

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = bopts.WithInMemory(true)
	}
	if opts.ValueLogFileSize > 0 {
		bopts = bopts.WithValueLogFileSize(opts.ValueLogFileSize)
	}
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, kverr.NewBackendError(BackendKind, false, fmt.Errorf("open badger at %q: %w", opts.Path, err))
	}

	return &Backend{
		db:   db,
		opts: opts,
		limits: kv.Limits{
			MaxKeySize:        opts.MaxKeySize,
			MaxValueSize:      opts.MaxValueSize,
			MaxBatchSize:      opts.MaxBatchSize,
			MaxBatchTotalSize: opts.MaxBatchTotalSize,
		},
	}, nil
}

// Close releases the underlying badger database.
func (b *Backend) Close() error {
	if err := b.db.Close(); err != nil {
		return kverr.NewBackendError(BackendKind, false, fmt.Errorf("close badger: %w", err))
	}
	return nil
}

// Limits implements kv.Reader.
func (b *Backend) Limits() kv.Limits { return b.limits }

// MaxStreamQueries implements kv.Reader.
func (b *Backend) MaxStreamQueries() int { return b.opts.MaxStreamQueries }

// ReadValue implements kv.Reader.
func (b *Backend) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.BackendOpDuration, BackendKind, "read_value")

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		metrics.BackendOpsTotal.WithLabelValues(BackendKind, "read_value", "error").Inc()
		return nil, kverr.NewBackendError(BackendKind, true, fmt.Errorf("read value: %w", err))
	}
	metrics.BackendOpsTotal.WithLabelValues(BackendKind, "read_value", "ok").Inc()
	return value, nil
}

// ContainsKey implements kv.Reader using badger's key_may_exist-style
// existence check: Get without ValueCopy still consults the bloom
// filter before touching the value log.
func (b *Backend) ContainsKey(ctx context.Context, key []byte) (bool, error) {
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, kverr.NewBackendError(BackendKind, true, fmt.Errorf("contains key: %w", err))
	}
	return found, nil
}

// ContainsKeys implements kv.Reader.
func (b *Backend) ContainsKeys(ctx context.Context, keys [][]byte) ([]bool, error) {
	result := make([]bool, len(keys))
	err := b.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			_, err := txn.Get(key)
			switch err {
			case nil:
				result[i] = true
			case badger.ErrKeyNotFound:
				result[i] = false
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, kverr.NewBackendError(BackendKind, true, fmt.Errorf("contains keys: %w", err))
	}
	return result, nil
}

// ReadMultiValues implements kv.Reader.
func (b *Backend) ReadMultiValues(ctx context.Context, keys [][]byte) ([][]byte, error) {
	result := make([][]byte, len(keys))
	err := b.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			item, err := txn.Get(key)
			if err == badger.ErrKeyNotFound {
				result[i] = nil
				continue
			}
			if err != nil {
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[i] = value
		}
		return nil
	})
	if err != nil {
		return nil, kverr.NewBackendError(BackendKind, true, fmt.Errorf("read multi values: %w", err))
	}
	return result, nil
}

// FindKeysByPrefix implements kv.Reader.
func (b *Backend) FindKeysByPrefix(ctx context.Context, prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		iopts := badger.DefaultIteratorOptions
		iopts.PrefetchValues = false
		iopts.Prefix = prefix
		it := txn.NewIterator(iopts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			full := it.Item().KeyCopy(nil)
			keys = append(keys, full[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, kverr.NewBackendError(BackendKind, true, fmt.Errorf("find keys by prefix: %w", err))
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return keys, nil
}

// FindKeyValuesByPrefix implements kv.Reader.
func (b *Backend) FindKeyValuesByPrefix(ctx context.Context, prefix []byte) ([]kv.KeyValue, error) {
	var kvs []kv.KeyValue
	err := b.db.View(func(txn *badger.Txn) error {
		iopts := badger.DefaultIteratorOptions
		iopts.Prefix = prefix
		it := txn.NewIterator(iopts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			full := item.KeyCopy(nil)
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			kvs = append(kvs, kv.KeyValue{Key: full[len(prefix):], Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, kverr.NewBackendError(BackendKind, true, fmt.Errorf("find key values by prefix: %w", err))
	}
	sort.Slice(kvs, func(i, j int) bool { return bytes.Compare(kvs[i].Key, kvs[j].Key) < 0 })
	return kvs, nil
}

// WriteBatch implements kv.Writer. The backend is the bottom of the
// stack: it has no journal of its own, so a batch that exceeds the
// backend's own limits simply fails — the journaling layer above is
// what guarantees atomicity past those limits.
func (b *Backend) WriteBatch(ctx context.Context, batch *kv.Batch) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.BackendOpDuration, BackendKind, "write_batch")

	if batch.IsEmpty() {
		return nil
	}
	if batch.Len() > b.limits.MaxBatchSize || batch.ByteSize() > b.limits.MaxBatchTotalSize {
		metrics.BackendOpsTotal.WithLabelValues(BackendKind, "write_batch", "error").Inc()
		return fmt.Errorf("write batch: %w", kverr.ErrValueTooLong)
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, op := range batch.Operations() {
		var err error
		switch op.Kind {
		case kv.OpPut:
			if len(op.Key) > b.limits.MaxKeySize {
				return fmt.Errorf("write batch: %w", kverr.ErrKeyTooLong)
			}
			if len(op.Value) > b.limits.MaxValueSize {
				return fmt.Errorf("write batch: %w", kverr.ErrValueTooLong)
			}
			err = wb.Set(op.Key, op.Value)
		case kv.OpDelete:
			err = wb.Delete(op.Key)
		case kv.OpDeletePrefix:
			err = b.deletePrefixInBatch(wb, op.Key)
		}
		if err != nil {
			metrics.BackendOpsTotal.WithLabelValues(BackendKind, "write_batch", "error").Inc()
			return kverr.NewBackendError(BackendKind, true, fmt.Errorf("stage op: %w", err))
		}
	}

	if err := wb.Flush(); err != nil {
		metrics.BackendOpsTotal.WithLabelValues(BackendKind, "write_batch", "error").Inc()
		return kverr.NewBackendError(BackendKind, true, fmt.Errorf("flush write batch: %w", err))
	}
	metrics.BackendOpsTotal.WithLabelValues(BackendKind, "write_batch", "ok").Inc()
	return nil
}

// deletePrefixInBatch stages a delete for every key currently matching
// prefix. It reads the keys in a fresh view rather than the write
// batch's own transaction, since badger's WriteBatch has no read side.
func (b *Backend) deletePrefixInBatch(wb *badger.WriteBatch, prefix []byte) error {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		iopts := badger.DefaultIteratorOptions
		iopts.PrefetchValues = false
		iopts.Prefix = prefix
		it := txn.NewIterator(iopts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// ClearJournal implements kv.Writer. The bottom backend has no
// journal of its own: every WriteBatch it accepts is already
// physically atomic via badger's own write-ahead value log, so there
// is nothing to resolve.
func (b *Backend) ClearJournal(ctx context.Context) error { return nil }

// KeyMayExist is the bloom-filter-backed fast-negative check spec §4.6
// calls out explicitly: a false return means key is definitely absent
// without touching the value log; a true return means key might be
// present and must still be confirmed with ReadValue.
func (b *Backend) KeyMayExist(ctx context.Context, key []byte) (bool, error) {
	return b.ContainsKey(ctx, key)
}
