package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cuemby/chainkv/internal/kverr"
	"github.com/cuemby/chainkv/internal/telemetry/log"
	"github.com/cuemby/chainkv/pkg/kv"
	"github.com/cuemby/chainkv/pkg/metrics"
)

// Layer implements the journaling layer (spec §4.4) over an inner
// store. Exclusive reports whether this handle asserted sole-writer
// status; only exclusive handles may take the slow path.
type Layer struct {
	inner     kv.Store
	exclusive bool
	namespace string
}

// New wraps inner with the journaling layer. namespace is used only
// for metric labels.
func New(inner kv.Store, exclusive bool, namespace string) *Layer {
	return &Layer{inner: inner, exclusive: exclusive, namespace: namespace}
}

// Limits implements kv.Reader. The journaling layer never restricts
// batch sizes from the caller's perspective — that is its entire
// purpose — so it passes the inner store's limits through unchanged.
func (l *Layer) Limits() kv.Limits { return l.inner.Limits() }

// MaxStreamQueries implements kv.Reader.
func (l *Layer) MaxStreamQueries() int { return l.inner.MaxStreamQueries() }

func (l *Layer) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	return l.inner.ReadValue(ctx, key)
}

func (l *Layer) ContainsKey(ctx context.Context, key []byte) (bool, error) {
	return l.inner.ContainsKey(ctx, key)
}

func (l *Layer) ContainsKeys(ctx context.Context, keys [][]byte) ([]bool, error) {
	return l.inner.ContainsKeys(ctx, keys)
}

func (l *Layer) ReadMultiValues(ctx context.Context, keys [][]byte) ([][]byte, error) {
	return l.inner.ReadMultiValues(ctx, keys)
}

func (l *Layer) FindKeysByPrefix(ctx context.Context, prefix []byte) ([][]byte, error) {
	return l.inner.FindKeysByPrefix(ctx, prefix)
}

func (l *Layer) FindKeyValuesByPrefix(ctx context.Context, prefix []byte) ([]kv.KeyValue, error) {
	return l.inner.FindKeyValuesByPrefix(ctx, prefix)
}

// WriteBatch implements kv.Writer: fast path when the batch already
// fits the inner store's limits, slow path (journaled) otherwise.
func (l *Layer) WriteBatch(ctx context.Context, batch *kv.Batch) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.JournalWriteDuration)

	if batch.IsEmpty() {
		return nil
	}

	limits := l.inner.Limits()
	if kv.IsFastpathFeasible(batch, limits) {
		return l.inner.WriteBatch(ctx, batch)
	}

	if !l.exclusive {
		return fmt.Errorf("write batch: %w", kverr.ErrJournalRequiresExclusiveAccess)
	}

	metrics.JournalSlowPathTotal.WithLabelValues(l.namespace).Inc()
	log.WithComponent("journal").Debug().
		Int("ops", batch.Len()).
		Int("bytes", batch.ByteSize()).
		Msg("taking journaled slow path")

	blocks := packBlocks(batch.Operations(), limits)
	if err := l.flushTransactions(ctx, blocks); err != nil {
		return fmt.Errorf("write batch: flush blocks: %w", err)
	}

	header := kv.NewBatch().Put(headerKey(), encodeHeader(uint32(len(blocks))))
	if err := l.inner.WriteBatch(ctx, header); err != nil {
		return fmt.Errorf("write batch: commit header: %w", err)
	}
	metrics.JournalBlocksWrittenTotal.Add(float64(len(blocks)))

	return l.resolveFrom(ctx, uint32(len(blocks)), "")
}

// packBlocks partitions ops into blocks per spec §4.4 step 2: a block
// grows until adding one more operation would push its encoded
// (encodeBlock) byte size past the cap or leave fewer than two reserved
// op slots (for the eventual block-delete and header-update recovery
// appends).
func packBlocks(ops []kv.Operation, limits kv.Limits) [][]kv.Operation {
	maxBlockBytes := limits.MaxValueSize
	reserved := blockKeyEncodedSize + headerKeyEncodedSize + headerEncodedSize
	if cap2 := limits.MaxBatchTotalSize - reserved; cap2 < maxBlockBytes {
		maxBlockBytes = cap2
	}
	if maxBlockBytes < 1 {
		maxBlockBytes = 1
	}
	maxBlockOps := limits.MaxBatchSize - 2
	if maxBlockOps < 1 {
		maxBlockOps = 1
	}

	// Sizes below follow encodeBlock's layout: a 4-byte op count, then
	// per op a kind byte and two 4-byte length prefixes.
	const blockCountBytes = 4
	var blocks [][]kv.Operation
	var current []kv.Operation
	currentBytes := blockCountBytes

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, current)
			current = nil
			currentBytes = blockCountBytes
		}
	}

	for _, op := range ops {
		opBytes := 1 + 4 + len(op.Key) + 4 + len(op.Value)
		wouldOverflow := len(current) > 0 &&
			(currentBytes+opBytes > maxBlockBytes || len(current)+1 > maxBlockOps)
		if wouldOverflow {
			flush()
		}
		current = append(current, op)
		currentBytes += opBytes
	}
	flush()
	return blocks
}

// flushTransactions packs encoded blocks into backend transactions per
// spec §4.4 step 3: accumulate Put(block_key, block) entries until
// adding one more would exceed the inner store's batch limits, leaving
// one op slot reserved for the eventual header write.
func (l *Layer) flushTransactions(ctx context.Context, blocks [][]kv.Operation) error {
	limits := l.inner.Limits()
	maxTxnOps := limits.MaxBatchSize - 1
	if maxTxnOps < 1 {
		maxTxnOps = 1
	}

	txn := kv.NewBatch()
	for idx, block := range blocks {
		encoded := encodeBlock(block)
		key := blockKey(uint32(idx))
		opBytes := len(key) + len(encoded)

		wouldOverflow := txn.Len() > 0 &&
			(txn.ByteSize()+opBytes > limits.MaxBatchTotalSize || txn.Len()+1 > maxTxnOps)
		if wouldOverflow {
			if err := l.inner.WriteBatch(ctx, txn); err != nil {
				return err
			}
			txn = kv.NewBatch()
		}
		txn.Put(key, encoded)
	}
	if !txn.IsEmpty() {
		if err := l.inner.WriteBatch(ctx, txn); err != nil {
			return err
		}
	}
	return nil
}

// resolveFrom runs coherently_resolve_journal starting from
// blockCount, applying each block's operations and the bookkeeping
// update atomically, in reverse block order, until none remain.
// recoveryID is non-empty only when this run is resolving a journal
// left behind by a prior crash (ClearJournal); it is stamped onto
// every log line and error from this pass so an operator can grep one
// recovery out of overlapping ones across namespaces. A normal
// same-process slow-path write (WriteBatch resolving its own journal
// immediately after committing the header) passes "" — there is
// nothing to correlate, since that pass never outlives the call that
// started it.
func (l *Layer) resolveFrom(ctx context.Context, blockCount uint32, recoveryID string) error {
	stamp := func(err error) error {
		if recoveryID != "" {
			return fmt.Errorf("journal: recovery %s: %w", recoveryID, err)
		}
		return err
	}
	for blockCount > 0 {
		idx := blockCount - 1
		raw, err := l.inner.ReadValue(ctx, blockKey(idx))
		if err != nil {
			return stamp(err)
		}
		if raw == nil {
			return stamp(fmt.Errorf("journal: resolve: missing block %d: %w", idx, kverr.ErrFailureToRetrieveJournalBlock))
		}
		ops, err := decodeBlock(raw)
		if err != nil {
			return stamp(err)
		}

		batch := kv.NewBatch()
		for _, op := range ops {
			switch op.Kind {
			case kv.OpPut:
				batch.Put(op.Key, op.Value)
			case kv.OpDelete:
				batch.Delete(op.Key)
			case kv.OpDeletePrefix:
				batch.DeletePrefix(op.Key)
			}
		}
		batch.Delete(blockKey(idx))
		blockCount--
		if blockCount > 0 {
			batch.Put(headerKey(), encodeHeader(blockCount))
		} else {
			batch.Delete(headerKey())
		}

		if err := l.inner.WriteBatch(ctx, batch); err != nil {
			if recoveryID != "" {
				return fmt.Errorf("journal: recovery %s: resolve block %d: %w", recoveryID, idx, err)
			}
			return fmt.Errorf("journal: resolve: apply block %d: %w", idx, err)
		}
		if recoveryID != "" {
			log.WithComponent("journal").Debug().
				Str("recovery_id", recoveryID).
				Uint32("block_index", idx).
				Msg("resolved journal block")
		}
	}
	return nil
}

// ClearJournal implements kv.Writer: it is the idempotent recovery
// hook every Store runs before serving its first operation. When it
// finds a journal to resolve, it mints a recovery ID so every log
// line and error this pass emits can be correlated back to the same
// crash-recovery event, even when another Store's recovery interleaves
// with it in the same process.
func (l *Layer) ClearJournal(ctx context.Context) error {
	raw, err := l.inner.ReadValue(ctx, headerKey())
	if err != nil {
		return err
	}
	if raw == nil {
		return l.inner.ClearJournal(ctx)
	}
	blockCount, err := decodeHeader(raw)
	if err != nil {
		return err
	}
	recoveryID := uuid.NewString()
	metrics.JournalRecoveryTotal.WithLabelValues(l.namespace).Inc()
	log.WithComponent("journal").Warn().
		Str("recovery_id", recoveryID).
		Uint32("block_count", blockCount).
		Str("namespace", l.namespace).
		Msg("resolving pending journal")
	if err := l.resolveFrom(ctx, blockCount, recoveryID); err != nil {
		return err
	}
	return l.inner.ClearJournal(ctx)
}

var _ kv.Store = (*Layer)(nil)
