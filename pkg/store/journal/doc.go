/*
Package journal implements the journaling layer (spec §4.4): it turns
an inner store with hard per-batch limits into one that accepts
arbitrarily large batches atomically, surviving a crash at any point.

A batch that already fits the inner store's MAX_BATCH_SIZE and
MAX_BATCH_TOTAL_SIZE is written directly — the fast path. Otherwise the
slow path partitions the batch into blocks, packs blocks into backend
transactions, and commits a header record whose existence is the
linearization point: once the header write returns success, recovery
will always finish the batch, crash or not. ClearJournal is the
idempotent recovery hook every Store runs before serving its first
operation.
*/
package journal
