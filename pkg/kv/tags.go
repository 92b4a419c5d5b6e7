package kv

// JournalTag is the top-level key tag reserved for the journaling
// layer's own bookkeeping inside a Store's root-key domain. Views must
// use a tag >= MinViewTag to avoid colliding with it (spec §3).
const JournalTag byte = 0

// Sub-tags within the journal's own tag-0 domain.
const (
	KeyTagJournalHeader byte = 1
	KeyTagJournalEntry  byte = 2
)

// MinViewTag is the lowest tag a view is allowed to use for its own
// payload keys.
const MinViewTag byte = 1

// IsFastpathFeasible reports whether batch can be written directly in
// one backend transaction without journaling (spec §4.4).
func IsFastpathFeasible(batch *Batch, limits Limits) bool {
	return batch.Len() <= limits.MaxBatchSize && batch.ByteSize() <= limits.MaxBatchTotalSize
}
