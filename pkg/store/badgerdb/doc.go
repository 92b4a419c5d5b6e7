/*
Package badgerdb is chainkv's reference backend (spec §4.6): an
embedded, log-structured (LSM-tree) key-value store with ordered
iteration, point gets, atomic batched writes, and a native per-table
bloom filter that backs the Bloom-style key_may_exist fast-negative
check spec.md asks for.

	┌──────────────────── BADGER BACKEND ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │               Backend                       │          │
	│  │  - Dir: <namespace-dir>/badger              │          │
	│  │  - Format: LSM-tree, per-table bloom filter  │          │
	│  │  - Transactions: single-writer MVCC          │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         per-key / per-value / per-batch      │          │
	│  │         limits enforced at the Put boundary  │          │
	│  └──────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────────┘

It replaces the teacher repo's bbolt store as the primary data path;
bbolt is kept for the Database façade's own root-key index (see
pkg/database) rather than dropped outright.
*/
package badgerdb
