/*
Package kv defines the layered store contract every chainkv layer
implements and consumes: Reader for point/prefix reads, Writer for
atomic batch writes and journal recovery, and the Batch type that
describes a Put/Delete/DeletePrefix sequence.

Every layer in the stack — the badger-backed reference backend, value
splitting, journaling, LRU caching, and metering — implements Store and
wraps an inner Store, so the stack composes as a strict DAG with no
layer needing to know what sits beneath the one directly below it.
*/
package kv
