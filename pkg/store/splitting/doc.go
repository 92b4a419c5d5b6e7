/*
Package splitting hides the inner store's MAX_VALUE_SIZE from callers
(spec §4.3). A Put whose value exceeds the inner store's value ceiling
is transparently sliced into chunk entries; a Get transparently
reassembles them. Deletes, including DeletePrefix, propagate to every
chunk.

To keep chunk entries from ever appearing as ordinary keys in a prefix
scan, every logical key is re-tagged before reaching the inner store:
user entries live under entryTag, chunk payloads live under the
disjoint chunkTag. The two physical sub-keyspaces never overlap, so a
find_keys_by_prefix scan over entry space never surfaces a chunk.
*/
package splitting
