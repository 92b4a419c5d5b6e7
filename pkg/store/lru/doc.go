/*
Package lru implements the LRU caching layer (spec §4.5): it caches
point value reads and small prefix-scan result sets in front of an
inner store. A write always applies to the inner store first; only on
success does it invalidate or refresh the cache entries the write
touched, so a failed inner write can never leave the cache observing
state the backend never committed.

Point values are cached with github.com/hashicorp/golang-lru/v2's
Cache[string, []byte]; small prefix-scan results get their own cache
keyed by prefix, which any successful non-empty write purges outright.
The point-value cache is bounded by entry count (via golang-lru) and by
a running byte budget layered on top, since golang-lru/v2 only evicts
by entry count; the prefix-scan cache is bounded by entry count only.
*/
package lru
