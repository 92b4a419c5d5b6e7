/*
Package metering implements the metering layer (spec §4.5 of the
component table, "Metering"): an optional, fully transparent wrapper
that records per-operation counters and latencies through
pkg/metrics, following the teacher repo's pkg/metrics instrumentation
style. It changes no semantics — every call passes straight through to
the inner store, timed and counted.
*/
package metering
