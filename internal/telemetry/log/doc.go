/*
Package log provides the process-wide structured logger for chainkv.

It wraps zerolog the way chainkv's ancestor wrapped it for cluster
logging: a single global Logger, an Init that switches between a
human-readable console writer and JSON output, and With* helpers that
attach a scoped field to a child logger. chainkv's helpers are scoped to
the storage domain (namespace, root key, backend) rather than to
cluster nodes or services.
*/
package log
