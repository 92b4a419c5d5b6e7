/*
Package statsserver exposes chainkv's operational HTTP surface:
liveness and readiness probes, Prometheus metrics, and a debug
endpoint listing every namespace under the data directory and the root
keys recorded for each. It mirrors the
teacher repo's pkg/api.HealthServer — a small http.ServeMux wrapping
the shared pkg/metrics handlers — generalized from one manager process
to chainkv's Database façade.
*/
package statsserver
