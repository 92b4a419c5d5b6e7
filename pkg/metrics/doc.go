/*
Package metrics holds the prometheus collectors chainkv's layers
record into, plus a Timer helper and the /healthz and /readyz
handlers. The per-layer metrics (badgerdb, journal, lru, splitting,
database) are all defined and registered in this package, so every
counter lives in the default prometheus registry behind a single
/metrics endpoint.
*/
package metrics
