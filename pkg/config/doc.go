/*
Package config holds the typed configuration spec.md §6 names: the
backend data directory, the spawn mode, range-scan concurrency hints,
LRU cache caps, and the backend-imposed size ceilings every layer reads
through the Store interface instead of hardcoding.

Following the teacher repo's plain-struct-plus-constructor style
(manager.Config, storage.NewBoltStore(dataDir)) rather than a
flag-parsing framework — flags live in cmd/chainkv — Config is built
either with functional options or loaded from YAML via
gopkg.in/yaml.v3.
*/
package config
