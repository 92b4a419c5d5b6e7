/*
Package database implements the Database façade (spec §4.2): namespace
lifecycle, shared/exclusive Store opens, and list_root_keys.

Each namespace gets its own directory under the configured path holding
two physical stores: a badger-backed key-value tree for the layered
Store stack, and a small bbolt-backed index (grounded on the teacher
repo's pkg/storage/boltdb.go bucket-per-concern style) recording which
root keys have taken a first write, so list_root_keys can enumerate
them without a full scan of the badger tree.

A Store handle returned by OpenShared/OpenExclusive is a full layer
stack: lru(metering(journal(splitting(rootkeyview(backend))))), per the
data-flow order spec §2 describes (cache → metering → journaling →
splitting → backend) with the root-key prefixing view innermost.
*/
package database
