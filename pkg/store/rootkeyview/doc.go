/*
Package rootkeyview implements the thin, innermost layer every Store
handle is built on: it transparently prepends a root key prefix to
every physical key, so many logical owners can share one physical
backend (spec §3, "Root key partition"). It sits directly beneath the
value-splitting layer and directly above the backend, so every tag the
journaling layer or a view ever writes — including the journal's own
reserved tag-0 control keys — is automatically scoped to this Store's
root key.

It also owns the one piece of mutable state a Store handle carries
(spec §9): an atomic flag recording whether this root key's first
write has already been indexed into the façade's STORED_ROOT_KEYS
ledger.
*/
package rootkeyview
