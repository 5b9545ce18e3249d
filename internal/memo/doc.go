// Package memo persists the results of expensive remote lookups in a local
// SQLite file so repeated invocations within a time window skip the network.
//
// Entries are keyed by a function name and the canonical JSON encoding of the
// call arguments, and expire by age only. Writes are serialized across
// processes with an advisory lock file next to the database. A nil *Store is
// valid and disables caching.
package memo
