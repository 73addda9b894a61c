// Package kv defines the key-value store contract that the item pool and the
// deduplication ledger are built on.
//
// The contract exposes exactly the primitives the coordination logic needs:
// conditional single-record writes and deletes, point lookups, paginated scans and
// best-effort batch writes. Conditional operations report a lost race as the
// ConditionFailed outcome rather than as an error, so callers branch on it
// explicitly.
//
// # Implementations
//
//   - memory: in-process tables for tests and throwaway runs
//   - sqlstore: GORM-backed tables on MySQL or SQLite
//   - redisstore: go-redis backed tables with a Lua compare-and-delete
//
// core/backend selects one from configuration.
package kv
