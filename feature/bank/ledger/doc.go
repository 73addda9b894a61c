// Package ledger stores which item each deduplication id resolved to.
//
// The first successful BindIfAbsent for an id wins permanently; later attempts get
// AlreadyBound and must read the winner with Lookup. Expiry of records, if wanted,
// belongs to the backing store.
package ledger
