// Package bank hands out pre-provisioned items exactly once per deduplication id.
//
// It composes two store-backed components:
//
//   - pool: the set of unclaimed items. Claims race over a scanned page and win
//     through a conditional delete, so an item is never handed to two callers.
//   - ledger: create-only records binding a deduplication id to the item it received.
//
// # Resolve
//
// Resolver.Resolve claims an item and tries to bind it to the id. Losing the bind
// means another call already resolved the id; the claimed item goes back to the pool
// and the bound item is returned. Every path either binds the claimed item or returns
// it to the pool.
//
//	res, err := resolver.Resolve(ctx, "order-42")
//	if errors.Is(err, bank.ErrNoItemAvailable) { ... }
//
// # Ingestion
//
// Items are added directly (AddItems) or imported from a newline-delimited object in
// the configured bucket (ImportObject). ExportPool writes the unclaimed items back
// to the bucket.
//
// # HTTP
//
//   - POST /bank/items, POST /bank/items/import, GET /bank/items/imports
//   - POST /bank/items/export
//   - GET|POST /bank/resolve/:id
//   - GET /bank/stats
package bank
