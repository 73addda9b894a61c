// Package pool holds the collection of unclaimed items.
//
// # Claiming
//
// The backing store has no "pop any element" operation, only a delete guarded by
// "still present with this value". ClaimOne therefore scans a page of candidates,
// shuffles it and races for each candidate with that conditional delete. A lost
// race is routine and silently moves on to the next candidate; exhausting every
// page means the pool is empty.
//
// # Inserting
//
// InsertMany validates sizes, chunks items into store-sized batches and resubmits
// whatever the store leaves unprocessed, with exponential backoff and a retry
// ceiling. InsertOne is the single-item path used to hand a surplus item back.
package pool
