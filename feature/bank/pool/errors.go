package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidItem is returned for empty items.
	ErrInvalidItem = errors.New("item must not be empty")
	// ErrItemTooLarge is returned when an item reaches the configured maximum size.
	ErrItemTooLarge = errors.New("item exceeds maximum size")
	// ErrTooManyBatches is returned when one InsertMany call would queue more batches than allowed.
	ErrTooManyBatches = errors.New("insert exceeds maximum pending batches")
	// ErrClaimContention is returned when a claim scanned its page budget without winning a candidate.
	ErrClaimContention = errors.New("claim gave up after maximum scan pages")
)

// PartialFailureError reports the items that were never written after InsertMany exhausted its retries.
type PartialFailureError struct {
	Unprocessed []string
	Attempts    int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("batch insert gave up after %d consecutive partial failures, %d items unprocessed", e.Attempts, len(e.Unprocessed))
}
