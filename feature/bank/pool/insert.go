package pool

import (
	"context"
	"fmt"
	"time"

	"storagebox/core/kv"

	"go.uber.org/zap"
)

// InsertMany makes every item durably present in the pool.
//
// Items are validated up front; one bad item rejects the whole call before anything
// is written. The rest are split into batches of MaxBatchSize. Records the store
// reports as unprocessed go back to the front of the queue and the next attempt is
// delayed by BackoffBase * 2^failures, where failures counts consecutive partial
// batches and resets after a clean one. Once failures exceeds MaxBatchRetries the
// call stops and returns a *PartialFailureError listing every item not yet written.
func (p *Pool) InsertMany(ctx context.Context, items []string) error {
	for _, item := range items {
		if err := p.Validate(item); err != nil {
			return err
		}
	}
	if len(items) == 0 {
		return nil
	}

	queue := splitBatches(items, p.opts.MaxBatchSize)
	if p.opts.MaxPendingBatches > 0 && len(queue) > p.opts.MaxPendingBatches {
		return fmt.Errorf("%w: %d batches, limit %d", ErrTooManyBatches, len(queue), p.opts.MaxPendingBatches)
	}

	failures := 0
	for len(queue) > 0 {
		batch := queue[0]
		queue = queue[1:]

		unprocessed, err := p.table.BatchWrite(ctx, batch)
		if err != nil {
			return fmt.Errorf("batch insert: %w", err)
		}
		if len(unprocessed) == 0 {
			failures = 0
			continue
		}

		queue = append([][]kv.Record{unprocessed}, queue...)
		failures++
		if failures > p.opts.MaxBatchRetries {
			return &PartialFailureError{Unprocessed: pendingItems(queue), Attempts: failures}
		}

		backoff := p.backoff(failures)
		p.logger.Warn("A batch was partially unprocessed, backing off",
			zap.String("table", p.table.Name()),
			zap.Int("unprocessed", len(unprocessed)),
			zap.Int("consecutive_failures", failures),
			zap.Duration("backoff", backoff),
		)
		if err := p.sleep(ctx, backoff); err != nil {
			return fmt.Errorf("batch insert interrupted with %d items pending: %w", len(pendingItems(queue)), err)
		}
	}
	return nil
}

func (p *Pool) backoff(failures int) time.Duration {
	// Clamp the shift so a large retry budget cannot overflow the duration.
	shift := failures
	if shift > 30 {
		shift = 30
	}
	return p.opts.BackoffBase * time.Duration(1<<shift)
}

// splitBatches chunks items into records of at most size each, in order.
func splitBatches(items []string, size int) [][]kv.Record {
	batches := make([][]kv.Record, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batch := make([]kv.Record, 0, end-start)
		for _, item := range items[start:end] {
			batch = append(batch, kv.Record{Key: item, Value: item})
		}
		batches = append(batches, batch)
	}
	return batches
}

func pendingItems(queue [][]kv.Record) []string {
	var out []string
	for _, batch := range queue {
		for _, r := range batch {
			out = append(out, r.Value)
		}
	}
	return out
}
