package pool

import (
	"context"
	"time"
)

// Options are the pool tunables supplied by configuration.
type Options struct {
	// MaxItemSize is the exclusive upper bound on an item's length in bytes.
	MaxItemSize int
	// MaxBatchSize is the store-imposed limit on records per batch write.
	MaxBatchSize int
	// PageSize is the number of candidates fetched per claim scan page.
	PageSize int
	// BackoffBase is multiplied by 2^failures between partially failed batch writes.
	BackoffBase time.Duration
	// MaxBatchRetries is how many consecutive partial failures InsertMany tolerates.
	MaxBatchRetries int
	// MaxPendingBatches caps the batches a single InsertMany call may queue. 0 disables the cap.
	MaxPendingBatches int
	// ClaimMaxPages caps the pages a single claim may scan. 0 disables the cap.
	ClaimMaxPages int
	// ClaimTimeout bounds a single claim, which otherwise runs detached from its caller. 0 disables it.
	ClaimTimeout time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxItemSize:     1024,
		MaxBatchSize:    25,
		PageSize:        25,
		BackoffBase:     100 * time.Millisecond,
		MaxBatchRetries: 8,
		ClaimMaxPages:   100,
		ClaimTimeout:    10 * time.Second,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.MaxItemSize <= 0 {
		o.MaxItemSize = d.MaxItemSize
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = d.MaxBatchSize
	}
	if o.PageSize <= 0 {
		o.PageSize = d.PageSize
	}
	if o.BackoffBase < 0 {
		o.BackoffBase = 0
	}
	if o.MaxBatchRetries < 0 {
		o.MaxBatchRetries = 0
	}
	if o.ClaimTimeout < 0 {
		o.ClaimTimeout = 0
	}
	return o
}

// Option customises a Pool beyond its configured tunables.
type Option func(*Pool)

// WithSleep replaces the backoff sleep. The function must return ctx.Err() if ctx ends first.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pool) { p.sleep = sleep }
}

// WithShuffle replaces the candidate shuffle used by ClaimOne.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(p *Pool) { p.shuffle = shuffle }
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
