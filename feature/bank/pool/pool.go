package pool

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"storagebox/core/kv"

	"go.uber.org/zap"
)

// Pool is the set of unclaimed items held in a kv.Table.
//
// It keeps no state between calls; every guarantee comes from the table's
// conditional primitives, so any number of processes may share one table.
type Pool struct {
	table   kv.Table
	opts    Options
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	shuffle func(n int, swap func(i, j int))
}

// New creates a Pool over table.
func New(table kv.Table, opts Options, logger *zap.Logger, extra ...Option) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{
		table:   table,
		opts:    opts.normalized(),
		logger:  logger,
		sleep:   sleepContext,
		shuffle: rand.Shuffle,
	}
	for _, opt := range extra {
		opt(p)
	}
	return p
}

// Table returns the backing table.
func (p *Pool) Table() kv.Table { return p.table }

// Validate checks a single item against the pool's size rules.
func (p *Pool) Validate(item string) error {
	if item == "" {
		return ErrInvalidItem
	}
	if len(item) >= p.opts.MaxItemSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrItemTooLarge, len(item), p.opts.MaxItemSize)
	}
	return nil
}

// InsertOne puts item back into the pool. Re-adding an existing value is harmless.
func (p *Pool) InsertOne(ctx context.Context, item string) error {
	if err := p.Validate(item); err != nil {
		return err
	}
	if _, err := p.table.Put(ctx, kv.Record{Key: item, Value: item}, kv.Always()); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// ClaimOne atomically removes and returns one item. ok is false when the pool is empty.
//
// Candidates are read a page at a time and shuffled so concurrent claimants spread
// over the page; each is then raced for with a delete conditioned on the item still
// being present. Only that delete decides ownership, the scan is advisory.
func (p *Pool) ClaimOne(ctx context.Context) (item string, ok bool, err error) {
	if p.opts.ClaimTimeout <= 0 {
		return p.claim(ctx)
	}
	claimCtx, cancel := context.WithTimeout(ctx, p.opts.ClaimTimeout)
	defer cancel()
	item, ok, err = p.claim(claimCtx)
	if err != nil && ctx.Err() == nil && errors.Is(claimCtx.Err(), context.DeadlineExceeded) {
		return "", false, fmt.Errorf("%w: nothing claimed within %s", ErrClaimContention, p.opts.ClaimTimeout)
	}
	return item, ok, err
}

func (p *Pool) claim(ctx context.Context) (string, bool, error) {
	cursor := ""
	for pages := 0; ; pages++ {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		if p.opts.ClaimMaxPages > 0 && pages >= p.opts.ClaimMaxPages {
			return "", false, ErrClaimContention
		}

		page, err := p.table.Scan(ctx, p.opts.PageSize, cursor)
		if err != nil {
			return "", false, fmt.Errorf("claim scan: %w", err)
		}

		candidates := page.Records
		p.shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})

		for _, c := range candidates {
			out, err := p.table.Delete(ctx, c.Key, kv.IfEquals(c.Value))
			if err != nil {
				return "", false, fmt.Errorf("claim delete: %w", err)
			}
			if out == kv.Succeeded {
				return c.Value, true, nil
			}
			p.logger.Debug("Item was already claimed by someone else, trying next candidate",
				zap.String("table", p.table.Name()))
		}

		if page.Last() {
			return "", false, nil
		}
		cursor = page.Next
	}
}

// Count scans the whole pool and returns the number of items in it.
func (p *Pool) Count(ctx context.Context) (int, error) {
	return kv.Count(ctx, p.table, p.opts.PageSize)
}

// PageSize returns the scan page size used for claims and full scans.
func (p *Pool) PageSize() int { return p.opts.PageSize }
