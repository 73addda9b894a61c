package pool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"storagebox/core/kv"
	"storagebox/core/kv/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestPool(t *testing.T, tbl kv.Table, opts Options) (*Pool, *[]time.Duration) {
	t.Helper()
	var slept []time.Duration
	p := New(tbl, opts, zap.NewNop(), WithSleep(func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}))
	return p, &slept
}

func TestClaimOne_Empty(t *testing.T) {
	p, _ := newTestPool(t, memory.NewTable("items"), DefaultOptions())

	item, ok, err := p.ClaimOne(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, item)
}

func TestClaimOne_DrainsEveryItemOnce(t *testing.T) {
	ctx := context.Background()
	opts := DefaultOptions()
	opts.PageSize = 3
	p, _ := newTestPool(t, memory.NewTable("items"), opts)

	want := []string{"a", "b", "c", "d", "e", "f", "g"}
	require.NoError(t, p.InsertMany(ctx, want))

	seen := map[string]bool{}
	for range want {
		item, ok, err := p.ClaimOne(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, seen[item], "item %s claimed twice", item)
		seen[item] = true
	}

	_, ok, err := p.ClaimOne(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, seen, len(want))
}

func TestClaimOne_ConcurrentClaimsAreUnique(t *testing.T) {
	ctx := context.Background()
	opts := DefaultOptions()
	opts.PageSize = 4
	tbl := memory.NewTable("items")
	p := New(tbl, opts, zap.NewNop())

	var items []string
	for i := 0; i < 50; i++ {
		items = append(items, fmt.Sprintf("code-%02d", i))
	}
	require.NoError(t, p.InsertMany(ctx, items))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed = map[string]int{}
		empties int
	)
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, ok, err := p.ClaimOne(ctx)
				assert.NoError(t, err)
				mu.Lock()
				if !ok {
					empties++
					mu.Unlock()
					return
				}
				claimed[item]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, claimed, 50)
	for item, n := range claimed {
		assert.Equal(t, 1, n, "item %s", item)
	}
	assert.Equal(t, 16, empties)
	assert.Zero(t, tbl.Len())
}

// racingTable removes every candidate of the first page before the claimant reaches it.
type racingTable struct {
	*memory.Table
	stolen bool
}

func (r *racingTable) Scan(ctx context.Context, limit int, cursor string) (kv.Page, error) {
	page, err := r.Table.Scan(ctx, limit, cursor)
	if err == nil && !r.stolen {
		r.stolen = true
		for _, rec := range page.Records {
			_, _ = r.Table.Delete(ctx, rec.Key, kv.Always())
		}
	}
	return page, err
}

func TestClaimOne_SkipsLostRacesAndAdvancesPages(t *testing.T) {
	ctx := context.Background()
	tbl := &racingTable{Table: memory.NewTable("items")}
	opts := DefaultOptions()
	opts.PageSize = 2
	p := New(tbl, opts, zap.NewNop())
	require.NoError(t, p.InsertMany(ctx, []string{"a", "b", "c"}))

	item, ok, err := p.ClaimOne(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", item)
}

func TestClaimOne_MaxPages(t *testing.T) {
	ctx := context.Background()
	tbl := &racingTable{Table: memory.NewTable("items")}
	opts := DefaultOptions()
	opts.PageSize = 2
	opts.ClaimMaxPages = 1
	p := New(tbl, opts, zap.NewNop())
	require.NoError(t, p.InsertMany(ctx, []string{"a", "b", "c"}))

	_, ok, err := p.ClaimOne(ctx)
	assert.ErrorIs(t, err, ErrClaimContention)
	assert.False(t, ok)
}

// stallingTable blocks every scan until the context ends.
type stallingTable struct {
	*memory.Table
}

func (s *stallingTable) Scan(ctx context.Context, _ int, _ string) (kv.Page, error) {
	<-ctx.Done()
	return kv.Page{}, ctx.Err()
}

func TestClaimOne_Timeout(t *testing.T) {
	opts := DefaultOptions()
	opts.ClaimTimeout = 20 * time.Millisecond
	p := New(&stallingTable{Table: memory.NewTable("items")}, opts, zap.NewNop())

	// A detached caller context still gets a bounded claim.
	ctx := context.WithoutCancel(context.Background())
	start := time.Now()
	_, ok, err := p.ClaimOne(ctx)
	assert.ErrorIs(t, err, ErrClaimContention)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDefaultOptions_BoundClaims(t *testing.T) {
	opts := DefaultOptions()
	assert.Positive(t, opts.ClaimMaxPages)
	assert.Positive(t, opts.ClaimTimeout)
}

func TestClaimOne_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(memory.NewTable("items"), DefaultOptions(), nil)

	_, _, err := p.ClaimOne(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInsertOne_Idempotent(t *testing.T) {
	ctx := context.Background()
	tbl := memory.NewTable("items")
	p := New(tbl, DefaultOptions(), nil)

	require.NoError(t, p.InsertOne(ctx, "a"))
	require.NoError(t, p.InsertOne(ctx, "a"))
	assert.Equal(t, 1, tbl.Len())

	assert.ErrorIs(t, p.InsertOne(ctx, ""), ErrInvalidItem)
}

func TestInsertMany_Validation(t *testing.T) {
	ctx := context.Background()
	tbl := memory.NewTable("items")
	opts := DefaultOptions()
	opts.MaxItemSize = 4
	p := New(tbl, opts, nil)

	err := p.InsertMany(ctx, []string{"ok", "toolong"})
	assert.ErrorIs(t, err, ErrItemTooLarge)
	assert.Zero(t, tbl.Len(), "nothing is written when any item is invalid")

	// The limit is exclusive.
	assert.ErrorIs(t, p.InsertMany(ctx, []string{"four"}), ErrItemTooLarge)
	assert.NoError(t, p.InsertMany(ctx, []string{"thr"}))

	assert.ErrorIs(t, p.InsertMany(ctx, []string{""}), ErrInvalidItem)
	assert.NoError(t, p.InsertMany(ctx, nil))
}

func TestInsertMany_Batches(t *testing.T) {
	ctx := context.Background()
	tbl := memory.NewTable("items")
	opts := DefaultOptions()
	opts.MaxBatchSize = 3
	p, slept := newTestPool(t, tbl, opts)

	items := strings.Split("a b c d e f g", " ")
	require.NoError(t, p.InsertMany(ctx, items))

	assert.Equal(t, 3, tbl.BatchAttempts())
	assert.Equal(t, items, tbl.Keys())
	assert.Empty(t, *slept)
}

func TestInsertMany_RequeuesUnprocessedAtFront(t *testing.T) {
	ctx := context.Background()
	var order [][]string
	tbl := memory.NewTable("items", memory.WithBatchFault(func(attempt int, recs []kv.Record) []kv.Record {
		var keys []string
		for _, r := range recs {
			keys = append(keys, r.Key)
		}
		order = append(order, keys)
		switch attempt {
		case 1, 2:
			return recs[1:]
		default:
			return nil
		}
	}))
	opts := DefaultOptions()
	opts.MaxBatchSize = 3
	opts.BackoffBase = 10 * time.Millisecond
	p, slept := newTestPool(t, tbl, opts)

	require.NoError(t, p.InsertMany(ctx, []string{"a", "b", "c", "d", "e"}))

	assert.Equal(t, [][]string{
		{"a", "b", "c"},
		{"b", "c"}, // retried before the untouched batch
		{"c"},
		{"d", "e"},
	}, order)
	assert.Equal(t, []time.Duration{20 * time.Millisecond, 40 * time.Millisecond}, *slept)
	assert.Equal(t, 5, tbl.Len())
}

func TestInsertMany_FailureCounterResets(t *testing.T) {
	ctx := context.Background()
	tbl := memory.NewTable("items", memory.WithBatchFault(func(attempt int, recs []kv.Record) []kv.Record {
		// Every batch fails once on its first attempt.
		if attempt%2 == 1 {
			return recs
		}
		return nil
	}))
	opts := DefaultOptions()
	opts.MaxBatchSize = 1
	opts.BackoffBase = time.Millisecond
	opts.MaxBatchRetries = 1
	p, slept := newTestPool(t, tbl, opts)

	require.NoError(t, p.InsertMany(ctx, []string{"a", "b", "c"}))
	assert.Equal(t, []time.Duration{2 * time.Millisecond, 2 * time.Millisecond, 2 * time.Millisecond}, *slept)
}

func TestInsertMany_RetriesExhausted(t *testing.T) {
	ctx := context.Background()
	tbl := memory.NewTable("items", memory.WithBatchFault(func(attempt int, recs []kv.Record) []kv.Record {
		if attempt == 1 {
			return nil
		}
		return recs
	}))
	opts := DefaultOptions()
	opts.MaxBatchSize = 2
	opts.MaxBatchRetries = 3
	p, slept := newTestPool(t, tbl, opts)

	err := p.InsertMany(ctx, []string{"a", "b", "c", "d", "e"})

	var partial *PartialFailureError
	require.True(t, errors.As(err, &partial))
	assert.ElementsMatch(t, []string{"c", "d", "e"}, partial.Unprocessed)
	assert.Equal(t, 4, partial.Attempts)
	assert.Len(t, *slept, 3)
	assert.Equal(t, []string{"a", "b"}, tbl.Keys())
}

func TestInsertMany_MaxPendingBatches(t *testing.T) {
	tbl := memory.NewTable("items")
	opts := DefaultOptions()
	opts.MaxBatchSize = 2
	opts.MaxPendingBatches = 2
	p := New(tbl, opts, nil)

	err := p.InsertMany(context.Background(), []string{"a", "b", "c", "d", "e"})
	assert.ErrorIs(t, err, ErrTooManyBatches)
	assert.Zero(t, tbl.BatchAttempts())
}

func TestInsertMany_BackoffHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tbl := memory.NewTable("items", memory.WithBatchFault(func(int, []kv.Record) []kv.Record {
		cancel()
		return []kv.Record{{Key: "a", Value: "a"}}
	}))
	p := New(tbl, DefaultOptions(), nil)

	err := p.InsertMany(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitBatches(t *testing.T) {
	batches := splitBatches([]string{"a", "b", "c", "d", "e"}, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, kv.Record{Key: "e", Value: "e"}, batches[2][0])
}

func TestBackoffClamp(t *testing.T) {
	p := New(memory.NewTable("items"), Options{BackoffBase: time.Nanosecond}, nil)
	assert.Equal(t, 4*time.Nanosecond, p.backoff(2))
	assert.Equal(t, time.Duration(1<<30), p.backoff(64))
}
