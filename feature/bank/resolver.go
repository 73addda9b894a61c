package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storagebox/core/stats"
	"storagebox/feature/bank/ledger"
	"storagebox/feature/bank/pool"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoItemAvailable is returned when the pool is empty and the id is not bound yet.
	ErrNoItemAvailable = errors.New("no item available")
	// ErrLedgerInconsistent is returned when the ledger keeps refusing a bind for an id it has no record of.
	ErrLedgerInconsistent = errors.New("ledger refused bind but holds no record")
)

// Outcome describes how a resolution was reached.
type Outcome string

const (
	// OutcomeBound means this call claimed an item and bound it to the id.
	OutcomeBound Outcome = "bound"
	// OutcomeReplayed means the id was already bound; the claimed surplus went back to the pool.
	OutcomeReplayed Outcome = "replayed"
	// OutcomeSameItem means the id was already bound to the very item this call claimed.
	OutcomeSameItem Outcome = "same_item"
	// OutcomeLookup means the ledger answered before any claim was made.
	OutcomeLookup Outcome = "lookup"

	outcomeEmpty Outcome = "empty"
	outcomeError Outcome = "error"
)

// defaultBindAttempts bounds the bind/lookup loop when the ledger reports a record it cannot return.
const defaultBindAttempts = 3

// Resolution is the item resolved for a deduplication id.
type Resolution struct {
	Item    string
	Outcome Outcome
}

// Resolver hands out one pool item per deduplication id.
type Resolver struct {
	pool         *pool.Pool
	ledger       *ledger.Ledger
	stats        stats.Recorder
	logger       *zap.Logger
	lookupFirst  bool
	bindAttempts int
	group        singleflight.Group
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithLookupFirst makes Resolve consult the ledger before claiming.
func WithLookupFirst(enabled bool) ResolverOption {
	return func(r *Resolver) { r.lookupFirst = enabled }
}

// WithStats records every outcome in rec.
func WithStats(rec stats.Recorder) ResolverOption {
	return func(r *Resolver) {
		if rec != nil {
			r.stats = rec
		}
	}
}

// NewResolver creates a Resolver over p and l.
func NewResolver(p *pool.Pool, l *ledger.Ledger, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		pool:         p,
		ledger:       l,
		stats:        stats.Nop{},
		logger:       logger,
		bindAttempts: defaultBindAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pool returns the item pool.
func (r *Resolver) Pool() *pool.Pool { return r.pool }

// Ledger returns the deduplication ledger.
func (r *Resolver) Ledger() *ledger.Ledger { return r.ledger }

// AddItems inserts items into the pool.
func (r *Resolver) AddItems(ctx context.Context, items []string) error {
	return r.pool.InsertMany(ctx, items)
}

// Resolve returns the item bound to id, claiming and binding a fresh one if id is new.
// Repeated and concurrent calls for the same id return the same item.
func (r *Resolver) Resolve(ctx context.Context, id string) (*Resolution, error) {
	if err := r.ledger.Validate(id); err != nil {
		return nil, err
	}

	// The shared call outlives a cancelled caller so a claimed item is always settled.
	// The pool bounds the claim itself with its own timeout.
	ch := r.group.DoChan(id, func() (any, error) {
		return r.resolve(context.WithoutCancel(ctx), id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		out := *res.Val.(*Resolution)
		return &out, nil
	}
}

func (r *Resolver) resolve(ctx context.Context, id string) (*Resolution, error) {
	res, err := r.settle(ctx, id)
	switch {
	case err == nil:
		r.record(ctx, res.Outcome)
	case errors.Is(err, ErrNoItemAvailable):
		r.record(ctx, outcomeEmpty)
	default:
		r.record(ctx, outcomeError)
	}
	return res, err
}

func (r *Resolver) settle(ctx context.Context, id string) (*Resolution, error) {
	if r.lookupFirst {
		item, found, err := r.ledger.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			return &Resolution{Item: item, Outcome: OutcomeLookup}, nil
		}
	}

	claimed, ok, err := r.pool.ClaimOne(ctx)
	if err != nil {
		return nil, fmt.Errorf("claim item: %w", err)
	}
	if !ok {
		return nil, ErrNoItemAvailable
	}

	for attempt := 1; ; attempt++ {
		bind, err := r.ledger.BindIfAbsent(ctx, id, claimed)
		if err != nil {
			r.restore(ctx, id, claimed)
			return nil, err
		}
		if bind == ledger.Bound {
			return &Resolution{Item: claimed, Outcome: OutcomeBound}, nil
		}

		existing, found, err := r.ledger.Lookup(ctx, id)
		if err != nil {
			r.restore(ctx, id, claimed)
			return nil, err
		}
		if found {
			if existing == claimed {
				return &Resolution{Item: claimed, Outcome: OutcomeSameItem}, nil
			}
			r.logger.Debug("Returning surplus item after lost bind",
				zap.String("deduplication_id", id), zap.String("item", claimed))
			r.restore(ctx, id, claimed)
			return &Resolution{Item: existing, Outcome: OutcomeReplayed}, nil
		}

		if attempt >= r.bindAttempts {
			r.restore(ctx, id, claimed)
			return nil, fmt.Errorf("%w: %s", ErrLedgerInconsistent, id)
		}
		r.logger.Warn("Ledger refused bind without a record, retrying",
			zap.String("deduplication_id", id), zap.Int("attempt", attempt))
	}
}

// restore puts a claimed item back into the pool. A failure is logged with the item
// so it can be re-added by hand; it is not propagated.
func (r *Resolver) restore(ctx context.Context, id, item string) {
	if err := r.pool.InsertOne(ctx, item); err != nil {
		r.logger.Error("Failed to return claimed item to pool",
			zap.String("deduplication_id", id),
			zap.String("item", item),
			zap.Error(err))
	}
}

func (r *Resolver) record(ctx context.Context, outcome Outcome) {
	if err := r.stats.Record(ctx, stats.Event{Outcome: string(outcome), At: time.Now()}); err != nil {
		r.logger.Debug("Failed to record resolve outcome", zap.String("outcome", string(outcome)), zap.Error(err))
	}
}
