package ledger

import (
	"context"
	"errors"
	"fmt"

	"storagebox/core/kv"
)

var (
	// ErrInvalidID is returned for an empty deduplication id.
	ErrInvalidID = errors.New("deduplication id must not be empty")
	// ErrIDTooLong is returned when an id exceeds the store's key length.
	ErrIDTooLong = errors.New("deduplication id exceeds maximum length")
)

// BindResult is the outcome of BindIfAbsent.
type BindResult int

const (
	// Bound means this call created the record.
	Bound BindResult = iota
	// AlreadyBound means a record for the id existed; nothing was written.
	AlreadyBound
)

func (r BindResult) String() string {
	if r == Bound {
		return "bound"
	}
	return "already_bound"
}

// Ledger maps deduplication ids to the item first bound to them. Records are create-only.
type Ledger struct {
	table    kv.Table
	maxIDLen int
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithMaxIDLength rejects ids longer than n bytes. 0 disables the check.
func WithMaxIDLength(n int) Option {
	return func(l *Ledger) { l.maxIDLen = n }
}

// New creates a Ledger over table.
func New(table kv.Table, opts ...Option) *Ledger {
	l := &Ledger{table: table}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Validate checks id against the ledger's key rules.
func (l *Ledger) Validate(id string) error {
	if id == "" {
		return ErrInvalidID
	}
	if l.maxIDLen > 0 && len(id) > l.maxIDLen {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrIDTooLong, len(id), l.maxIDLen)
	}
	return nil
}

// Table returns the backing table.
func (l *Ledger) Table() kv.Table { return l.table }

// Lookup returns the item bound to id, if any.
func (l *Ledger) Lookup(ctx context.Context, id string) (string, bool, error) {
	if err := l.Validate(id); err != nil {
		return "", false, err
	}
	item, ok, err := l.table.Get(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("ledger lookup: %w", err)
	}
	return item, ok, nil
}

// BindIfAbsent records id -> item unless id is already bound. It never overwrites.
func (l *Ledger) BindIfAbsent(ctx context.Context, id, item string) (BindResult, error) {
	if err := l.Validate(id); err != nil {
		return AlreadyBound, err
	}
	out, err := l.table.Put(ctx, kv.Record{Key: id, Value: item}, kv.IfAbsent())
	if err != nil {
		return AlreadyBound, fmt.Errorf("ledger bind: %w", err)
	}
	if out == kv.ConditionFailed {
		return AlreadyBound, nil
	}
	return Bound, nil
}
