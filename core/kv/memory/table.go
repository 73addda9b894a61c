package memory

import (
	"context"
	"sort"
	"sync"

	"storagebox/core/kv"
)

// BatchFault decides which records of a batch write are reported as unprocessed.
// attempt counts BatchWrite calls on the table, starting at 1.
type BatchFault func(attempt int, recs []kv.Record) []kv.Record

// Table is an in-memory kv.Table. It is safe for concurrent use.
//
// Scan pages are ordered by key and the cursor is the last key returned,
// so keys inserted behind a cursor are not visited by that scan.
type Table struct {
	name string

	mu       sync.Mutex
	data     map[string]string
	attempts int
	fault    BatchFault
}

// Option configures a Table.
type Option func(*Table)

// WithBatchFault injects partial batch acceptance, used to exercise retry paths.
func WithBatchFault(f BatchFault) Option {
	return func(t *Table) { t.fault = f }
}

// NewTable creates an empty table.
func NewTable(name string, opts ...Option) *Table {
	t := &Table{
		name: name,
		data: make(map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) Name() string { return t.name }

func (t *Table) Put(ctx context.Context, rec kv.Record, cond kv.Condition) (kv.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return kv.ConditionFailed, err
	}
	if _, ok := cond.Expected(); ok {
		return kv.ConditionFailed, kv.ErrUnsupportedCondition
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cond.IsIfAbsent() {
		if _, exists := t.data[rec.Key]; exists {
			return kv.ConditionFailed, nil
		}
	}
	t.data[rec.Key] = rec.Value
	return kv.Succeeded, nil
}

func (t *Table) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.data[key]
	return v, ok, nil
}

func (t *Table) Delete(ctx context.Context, key string, cond kv.Condition) (kv.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return kv.ConditionFailed, err
	}
	if cond.IsIfAbsent() {
		return kv.ConditionFailed, kv.ErrUnsupportedCondition
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	current, exists := t.data[key]
	if expected, ok := cond.Expected(); ok {
		if !exists || current != expected {
			return kv.ConditionFailed, nil
		}
	}
	delete(t.data, key)
	return kv.Succeeded, nil
}

func (t *Table) Scan(ctx context.Context, limit int, cursor string) (kv.Page, error) {
	if err := ctx.Err(); err != nil {
		return kv.Page{}, err
	}
	if limit <= 0 {
		limit = 1
	}

	t.mu.Lock()
	keys := make([]string, 0, len(t.data))
	for k := range t.data {
		if cursor == "" || k > cursor {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	more := len(keys) > limit
	if more {
		keys = keys[:limit]
	}
	recs := make([]kv.Record, 0, len(keys))
	for _, k := range keys {
		recs = append(recs, kv.Record{Key: k, Value: t.data[k]})
	}
	t.mu.Unlock()

	page := kv.Page{Records: recs}
	if more {
		page.Next = keys[len(keys)-1]
	}
	return page, nil
}

func (t *Table) BatchWrite(ctx context.Context, recs []kv.Record) ([]kv.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.attempts++
	var unprocessed []kv.Record
	if t.fault != nil {
		unprocessed = t.fault(t.attempts, recs)
	}

	skip := make(map[string]struct{}, len(unprocessed))
	for _, r := range unprocessed {
		skip[r.Key] = struct{}{}
	}
	for _, r := range recs {
		if _, ok := skip[r.Key]; ok {
			continue
		}
		t.data[r.Key] = r.Value
	}
	return unprocessed, nil
}

// Len returns the number of stored records.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.data)
}

// Keys returns all stored keys in order.
func (t *Table) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]string, 0, len(t.data))
	for k := range t.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BatchAttempts returns how many BatchWrite calls the table has served.
func (t *Table) BatchAttempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

var _ kv.Table = (*Table)(nil)
