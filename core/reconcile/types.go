package reconcile

import (
	"time"

	"storagebox/core/kv"
)

// Issue flags an accounting problem found for one item.
type Issue string

const (
	// IssueDoubleAccounted means the item is still in the pool although an id is bound to it.
	IssueDoubleAccounted Issue = "double_accounted"
	// IssueMultiplyBound means more than one id is bound to the item.
	IssueMultiplyBound Issue = "multiply_bound"
)

// Result is the audit output for a single item.
type Result struct {
	// Item is the item value.
	Item string `json:"item"`

	// InPool indicates whether the item is currently unclaimed.
	InPool bool `json:"in_pool"`

	// BoundTo lists the deduplication ids bound to the item, sorted.
	BoundTo []string `json:"bound_to"`

	// Issues lists the problems detected for the item.
	Issues []Issue `json:"issues"`
}

// Spec names the two tables to audit and how to read them.
type Spec struct {
	// Items is the pool table.
	Items kv.Table

	// Ledger is the deduplication table.
	Ledger kv.Table

	// PageSize is the scan page size. Zero uses the table default of 100.
	PageSize int

	// CacheTTL is the time-to-live for cached indices.
	// If zero, caching is disabled.
	CacheTTL time.Duration
}

// CacheKey returns a unique key for caching based on the audited tables.
func (s *Spec) CacheKey() string {
	return s.Items.Name() + "|" + s.Ledger.Name()
}

func (s *Spec) pageSize() int {
	if s.PageSize <= 0 {
		return 100
	}
	return s.PageSize
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionRemoveFromPool removes an already bound item from the pool.
	ActionRemoveFromPool ActionType = "remove_from_pool"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the item the action applies to.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// Plan contains audit results and planned actions.
type Plan struct {
	// Results contains the items with at least one issue.
	Results []Result `json:"results"`

	// Actions contains planned mutation operations.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`
}

// Summary provides aggregate statistics for an audit.
type Summary struct {
	// PoolItems is the number of unclaimed items.
	PoolItems int `json:"pool_items"`

	// BoundIDs is the number of ledger records.
	BoundIDs int `json:"bound_ids"`

	// DoubleAccounted counts items both in the pool and bound.
	DoubleAccounted int `json:"double_accounted"`

	// MultiplyBound counts items bound to more than one id.
	MultiplyBound int `json:"multiply_bound"`

	// RemoveActions counts planned pool removals.
	RemoveActions int `json:"remove_actions"`
}

// Options controls whether planned actions are executed.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Confirmed indicates user has confirmed destructive actions.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}
