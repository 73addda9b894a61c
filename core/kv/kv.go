package kv

import (
	"context"
	"errors"
)

var (
	// ErrTableNotFound is returned when a backing table does not exist at startup.
	ErrTableNotFound = errors.New("kv: table not found")
	// ErrUnsupportedCondition is returned when an operation is given a condition it cannot enforce.
	ErrUnsupportedCondition = errors.New("kv: unsupported condition")
)

// Outcome is the result of a conditional write.
//
// A failed precondition is an expected result of racing writers, not an error.
type Outcome int

const (
	// Succeeded means the write was applied.
	Succeeded Outcome = iota
	// ConditionFailed means the precondition did not hold and nothing was written.
	ConditionFailed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case ConditionFailed:
		return "condition_failed"
	default:
		return "unknown"
	}
}

// Record is a single key/value pair held by a Table.
type Record struct {
	Key   string
	Value string
}

// Page is one slice of a paginated scan. Next is empty on the last page.
type Page struct {
	Records []Record
	Next    string
}

// Last reports whether no further pages exist.
func (p Page) Last() bool {
	return p.Next == ""
}

// Table is the capability contract every backing store implements.
//
// All methods are network round-trips in production backends and may block or fail;
// none of them cache state across calls.
type Table interface {
	// Name returns the logical table name.
	Name() string
	// Put writes rec. Supports Always and IfAbsent.
	Put(ctx context.Context, rec Record, cond Condition) (Outcome, error)
	// Get returns the value stored under key, if any.
	Get(ctx context.Context, key string) (string, bool, error)
	// Delete removes key. Supports Always and IfEquals.
	Delete(ctx context.Context, key string, cond Condition) (Outcome, error)
	// Scan returns up to limit records after cursor, in no guaranteed order.
	Scan(ctx context.Context, limit int, cursor string) (Page, error)
	// BatchWrite unconditionally writes recs. Records the store could not make durable
	// are returned as unprocessed and must be resubmitted by the caller. A non-nil error
	// means the whole call failed and should not be retried.
	BatchWrite(ctx context.Context, recs []Record) (unprocessed []Record, err error)
}
