package stats

import (
	"context"
	"time"
)

// Event is one recorded resolution outcome.
type Event struct {
	Outcome string
	At      time.Time
}

// Snapshot holds cumulative counters per outcome.
type Snapshot struct {
	Total map[string]int64 `json:"total"`
}

// Recorder persists outcome counters. Callers treat errors as best-effort.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Nop discards every event.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Event) error { return nil }

// Snapshot implements Recorder.
func (Nop) Snapshot(context.Context) (Snapshot, error) {
	return Snapshot{Total: map[string]int64{}}, nil
}
