package stats

import (
	"context"
	"sync"
)

// Memory is an in-process Recorder. Counters are lost on restart.
type Memory struct {
	mu    sync.Mutex
	total map[string]int64
}

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{total: make(map[string]int64)}
}

// Record implements Recorder.
func (m *Memory) Record(_ context.Context, ev Event) error {
	if ev.Outcome == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total[ev.Outcome]++
	return nil
}

// Snapshot implements Recorder.
func (m *Memory) Snapshot(context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.total))
	for k, v := range m.total {
		out[k] = v
	}
	return Snapshot{Total: out}, nil
}
