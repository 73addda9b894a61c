package checks

import (
	"context"

	"storagebox/core/kv"
)

// TableStatus is the reachability verdict for one table.
type TableStatus struct {
	Status string `json:"status"` // "ok", "error"
	Error  string `json:"error,omitempty"`
}

// CheckTables reads one record from each table to prove it is reachable.
// It returns true when every table answered.
func CheckTables(ctx context.Context, tables ...kv.Table) (map[string]TableStatus, bool) {
	out := make(map[string]TableStatus, len(tables))
	healthy := true
	for _, t := range tables {
		if _, err := t.Scan(ctx, 1, ""); err != nil {
			out[t.Name()] = TableStatus{Status: "error", Error: err.Error()}
			healthy = false
			continue
		}
		out[t.Name()] = TableStatus{Status: "ok"}
	}
	return out, healthy
}
