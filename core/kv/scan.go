package kv

import "context"

// ScanAll walks every page of t and calls fn for each record.
// Iteration stops early if fn returns an error.
func ScanAll(ctx context.Context, t Table, pageSize int, fn func(Record) error) error {
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := t.Scan(ctx, pageSize, cursor)
		if err != nil {
			return err
		}
		for _, rec := range page.Records {
			if err := fn(rec); err != nil {
				return err
			}
		}
		if page.Last() {
			return nil
		}
		cursor = page.Next
	}
}

// Count returns the number of records currently in t.
func Count(ctx context.Context, t Table, pageSize int) (int, error) {
	n := 0
	err := ScanAll(ctx, t, pageSize, func(Record) error {
		n++
		return nil
	})
	return n, err
}
