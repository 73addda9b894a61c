package reconcile

import (
	"context"
	"fmt"
	"sort"

	"storagebox/core/kv"
)

// AuditAll scans both tables and returns a result for every item that is in the
// pool or bound to an id, sorted by item.
func AuditAll(ctx context.Context, spec *Spec) ([]Result, error) {
	idx, err := BuildIndex(ctx, spec)
	if err != nil {
		return nil, err
	}
	return resultsFromIndex(idx, false), nil
}

// AuditItem reports on a single item. It uses the cached index when caching is
// enabled and otherwise reads the pool directly and scans the ledger.
func AuditItem(ctx context.Context, spec *Spec, item string) (*Result, error) {
	if spec.CacheTTL > 0 {
		idx, err := GetOrBuildIndex(ctx, spec)
		if err != nil {
			return nil, err
		}
		r := buildResult(item, idx)
		return &r, nil
	}

	_, inPool, err := spec.Items.Get(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", spec.Items.Name(), err)
	}

	var ids []string
	err = kv.ScanAll(ctx, spec.Ledger, spec.pageSize(), func(r kv.Record) error {
		if r.Value == item {
			ids = append(ids, r.Key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", spec.Ledger.Name(), err)
	}

	idx := &Index{PoolSet: map[string]struct{}{}, Bindings: map[string][]string{}}
	if inPool {
		idx.PoolSet[item] = struct{}{}
	}
	if len(ids) > 0 {
		idx.Bindings[item] = ids
	}
	r := buildResult(item, idx)
	return &r, nil
}

// resultsFromIndex builds results over the union of pool and bound items.
// With onlyIssues set, clean items are left out.
func resultsFromIndex(idx *Index, onlyIssues bool) []Result {
	union := make(map[string]struct{}, len(idx.PoolSet)+len(idx.Bindings))
	for item := range idx.PoolSet {
		union[item] = struct{}{}
	}
	for item := range idx.Bindings {
		union[item] = struct{}{}
	}

	results := make([]Result, 0, len(union))
	for item := range union {
		r := buildResult(item, idx)
		if onlyIssues && len(r.Issues) == 0 {
			continue
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Item < results[j].Item
	})
	return results
}

// buildResult creates a Result for a single item.
func buildResult(item string, idx *Index) Result {
	_, inPool := idx.PoolSet[item]
	ids := append([]string(nil), idx.Bindings[item]...)
	sort.Strings(ids)
	if ids == nil {
		ids = []string{}
	}

	r := Result{
		Item:    item,
		InPool:  inPool,
		BoundTo: ids,
		Issues:  []Issue{},
	}
	if inPool && len(ids) > 0 {
		r.Issues = append(r.Issues, IssueDoubleAccounted)
	}
	if len(ids) > 1 {
		r.Issues = append(r.Issues, IssueMultiplyBound)
	}
	return r
}
