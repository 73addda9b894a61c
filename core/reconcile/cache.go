package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storagebox/core/kv"

	"golang.org/x/sync/singleflight"
)

// Index holds the scanned state of both tables.
type Index struct {
	// PoolSet is the set of unclaimed items.
	PoolSet map[string]struct{}

	// Bindings maps each bound item to the ids bound to it.
	Bindings map[string][]string

	// BoundIDs is the number of ledger records scanned.
	BoundIDs int

	// Built is the timestamp when this index was built.
	Built time.Time

	// TTL is the time-to-live for this index.
	TTL time.Duration
}

// IsExpired returns true if this index has expired based on its TTL.
func (c *Index) IsExpired() bool {
	if c.TTL == 0 {
		return true
	}
	return time.Since(c.Built) > c.TTL
}

// cacheStore holds all indices keyed by spec cache key.
type cacheStore struct {
	mu      sync.RWMutex
	indices map[string]*Index
	sf      singleflight.Group
}

var globalCacheStore = &cacheStore{
	indices: make(map[string]*Index),
}

// BuildIndex scans both tables concurrently.
// This function does NOT store the index; use GetOrBuildIndex for that.
func BuildIndex(ctx context.Context, spec *Spec) (*Index, error) {
	var (
		poolSet  map[string]struct{}
		bindings map[string][]string
		bound    int
		poolErr  error
		ledgErr  error
		wg       sync.WaitGroup
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		poolSet = make(map[string]struct{})
		poolErr = kv.ScanAll(ctx, spec.Items, spec.pageSize(), func(r kv.Record) error {
			poolSet[r.Value] = struct{}{}
			return nil
		})
	}()

	go func() {
		defer wg.Done()
		bindings = make(map[string][]string)
		ledgErr = kv.ScanAll(ctx, spec.Ledger, spec.pageSize(), func(r kv.Record) error {
			bindings[r.Value] = append(bindings[r.Value], r.Key)
			bound++
			return nil
		})
	}()

	wg.Wait()

	if poolErr != nil {
		return nil, fmt.Errorf("scan %s: %w", spec.Items.Name(), poolErr)
	}
	if ledgErr != nil {
		return nil, fmt.Errorf("scan %s: %w", spec.Ledger.Name(), ledgErr)
	}

	return &Index{
		PoolSet:  poolSet,
		Bindings: bindings,
		BoundIDs: bound,
		Built:    time.Now(),
		TTL:      spec.CacheTTL,
	}, nil
}

// GetOrBuildIndex returns the cached index for spec or builds a new one if it is
// missing or expired. Concurrent builds for the same spec are collapsed.
func GetOrBuildIndex(ctx context.Context, spec *Spec) (*Index, error) {
	if spec.CacheTTL <= 0 {
		return BuildIndex(ctx, spec)
	}
	cacheKey := spec.CacheKey()

	globalCacheStore.mu.RLock()
	idx, exists := globalCacheStore.indices[cacheKey]
	globalCacheStore.mu.RUnlock()

	if exists && !idx.IsExpired() {
		return idx, nil
	}

	result, err, _ := globalCacheStore.sf.Do(cacheKey, func() (interface{}, error) {
		globalCacheStore.mu.RLock()
		idx, exists := globalCacheStore.indices[cacheKey]
		globalCacheStore.mu.RUnlock()

		if exists && !idx.IsExpired() {
			return idx, nil
		}

		built, err := BuildIndex(ctx, spec)
		if err != nil {
			return nil, err
		}

		globalCacheStore.mu.Lock()
		globalCacheStore.indices[cacheKey] = built
		globalCacheStore.mu.Unlock()

		return built, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*Index), nil
}

// InvalidateIndex removes the cached index for spec.
func InvalidateIndex(spec *Spec) {
	cacheKey := spec.CacheKey()
	globalCacheStore.mu.Lock()
	delete(globalCacheStore.indices, cacheKey)
	globalCacheStore.mu.Unlock()
}
