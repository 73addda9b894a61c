// Package reconcile audits the pool against the deduplication ledger.
//
// Every item handed out is bound in the ledger and absent from the pool. The audit
// scans both tables concurrently and flags items that break this:
//
//   - double_accounted: the item is bound and still in the pool, so it could be
//     handed to a second id. Typically caused by re-importing a list that contains
//     items already handed out.
//   - multiply_bound: more than one id is bound to the item. Reported only; ledger
//     records are never rewritten.
//
// # Plans
//
// BuildPlan turns the audit into one remove_from_pool action per double-accounted
// item. ApplyPlan executes them only with Confirmed set and DryRun unset. Each
// removal is a conditional delete, so it cannot race with a claim.
//
// # Cache
//
// Indices are cached per table pair for CacheTTL with stampede protection, which
// keeps repeated AuditItem calls cheap. ApplyPlan invalidates the cache.
//
//	spec := &reconcile.Spec{Items: items, Ledger: ledger, CacheTTL: time.Minute}
//	plan, executed, err := reconcile.AuditAndApply(ctx, spec, reconcile.Options{Confirmed: true})
package reconcile
