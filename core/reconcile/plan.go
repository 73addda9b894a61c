package reconcile

import (
	"context"
	"fmt"
	"strings"

	"storagebox/core/kv"
)

// BuildPlan audits both tables and plans one pool removal per double-accounted item.
// It does NOT execute actions; use ApplyPlan for that.
func BuildPlan(ctx context.Context, spec *Spec) (*Plan, error) {
	idx, err := GetOrBuildIndex(ctx, spec)
	if err != nil {
		return nil, err
	}

	results := resultsFromIndex(idx, true)
	summary, actions := buildPlanFromResults(results)
	summary.PoolItems = len(idx.PoolSet)
	summary.BoundIDs = idx.BoundIDs

	return &Plan{
		Results: results,
		Actions: actions,
		Summary: summary,
	}, nil
}

// ApplyPlan executes the actions in a plan and returns how many took effect.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
// Removals are conditional: an item claimed since the audit is left alone and
// not counted.
func ApplyPlan(ctx context.Context, spec *Spec, plan *Plan, opts Options) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}
	defer InvalidateIndex(spec)

	for _, action := range plan.Actions {
		switch action.Type {
		case ActionRemoveFromPool:
			out, err := spec.Items.Delete(ctx, action.Key, kv.IfEquals(action.Key))
			if err != nil {
				return executed, fmt.Errorf("failed to remove %s from pool: %w", action.Key, err)
			}
			if out == kv.Succeeded {
				executed++
			}
		default:
			return executed, fmt.Errorf("unknown action type %q", action.Type)
		}
	}
	return executed, nil
}

// AuditAndApply is a convenience wrapper that plans and optionally applies actions.
func AuditAndApply(ctx context.Context, spec *Spec, opts Options) (*Plan, int, error) {
	plan, err := BuildPlan(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	executed, err := ApplyPlan(ctx, spec, plan, opts)
	return plan, executed, err
}

// buildPlanFromResults generates a summary and action plan from audit results.
func buildPlanFromResults(results []Result) (Summary, []Action) {
	var summary Summary
	var actions []Action

	for _, r := range results {
		for _, issue := range r.Issues {
			switch issue {
			case IssueDoubleAccounted:
				summary.DoubleAccounted++
				actions = append(actions, Action{
					Type:   ActionRemoveFromPool,
					Key:    r.Item,
					Reason: fmt.Sprintf("bound to %s", strings.Join(r.BoundTo, ", ")),
				})
				summary.RemoveActions++
			case IssueMultiplyBound:
				summary.MultiplyBound++
			}
		}
	}

	return summary, actions
}
