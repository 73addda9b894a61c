package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"storagebox/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixLedger    bool
	dryRunLedger bool
	yesConfirm   bool
)

// reconcileCmd audits the pool against the ledger.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the item pool with the deduplication ledger",
	Long: `Audits the pool against the ledger to find items that are bound to an id but
still unclaimed (double accounted), and items bound to more than one id.
Optionally removes the double-accounted items from the pool.

Examples:
  # Report only
  reconcile

  # Remove double-accounted items (with interactive confirmation)
  reconcile --fix

  # Remove with auto-confirm (non-interactive)
  reconcile --fix --yes`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&fixLedger, "fix", false, "Remove items that are bound but still in the pool")
	reconcileCmd.Flags().BoolVar(&dryRunLedger, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	l := a.logger

	l.Info("Starting ledger reconciliation")

	spec := &reconcile.Spec{
		Items:    a.tables.Items,
		Ledger:   a.tables.Ledger,
		PageSize: a.cfg.Bank.PageSize,
	}

	// Step 1: Plan (always runs)
	plan, err := reconcile.BuildPlan(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}

	// Step 2: Print report
	printReconcileReport(l, plan)

	// Step 3: Check if actions are requested
	if !fixLedger {
		l.Info("No actions requested. Use --fix to remove bound items from the pool.")
		return nil
	}
	if dryRunLedger {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if len(plan.Actions) == 0 {
		l.Info("No actions required.")
		return nil
	}

	// Step 4: Apply (if confirmed)
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	l.Info("Applying actions...")
	executed, err := reconcile.ApplyPlan(ctx, spec, plan, reconcile.Options{Confirmed: true})
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}
	if skipped := len(plan.Actions) - executed; skipped > 0 {
		l.Info("Items claimed since the audit were left alone", zap.Int("count", skipped))
	}
	l.Info("Successfully executed actions", zap.Int("count", executed))
	return nil
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("pool_items", s.PoolItems),
		zap.Int("bound_ids", s.BoundIDs),
		zap.Int("double_accounted", s.DoubleAccounted),
		zap.Int("multiply_bound", s.MultiplyBound),
	)

	for _, r := range plan.Results {
		if len(r.BoundTo) > 1 {
			l.Warn("Item bound to several ids", zap.String("item", r.Item), zap.Strings("ids", r.BoundTo))
		}
	}

	if len(plan.Actions) == 0 {
		return
	}
	l.Info("Planned actions", zap.Int("remove_actions", s.RemoveActions))

	maxShow := 5
	if len(plan.Actions) < maxShow {
		maxShow = len(plan.Actions)
	}
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
