package cmd

import (
	"context"
	"errors"

	"storagebox/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the bank's tables and storage",
	Long:  `Checks that both tables are reachable, that the sql schema matches, that the import bucket exists, and audits the pool against the ledger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// tablesCmd represents the integrity tables command
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Check that both tables are reachable and, for sql, match the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the import bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(tablesCmd, storageCmd)

	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket when missing")
}

func runIntegrityChecks(ctx context.Context, runTables, runStorage, runLedger bool) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	logg := a.logger
	svc := a.integrity

	if runTables {
		logg.Info("Checking tables...")
		report, healthy := svc.CheckTables(ctx)
		if healthy {
			logg.Info("Tables are reachable.")
		} else {
			for name, st := range report {
				if st.Status != "ok" {
					logg.Error("Table unreachable", zap.String("table", name), zap.String("error", st.Error))
				}
			}
		}

		if svc.HasSchema() {
			logg.Info("Checking sql schema...")
			schema, err := svc.CheckSchema()
			if err != nil {
				logg.Error("Schema check failed", zap.Error(err))
			} else if schema.Matched {
				logg.Info("Schema matches the record model.")
			} else {
				for table, tbl := range schema.Tables {
					if tbl.Status == "ok" {
						continue
					}
					if len(tbl.MissingColumns) > 0 {
						logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
					}
					if len(tbl.TypeMismatches) > 0 {
						logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
					}
					if len(tbl.KeyMismatches) > 0 {
						logg.Warn("Key Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.KeyMismatches))
					}
				}
				for _, e := range schema.Errors {
					logg.Error("Inspection Error", zap.String("error", e))
				}
			}
		}
	}

	if runStorage {
		logg.Info("Checking import bucket...")
		report, err := svc.CheckStorage(ctx)
		switch {
		case errors.Is(err, integrity.ErrStorageDisabled):
			logg.Info("Object storage is disabled; skipping.")
		case err != nil:
			return err
		case report.Exists:
			logg.Info("Bucket is present.", zap.String("bucket", report.Bucket), zap.Int("objects", report.Lists))
		case fixFlag:
			logg.Info("Creating missing bucket...")
			if err := svc.FixStorage(ctx); err != nil {
				return err
			}
			logg.Info("Bucket created successfully.")
		default:
			logg.Warn("Bucket is missing", zap.String("bucket", report.Bucket))
			logg.Info("Run with --fix to create the bucket.")
		}
	}

	if runLedger {
		logg.Info("Auditing ledger...")
		plan, _, err := svc.CheckLedger(ctx, false)
		if err != nil {
			return err
		}
		printReconcileReport(logg, plan)
		if len(plan.Actions) > 0 {
			logg.Info("Run reconcile --fix to remove bound items from the pool.")
		}
	}
	return nil
}
