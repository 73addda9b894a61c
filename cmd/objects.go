package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// importCmd loads an item list from the bucket.
var importCmd = &cobra.Command{
	Use:   "import <object>",
	Short: "Import an item list from object storage",
	Long:  `Reads a newline-delimited item list from the configured bucket and adds it to the pool.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		added, err := a.bank.ImportObject(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("import stopped after %d item(s): %w", added, err)
		}
		fmt.Printf("Imported %d item(s) from %s\n", added, args[0])
		return nil
	},
}

// exportCmd writes the pool to the bucket.
var exportCmd = &cobra.Command{
	Use:   "export <object>",
	Short: "Export unclaimed items to object storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.bank.ExportPool(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d item(s) to %s\n", n, args[0])
		return nil
	},
}

// statsCmd prints pool size and resolve counters.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pool size and resolve counters",
	Long:  `Counts unclaimed items by scanning the pool. Resolve counters are only meaningful with the redis stats backend, since in-memory counters start empty in each process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		report, err := a.bank.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Pool size: %d\n", report.PoolSize)
		outcomes := make([]string, 0, len(report.Outcomes))
		for outcome := range report.Outcomes {
			outcomes = append(outcomes, outcome)
		}
		sort.Strings(outcomes)
		for _, outcome := range outcomes {
			fmt.Printf("%s: %d\n", outcome, report.Outcomes[outcome])
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(importCmd, exportCmd, statsCmd)
}
