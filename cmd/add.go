package cmd

import (
	"fmt"
	"os"

	"storagebox/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var addFile string

// addCmd inserts items into the pool.
var addCmd = &cobra.Command{
	Use:   "add [items...]",
	Short: "Add items to the pool",
	Long: `Adds items to the pool. Items come from the arguments, from a newline-delimited
file (--file), or both. Empty lines and lines starting with '#' are skipped; other whitespace is kept.

Examples:
  storagebox add CODE-1 CODE-2
  storagebox add --file codes.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		items := append([]string(nil), args...)
		if addFile != "" {
			f, err := os.Open(addFile)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", addFile, err)
			}
			fromFile, err := utils.ReadItems(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", addFile, err)
			}
			items = append(items, fromFile...)
		}
		if len(items) == 0 {
			return fmt.Errorf("no items given")
		}

		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		added, err := a.bank.AddItems(cmd.Context(), items)
		if err != nil {
			return fmt.Errorf("failed to add items: %w", err)
		}
		a.logger.Info("Items added", zap.Int("added", added))
		fmt.Printf("Added %d item(s)\n", added)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "Newline-delimited file of items")
	RootCmd.AddCommand(addCmd)
}
