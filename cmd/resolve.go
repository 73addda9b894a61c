package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resolveCmd prints the item for a deduplication id.
var resolveCmd = &cobra.Command{
	Use:   "resolve <deduplication-id>",
	Short: "Resolve a deduplication id to an item",
	Long: `Prints the item bound to the id, claiming a fresh item from the pool the first
time the id is seen. Running it again with the same id prints the same item.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		res, err := a.bank.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		a.logger.Debug("Resolved", zap.String("deduplication_id", args[0]), zap.String("outcome", string(res.Outcome)))
		fmt.Println(res.Item)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(resolveCmd)
}
