package cmd

import (
	"fmt"
	"os"

	"storagebox/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "storagebox",
	Short: "Deduplicated item bank",
	Long: `Storagebox hands out pre-generated items (codes, tokens, vouchers) exactly once
per deduplication id. Repeated requests with the same id receive the same item.
Items and bindings live in a SQL, Redis or in-memory table store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding at debug level gives ISO8601 timestamps for CLI errors.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
