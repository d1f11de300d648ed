package cli

import (
	"fmt"
	"os"

	"travelapproval/internal/config"
	"travelapproval/internal/logger"

	"github.com/spf13/cobra"
)

const serviceName = "travel-approval"

var (
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "travelapproval",
		Short: "Travel request approval service",
		Long: `travelapproval routes employee travel requests to the right approver,
records every decision in an audit trail and notifies the people involved.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			logger.SetLevel(cfg.LogLevel)
			return nil
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
