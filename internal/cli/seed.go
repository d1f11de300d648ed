package cli

import (
	"fmt"

	"travelapproval/internal/database"
	"travelapproval/internal/injector"
	"travelapproval/internal/seed"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load development users, T-accounts and projects",
	Long: `Load the YAML fixture into an empty database. The command migrates first
and does nothing when users already exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := seedFile
		if path == "" {
			path = cfg.SeedFile
		}
		fixture, err := seed.LoadFile(path)
		if err != nil {
			return err
		}

		app, err := injector.InitializeApplication(cfg)
		if err != nil {
			return err
		}
		if err := database.Migrate(app.DB); err != nil {
			return err
		}

		seeded, err := app.Seeder.Run(cmd.Context(), fixture)
		if err != nil {
			return err
		}
		if seeded {
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d T-accounts, %d projects from %s\n",
				len(fixture.Users), len(fixture.TAccounts), len(fixture.Projects), path)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Database already contains data. Skipping seed.")
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed fixture (defaults to SEED_FILE)")
	rootCmd.AddCommand(seedCmd)
}
