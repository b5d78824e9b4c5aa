package main

import (
	"fmt"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema migrations",
		Long: `Apply (or with --down revert) the embedded schema migrations.

Examples:
  smartshop migrate
  smartshop migrate --down --config prod.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.NewPgRepository(cfg.DatabaseDSN)
			if err != nil {
				return fmt.Errorf("db open: %w", err)
			}
			defer db.Close()

			if err := database.Migrate(db.DB(), down); err != nil {
				return err
			}

			logger.Info().Bool("down", down).Msg("migrations complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "revert every migration instead of applying them")

	return cmd
}
