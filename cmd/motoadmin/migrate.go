package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the session and audit tables",
		Long:  "Apply the embedded schema to DATABASE_URL. Only the postgres and sql stores have a schema.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			be, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer be.close()

			if be.migrate == nil {
				logger.Info("store has no schema, nothing to migrate", "store", cfg.Store)
				return nil
			}
			if err := be.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema applied", "store", cfg.Store)
			return nil
		},
	}
}
