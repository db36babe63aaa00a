package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired sessions and old audit entries once",
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

			result := newCleanup(cfg, logger, be.Store, nil).RunOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "sessions=%d audit_entries=%d leases=%d\n",
				result.ExpiredSessionsDeleted, result.AuditEntriesDeleted, result.ExpiredLeadersCleaned)
			return errors.Join(result.Errors...)
		},
	}
}
