// Command motoadmin runs the admin console for the motorcycle rental API.
//
// Configuration comes from the environment (see internal/config); a .env
// file in the working directory is loaded first when present.
//
//	motoadmin serve     # run the web console
//	motoadmin migrate   # create the SQL tables for MOTOADMIN_STORE=postgres|sql
//	motoadmin cleanup   # delete expired sessions and old audit entries once
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/youssefsiam38/motoadmin/internal/config"
	"github.com/youssefsiam38/motoadmin/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "motoadmin",
		Short:         "Admin console for the motorcycle rental API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newCleanupCmd())
	return root
}

// setup loads configuration and installs the default logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.InitLogger(cfg.LogLevel, cfg.LogFormat), nil
}
