package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-stepgate/core"
)

func newMigrateCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the storage migrations",
		Long:  "Apply the embedded SQL migrations for the configured sqlite or postgres database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, rootOpts)
			if err != nil {
				return err
			}
			if cfg.StorageDriver() == core.StorageDriverMemory {
				return fmt.Errorf("migrate: storage.driver is %q, nothing to migrate", core.StorageDriverMemory)
			}
			if cfg.Storage.DSN == "" {
				return fmt.Errorf("migrate: storage.dsn is required")
			}
			client, dialect, err := openPersistence(cfg, rootOpts.logLevel == "trace")
			if err != nil {
				return err
			}
			defer client.Close()
			if err := migrate(ctx, client, dialect); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", dialect)
			return nil
		},
	}
}
