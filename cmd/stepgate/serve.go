package main

import (
	"github.com/spf13/cobra"

	stepgate "github.com/goliatone/go-stepgate"
	"github.com/goliatone/go-stepgate/core"
)

func newServeCommand(rootOpts *rootOptions) *cobra.Command {
	var addr string
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := resolveConfig(ctx, rootOpts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			logger, err := newLogger(rootOpts.logLevel, rootOpts.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			opts := []stepgate.Option{stepgate.WithLogger(logger)}
			if cfg.StorageDriver() != core.StorageDriverMemory {
				client, dialect, err := openPersistence(cfg, rootOpts.logLevel == "trace")
				if err != nil {
					return err
				}
				defer client.Close()
				if !skipMigrations {
					if err := migrate(ctx, client, dialect); err != nil {
						return err
					}
				}
				opts = append(opts,
					stepgate.WithPersistenceClient(client),
					stepgate.WithStoreFactory(stepgate.NewStoreFactory(cfg)),
				)
			}

			gateway, err := stepgate.New(cfg, opts...)
			if err != nil {
				return err
			}
			return gateway.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.addr")
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on start")
	return cmd
}
