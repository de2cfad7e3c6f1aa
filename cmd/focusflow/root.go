package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/focusflow/pkg/config"
	"github.com/dmitrymomot/focusflow/pkg/logger"
)

// cli is the state shared by all subcommands once the root pre-run has loaded it.
type cli struct {
	cfg appConfig
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	var storeDriver string

	root := &cobra.Command{
		Use:           "focusflow",
		Short:         "FocusFlow subscription and feature entitlement service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Load(&c.cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("store") {
				c.cfg.StoreDriver = storeDriver
			}
			c.log = newLogger(c.cfg)
			logger.SetAsDefault(c.log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&storeDriver, "store", "", "override STORE_DRIVER (memory or postgres)")

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newPlansCmd(),
		newAdminCmd(c),
		newTrialCmd(c),
	)
	return root
}

// withApp wires the entitlement core for the duration of fn.
func (c *cli) withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	a, err := newApp(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
