package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/cache"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/customer"
	"github.com/smallbiznis/invoicedesk/internal/dashboard"
	"github.com/smallbiznis/invoicedesk/internal/invoice"
	"github.com/smallbiznis/invoicedesk/internal/migration"
	"github.com/smallbiznis/invoicedesk/internal/observability"
	"github.com/smallbiznis/invoicedesk/internal/providers"
	"github.com/smallbiznis/invoicedesk/internal/ratelimit"
	"github.com/smallbiznis/invoicedesk/internal/reminder"
	"github.com/smallbiznis/invoicedesk/internal/scheduler"
	"github.com/smallbiznis/invoicedesk/internal/server"
	"github.com/smallbiznis/invoicedesk/internal/settings"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "invoicedesk",
		Short:         "Invoicing dashboard backend with WhatsApp payment reminders",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newRemindCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the auto-reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				coreModules(),
				server.Module,
				fx.Invoke(scheduler.Register),
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func newRemindCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run one auto-reminder sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sched *scheduler.Scheduler
			app := fx.New(
				coreModules(),
				fx.Populate(&sched),
				fx.NopLogger,
			)
			if err := app.Err(); err != nil {
				return err
			}

			startCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := app.Start(startCtx); err != nil {
				return err
			}
			runErr := sched.RunOnce(cmd.Context())

			stopCtx, stopCancel := context.WithTimeout(context.Background(), timeout)
			defer stopCancel()
			if err := app.Stop(stopCtx); err != nil && runErr == nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().DurationVar(&timeout, "startup-timeout", 30*time.Second, "time allowed for start and stop hooks")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func coreModules() fx.Option {
	return fx.Options(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
		ratelimit.Module,

		// Functional Domains
		customer.Module,
		invoice.Module,
		settings.Module,
		providers.Module,
		reminder.Module,
		dashboard.Module,
		migration.Module,
		scheduler.Module,
	)
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
