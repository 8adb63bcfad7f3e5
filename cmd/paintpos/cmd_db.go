package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/paintpos/database/seeders"
	"github.com/shashiranjanraj/paintpos/pkg/app"
	"github.com/shashiranjanraj/paintpos/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate(cmd.Context(), cmd.OutOrStdout())
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:     "migrate:rollback",
	Aliases: []string{"migrate:down"},
	Short:   "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Rollback(cmd.Context(), cmd.OutOrStdout())
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.MigrateStatus(cmd.Context(), cmd.OutOrStdout())
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the login accounts and a starter catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.BootDB(); err != nil {
			return err
		}
		ran, err := seeders.RunAll(cmd.Context(), database.DB)
		for _, name := range ran {
			fmt.Fprintln(cmd.OutOrStdout(), "Seeded:", name)
		}
		return err
	},
}
