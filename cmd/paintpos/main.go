// Command paintpos is the point-of-sale server and its maintenance CLI.
//
//	paintpos serve             start HTTP, gRPC health, queue workers and scheduler
//	paintpos migrate           run pending migrations
//	paintpos migrate:rollback  reverse the last batch
//	paintpos migrate:status    list migrations
//	paintpos seed              create the login accounts and a starter catalog
//	paintpos route:list        print the route table
//	paintpos queue:work        run queue workers only
//	paintpos schedule:run      run the scheduler only
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register migrations and seeders.
	_ "github.com/shashiranjanraj/paintpos/database/migrations"
	_ "github.com/shashiranjanraj/paintpos/database/seeders"

	"github.com/shashiranjanraj/paintpos/internal/kernel"
	"github.com/shashiranjanraj/paintpos/pkg/app"
)

var application = app.New(func(ctx context.Context) (app.Kernel, error) {
	return kernel.Boot(ctx)
}).Offline(func(context.Context) (app.Kernel, error) {
	return kernel.Offline()
})

var rootCmd = &cobra.Command{
	Use:           "paintpos",
	Short:         "Paint store point of sale and inventory server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, routeListCmd)
	rootCmd.AddCommand(migrateCmd, migrateRollbackCmd, migrateStatusCmd, seedCmd)
	rootCmd.AddCommand(queueWorkCmd, scheduleRunCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
