package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/paintpos/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return application.Serve(ctx)
	},
}

var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		routes, err := application.Routes(cmd.Context())
		if err != nil {
			return err
		}
		return app.PrintRoutes(cmd.OutOrStdout(), routes)
	},
}
