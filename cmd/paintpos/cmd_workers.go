package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/queue"
	"github.com/shashiranjanraj/paintpos/pkg/schedule"
)

var queueWorkersFlag int

// queue:work runs the reconciliation workers without the HTTP server.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := application.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = config.QueueWorkers()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers).Wait()
		fmt.Fprintln(cmd.OutOrStdout(), "Queue worker stopped.")
		return nil
	},
}

var scheduleOnce string

var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Start the task scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := application.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		// Start registers the listeners and their scheduled tasks.
		k.Start(ctx)
		if scheduleOnce != "" {
			return schedule.RunNow(ctx, scheduleOnce)
		}

		for _, t := range schedule.List() {
			fmt.Fprintln(cmd.OutOrStdout(), "  •", t)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Scheduler started. Press Ctrl+C to stop.")
		<-ctx.Done()
		fmt.Fprintln(cmd.OutOrStdout(), "Scheduler stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "number of concurrent workers (default QUEUE_WORKERS)")
	scheduleRunCmd.Flags().StringVar(&scheduleOnce, "once", "", "run the named task once and exit")
}
