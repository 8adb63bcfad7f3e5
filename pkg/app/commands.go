package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/database"
	"github.com/shashiranjanraj/paintpos/pkg/migration"
	"github.com/shashiranjanraj/paintpos/pkg/router"
)

// BootDB loads config and connects database.DB.
func BootDB() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return database.Connect()
}

// Migrate runs every pending migration.
func Migrate(ctx context.Context, w io.Writer) error {
	if err := BootDB(); err != nil {
		return err
	}
	ran, err := migration.New(database.DB).Run(ctx)
	printNames(w, "Migrated", ran)
	return err
}

// Rollback reverses the last batch.
func Rollback(ctx context.Context, w io.Writer) error {
	if err := BootDB(); err != nil {
		return err
	}
	rolled, err := migration.New(database.DB).Rollback(ctx)
	printNames(w, "Rolled back", rolled)
	return err
}

// MigrateStatus prints every known migration and its batch.
func MigrateStatus(ctx context.Context, w io.Writer) error {
	if err := BootDB(); err != nil {
		return err
	}
	status, err := migration.New(database.DB).Status(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "RAN\tMIGRATION\tBATCH")
	for _, s := range status {
		ran, batch := "No", "-"
		if s.Ran {
			ran, batch = "Yes", fmt.Sprint(s.Batch)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ran, s.Name, batch)
	}
	return tw.Flush()
}

func printNames(w io.Writer, verb string, names []string) {
	if len(names) == 0 {
		fmt.Fprintln(w, "Nothing to do.")
		return
	}
	for _, n := range names {
		fmt.Fprintf(w, "%s: %s\n", verb, n)
	}
}

// Routes lists the route table of the offline kernel.
func (a *Application) Routes(ctx context.Context) ([]router.Route, error) {
	k, err := a.offline(ctx)
	if err != nil {
		return nil, err
	}
	defer k.Close()
	return NewRouter(k).Routes(), nil
}

// PrintRoutes writes routes as a table.
func PrintRoutes(w io.Writer, routes []router.Route) error {
	if len(routes) == 0 {
		fmt.Fprintln(w, "No routes registered.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	fmt.Fprintln(tw, strings.Repeat("-", 6)+"\t"+strings.Repeat("-", 4)+"\t"+strings.Repeat("-", 4))
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Method, r.Path, r.Name)
	}
	return tw.Flush()
}
