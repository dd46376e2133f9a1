package cli

import (
	"fmt"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/db"
	"github.com/lherron/farmlist/internal/render"
	"github.com/spf13/cobra"
)

func newMigrateAdmCmd() *cobra.Command {
	var dryRun, status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run any pending database migrations",
		Long: `Migrate applies any pending SQL migrations to the catalog database.

Migrations are embedded in the binary and recorded in the schema_migrations
table, so running migrate again only applies what is new.

Use --dry-run to list the migrations that would run and --status to list
applied and pending migrations.`,
		Args: cobra.NoArgs,
		RunE: appctx.WithApp(appctx.Options{}, func(app *appctx.App, cmd *cobra.Command, args []string) error {
			database, err := db.Open(app.Config.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			if status || dryRun {
				st, err := database.Status()
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				if dryRun {
					st.Applied = nil
				}
				return renderMigrationStatus(app, cmd, st)
			}

			applied, err := database.Migrate()
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Database is up to date. No migrations to apply.")
				return nil
			}
			for _, m := range applied {
				fmt.Fprintf(out, "✓ Applied migration: %s\n", m)
			}
			fmt.Fprintf(out, "\nApplied %d migration(s).\n", len(applied))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show which migrations would be applied without running them")
	cmd.Flags().BoolVar(&status, "status", false, "Show current migration status")
	return cmd
}

func init() {
	rootAdmCmd.AddCommand(newMigrateAdmCmd())
}

func renderMigrationStatus(app *appctx.App, cmd *cobra.Command, st db.Status) error {
	r, err := renderer(app, cmd)
	if err != nil {
		return err
	}
	if len(st.Applied) == 0 && len(st.Pending) == 0 && r.Format() == render.FormatTable {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations. Database is up to date.")
		return nil
	}

	tbl := render.Table{Headers: []string{"VERSION", "STATE"}}
	for _, m := range st.Applied {
		tbl.AddRow(true, m, "applied")
	}
	for _, m := range st.Pending {
		tbl.AddRow(false, m, "pending")
	}
	return r.Render(st, tbl)
}
