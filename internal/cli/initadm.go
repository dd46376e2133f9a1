package cli

import (
	"errors"
	"fmt"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/db"
	"github.com/lherron/farmlist/internal/store"
	"github.com/spf13/cobra"
)

func newInitAdmCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the catalog database",
		Long: `Init creates the SQLite catalog database and runs migrations. With --seed
the embedded default catalog is imported when the database holds no catalog
yet, so farmlist reads from the database from then on.`,
		Args: cobra.NoArgs,
		RunE: appctx.WithApp(appctx.Options{}, func(app *appctx.App, cmd *cobra.Command, args []string) error {
			existed := db.Exists(app.Config.DBPath)

			database, err := db.Open(app.Config.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			if _, err := database.Migrate(); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			out := cmd.OutOrStdout()
			if existed {
				fmt.Fprintf(out, "Database already exists at %s; migrations are up to date.\n", app.Config.DBPath)
			} else {
				fmt.Fprintf(out, "Initialized catalog database at %s\n", app.Config.DBPath)
			}
			if !seed {
				return nil
			}

			s := store.New(database)
			if _, err := s.Catalogs.Latest(); err == nil {
				fmt.Fprintln(out, "Catalog already imported; skipping seed.")
				return nil
			} else if !errors.Is(err, store.ErrNoCatalog) {
				return err
			}
			cat, err := catalog.LoadDefaults()
			if err != nil {
				return err
			}
			rec, err := s.Catalogs.Save(cat, appctx.SourceEmbedded)
			if err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}
			fmt.Fprintf(out, "Seeded embedded catalog as %s (%d items)\n", rec.ID, rec.ItemCount)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Import the embedded default catalog into an empty database")
	return cmd
}

func init() {
	rootAdmCmd.AddCommand(newInitAdmCmd())
}
