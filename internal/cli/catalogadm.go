package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/doctor"
	"github.com/lherron/farmlist/internal/snapshot"
	"github.com/spf13/cobra"
)

func newImportAdmCmd() *cobra.Command {
	var defaults, dryRun, asJSON bool
	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Import a catalog into the database",
		Long: `Import replaces the catalog stored in the database. The path is either a
directory holding items.csv and definitions.{json,yaml}, or a catalog dump
written by "farmlistadm export" (plain or zstd-compressed). With --defaults
the embedded catalog is imported.

Definitions that fail schema validation are reported but still imported.

Examples:
  farmlistadm import ./catalog
  farmlistadm import farmlist-catalog.json.zst
  farmlistadm import --defaults`,
		Args: cobra.MaximumNArgs(1),
		RunE: appctx.WithApp(appctx.AdminOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
			if defaults == (len(args) == 1) {
				return fmt.Errorf("pass either a path or --defaults")
			}

			var (
				cat    *catalog.Catalog
				source string
				err    error
			)
			switch {
			case defaults:
				cat, err = catalog.LoadDefaults()
				source = appctx.SourceEmbedded
			default:
				cat, source, err = readCatalogSource(cmd, args[0])
			}
			if err != nil {
				return err
			}

			if dryRun {
				report := doctor.Check(cat)
				fmt.Fprintf(cmd.OutOrStdout(), "Would import %d items from %s (%s)\n", len(cat.Items()), source, report.OverallStatus)
				return nil
			}

			rec, err := app.Store().Catalogs.Save(cat, source)
			if err != nil {
				return fmt.Errorf("failed to import catalog: %w", err)
			}
			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s from %s: %d items, %d bundles, %d remixes, %d quests\n",
				rec.ID, rec.Source, rec.ItemCount, rec.BundleCount, rec.RemixCount, rec.QuestCount)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Import the embedded default catalog")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and check the catalog without saving it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the import record as JSON")
	return cmd
}

// readCatalogSource loads a catalog directory or dump file. Schema problems
// in a directory's definitions are logged, never fatal.
func readCatalogSource(cmd *cobra.Command, path string) (*catalog.Catalog, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !info.IsDir() {
		cat, res, err := snapshot.ImportCatalog(path)
		if err != nil {
			return nil, "", err
		}
		return cat, "dump:" + res.SnapshotRev, nil
	}

	files, err := catalog.ReadDir(path)
	if err != nil {
		return nil, "", err
	}
	if res := doctor.CheckFiles(files); res.Status != doctor.StatusOK {
		for _, d := range res.Details {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", res.Message, d)
		}
	}
	cat, err := catalog.FromFiles(files)
	if err != nil {
		return nil, "", err
	}
	return cat, appctx.SourceDir + ":" + path, nil
}

func newExportAdmCmd() *cobra.Command {
	var (
		out       string
		zstd      bool
		canonical bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active catalog as a dump file",
		Long: `Export writes the active catalog (directory, database or embedded, in
that order) as a self-contained JSON dump sealed with a content rev. A .zst
output path or --zstd compresses it. Use "--out -" to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: appctx.WithApp(appctx.Options{NeedsCatalog: true}, func(app *appctx.App, cmd *cobra.Command, args []string) error {
			opts := snapshot.ExportOptions{OutputPath: out, Canonical: canonical, Zstd: zstd}
			if out == "-" {
				data, _, err := snapshot.EncodeCatalog(app.Catalog, opts)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if opts.OutputPath == "" {
				opts.OutputPath = snapshot.DefaultOutputPath
				if zstd {
					opts.OutputPath += ".zst"
				}
			}

			res, err := snapshot.ExportCatalog(app.Catalog, opts)
			if err != nil {
				return err
			}
			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s (%d items, %d bytes)\n", app.Source, res.OutputPath, res.ItemCount, res.Bytes)
			fmt.Fprintf(cmd.OutOrStdout(), "  rev: %s\n", res.SnapshotRev)
			return nil
		}),
	}
	cmd.Flags().StringVar(&out, "out", "", "Output path (default farmlist-catalog.json, - for stdout)")
	cmd.Flags().BoolVar(&zstd, "zstd", false, "Compress the dump with zstd")
	cmd.Flags().BoolVar(&canonical, "canonical", false, "Write canonical JSON instead of indented")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the export result as JSON")
	return cmd
}

func init() {
	rootAdmCmd.AddCommand(newImportAdmCmd(), newExportAdmCmd())
}
