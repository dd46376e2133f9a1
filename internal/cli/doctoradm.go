package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/db"
	"github.com/lherron/farmlist/internal/doctor"
	"github.com/lherron/farmlist/internal/render"
	"github.com/lherron/farmlist/internal/store"
	"github.com/spf13/cobra"
)

type doctorReportAdm struct {
	Version string `json:"version"`
	DBPath  string `json:"db_path"`
	Source  string `json:"catalog_source"`
	*doctor.Report
}

// doctorSections orders the human report; checks not listed land in "Catalog".
var doctorSections = []struct {
	title  string
	checks []string
}{
	{"Database", []string{"db_file_exists", "migrations", "integrity_check", "stored_catalog", "sequence_drift"}},
	{"Catalog Source", []string{"definitions_schema"}},
}

func newDoctorAdmCmd() *cobra.Command {
	var asJSON, fix, verbose bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check catalog data quality and database health",
		Long: `Doctor checks the active catalog for unknown item references (with
suggestions), duplicate ids and entries, dangling remix bases, bad slot
counts, empty bundles and invalid quality tiers. When the catalog database
exists its file, migrations, integrity and sequences are checked too.

Use --fix to repair sqlite_sequence drift.`,
		Args: cobra.NoArgs,
		RunE: appctx.WithApp(appctx.Options{NeedsCatalog: true}, func(app *appctx.App, cmd *cobra.Command, args []string) error {
			report := &doctorReportAdm{
				Version: Version,
				DBPath:  app.Config.DBPath,
				Source:  app.Source,
				Report:  &doctor.Report{OverallStatus: doctor.StatusOK},
			}

			var database *db.DB
			if db.Exists(app.Config.DBPath) {
				d, err := db.Open(app.Config.DBPath)
				if err != nil {
					report.Add(doctor.CheckResult{Name: "db_file_exists", Status: doctor.StatusError, Message: fmt.Sprintf("Failed to open database: %v", err)})
				} else {
					database = d
					defer database.Close()
					report.Add(checkDatabaseAdm(database)...)
				}
			} else {
				report.Add(doctor.CheckResult{Name: "db_file_exists", Status: doctor.StatusOK, Message: fmt.Sprintf("No catalog database at %s", app.Config.DBPath)})
			}

			if files, ok, err := sourceFiles(app); err != nil {
				report.Add(doctor.CheckResult{Name: "definitions_schema", Status: doctor.StatusError, Message: err.Error()})
			} else if ok {
				report.Add(doctor.CheckFiles(files))
			}
			report.Add(doctor.Check(app.Catalog).Checks...)

			out := cmd.OutOrStdout()
			if fix && database != nil {
				applyFixesAdm(out, database)
			}

			if asJSON {
				r := render.NewRenderer(out, render.Options{Format: render.FormatJSON})
				if err := r.RenderJSON(report); err != nil {
					return err
				}
			} else {
				printHumanReportAdm(out, report, verbose)
			}

			if report.Errors > 0 {
				return fmt.Errorf("doctor found %d error(s)", report.Errors)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&fix, "fix", false, "Repair sqlite_sequence drift")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show check details")
	return cmd
}

func init() {
	rootAdmCmd.AddCommand(newDoctorAdmCmd())
}

// sourceFiles returns the raw files behind a directory or embedded catalog.
// Database catalogs have no definitions document to validate.
func sourceFiles(app *appctx.App) (catalog.Files, bool, error) {
	switch {
	case app.Source == appctx.SourceEmbedded:
		files, err := catalog.DefaultFiles()
		return files, err == nil, err
	case strings.HasPrefix(app.Source, appctx.SourceDir+":"):
		files, err := catalog.ReadDir(app.Config.CatalogDir)
		return files, err == nil, err
	default:
		return catalog.Files{}, false, nil
	}
}

func checkDatabaseAdm(database *db.DB) []doctor.CheckResult {
	var results []doctor.CheckResult

	if info, err := os.Stat(database.Path()); err == nil {
		results = append(results, doctor.CheckResult{
			Name:    "db_file_exists",
			Status:  doctor.StatusOK,
			Message: fmt.Sprintf("Database file: %s (%s)", database.Path(), humanize.Bytes(uint64(info.Size()))),
		})
	}

	if st, err := database.Status(); err != nil {
		results = append(results, doctor.CheckResult{Name: "migrations", Status: doctor.StatusError, Message: fmt.Sprintf("Failed to read migration status: %v", err)})
	} else if len(st.Pending) > 0 {
		results = append(results, doctor.CheckResult{
			Name:    "migrations",
			Status:  doctor.StatusError,
			Message: fmt.Sprintf("%d pending migration(s)", len(st.Pending)),
			Details: append([]string{"Run 'farmlistadm migrate'"}, st.Pending...),
		})
		return results
	} else {
		results = append(results, doctor.CheckResult{Name: "migrations", Status: doctor.StatusOK, Message: "Schema is up to date"})
	}

	var integrity string
	if err := database.QueryRow("PRAGMA integrity_check").Scan(&integrity); err != nil || integrity != "ok" {
		msg := integrity
		if err != nil {
			msg = err.Error()
		}
		results = append(results, doctor.CheckResult{Name: "integrity_check", Status: doctor.StatusError, Message: "Database integrity check failed", Details: []string{msg}})
	} else {
		results = append(results, doctor.CheckResult{Name: "integrity_check", Status: doctor.StatusOK, Message: "Database integrity check passed"})
	}

	if st, err := store.New(database).Stats(); err != nil {
		results = append(results, doctor.CheckResult{Name: "stored_catalog", Status: doctor.StatusError, Message: fmt.Sprintf("Failed to count stored rows: %v", err)})
	} else if st.Empty() {
		results = append(results, doctor.CheckResult{Name: "stored_catalog", Status: doctor.StatusOK, Message: "No stored catalog; the embedded catalog is used"})
	} else {
		results = append(results, doctor.CheckResult{
			Name:    "stored_catalog",
			Status:  doctor.StatusOK,
			Message: fmt.Sprintf("%d items and %d bundles from %d import(s)", st.Items, st.Bundles, st.Imports),
			Details: []string{fmt.Sprintf("%d event(s) logged", st.Events)},
		})
	}

	drifts, err := database.CounterDrifts()
	switch {
	case err != nil:
		results = append(results, doctor.CheckResult{Name: "sequence_drift", Status: doctor.StatusError, Message: fmt.Sprintf("Failed to check sqlite_sequence drift: %v", err)})
	case len(drifts) == 0:
		results = append(results, doctor.CheckResult{Name: "sequence_drift", Status: doctor.StatusOK, Message: "All sqlite_sequence values are in sync"})
	default:
		details := make([]string, 0, len(drifts))
		for _, drift := range drifts {
			details = append(details, drift.String())
		}
		results = append(results, doctor.CheckResult{
			Name:    "sequence_drift",
			Status:  doctor.StatusError,
			Message: fmt.Sprintf("Detected sqlite_sequence drift (%d table(s))", len(drifts)),
			Details: details,
		})
	}

	return results
}

func applyFixesAdm(out io.Writer, database *db.DB) {
	fmt.Fprintln(out, "--fix results")
	if drifts, err := database.RepairCounters(); err != nil {
		fmt.Fprintf(out, "Sequence repair failed: %v\n\n", err)
	} else if len(drifts) > 0 {
		fmt.Fprintf(out, "Fixed sqlite_sequence drift for %d table(s)\n\n", len(drifts))
	} else {
		fmt.Fprint(out, "No sqlite_sequence drift detected\n\n")
	}
}

func printHumanReportAdm(out io.Writer, report *doctorReportAdm, verbose bool) {
	fmt.Fprintf(out, "farmlistadm doctor %s\n\n", report.Version)
	fmt.Fprintf(out, "Database: %s\n", report.DBPath)
	fmt.Fprintf(out, "Catalog:  %s\n\n", report.Source)

	sections := make(map[string][]doctor.CheckResult)
	titles := make(map[string]string)
	for _, s := range doctorSections {
		for _, name := range s.checks {
			titles[name] = s.title
		}
	}
	for _, check := range report.Checks {
		title, ok := titles[check.Name]
		if !ok {
			title = "Catalog"
		}
		sections[title] = append(sections[title], check)
	}

	for _, title := range []string{"Database", "Catalog Source", "Catalog"} {
		checks := sections[title]
		if len(checks) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s\n", title)
		for _, check := range checks {
			icon := "✓"
			if check.Status == doctor.StatusWarning {
				icon = "⚠"
			} else if check.Status == doctor.StatusError {
				icon = "✗"
			}
			fmt.Fprintf(out, "  %s %s\n", icon, check.Message)
			if verbose {
				for _, detail := range check.Details {
					fmt.Fprintf(out, "      %s\n", detail)
				}
			}
		}
		fmt.Fprintln(out)
	}

	switch {
	case report.Errors > 0:
		fmt.Fprintf(out, "Summary: %d error(s), %d warning(s)\n", report.Errors, report.Warnings)
	case report.Warnings > 0:
		fmt.Fprintf(out, "Summary: %d warning(s)\n", report.Warnings)
	default:
		fmt.Fprintln(out, "Summary: All checks passed ✓")
	}
	if (report.Warnings > 0 || report.Errors > 0) && !verbose {
		fmt.Fprintln(out, "\nRun with --verbose for detailed information")
	}
}
