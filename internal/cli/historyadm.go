package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/render"
	"github.com/spf13/cobra"
)

// ago renders a stored UTC timestamp relative to now, or as-is when it
// does not parse.
func ago(ts string) string {
	t, err := time.Parse("2006-01-02T15:04:05Z", ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}

func newHistoryAdmCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List catalog imports, newest first",
		Args:  cobra.NoArgs,
		RunE: appctx.WithApp(appctx.AdminOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
			recs, err := app.Store().Catalogs.History(limit)
			if err != nil {
				return err
			}
			r, err := renderer(app, cmd)
			if err != nil {
				return err
			}
			tbl := render.Table{Headers: []string{"ID", "WHEN", "SOURCE", "ITEMS", "BUNDLES", "REMIXES", "QUESTS", "REV"}}
			for i, rec := range recs {
				tbl.AddRow(i > 0, rec.ID, ago(rec.CreatedAt), rec.Source,
					humanize.Comma(int64(rec.ItemCount)), strconv.Itoa(rec.BundleCount),
					strconv.Itoa(rec.RemixCount), strconv.Itoa(rec.QuestCount), shortRev(rec.SnapshotRev))
			}
			if len(recs) == 0 && r.Format() == render.FormatTable {
				fmt.Fprintln(cmd.OutOrStdout(), "No catalog imported.")
				return nil
			}
			return r.Render(recs, tbl)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum imports to list")
	return cmd
}

func newEventsAdmCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the catalog event log, newest first",
		Args:  cobra.NoArgs,
		RunE: appctx.WithApp(appctx.AdminOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
			list, err := app.Store().Events().Recent(limit)
			if err != nil {
				return err
			}
			r, err := renderer(app, cmd)
			if err != nil {
				return err
			}
			tbl := render.Table{Headers: []string{"ID", "WHEN", "TYPE", "PAYLOAD"}}
			for _, e := range list {
				payload := ""
				if e.Payload != nil {
					payload = *e.Payload
				}
				tbl.AddRow(false, strconv.FormatInt(e.ID, 10), ago(e.Timestamp), e.EventType, payload)
			}
			return r.Render(list, tbl)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum events to show")
	return cmd
}

func newClearAdmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored catalog and its import history",
		Long: `Clear empties the catalog tables. farmlist falls back to the embedded
catalog until the next import. The event log keeps a catalog.cleared entry.`,
		Args: cobra.NoArgs,
		RunE: appctx.WithApp(appctx.AdminOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("clear removes the stored catalog; rerun with --yes")
			}
			if err := app.Store().Catalogs.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Catalog cleared.")
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm removal")
	return cmd
}

func shortRev(rev string) string {
	const keep = len("sha256:") + 12
	if len(rev) > keep {
		return rev[:keep]
	}
	return rev
}

func init() {
	rootAdmCmd.AddCommand(newHistoryAdmCmd(), newEventsAdmCmd(), newClearAdmCmd())
}
