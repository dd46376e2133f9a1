package cli

import (
	"fmt"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/snapshot"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(run runner) *cobra.Command {
	var revOnly bool
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the full session state as JSON",
		Long: `Prints the selection, ledger, withheld rules and notes as canonical JSON
with a content revision. Identical states always have the same revision.`,
		Args: cobra.NoArgs,
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			snap, err := app.Tracker.Snapshot()
			if err != nil {
				return fmt.Errorf("failed to build snapshot: %w", err)
			}
			if revOnly {
				fmt.Fprintln(cmd.OutOrStdout(), snap.Meta.SnapshotRev)
				return nil
			}
			data, err := snapshot.PrettyJSON(snap)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}),
	}
	cmd.Flags().BoolVar(&revOnly, "rev", false, "Print only the snapshot revision")
	return cmd
}
