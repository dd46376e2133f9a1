package cli

import (
	"fmt"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/spf13/cobra"
)

func newCommitCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Apply staged quest, remix and custom changes",
		Args:  cobra.NoArgs,
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			res, err := app.Tracker.CommitSelection()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Changed {
				fmt.Fprintln(out, "Nothing staged.")
				return nil
			}
			fmt.Fprintln(out, "Committed.")
			for _, w := range app.Tracker.Result().Withheld {
				fmt.Fprintf(out, "  withheld %s: %s\n", w.BaseBundleID, w.Reason)
			}
			return nil
		}),
	}
}

func newDiscardCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop staged changes",
		Args:  cobra.NoArgs,
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			app.Tracker.DiscardSelection()
			fmt.Fprintln(cmd.OutOrStdout(), "Staged changes discarded.")
			return nil
		}),
	}
}
