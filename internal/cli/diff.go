package cli

import (
	"fmt"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/spf13/cobra"
)

func newDiffCmd(run runner) *cobra.Command {
	var unified int
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show how staged changes would change requirements",
		Long: `Shows a unified diff of the donation and quest requirement table, applied
selection versus staged selection.

Examples:
  farmlist shell> remix bb_dye auto
  farmlist shell> diff
  farmlist shell> diff --unified 3`,
		Args: cobra.NoArgs,
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			diff, err := app.Tracker.DiffContext(unified)
			if err != nil {
				return fmt.Errorf("failed to compute diff: %w", err)
			}
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No staged requirement changes.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return nil
		}),
	}
	cmd.Flags().IntVar(&unified, "unified", 1, "Lines of unified context")
	return cmd
}
