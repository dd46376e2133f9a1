package cli

import (
	"fmt"
	"strings"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/render"
	"github.com/spf13/cobra"
)

func newNotesCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"note"},
		Short:   "List or edit checklist notes",
		Long: `Lists the free-form checklist notes, open notes first. Notes live only for
the session, like the rest of the progress.

Examples:
  farmlist shell> notes add buy a second rabbit's foot
  farmlist shell> notes done N-00001
  farmlist shell> notes rm N-00001`,
		Args: cobra.NoArgs,
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			r, err := renderer(app, cmd)
			if err != nil {
				return err
			}
			list := app.Tracker.Notes()
			tbl := render.Table{Headers: []string{"ID", "DONE", "TEXT"}}
			for _, n := range list {
				done := "[ ]"
				if n.Done {
					done = "[x]"
				}
				tbl.AddRow(n.Done, n.ID, done, n.Text)
			}
			return r.Render(list, tbl)
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <text...>",
			Short: "Add a note",
			Args:  cobra.MinimumNArgs(1),
			RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
				n, err := app.Tracker.AddNote(strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: added\n", n.ID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "done <id>",
			Short: "Check or uncheck a note",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
				n, err := app.Tracker.ToggleNote(args[0])
				if err != nil {
					return err
				}
				state := "open"
				if n.Done {
					state = "done"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", n.ID, state)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a note",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
				if err := app.Tracker.RemoveNote(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: removed\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}
