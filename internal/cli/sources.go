package cli

import (
	"fmt"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/render"
	"github.com/spf13/cobra"
)

type sourcesReport struct {
	Item    string   `json:"item"`
	Hint    string   `json:"hint,omitempty"`
	Sources []string `json:"sources"`
	Notes   []string `json:"notes,omitempty"`
}

func newSourcesCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "sources <item>",
		Short: "Show which bundles and quests need an item",
		Args:  cobra.ExactArgs(1),
		RunE:  run(runSources),
	}
}

func runSources(app *appctx.App, cmd *cobra.Command, args []string) error {
	name, err := resolveItem(app, args[0])
	if err != nil {
		return err
	}
	r, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	res := app.Tracker.Result()
	rep := sourcesReport{
		Item:    name,
		Sources: res.SourceLines(name),
		Notes:   res.NoteLines(name),
	}
	if n, ok := app.Catalog.ItemNote(name); ok {
		rep.Hint = n.Format(name)
	}

	if r.Format() != render.FormatTable {
		tbl := render.Table{Headers: []string{"KIND", "TEXT"}}
		for _, s := range rep.Sources {
			tbl.AddRow(false, "source", s)
		}
		for _, n := range rep.Notes {
			tbl.AddRow(false, "note", n)
		}
		return r.Render(rep, tbl)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, rep.Item)
	if rep.Hint != "" {
		fmt.Fprintf(out, "  (%s)\n", rep.Hint)
	}
	if len(rep.Sources) == 0 {
		fmt.Fprintln(out, "  no bundle or quest needs this item")
	}
	for _, s := range rep.Sources {
		fmt.Fprintf(out, "  %s\n", s)
	}
	for _, n := range rep.Notes {
		fmt.Fprintf(out, "  note: %s\n", n)
	}
	return nil
}
