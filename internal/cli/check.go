package cli

import (
	"fmt"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/completion"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/render"
	"github.com/spf13/cobra"
)

type checkReport struct {
	Item     string            `json:"item"`
	Complete bool              `json:"complete"`
	Totals   completion.Totals `json:"totals"`
	Cells    map[string]string `json:"cells"`
	Quality  string            `json:"quality,omitempty"`
	Manual   bool              `json:"manual,omitempty"`
}

func newCheckCmd(run runner) *cobra.Command {
	var show string
	cmd := &cobra.Command{
		Use:   "check <item>",
		Short: "Show whether an item is complete",
		Long: `Evaluates an item's progress over the shown requirement categories.
Unbounded requirements count as done once toggled. Items with nothing to
track are complete only when marked manually.`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			return runCheck(app, cmd, args[0], show)
		}),
	}
	cmd.Flags().StringVar(&show, "show", "", "Requirement categories to evaluate (comma-separated, default all)")
	return cmd
}

func runCheck(app *appctx.App, cmd *cobra.Command, selector, show string) error {
	name, err := resolveItem(app, selector)
	if err != nil {
		return err
	}
	it, err := app.Tracker.Item(name)
	if err != nil {
		return err
	}
	visible := app.Tracker.Categories()
	if show != "" {
		visible = nil
		for _, c := range splitList(show) {
			visible = append(visible, domain.Category(c))
		}
	}

	rep := checkReport{
		Item:     name,
		Complete: completion.IsComplete(&it, visible),
		Totals:   completion.ComputeTotals(&it, visible),
		Cells:    make(map[string]string),
		Quality:  qualityCell(&it),
		Manual:   it.ManuallySatisfied,
	}
	tbl := render.Table{Headers: []string{"CATEGORY", "PROGRESS"}}
	for _, c := range visible {
		if cell := needCell(&it, c); cell != "" {
			rep.Cells[string(c)] = cell
			tbl.AddRow(false, string(c), cell)
		}
	}
	if rep.Quality != "" {
		tbl.AddRow(false, "quality", rep.Quality)
	}

	r, err := renderer(app, cmd)
	if err != nil {
		return err
	}
	if r.Format() != render.FormatTable {
		return r.Render(rep, tbl)
	}

	status := "incomplete"
	if rep.Complete {
		status = "complete"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d/%d)\n", name, status, rep.Totals.Done, rep.Totals.Need)
	return r.RenderTable(tbl)
}
