package cli

import (
	"fmt"
	"strings"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/filter"
	"github.com/lherron/farmlist/internal/render"
	"github.com/lherron/farmlist/internal/tracker"
	"github.com/spf13/cobra"
)

type lsOptions struct {
	seasons    string
	categories string
	show       string
	water      string
	weather    string
	query      string
	tags       string
	incomplete bool
	choices    bool
}

func newLsCmd(run runner) *cobra.Command {
	opts := &lsOptions{}
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List checklist rows",
		Long: `Lists the items with their requirement progress, complete rows last.

Examples:
  farmlist ls --season spring
  farmlist ls --show donation,quest --incomplete
  farmlist ls --category fishing --water river --weather rain
  farmlist ls --choices            # show the available filter values`,
		Args: cobra.NoArgs,
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			return runLs(app, cmd, opts)
		}),
	}

	cmd.Flags().StringVarP(&opts.seasons, "season", "s", "", "Seasons to show (comma-separated)")
	cmd.Flags().StringVarP(&opts.categories, "category", "c", "", "Item categories to show (comma-separated)")
	cmd.Flags().StringVar(&opts.show, "show", "", "Requirement categories to show (comma-separated, default all)")
	cmd.Flags().StringVar(&opts.water, "water", "", "Water bodies for fishing items (comma-separated)")
	cmd.Flags().StringVar(&opts.weather, "weather", "", "Weather for fishing items (comma-separated)")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Only items whose name contains this text")
	cmd.Flags().StringVar(&opts.tags, "tag", "", "Only items carrying these tags (comma-separated)")
	cmd.Flags().BoolVar(&opts.incomplete, "incomplete", false, "Hide complete rows")
	cmd.Flags().BoolVar(&opts.choices, "choices", false, "List the available filter values instead of rows")
	return cmd
}

func (o *lsOptions) filter(t *tracker.Tracker) (filter.Filter, error) {
	f := t.DefaultFilter()
	f.Seasons = splitList(o.seasons)
	f.Categories = splitList(o.categories)
	f.Water = splitList(o.water)
	f.Weather = splitList(o.weather)
	f.Query = o.query
	f.Tags = domain.ParseTagNames(splitList(o.tags))

	if o.show != "" {
		known := make(map[domain.Category]bool)
		for _, c := range t.Categories() {
			known[c] = true
		}
		f.Visible = nil
		for _, name := range splitList(o.show) {
			c := domain.Category(name)
			if !known[c] {
				return f, fmt.Errorf("%w: %s", domain.ErrUnknownCategory, name)
			}
			f.Visible = append(f.Visible, c)
		}
	}
	return f, nil
}

func runLs(app *appctx.App, cmd *cobra.Command, opts *lsOptions) error {
	r, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	if opts.choices {
		ch := app.Tracker.FilterChoices()
		tbl := render.Table{Headers: []string{"FILTER", "VALUES"}}
		tbl.AddRow(false, "season", joinOrDash(ch.Seasons))
		tbl.AddRow(false, "category", joinOrDash(ch.Categories))
		tbl.AddRow(false, "show", joinOrDash(categoryNames(ch.Needs)))
		tbl.AddRow(false, "water", joinOrDash(ch.Water))
		tbl.AddRow(false, "weather", joinOrDash(ch.Weather))
		return r.Render(ch, tbl)
	}

	rows, f, err := opts.rows(app.Tracker)
	if err != nil {
		return err
	}
	return r.Render(rows, rowsTable(rows, f.Visible))
}

// rows applies the filter and the incomplete switch.
func (o *lsOptions) rows(t *tracker.Tracker) ([]tracker.Row, filter.Filter, error) {
	f, err := o.filter(t)
	if err != nil {
		return nil, f, err
	}
	rows := t.Rows(f)
	if o.incomplete {
		kept := rows[:0]
		for _, row := range rows {
			if !row.Complete {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	return rows, f, nil
}

func rowsTable(rows []tracker.Row, visible []domain.Category) render.Table {
	headers := []string{"NAME", "SEASON"}
	for _, c := range visible {
		headers = append(headers, string(c))
	}
	headers = append(headers, "QUALITY", "NOTE")

	tbl := render.Table{Headers: headers}
	for _, row := range rows {
		it := row.Item
		name := it.Name
		if it.ManuallySatisfied {
			name += " *"
		}
		cells := []string{name, it.Season}
		for _, c := range visible {
			cells = append(cells, needCell(&it, c))
		}
		note := row.Hint
		if note == "" {
			note = it.Note
		}
		cells = append(cells, qualityCell(&it), note)
		tbl.AddRow(row.Complete, cells...)
	}
	return tbl
}

func categoryNames(cats []domain.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

func joinOrDash(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}
