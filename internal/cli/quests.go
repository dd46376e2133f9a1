package cli

import (
	"fmt"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/render"
	"github.com/lherron/farmlist/internal/selectors"
	"github.com/spf13/cobra"
)

type questRow struct {
	Group   string `json:"group"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Applied bool   `json:"applied"`
	Pending bool   `json:"pending"`
}

func newQuestsCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quests",
		Aliases: []string{"quest"},
		Short:   "List or stage quest selection",
		Long: `Lists quests with their applied and staged selection. Quest changes are
staged; run "commit" to apply them.

Selectors: a quest id or name, g:<group> for a whole group, or "all".

Examples:
  farmlist shell> quests off "Crop Research"
  farmlist shell> quests on g:help_wanted
  farmlist shell> commit`,
		Args: cobra.NoArgs,
		RunE: run(runQuestsList),
	}

	stage := func(use, short string, on bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <quest|g:group|all>...",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
				for _, sel := range args {
					if err := stageQuest(app, sel, on); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Staged. Run commit to apply.")
				return nil
			}),
		}
	}
	cmd.AddCommand(
		stage("on", "Stage selecting quests", true),
		stage("off", "Stage deselecting quests", false),
	)
	return cmd
}

func stageQuest(app *appctx.App, sel string, on bool) error {
	mgr := app.Tracker.Selection()
	if sel == "all" {
		mgr.StageAllQuests(on)
		return nil
	}
	if selectors.Parse(sel).Type == selectors.TypeGroup {
		gid, err := selectors.ResolveQuestGroup(app.Catalog, sel)
		if err != nil {
			return err
		}
		return mgr.StageQuestGroup(gid, on)
	}
	id, err := selectors.ResolveQuest(app.Catalog, sel)
	if err != nil {
		return err
	}
	return mgr.StageQuest(id, on)
}

func runQuestsList(app *appctx.App, cmd *cobra.Command, args []string) error {
	r, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	applied := app.Tracker.Selection().Applied()
	pending := app.Tracker.Selection().Pending()
	var rows []questRow
	tbl := render.Table{Headers: []string{"GROUP", "ID", "NAME", "SELECTED"}}
	for _, g := range app.Catalog.QuestGroups() {
		for _, q := range g.Quests {
			row := questRow{
				Group:   g.Name,
				ID:      q.ID,
				Name:    q.Name,
				Applied: applied.Quests.Has(q.ID),
				Pending: pending.Quests.Has(q.ID),
			}
			rows = append(rows, row)
			tbl.AddRow(!row.Applied, row.Group, row.ID, row.Name, selectionText(row.Applied, row.Pending))
		}
	}
	return r.Render(rows, tbl)
}

// selectionText shows the applied state and, when it differs, the staged one.
func selectionText(applied, pending bool) string {
	text := map[bool]string{true: "yes", false: "no"}
	if applied == pending {
		return text[applied]
	}
	return text[applied] + " -> " + text[pending]
}
