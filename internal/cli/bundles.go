package cli

import (
	"fmt"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/render"
	"github.com/lherron/farmlist/internal/selectors"
	"github.com/spf13/cobra"
)

type bundleRow struct {
	Group    string `json:"group"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
	Remix    string `json:"remix,omitempty"`
}

func newBundlesCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bundles",
		Aliases: []string{"bundle"},
		Short:   "List or toggle base bundles",
		Long: `Lists the base bundles with their selection and any staged remix.
Bundle toggles take effect immediately; they are not staged.

Examples:
  farmlist shell> bundles off cr_spring_foraging
  farmlist shell> bundles group-off "Crafts Room"
  farmlist shell> bundles reset`,
		Args: cobra.NoArgs,
		RunE: run(runBundlesList),
	}

	toggle := func(use, short string, on bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <bundle>...",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
				for _, sel := range args {
					id, err := selectors.ResolveBundle(app.Catalog, sel)
					if err != nil {
						return err
					}
					changed, err := app.Tracker.ToggleBundle(id, on)
					if err != nil {
						return err
					}
					reportChange(cmd, id, changed)
				}
				return nil
			}),
		}
	}
	group := func(use, short string, on bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <group>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
				gid, err := selectors.ResolveBundleGroup(app.Catalog, args[0])
				if err != nil {
					return err
				}
				var changed bool
				if on {
					changed, err = app.Tracker.SelectBundleGroup(gid)
				} else {
					changed, err = app.Tracker.ClearBundleGroup(gid)
				}
				if err != nil {
					return err
				}
				reportChange(cmd, gid, changed)
				return nil
			}),
		}
	}

	cmd.AddCommand(
		toggle("on", "Select base bundles", true),
		toggle("off", "Deselect base bundles", false),
		group("group-on", "Select every bundle of a group", true),
		group("group-off", "Deselect every bundle of a group", false),
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default bundle selection",
			Args:  cobra.NoArgs,
			RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
				reportChange(cmd, "bundles", app.Tracker.ResetBundles())
				return nil
			}),
		},
	)
	return cmd
}

func reportChange(cmd *cobra.Command, what string, changed bool) {
	if changed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: updated\n", what)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: unchanged\n", what)
	}
}

func runBundlesList(app *appctx.App, cmd *cobra.Command, args []string) error {
	r, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	applied := app.Tracker.Selection().Applied()
	pending := app.Tracker.Selection().Pending()
	var rows []bundleRow
	tbl := render.Table{Headers: []string{"GROUP", "ID", "NAME", "SELECTED", "REMIX"}}
	for _, g := range app.Catalog.DonationGroups() {
		for _, b := range g.Bundles {
			row := bundleRow{Group: g.Name, ID: b.ID, Name: b.Name, Selected: applied.Bundles.Has(b.ID)}
			if rule, ok := pending.Rule(b.ID); ok {
				row.Remix = ruleText(rule.ReplacementID, rule.AutoResolve, rule.Picked)
			}
			rows = append(rows, row)
			sel := "no"
			if row.Selected {
				sel = "yes"
			}
			tbl.AddRow(!row.Selected, row.Group, row.ID, row.Name, sel, row.Remix)
		}
	}
	return r.Render(rows, tbl)
}
