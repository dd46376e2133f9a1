package cli

import (
	"fmt"
	"strings"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/render"
	"github.com/lherron/farmlist/internal/selectors"
	"github.com/spf13/cobra"
)

type remixRow struct {
	Base       string   `json:"base"`
	Candidates []string `json:"candidates"`
	Applied    string   `json:"applied,omitempty"`
	Pending    string   `json:"pending,omitempty"`
	Withheld   string   `json:"withheld,omitempty"`
}

func newRemixCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:     "remix [base] [remix|auto|off]",
		Aliases: []string{"remixes"},
		Short:   "List or stage remix substitutions",
		Long: `Without arguments, lists every base bundle that has remix candidates with
its applied and staged substitution, and why an applied rule was withheld.

With a base bundle, stages its substitution: a remix bundle, "auto" for the
unique registered candidate, or "off" to keep the base bundle. Substitutions
are staged; run "commit" to apply them.

Examples:
  farmlist shell> remix bb_dye rm_bb_dye
  farmlist shell> pick bb_dye "Sea Urchin"
  farmlist shell> diff
  farmlist shell> commit`,
		Args: cobra.RangeArgs(0, 2),
		RunE: run(runRemix),
	}
}

func runRemix(app *appctx.App, cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runRemixList(app, cmd)
	}

	target := "auto"
	if len(args) == 2 {
		target = args[1]
	}
	base, err := stageRemix(app, args[0], target)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: staged %s. Run commit to apply.\n", base, target)
	return nil
}

// stageRemix stages a rule for a base bundle: "off" reverts it, "auto"
// resolves to the first candidate and anything else names a remix bundle.
// It returns the resolved base bundle id.
func stageRemix(app *appctx.App, baseSel, target string) (string, error) {
	base, err := selectors.ResolveBundle(app.Catalog, baseSel)
	if err != nil {
		return "", err
	}
	mgr := app.Tracker.Selection()
	switch target {
	case "off":
		mgr.StageRevert(base)
	case "auto", "":
		err = mgr.StageAuto(base)
	default:
		var id string
		if id, err = selectors.ResolveRemix(app.Catalog, target); err != nil {
			return "", err
		}
		err = mgr.StageReplacement(base, id)
	}
	return base, err
}

func runRemixList(app *appctx.App, cmd *cobra.Command) error {
	r, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	applied := app.Tracker.Selection().Applied()
	pending := app.Tracker.Selection().Pending()
	withheld := make(map[string]string)
	for _, w := range app.Tracker.Result().Withheld {
		withheld[w.BaseBundleID] = w.Reason
	}

	var rows []remixRow
	tbl := render.Table{Headers: []string{"BASE", "CANDIDATES", "APPLIED", "PENDING", "WITHHELD"}}
	for _, g := range app.Catalog.DonationGroups() {
		for _, b := range g.Bundles {
			cands := app.Catalog.RemixCandidates(b.ID)
			if len(cands) == 0 {
				continue
			}
			row := remixRow{Base: b.ID, Withheld: withheld[b.ID]}
			for _, c := range cands {
				row.Candidates = append(row.Candidates, c.Bundle.ID)
			}
			if rule, ok := applied.Rule(b.ID); ok {
				row.Applied = ruleText(rule.ReplacementID, rule.AutoResolve, rule.Picked)
			}
			if rule, ok := pending.Rule(b.ID); ok {
				row.Pending = ruleText(rule.ReplacementID, rule.AutoResolve, rule.Picked)
			}
			rows = append(rows, row)
			tbl.AddRow(row.Applied == "", row.Base, strings.Join(row.Candidates, ", "), row.Applied, row.Pending, row.Withheld)
		}
	}
	return r.Render(rows, tbl)
}

// ruleText renders a substitution as "remix [pick, pick]".
func ruleText(replacement string, auto bool, picked []string) string {
	text := replacement
	if text == "" && auto {
		text = "auto"
	}
	if len(picked) > 0 {
		text += " [" + strings.Join(picked, ", ") + "]"
	}
	return text
}

func newPickCmd(run runner) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "pick <base> <item>...",
		Short: "Stage picking items of a slot-limited remix bundle",
		Long: `Picks which candidate items of the staged remix bundle contribute. A
remix that needs fewer items than it lists contributes nothing until
items are picked. Picks are staged; run "commit" to apply them.`,
		Args: cobra.MinimumNArgs(2),
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			base, err := selectors.ResolveBundle(app.Catalog, args[0])
			if err != nil {
				return err
			}
			for _, item := range args[1:] {
				if err := app.Tracker.Selection().StagePick(base, item, !off); err != nil {
					return err
				}
			}
			rule, _ := app.Tracker.Selection().Pending().Rule(base)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", base, ruleText(rule.ReplacementID, rule.AutoResolve, rule.Picked))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&off, "off", false, "Unpick the items")
	return cmd
}
