package cli

import (
	"fmt"

	"github.com/lherron/farmlist/internal/bulk"
	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/spf13/cobra"
)

func newClickCmd(run runner) *cobra.Command {
	var (
		quality string
		set     int
	)
	cmd := &cobra.Command{
		Use:   "click <item> [category]",
		Short: "Advance an item's progress",
		Long: `Advances the done counter of one requirement cell. The counter wraps to 0
once the need is met; unbounded needs toggle between 0 and 1. Large needs
advance in bigger steps (see click_threshold and click_large_step).

Without a category the first category with a requirement is used.

Examples:
  farmlist shell> click Leek donation
  farmlist shell> click Melon --quality gold
  farmlist shell> click Wood crafting --set 45`,
		Args: cobra.RangeArgs(1, 2),
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			return runClick(app, cmd, args, quality, set)
		}),
	}
	cmd.Flags().StringVar(&quality, "quality", "", "Advance a quality tier (silver, gold, iridium) instead of a category")
	cmd.Flags().IntVar(&set, "set", -1, "Set the done counter directly")
	return cmd
}

func runClick(app *appctx.App, cmd *cobra.Command, args []string, quality string, set int) error {
	name, err := resolveItem(app, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if quality != "" {
		if err := domain.ValidateQuality(quality); err != nil {
			return err
		}
		q := domain.Quality(quality)
		done, err := app.Tracker.ClickQuality(name, q)
		if err != nil {
			return err
		}
		it, _ := app.Tracker.Item(name)
		fmt.Fprintf(out, "%s %s: %d/%d\n", name, q, done, it.QualityNeeds[q])
		return nil
	}

	it, err := app.Tracker.Item(name)
	if err != nil {
		return err
	}
	var c domain.Category
	if len(args) == 2 {
		c = domain.Category(args[1])
	} else {
		for _, cat := range app.Tracker.Categories() {
			if n := it.Needs[cat]; n.Unbounded || n.Count > 0 {
				c = cat
				break
			}
		}
		if c == "" {
			return fmt.Errorf("%w: %s", domain.ErrNoRequirement, name)
		}
	}

	var done int
	if set >= 0 {
		done, err = app.Tracker.SetDone(name, c, set)
	} else {
		done, err = app.Tracker.Click(name, c)
	}
	if err != nil {
		return err
	}
	it, _ = app.Tracker.Item(name)
	fmt.Fprintf(out, "%s %s: %s\n", name, c, progressText(done, it.Needs[c]))
	return nil
}

func progressText(done int, need domain.Need) string {
	if need.Unbounded {
		if done > 0 {
			return "done"
		}
		return "not done"
	}
	return fmt.Sprintf("%d/%d", done, need.Count)
}

func newManualCmd(run runner) *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "manual <item>...",
		Short: "Toggle the manual completion mark of items",
		Long: `Marks an item with nothing to track as complete, or clears the mark.
Items may be names or glob patterns such as "Wild*".`,
		Args: cobra.MinimumNArgs(1),
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return forEachItem(app, cmd, args, keepGoing, func(name string) error {
				on, err := app.Tracker.ToggleManual(name)
				if err != nil {
					return err
				}
				state := "cleared"
				if on {
					state = "marked complete"
				}
				fmt.Fprintf(out, "%s: %s\n", name, state)
				return nil
			})
		}),
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue past items that fail")
	return cmd
}

func newResetCmd(run runner) *cobra.Command {
	var (
		all       bool
		yes       bool
		keepGoing bool
	)
	cmd := &cobra.Command{
		Use:   "reset [item...]",
		Short: "Clear progress of items or of every item",
		Long: `Clears the done counters, quality progress and manual mark of items.
Items may be names or glob patterns such as "Wild*". With --all every item
is reset and every note is unchecked; this needs --yes.`,
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if all {
				if len(args) > 0 {
					return fmt.Errorf("--all takes no item")
				}
				if err := app.Tracker.ResetAll(yes); err != nil {
					return fmt.Errorf("%w: rerun with --yes to reset all progress", err)
				}
				fmt.Fprintln(out, "All progress reset.")
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("name an item or use --all")
			}
			return forEachItem(app, cmd, args, keepGoing, func(name string) error {
				if err := app.Tracker.ResetItem(name); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: progress reset\n", name)
				return nil
			})
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "Reset every item")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm resetting every item")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue past items that fail")
	return cmd
}

// forEachItem expands item selectors and globs and applies fn to each
// match in order. Runs over several items end with a summary.
func forEachItem(app *appctx.App, cmd *cobra.Command, args []string, keepGoing bool, fn bulk.ItemFunc) error {
	names, err := resolveItems(app, args)
	if err != nil {
		return err
	}
	op := &bulk.Operation{ContinueOnError: keepGoing, Errors: cmd.ErrOrStderr()}
	result := op.Execute(names, fn)
	if len(names) > 1 && result.Failed > 0 {
		result.PrintSummary(cmd.ErrOrStderr())
	}
	return result.Err()
}
