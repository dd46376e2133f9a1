package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/selection"
	"github.com/spf13/cobra"
)

func newCustomCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "custom <category> <item> <quantity> [note...]",
		Short: "Stage a custom requirement",
		Long: `Stages an extra requirement for an item. The category is declared if it is
new, and the item is added to the checklist if the catalog does not list
it. The requirement is added once, when the staged changes are committed.

Example:
  farmlist shell> custom gifts "Pink Cake" 3 for birthdays
  farmlist shell> commit`,
		Args: cobra.MinimumNArgs(3),
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[2], err)
			}
			req := selection.CustomRequirement{
				Category: domain.Category(args[0]),
				Item:     args[1],
				Quantity: qty,
				Note:     strings.Join(args[3:], " "),
			}
			if err := app.Tracker.Selection().StageCustom(req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s x%d: staged. Run commit to apply.\n", req.Category, req.Item, req.Quantity)
			return nil
		}),
	}
}

func newCategoryCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "category <name>",
		Short: "Declare a custom requirement category",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(app *appctx.App, cmd *cobra.Command, args []string) error {
			changed, err := app.Tracker.DeclareCategory(domain.Category(args[0]))
			if err != nil {
				return err
			}
			reportChange(cmd, args[0], changed)
			return nil
		}),
	}
}
