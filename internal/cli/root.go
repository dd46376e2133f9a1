package cli

import (
	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "farmlist",
	Short: "Checklist for bundle, remix and quest requirements",
	Long: `farmlist tracks which items a farm still needs for donation bundles,
remix bundles, quests and the other collection categories of the catalog.

Report commands (ls, sources, check) run against a fresh session built from
the default selection. Use "farmlist shell" to keep one session open and
stage bundle, quest and remix changes interactively.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// runner adapts a session-level run function into a cobra RunE. One-shot
// commands bootstrap a fresh app; shell commands reuse the open session.
type runner func(fn appctx.RunFunc) func(cmd *cobra.Command, args []string) error

func oneShot(fn appctx.RunFunc) func(cmd *cobra.Command, args []string) error {
	return appctx.WithApp(appctx.DefaultOptions(), fn)
}

func inSession(app *appctx.App) runner {
	return func(fn appctx.RunFunc) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return fn(app, cmd, args)
		}
	}
}

// sessionCommands are the verbs available both at the top level and
// inside the shell.
var sessionCommands = []func(run runner) *cobra.Command{
	newLsCmd,
	newSourcesCmd,
	newCheckCmd,
	newClickCmd,
	newManualCmd,
	newResetCmd,
	newBundlesCmd,
	newQuestsCmd,
	newRemixCmd,
	newPickCmd,
	newCustomCmd,
	newCategoryCmd,
	newCommitCmd,
	newDiscardCmd,
	newDiffCmd,
	newNotesCmd,
	newSnapshotCmd,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("output", "o", "", "Output format: table, json, yaml or tsv (overrides FARMLIST_OUTPUT)")
	cmd.PersistentFlags().Bool("porcelain", false, "Machine-readable output without styling")
}

func init() {
	rootCmd.PersistentFlags().String("catalog", "", "Catalog directory with items.csv and definitions (overrides FARMLIST_CATALOG)")
	rootCmd.PersistentFlags().String("db", "", "Path to catalog database (overrides FARMLIST_DB_PATH)")
	rootCmd.PersistentFlags().Bool("selected-only", false, "Only selected base bundles contribute donation requirements")
	addOutputFlags(rootCmd)

	for _, newCmd := range sessionCommands {
		rootCmd.AddCommand(newCmd(oneShot))
	}
}
