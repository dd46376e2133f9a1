package cli

import (
	"github.com/spf13/cobra"
)

var rootAdmCmd = &cobra.Command{
	Use:   "farmlistadm",
	Short: "Administrative CLI for the farmlist catalog database",
	Long: `farmlistadm is the administrative companion to farmlist. It handles the
catalog database lifecycle (init, migrate), catalog import and export, and
data-quality checks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteAdmin runs the admin root command
func ExecuteAdmin() error {
	return rootAdmCmd.Execute()
}

func init() {
	rootAdmCmd.PersistentFlags().String("db", "", "Path to database file (overrides FARMLIST_DB_PATH)")
	rootAdmCmd.PersistentFlags().String("catalog", "", "Catalog directory for export and doctor (overrides FARMLIST_CATALOG)")
	addOutputFlags(rootAdmCmd)
	rootAdmCmd.AddCommand(newVersionCmd("farmlistadm"))
}
