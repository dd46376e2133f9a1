package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// versionInfo is shared by the user, admin and daemon binaries.
func versionInfo(binary string, commands []string) map[string]interface{} {
	return map[string]interface{}{
		"binary":                    binary,
		"version":                   Version,
		"commit":                    GitCommit,
		"build_date":                BuildDate,
		"machine_interface_version": 1,
		"supported_commands":        commands,
		"supported_formats":         []string{"table", "json", "yaml", "tsv", "porcelain"},
	}
}

func commandNames(root *cobra.Command) []string {
	var names []string
	for _, c := range root.Commands() {
		if c.IsAvailableCommand() {
			names = append(names, c.Name())
		}
	}
	return names
}

func newVersionCmd(binary string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  fmt.Sprintf("Displays version, commit, and build date information for %s.", binary),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(versionInfo(binary, commandNames(cmd.Root())))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", binary, Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", GitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  machine interface: v%d\n", 1)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func init() {
	rootCmd.AddCommand(newVersionCmd("farmlist"))
}
