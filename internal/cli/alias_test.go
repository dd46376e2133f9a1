package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func findCommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find([]string{name})
	if err != nil || cmd == root {
		t.Fatalf("command %q not found: %v", name, err)
	}
	return cmd
}

// TestCommandAliases verifies that session verbs keep their aliases both at
// the top level and inside the shell.
func TestCommandAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"list", "ls"},
		{"bundle", "bundles"},
		{"quest", "quests"},
		{"remixes", "remix"},
		{"note", "notes"},
	}

	shellRoot := sessionRoot(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			for _, root := range []*cobra.Command{rootCmd, shellRoot} {
				if got := findCommand(t, root, tt.alias).Name(); got != tt.want {
					t.Errorf("%s resolves to %q, want %q", tt.alias, got, tt.want)
				}
			}
		})
	}
}

// TestShellOmitsShell verifies that the shell cannot be nested.
func TestShellOmitsShell(t *testing.T) {
	findCommand(t, rootCmd, "shell")
	if cmd, _, err := sessionRoot(nil, nil, nil).Find([]string{"shell"}); err == nil && cmd.Name() == "shell" {
		t.Errorf("shell should not be available inside the shell")
	}
}
