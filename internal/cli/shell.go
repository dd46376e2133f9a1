package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive checklist session",
	Long: `Opens one session and reads commands line by line. Progress, bundle
selection and staged quest, remix and custom changes live for the whole
session. Every top-level command except shell works at the prompt.

Type "help" for the command list and "quit" or "exit" to leave.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), func(app *appctx.App, cmd *cobra.Command, args []string) error {
		app.Logger.Printf("catalog from %s", app.Source)
		prompt := ""
		if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			prompt = "farmlist> "
		}
		return runShell(app, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), prompt)
	}),
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// sessionRoot builds a fresh command tree bound to one session. A new tree
// per line keeps flag values from leaking between lines.
func sessionRoot(app *appctx.App, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "farmlist",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	addOutputFlags(root)
	run := inSession(app)
	for _, newCmd := range sessionCommands {
		root.AddCommand(newCmd(run))
	}
	root.SetOut(out)
	root.SetErr(errOut)
	return root
}

// runShell executes one command per input line until EOF or quit. Command
// errors are printed and the session continues.
func runShell(app *appctx.App, in io.Reader, out, errOut io.Writer, prompt string) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			break
		}
		args, err := splitArgs(scanner.Text())
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 || strings.HasPrefix(args[0], "#") {
			continue
		}
		switch args[0] {
		case "quit", "exit":
			return nil
		}

		root := sessionRoot(app, out, errOut)
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}
	if prompt != "" {
		fmt.Fprintln(out)
	}
	return scanner.Err()
}

// splitArgs splits a command line on whitespace. Single and double quotes
// group words and a backslash escapes the next rune outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}
