package cli

import (
	"fmt"
	"strings"

	"github.com/lherron/farmlist/internal/cli/appctx"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/ledger"
	"github.com/lherron/farmlist/internal/render"
	"github.com/lherron/farmlist/internal/selectors"
	"github.com/spf13/cobra"
)

// renderer builds a renderer honoring the --output and --porcelain flags.
func renderer(app *appctx.App, cmd *cobra.Command) (*render.Renderer, error) {
	output := app.Config.Output
	if f := cmd.Flag("output"); f != nil && f.Value.String() != "" {
		output = f.Value.String()
	}
	format, err := render.ParseFormat(output)
	if err != nil {
		return nil, err
	}
	porcelain := false
	if f := cmd.Flag("porcelain"); f != nil {
		porcelain = f.Value.String() == "true"
	}
	return render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: format, Porcelain: porcelain}), nil
}

// resolveItem resolves an item selector against the session ledger, which
// also holds items added by custom requirements.
func resolveItem(app *appctx.App, selector string) (string, error) {
	items := app.Tracker.Items()
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return selectors.ResolveItem(names, selector)
}

// resolveItems expands item selectors and glob patterns against the ledger
func resolveItems(app *appctx.App, args []string) ([]string, error) {
	items := app.Tracker.Items()
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return selectors.ExpandItems(names, args)
}

// splitList splits a comma-separated flag value, dropping empty parts.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// needCell formats one requirement cell as done/need, or a checkbox for
// unbounded needs. Empty means no requirement.
func needCell(it *ledger.Item, c domain.Category) string {
	need, ok := it.Needs[c]
	if !ok {
		return ""
	}
	if need.Unbounded {
		if it.Done[c] > 0 {
			return "[x]"
		}
		return "[ ]"
	}
	if need.Count == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", it.Done[c], need.Count)
}

// qualityCell formats the per-tier quality progress of an item.
func qualityCell(it *ledger.Item) string {
	var parts []string
	for _, q := range domain.QualityOrder {
		if n := it.QualityNeeds[q]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d/%d", q, it.QualityDone[q], n))
		}
	}
	return strings.Join(parts, " ")
}
