package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Format represents an output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTSV   Format = "tsv"
)

// ParseFormat validates a format name. An empty name means table.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML, FormatTSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json, yaml or tsv)", name)
	}
}

// Options for rendering
type Options struct {
	Format    Format
	Porcelain bool
}

// Renderer handles output rendering
type Renderer struct {
	writer io.Writer
	opts   Options

	header lipgloss.Style
	faint  lipgloss.Style
	styled bool
}

// NewRenderer creates a new renderer. Table styling is enabled only when
// writer is a terminal and porcelain mode is off.
func NewRenderer(writer io.Writer, opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	lr := lipgloss.NewRenderer(writer)
	return &Renderer{
		writer: writer,
		opts:   opts,
		header: lr.NewStyle().Bold(true),
		faint:  lr.NewStyle().Faint(true),
		styled: !opts.Porcelain && isTerminal(writer),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Format returns the output format in effect
func (r *Renderer) Format() Format {
	return r.opts.Format
}

// Render writes data as JSON or YAML, or the table as a table or TSV,
// depending on the configured format.
func (r *Renderer) Render(data interface{}, table Table) error {
	switch r.opts.Format {
	case FormatJSON:
		return r.RenderJSON(data)
	case FormatYAML:
		return r.RenderYAML(data)
	case FormatTSV:
		return r.RenderTSV(table.Headers, table.Rows)
	default:
		return r.RenderTable(table)
	}
}

// Table is a header row plus body rows. Dim, when set, has one entry per row.
type Table struct {
	Headers []string
	Rows    [][]string
	Dim     []bool
}

// AddRow appends a row
func (t *Table) AddRow(dim bool, cells ...string) {
	t.Rows = append(t.Rows, cells)
	t.Dim = append(t.Dim, dim)
}

// RenderJSON renders data as JSON
func (r *Renderer) RenderJSON(data interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetEscapeHTML(false)
	if !r.opts.Porcelain {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// RenderYAML renders data as YAML
func (r *Renderer) RenderYAML(data interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(data)
}

// RenderTSV renders data as tab-separated values
func (r *Renderer) RenderTSV(headers []string, rows [][]string) error {
	if _, err := fmt.Fprintln(r.writer, strings.Join(headers, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(r.writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return nil
}

// RenderList renders a simple list of strings, one per line
func (r *Renderer) RenderList(items []string) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(r.writer, item); err != nil {
			return err
		}
	}
	return nil
}

// RenderTable renders data as a formatted table
func (r *Renderer) RenderTable(t Table) error {
	if len(t.Rows) == 0 {
		return nil
	}

	if r.opts.Porcelain {
		return r.RenderTSV(t.Headers, t.Rows)
	}

	// Column widths use display cells so wide runes line up
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				if w := lipgloss.Width(cell); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	r.renderTableRow(t.Headers, widths, r.header)
	r.renderTableSeparator(widths)
	for i, row := range t.Rows {
		style := lipgloss.NewStyle()
		if i < len(t.Dim) && t.Dim[i] {
			style = r.faint
		}
		r.renderTableRow(row, widths, style)
	}

	return nil
}

func (r *Renderer) renderTableRow(cells []string, widths []int, style lipgloss.Style) {
	var b strings.Builder
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
		}
	}
	line := b.String()
	if r.styled {
		line = style.Render(line)
	}
	fmt.Fprintln(r.writer, line)
}

func (r *Renderer) renderTableSeparator(widths []int) {
	for i, width := range widths {
		fmt.Fprint(r.writer, strings.Repeat("-", width))
		if i < len(widths)-1 {
			fmt.Fprint(r.writer, "  ")
		}
	}
	fmt.Fprintln(r.writer)
}
