package tracker

import (
	"github.com/lherron/farmlist/internal/completion"
	"github.com/lherron/farmlist/internal/filter"
	"github.com/lherron/farmlist/internal/ledger"
	"github.com/lherron/farmlist/internal/snapshot"
)

// Row is one rendered checklist line.
type Row struct {
	Item     ledger.Item       `json:"item"`
	Complete bool              `json:"complete"`
	Totals   completion.Totals `json:"totals"`
	// Hint is the catalog note shown with the item name.
	Hint        string   `json:"hint,omitempty"`
	Sources     []string `json:"sources,omitempty"`
	BundleNotes []string `json:"bundleNotes,omitempty"`
}

// DefaultFilter shows every row with every category visible.
func (t *Tracker) DefaultFilter() filter.Filter {
	return filter.Default(t.ledger)
}

// FilterChoices lists the filter values available in the ledger
func (t *Tracker) FilterChoices() filter.Choices {
	return filter.Options(t.ledger)
}

// Rows returns the rows matching f with complete rows last.
func (t *Tracker) Rows(f filter.Filter) []Row {
	var items []ledger.Item
	for _, it := range t.ledger.Items() {
		if f.Match(&it) {
			items = append(items, it)
		}
	}
	completion.Sort(items, f.Visible)

	rows := make([]Row, 0, len(items))
	for i := range items {
		it := &items[i]
		row := Row{
			Item:        *it,
			Complete:    completion.IsComplete(it, f.Visible),
			Totals:      completion.ComputeTotals(it, f.Visible),
			Sources:     t.result.SourceLines(it.Name),
			BundleNotes: t.result.NoteLines(it.Name),
		}
		if n, ok := t.cat.ItemNote(it.Name); ok {
			row.Hint = n.Format(it.Name)
		}
		rows = append(rows, row)
	}
	return rows
}

// Snapshot captures the full tracker state with a deterministic rev.
func (t *Tracker) Snapshot() (*snapshot.Snapshot, error) {
	s := &snapshot.Snapshot{
		Meta:         snapshot.Meta{SchemaVersion: snapshot.SchemaVersion},
		Categories:   t.ledger.Categories(),
		Selection:    t.sel.Applied(),
		Items:        t.ledger.Items(),
		Withheld:     t.result.Withheld,
		UnknownItems: t.result.UnknownItems,
		Notes:        t.notes.All(),
	}
	if t.sel.Dirty() {
		pending := t.sel.Pending()
		s.Pending = &pending
	}
	if err := snapshot.Seal(s); err != nil {
		return nil, err
	}
	return s, nil
}
