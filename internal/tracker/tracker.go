// Package tracker owns one checklist session: the selection, the ledger and
// the latest aggregation result. Every state transition that can change
// requirements runs a full recompute.
//
// A Tracker is not safe for concurrent use; callers serialize access.
package tracker

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/lherron/farmlist/internal/aggregate"
	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/ledger"
	"github.com/lherron/farmlist/internal/notes"
	"github.com/lherron/farmlist/internal/selection"
	"github.com/pmezard/go-difflib/difflib"
)

// Options configures a tracker.
type Options struct {
	Aggregate      aggregate.Options
	ClickThreshold int
	ClickLargeStep int
	Logger         *log.Logger
	Debug          bool
}

// Tracker is the explicit application state.
type Tracker struct {
	cat    *catalog.Catalog
	opts   Options
	sel    *selection.Manager
	ledger *ledger.Ledger
	result *aggregate.Result
	notes  notes.List
	log    *log.Logger
}

// New loads the ledger from the catalog, applies the default selection and
// runs the first aggregation.
func New(cat *catalog.Catalog, opts Options) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	t := &Tracker{
		cat:    cat,
		opts:   opts,
		ledger: ledger.FromRecords(cat.Categories(), cat.Items()),
		log:    logger,
	}
	t.ledger.SetStepPolicy(opts.ClickThreshold, opts.ClickLargeStep)
	t.sel = selection.NewManager(cat)
	t.Recompute()
	return t
}

func (t *Tracker) debugf(format string, args ...interface{}) {
	if t.opts.Debug {
		t.log.Printf(format, args...)
	}
}

// Catalog returns the catalog the tracker was built from
func (t *Tracker) Catalog() *catalog.Catalog {
	return t.cat
}

// Selection exposes the selection manager for staging edits
func (t *Tracker) Selection() *selection.Manager {
	return t.sel
}

// Result returns the latest aggregation result
func (t *Tracker) Result() *aggregate.Result {
	return t.result
}

// Categories returns the ledger categories in column order
func (t *Tracker) Categories() []domain.Category {
	return t.ledger.Categories()
}

// Item returns a copy of a ledger item
func (t *Tracker) Item(name string) (ledger.Item, error) {
	it, ok := t.ledger.Item(name)
	if !ok {
		return ledger.Item{}, fmt.Errorf("%w: %s", domain.ErrUnknownItem, name)
	}
	return it, nil
}

// Items returns copies of all ledger items in catalog order
func (t *Tracker) Items() []ledger.Item {
	return t.ledger.Items()
}

// Recompute runs a full aggregation over the applied selection and writes
// it into the ledger.
func (t *Tracker) Recompute() {
	res := aggregate.Compute(t.cat, t.sel.Applied(), t.opts.Aggregate)
	t.ledger.Apply(res)
	t.result = res
	t.debugf("recompute: %d donation items, %d quest items, %d withheld rules",
		len(res.DonationNeed), len(res.QuestNeed), len(res.Withheld))
	for _, w := range res.Withheld {
		t.debugf("withheld rule %s -> %s: %s", w.BaseBundleID, w.ReplacementID, w.Reason)
	}
}

func (t *Tracker) recomputeIf(changed bool, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	if changed {
		t.Recompute()
	}
	return changed, nil
}

// ToggleBundle selects or deselects a base bundle
func (t *Tracker) ToggleBundle(id string, on bool) (bool, error) {
	return t.recomputeIf(t.sel.ToggleBundle(id, on))
}

// SelectBundleGroup selects every bundle of a group
func (t *Tracker) SelectBundleGroup(groupID string) (bool, error) {
	return t.recomputeIf(t.sel.SelectAllBundles(groupID))
}

// ClearBundleGroup deselects every bundle of a group
func (t *Tracker) ClearBundleGroup(groupID string) (bool, error) {
	return t.recomputeIf(t.sel.ClearBundles(groupID))
}

// ResetBundles restores the default bundle selection
func (t *Tracker) ResetBundles() bool {
	changed, _ := t.recomputeIf(t.sel.ResetBundles(), nil)
	return changed
}

// CommitSelection applies staged quest, rule and custom edits. Custom rows
// are added to the ledger only the first time they are committed.
func (t *Tracker) CommitSelection() (selection.CommitResult, error) {
	res := t.sel.Commit()
	if !res.Changed {
		return res, nil
	}
	for _, c := range res.NewCustom {
		if err := t.ledger.AddDemand(c.Category, c.Item, c.Quantity, c.Note); err != nil {
			t.Recompute()
			return res, fmt.Errorf("failed to apply custom requirement for %s: %w", c.Item, err)
		}
		t.debugf("custom requirement: %s %s x%d", c.Category, c.Item, c.Quantity)
	}
	t.Recompute()
	return res, nil
}

// DiscardSelection drops staged edits
func (t *Tracker) DiscardSelection() {
	t.sel.Discard()
}

// DeclareCategory adds a custom requirement category
func (t *Tracker) DeclareCategory(name domain.Category) (bool, error) {
	return t.recomputeIf(t.ledger.DeclareCategory(name))
}

// Click advances one requirement cell of an item
func (t *Tracker) Click(name string, c domain.Category) (int, error) {
	return t.ledger.Click(name, c)
}

// ClickQuality advances one quality tier of an item
func (t *Tracker) ClickQuality(name string, q domain.Quality) (int, error) {
	return t.ledger.ClickQuality(name, q)
}

// SetDone sets one requirement cell directly
func (t *Tracker) SetDone(name string, c domain.Category, n int) (int, error) {
	return t.ledger.SetDone(name, c, n)
}

// ToggleManual flips an item's manual satisfaction flag
func (t *Tracker) ToggleManual(name string) (bool, error) {
	return t.ledger.ToggleManual(name)
}

// ResetItem clears one item's progress
func (t *Tracker) ResetItem(name string) error {
	return t.ledger.ResetItem(name)
}

// ResetAll clears all progress and unchecks every note. It needs confirmation.
func (t *Tracker) ResetAll(confirmed bool) error {
	if err := t.ledger.ResetAll(confirmed); err != nil {
		return err
	}
	t.notes.ClearDone()
	t.log.Printf("all progress reset")
	return nil
}

// AddNote appends a checklist note
func (t *Tracker) AddNote(text string) (notes.Note, error) {
	return t.notes.Add(text)
}

// ToggleNote checks or unchecks a note
func (t *Tracker) ToggleNote(ref string) (notes.Note, error) {
	return t.notes.Toggle(ref)
}

// RemoveNote deletes a note
func (t *Tracker) RemoveNote(ref string) error {
	return t.notes.Remove(ref)
}

// Notes returns the notes, open ones first
func (t *Tracker) Notes() []notes.Note {
	return t.notes.All()
}

// Preview computes the result the pending selection would produce without
// touching the ledger.
func (t *Tracker) Preview() *aggregate.Result {
	return aggregate.Compute(t.cat, t.sel.Pending(), t.opts.Aggregate)
}

// Diff renders a unified diff of the requirement table, applied vs pending,
// with one line of context. It returns an empty string when staging changes
// nothing.
func (t *Tracker) Diff() (string, error) {
	return t.DiffContext(1)
}

// DiffContext is Diff with n lines of context.
func (t *Tracker) DiffContext(n int) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(NeedTable(t.result)),
		B:        difflib.SplitLines(NeedTable(t.Preview())),
		FromFile: "applied",
		ToFile:   "pending",
		Context:  n,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// NeedTable renders the dynamic requirements of a result, one item per line.
func NeedTable(res *aggregate.Result) string {
	var b strings.Builder
	for _, name := range res.Items() {
		fmt.Fprintf(&b, "%s: donation=%d quest=%d", name, res.DonationNeed[name], res.QuestNeed[name])
		if q := res.QualityNeeds(name); len(q) > 0 {
			tiers := make([]string, 0, len(q))
			for tier, n := range q {
				tiers = append(tiers, fmt.Sprintf("%s:%d", tier, n))
			}
			sort.Strings(tiers)
			fmt.Fprintf(&b, " quality=%s", strings.Join(tiers, ","))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
