// Package ledger holds per-item requirement and progress counters.
package ledger

import (
	"fmt"
	"strings"

	"github.com/lherron/farmlist/internal/aggregate"
	"github.com/lherron/farmlist/internal/domain"
)

// Default click step policy
const (
	DefaultClickThreshold = 20
	DefaultClickLargeStep = 10
)

// Item is one ledger row.
type Item struct {
	Name     string        `json:"name"`
	Season   string        `json:"season,omitempty"`
	Category string        `json:"category,omitempty"`
	Favorite string        `json:"favorite,omitempty"`
	Note     string        `json:"note,omitempty"`
	Water    string        `json:"water,omitempty"`
	Weather  string        `json:"weather,omitempty"`
	Tags     domain.TagSet `json:"tags,omitempty"`

	BaseNeeds map[domain.Category]domain.Need `json:"baseNeeds"`
	Needs     map[domain.Category]domain.Need `json:"needs"`
	Done      map[domain.Category]int         `json:"done"`

	QualityNeeds map[domain.Quality]int          `json:"qualityNeeds,omitempty"`
	QualityDone  map[domain.Quality]int          `json:"qualityDone,omitempty"`
	Quality      []aggregate.QualityRequirement `json:"quality,omitempty"`

	ManuallySatisfied bool `json:"manual,omitempty"`
	// Custom marks items created by a custom requirement rather than the catalog.
	Custom bool `json:"custom,omitempty"`
}

// Clone returns a deep copy
func (it *Item) Clone() Item {
	out := *it
	out.BaseNeeds = cloneMap(it.BaseNeeds)
	out.Needs = cloneMap(it.Needs)
	out.Done = cloneMap(it.Done)
	out.QualityNeeds = cloneMap(it.QualityNeeds)
	out.QualityDone = cloneMap(it.QualityDone)
	out.Quality = append([]aggregate.QualityRequirement(nil), it.Quality...)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// HasQuality reports whether any quality tier is required
func (it *Item) HasQuality() bool {
	for _, n := range it.QualityNeeds {
		if n > 0 {
			return true
		}
	}
	return false
}

// Ledger is the set of items keyed by name, in insertion order.
type Ledger struct {
	categories []domain.Category
	items      []*Item
	index      map[string]int

	threshold int
	largeStep int
}

// New creates an empty ledger with the given categories
func New(categories []domain.Category) *Ledger {
	l := &Ledger{
		index:     make(map[string]int),
		threshold: DefaultClickThreshold,
		largeStep: DefaultClickLargeStep,
	}
	for _, c := range categories {
		if !l.hasCategory(c) {
			l.categories = append(l.categories, c)
		}
	}
	return l
}

// FromRecords creates a ledger with one item per catalog record
func FromRecords(categories []domain.Category, records []domain.ItemRecord) *Ledger {
	l := New(categories)
	for _, rec := range records {
		l.Add(rec)
	}
	return l
}

// SetStepPolicy configures the click step. Values <= 0 keep the defaults.
func (l *Ledger) SetStepPolicy(threshold, largeStep int) {
	if threshold > 0 {
		l.threshold = threshold
	}
	if largeStep > 0 {
		l.largeStep = largeStep
	}
}

// Add inserts an item built from a catalog record. Existing names are ignored.
func (l *Ledger) Add(rec domain.ItemRecord) bool {
	if rec.Name == "" {
		return false
	}
	if _, ok := l.index[rec.Name]; ok {
		return false
	}
	it := &Item{
		Name:      rec.Name,
		Season:    rec.Season,
		Category:  rec.Category,
		Favorite:  rec.Favorite,
		Note:      rec.Note,
		Water:     rec.Water,
		Weather:   rec.Weather,
		Tags:      rec.Tags,
		BaseNeeds: make(map[domain.Category]domain.Need, len(l.categories)),
		Needs:     make(map[domain.Category]domain.Need, len(l.categories)),
		Done:      make(map[domain.Category]int, len(l.categories)),
	}
	for _, c := range l.categories {
		n := rec.Needs[c]
		if n.Count < 0 {
			n.Count = 0
		}
		it.BaseNeeds[c] = n
		it.Needs[c] = n
		it.Done[c] = 0
	}
	l.index[it.Name] = len(l.items)
	l.items = append(l.items, it)
	return true
}

// Categories returns the ledger categories in column order
func (l *Ledger) Categories() []domain.Category {
	return append([]domain.Category(nil), l.categories...)
}

func (l *Ledger) hasCategory(c domain.Category) bool {
	for _, have := range l.categories {
		if have == c {
			return true
		}
	}
	return false
}

// Len returns the number of items
func (l *Ledger) Len() int {
	return len(l.items)
}

// Item returns a copy of the named item
func (l *Ledger) Item(name string) (Item, bool) {
	it, ok := l.get(name)
	if !ok {
		return Item{}, false
	}
	return it.Clone(), true
}

// Items returns copies of all items in insertion order
func (l *Ledger) Items() []Item {
	out := make([]Item, len(l.items))
	for i, it := range l.items {
		out[i] = it.Clone()
	}
	return out
}

func (l *Ledger) get(name string) (*Item, bool) {
	i, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return l.items[i], true
}

func (l *Ledger) mustGet(name string) (*Item, error) {
	it, ok := l.get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownItem, name)
	}
	return it, nil
}

// Apply writes an aggregation result into the ledger. Needs are rebuilt from
// the baseline every time, so applying the same result twice is a no-op.
func (l *Ledger) Apply(res *aggregate.Result) {
	for _, it := range l.items {
		for c, base := range it.BaseNeeds {
			it.Needs[c] = base
		}
		it.Needs[domain.CategoryDonation] = it.BaseNeeds[domain.CategoryDonation].Add(res.DonationNeed[it.Name])
		it.Needs[domain.CategoryQuest] = it.BaseNeeds[domain.CategoryQuest].Add(res.QuestNeed[it.Name])

		it.Quality = append([]aggregate.QualityRequirement(nil), res.Quality[it.Name]...)
		it.QualityNeeds = res.QualityNeeds(it.Name)

		clamp(it)
	}
}

func clamp(it *Item) {
	for c, done := range it.Done {
		need := it.Needs[c]
		limit := need.Count
		if need.Unbounded {
			limit = 1
		}
		switch {
		case done > limit:
			it.Done[c] = limit
		case done < 0:
			it.Done[c] = 0
		}
	}
	for q, done := range it.QualityDone {
		need := it.QualityNeeds[q]
		if need <= 0 {
			delete(it.QualityDone, q)
			continue
		}
		if done > need {
			it.QualityDone[q] = need
		}
	}
}

// StepFor returns the click increment for a need
func (l *Ledger) StepFor(need int) int {
	if need > l.threshold {
		return l.largeStep
	}
	return 1
}

// Click advances one cell. Unbounded cells toggle between 0 and 1. Counted
// cells rise by StepFor(need), capped at the need, and wrap to 0 once satisfied.
func (l *Ledger) Click(name string, c domain.Category) (int, error) {
	it, err := l.mustGet(name)
	if err != nil {
		return 0, err
	}
	if !l.hasCategory(c) {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownCategory, c)
	}
	need := it.Needs[c]
	if need.Unbounded {
		it.Done[c] = 1 - min(it.Done[c], 1)
		return it.Done[c], nil
	}
	if need.Count <= 0 {
		return 0, fmt.Errorf("%w: %s has no %s requirement", domain.ErrNoRequirement, name, c)
	}
	it.Done[c] = advance(it.Done[c], need.Count, l.StepFor(need.Count))
	return it.Done[c], nil
}

// ClickQuality advances the done counter of one quality tier
func (l *Ledger) ClickQuality(name string, q domain.Quality) (int, error) {
	if err := domain.ValidateQuality(string(q)); err != nil {
		return 0, err
	}
	it, err := l.mustGet(name)
	if err != nil {
		return 0, err
	}
	need := it.QualityNeeds[q]
	if need <= 0 {
		return 0, fmt.Errorf("%w: %s has no %s quality requirement", domain.ErrNoRequirement, name, q)
	}
	if it.QualityDone == nil {
		it.QualityDone = make(map[domain.Quality]int)
	}
	it.QualityDone[q] = advance(it.QualityDone[q], need, l.StepFor(need))
	return it.QualityDone[q], nil
}

func advance(done, need, step int) int {
	if done >= need {
		return 0
	}
	return min(done+step, need)
}

// SetDone sets a counted cell directly, clamped to [0, need]
func (l *Ledger) SetDone(name string, c domain.Category, n int) (int, error) {
	it, err := l.mustGet(name)
	if err != nil {
		return 0, err
	}
	if !l.hasCategory(c) {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownCategory, c)
	}
	it.Done[c] = n
	clamp(it)
	return it.Done[c], nil
}

// SetManual sets the manual satisfaction flag
func (l *Ledger) SetManual(name string, on bool) error {
	it, err := l.mustGet(name)
	if err != nil {
		return err
	}
	it.ManuallySatisfied = on
	return nil
}

// ToggleManual flips the manual satisfaction flag and returns the new value
func (l *Ledger) ToggleManual(name string) (bool, error) {
	it, err := l.mustGet(name)
	if err != nil {
		return false, err
	}
	it.ManuallySatisfied = !it.ManuallySatisfied
	return it.ManuallySatisfied, nil
}

// ResetItem clears all progress of one item
func (l *Ledger) ResetItem(name string) error {
	it, err := l.mustGet(name)
	if err != nil {
		return err
	}
	reset(it)
	return nil
}

// ResetAll clears all progress. It refuses to run unless confirmed.
func (l *Ledger) ResetAll(confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	for _, it := range l.items {
		reset(it)
	}
	return nil
}

func reset(it *Item) {
	for c := range it.Done {
		it.Done[c] = 0
	}
	it.QualityDone = nil
	it.ManuallySatisfied = false
}

// DeclareCategory adds a category with a zero baseline on every item.
// Declaring an existing category is a no-op and returns false.
func (l *Ledger) DeclareCategory(name domain.Category) (bool, error) {
	name = domain.Category(strings.TrimSpace(string(name)))
	if err := domain.ValidateCategoryName(string(name)); err != nil {
		return false, err
	}
	if l.hasCategory(name) {
		return false, nil
	}
	l.categories = append(l.categories, name)
	for _, it := range l.items {
		it.BaseNeeds[name] = domain.Counted(0)
		it.Needs[name] = domain.Counted(0)
		it.Done[name] = 0
	}
	return true, nil
}

// AddDemand adds qty to an item's baseline in a category, declaring the
// category and creating the item when needed.
func (l *Ledger) AddDemand(c domain.Category, name string, qty int, note string) error {
	if err := domain.ValidateQuantity(qty); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("item name cannot be empty")
	}
	if _, err := l.DeclareCategory(c); err != nil {
		return err
	}
	c = domain.Category(strings.TrimSpace(string(c)))

	it, ok := l.get(name)
	if !ok {
		l.Add(domain.ItemRecord{Name: name})
		it, _ = l.get(name)
		it.Custom = true
	}
	it.BaseNeeds[c] = it.BaseNeeds[c].Add(qty)
	it.Needs[c] = it.Needs[c].Add(qty)
	if note = strings.TrimSpace(note); note != "" {
		if it.Note == "" {
			it.Note = note
		} else if !strings.Contains(it.Note, note) {
			it.Note += "; " + note
		}
	}
	return nil
}
