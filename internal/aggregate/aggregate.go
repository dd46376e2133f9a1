// Package aggregate turns a catalog and an applied selection into per-item
// donation, quality and quest requirements with source attribution.
package aggregate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/selection"
)

// Catalog is what Compute reads from the catalog.
type Catalog interface {
	selection.Catalog
	HasItem(name string) bool
	Bundle(id string) (catalog.BundleRef, bool)
	DonationGroups() []domain.BundleGroup
	QuestGroups() []domain.QuestGroup
}

// Options tunes the aggregation.
type Options struct {
	// SelectedBundlesOnly limits the base pass to the selected bundles instead of every base bundle.
	SelectedBundlesOnly bool
}

// Source attributes part of a requirement to a bundle or quest.
type Source struct {
	Group string `json:"group"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NoteRef is an entry note together with the bundle or quest it came from.
type NoteRef struct {
	Group string `json:"group"`
	Name  string `json:"name"`
	Text  string `json:"text"`
}

// QualityRequirement is one quality-tier demand line.
type QualityRequirement struct {
	Quality domain.Quality `json:"quality"`
	Count   int            `json:"count"`
	Group   string         `json:"group"`
	Source  string         `json:"source"`
}

// Withheld records a substitution rule that did not take effect.
type Withheld struct {
	BaseBundleID  string `json:"base"`
	ReplacementID string `json:"replacement,omitempty"`
	Reason        string `json:"reason"`
}

// Result is the output of one aggregation pass.
type Result struct {
	DonationNeed    map[string]int                  `json:"donationNeed"`
	QuestNeed       map[string]int                  `json:"questNeed"`
	Quality         map[string][]QualityRequirement `json:"quality"`
	DonationSources map[string][]Source             `json:"donationSources"`
	QuestSources    map[string][]Source             `json:"questSources"`
	DonationNotes   map[string][]NoteRef            `json:"donationNotes"`
	QuestNotes      map[string][]NoteRef            `json:"questNotes"`
	Withheld        []Withheld                      `json:"withheld,omitempty"`
	UnknownItems    []string                        `json:"unknownItems,omitempty"`
}

func newResult() *Result {
	return &Result{
		DonationNeed:    make(map[string]int),
		QuestNeed:       make(map[string]int),
		Quality:         make(map[string][]QualityRequirement),
		DonationSources: make(map[string][]Source),
		QuestSources:    make(map[string][]Source),
		DonationNotes:   make(map[string][]NoteRef),
		QuestNotes:      make(map[string][]NoteRef),
	}
}

// Compute runs a full aggregation. It never mutates its inputs and never
// fails: rules that cannot be applied are reported in Result.Withheld.
func Compute(cat Catalog, sel selection.State, opts Options) *Result {
	res := newResult()
	referenced := make(map[string]bool)

	for _, g := range cat.DonationGroups() {
		for _, b := range g.Bundles {
			if opts.SelectedBundlesOnly && !sel.Bundles.Has(b.ID) {
				continue
			}
			res.addDonation(g.Name, b.Name, b.Entries, b.Notes, referenced)
		}
	}

	res.substitute(cat, sel, opts, referenced)

	for _, g := range cat.QuestGroups() {
		for _, q := range g.Quests {
			if !sel.Quests.Has(q.ID) {
				continue
			}
			res.addQuest(g.Name, q, referenced)
		}
	}

	for name := range referenced {
		if !cat.HasItem(name) {
			res.UnknownItems = append(res.UnknownItems, name)
		}
	}
	sort.Strings(res.UnknownItems)

	return res
}

func (r *Result) substitute(cat Catalog, sel selection.State, opts Options, referenced map[string]bool) {
	seenBase := make(map[string]bool)
	usedRemix := make(map[string]string)

	for _, rule := range sel.Rules {
		if !rule.Active() {
			continue
		}
		withhold := func(reason string) {
			r.Withheld = append(r.Withheld, Withheld{
				BaseBundleID:  rule.BaseBundleID,
				ReplacementID: rule.ReplacementID,
				Reason:        reason,
			})
		}

		if seenBase[rule.BaseBundleID] {
			withhold("duplicate rule for base bundle")
			continue
		}
		seenBase[rule.BaseBundleID] = true

		remix, err := selection.Resolve(cat, rule)
		if err != nil {
			withhold(err.Error())
			continue
		}
		if prev, ok := usedRemix[remix.Bundle.ID]; ok {
			withhold(fmt.Sprintf("%s already replaces %s", remix.Bundle.ID, prev))
			continue
		}
		if opts.SelectedBundlesOnly && !sel.Bundles.Has(rule.BaseBundleID) {
			withhold("base bundle is not selected")
			continue
		}

		entries, notes, err := selection.Contribution(remix.Bundle, rule.Picked)
		if err != nil {
			if errors.Is(err, selection.ErrNoPicks) {
				withhold(fmt.Sprintf("pick %d of %d items", remix.Bundle.NeedSlots, len(remix.Bundle.Entries)))
			} else {
				withhold(err.Error())
			}
			continue
		}
		usedRemix[remix.Bundle.ID] = rule.BaseBundleID

		// Resolve succeeded, so the base bundle exists.
		base, _ := cat.Bundle(rule.BaseBundleID)
		r.removeDonation(base.GroupName, base.Bundle.Name, base.Bundle.Entries, base.Bundle.Notes)
		r.addDonation(remix.GroupName, remix.Bundle.Name, entries, notes, referenced)
	}
}

func qualityCount(e domain.Entry) int {
	if e.QualityCount > 0 {
		return e.QualityCount
	}
	return e.Count
}

func (r *Result) addDonation(group, name string, entries []domain.Entry, notes []domain.EntryNote, referenced map[string]bool) {
	for _, e := range entries {
		if e.Item == "" {
			continue
		}
		referenced[e.Item] = true
		if e.IsQuality() {
			if n := qualityCount(e); n > 0 {
				r.Quality[e.Item] = append(r.Quality[e.Item], QualityRequirement{Quality: e.Quality, Count: n, Group: group, Source: name})
			}
			continue
		}
		if e.Count <= 0 {
			continue
		}
		r.DonationNeed[e.Item] += e.Count
		r.DonationSources[e.Item] = append(r.DonationSources[e.Item], Source{Group: group, Name: name, Count: e.Count})
	}
	for _, n := range notes {
		r.DonationNotes[n.Item] = append(r.DonationNotes[n.Item], NoteRef{Group: group, Name: name, Text: n.Text})
	}
}

// removeDonation undoes a bundle's contribution line by line. Each entry
// removes at most one matching line, and the need only drops when one was found.
func (r *Result) removeDonation(group, name string, entries []domain.Entry, notes []domain.EntryNote) {
	for _, e := range entries {
		if e.IsQuality() {
			want := QualityRequirement{Quality: e.Quality, Count: qualityCount(e), Group: group, Source: name}
			lines := r.Quality[e.Item]
			for i, q := range lines {
				if q == want {
					r.Quality[e.Item] = append(lines[:i:i], lines[i+1:]...)
					break
				}
			}
			if len(r.Quality[e.Item]) == 0 {
				delete(r.Quality, e.Item)
			}
			continue
		}
		if e.Count <= 0 {
			continue
		}
		want := Source{Group: group, Name: name, Count: e.Count}
		lines := r.DonationSources[e.Item]
		for i, s := range lines {
			if s != want {
				continue
			}
			r.DonationSources[e.Item] = append(lines[:i:i], lines[i+1:]...)
			r.DonationNeed[e.Item] -= e.Count
			break
		}
		if len(r.DonationSources[e.Item]) == 0 {
			delete(r.DonationSources, e.Item)
		}
		if r.DonationNeed[e.Item] <= 0 {
			delete(r.DonationNeed, e.Item)
		}
	}
	for _, n := range notes {
		want := NoteRef{Group: group, Name: name, Text: n.Text}
		lines := r.DonationNotes[n.Item]
		for i, l := range lines {
			if l == want {
				r.DonationNotes[n.Item] = append(lines[:i:i], lines[i+1:]...)
				break
			}
		}
		if len(r.DonationNotes[n.Item]) == 0 {
			delete(r.DonationNotes, n.Item)
		}
	}
}

func (r *Result) addQuest(group string, q domain.Quest, referenced map[string]bool) {
	for _, e := range q.Entries {
		if e.Item == "" {
			continue
		}
		referenced[e.Item] = true
		n := e.Count
		if e.IsQuality() {
			n = qualityCount(e)
		}
		if n <= 0 {
			continue
		}
		r.QuestNeed[e.Item] += n
		r.QuestSources[e.Item] = append(r.QuestSources[e.Item], Source{Group: group, Name: q.Name, Count: n})
	}
	for _, n := range q.Notes {
		r.QuestNotes[n.Item] = append(r.QuestNotes[n.Item], NoteRef{Group: group, Name: q.Name, Text: n.Text})
	}
}

// Equal reports whether two results are identical
func (r *Result) Equal(other *Result) bool {
	return reflect.DeepEqual(r, other)
}

// QualityNeeds sums an item's quality requirements per tier
func (r *Result) QualityNeeds(item string) map[domain.Quality]int {
	lines := r.Quality[item]
	if len(lines) == 0 {
		return nil
	}
	out := make(map[domain.Quality]int)
	for _, q := range lines {
		out[q.Quality] += q.Count
	}
	return out
}

// SourceLines formats where an item's requirements come from, donation lines first.
func (r *Result) SourceLines(item string) []string {
	var lines []string
	for _, s := range r.DonationSources[item] {
		lines = append(lines, fmt.Sprintf("%s / %s ×%d", s.Group, s.Name, s.Count))
	}
	for _, q := range r.Quality[item] {
		lines = append(lines, fmt.Sprintf("%s / %s ×%d (%s)", q.Group, q.Source, q.Count, q.Quality))
	}
	for _, s := range r.QuestSources[item] {
		lines = append(lines, fmt.Sprintf("%s / %s ×%d", s.Group, s.Name, s.Count))
	}
	return lines
}

// NoteLines formats the bundle and quest notes attached to an item
func (r *Result) NoteLines(item string) []string {
	var lines []string
	for _, list := range [][]NoteRef{r.DonationNotes[item], r.QuestNotes[item]} {
		for _, n := range list {
			lines = append(lines, fmt.Sprintf("%s / %s: %s", n.Group, n.Name, n.Text))
		}
	}
	return lines
}

// Items returns every item name with a requirement, sorted
func (r *Result) Items() []string {
	seen := make(map[string]bool)
	for _, m := range []map[string]int{r.DonationNeed, r.QuestNeed} {
		for name := range m {
			seen[name] = true
		}
	}
	for name := range r.Quality {
		seen[name] = true
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
