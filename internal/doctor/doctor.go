// Package doctor runs consistency checks over catalog data.
package doctor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
)

// Check statuses
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name    string   `json:"name"`
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Report collects every check result.
type Report struct {
	Checks        []CheckResult `json:"checks"`
	Warnings      int           `json:"warnings"`
	Errors        int           `json:"errors"`
	OverallStatus string        `json:"overall_status"`
}

// Add appends results and updates the counters
func (r *Report) Add(results ...CheckResult) {
	for _, c := range results {
		r.Checks = append(r.Checks, c)
		switch c.Status {
		case StatusWarning:
			r.Warnings++
		case StatusError:
			r.Errors++
		}
	}
	switch {
	case r.Errors > 0:
		r.OverallStatus = StatusError
	case r.Warnings > 0:
		r.OverallStatus = StatusWarning
	default:
		r.OverallStatus = StatusOK
	}
}

// maxSuggestions caps the "did you mean" list per unknown name.
const maxSuggestions = 3

// Check runs every catalog check.
func Check(cat *catalog.Catalog) *Report {
	r := &Report{OverallStatus: StatusOK}
	defs := cat.Definitions()
	r.Add(checkUnknownItems(cat, defs))
	r.Add(checkDuplicateIDs(defs))
	r.Add(checkDuplicateSources(defs))
	r.Add(checkRemixBases(cat, defs))
	r.Add(checkSlots(defs))
	r.Add(checkEmptyBundles(defs))
	r.Add(checkQualities(defs))
	r.Add(checkItemNotes(cat, defs))
	return r
}

// demandSet is any bundle-like definition with entries.
type demandSet struct {
	kind    string
	id      string
	entries []domain.Entry
}

func demandSets(defs domain.Definitions) []demandSet {
	var out []demandSet
	for _, g := range defs.Donations {
		for _, b := range g.Bundles {
			out = append(out, demandSet{kind: "bundle", id: b.ID, entries: b.Entries})
		}
	}
	for _, g := range defs.Remixes {
		for _, b := range g.Bundles {
			out = append(out, demandSet{kind: "remix", id: b.ID, entries: b.Entries})
		}
	}
	for _, g := range defs.Quests {
		for _, q := range g.Quests {
			out = append(out, demandSet{kind: "quest", id: q.ID, entries: q.Entries})
		}
	}
	return out
}

func checkUnknownItems(cat *catalog.Catalog, defs domain.Definitions) CheckResult {
	names := cat.ItemNames()
	var details []string
	for _, set := range demandSets(defs) {
		for _, e := range set.entries {
			if cat.HasItem(e.Item) {
				continue
			}
			line := fmt.Sprintf("%s %s: %s", set.kind, set.id, e.Item)
			if s := Suggest(e.Item, names); len(s) > 0 {
				line += fmt.Sprintf(" (did you mean %s?)", strings.Join(s, ", "))
			}
			details = append(details, line)
		}
	}
	if len(details) == 0 {
		return CheckResult{Name: "unknown_item", Status: StatusOK, Message: "Every referenced item is in the item table"}
	}
	return CheckResult{
		Name:    "unknown_item",
		Status:  StatusWarning,
		Message: fmt.Sprintf("%d references to items missing from the item table", len(details)),
		Details: details,
	}
}

// Suggest returns the closest names to name by edit distance, best first.
func Suggest(name string, names []string) []string {
	type cand struct {
		name string
		dist int
	}
	lower := strings.ToLower(name)
	limit := distanceLimit(len(lower))
	var cands []cand
	for _, n := range names {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(n))
		if d <= limit {
			cands = append(cands, cand{n, d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].name < cands[j].name
	})
	var out []string
	for i := 0; i < len(cands) && i < maxSuggestions; i++ {
		out = append(out, cands[i].name)
	}
	return out
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func checkDuplicateIDs(defs domain.Definitions) CheckResult {
	seen := make(map[string]string)
	var details []string
	note := func(kind, id string) {
		if id == "" {
			details = append(details, fmt.Sprintf("%s with empty id", kind))
			return
		}
		key := kind + ":" + id
		if _, dup := seen[key]; dup {
			details = append(details, fmt.Sprintf("%s %s defined more than once; the first definition wins", kind, id))
			return
		}
		seen[key] = id
	}
	for _, set := range demandSets(defs) {
		note(set.kind, set.id)
	}
	if len(details) == 0 {
		return CheckResult{Name: "duplicate_id", Status: StatusOK, Message: "Bundle, remix and quest ids are unique"}
	}
	return CheckResult{Name: "duplicate_id", Status: StatusWarning, Message: "Duplicate or empty ids", Details: details}
}

// checkDuplicateSources flags identical entries shared by two bundles of one
// group. Substitution removes base lines by matching these tuples, so such a
// pair cannot be told apart.
func checkDuplicateSources(defs domain.Definitions) CheckResult {
	var details []string
	for _, g := range defs.Donations {
		owners := make(map[domain.Entry][]string)
		var order []domain.Entry
		for _, b := range g.Bundles {
			for _, e := range b.Entries {
				ids := owners[e]
				if len(ids) > 0 && ids[len(ids)-1] == b.ID {
					continue
				}
				if len(ids) == 0 {
					order = append(order, e)
				}
				owners[e] = append(ids, b.ID)
			}
		}
		for _, e := range order {
			if ids := owners[e]; len(ids) > 1 {
				details = append(details, fmt.Sprintf("group %s: %s ×%d in %s", g.ID, e.Item, qty(e), strings.Join(ids, ", ")))
			}
		}
	}
	if len(details) == 0 {
		return CheckResult{Name: "duplicate_source", Status: StatusOK, Message: "No ambiguous entries within a group"}
	}
	return CheckResult{Name: "duplicate_source", Status: StatusWarning, Message: "Identical entries shared by bundles of one group", Details: details}
}

func qty(e domain.Entry) int {
	if e.IsQuality() {
		return e.QualityCount
	}
	return e.Count
}

func checkRemixBases(cat *catalog.Catalog, defs domain.Definitions) CheckResult {
	var details []string
	for _, g := range defs.Remixes {
		for _, b := range g.Bundles {
			if len(b.BaseBundleIDs) == 0 {
				details = append(details, fmt.Sprintf("remix %s has no base bundle", b.ID))
			}
			for _, base := range b.BaseBundleIDs {
				if !cat.HasBundle(base) {
					details = append(details, fmt.Sprintf("remix %s names unknown base bundle %s", b.ID, base))
				}
			}
		}
	}
	if len(details) == 0 {
		return CheckResult{Name: "dangling_base", Status: StatusOK, Message: "Every remix bundle replaces a known base bundle"}
	}
	return CheckResult{Name: "dangling_base", Status: StatusError, Message: "Remix bundles with dangling base bundles", Details: details}
}

func checkSlots(defs domain.Definitions) CheckResult {
	var details []string
	for _, g := range defs.Remixes {
		for _, b := range g.Bundles {
			if b.NeedSlots < 0 || b.NeedSlots > len(b.Entries) {
				details = append(details, fmt.Sprintf("remix %s needs %d of %d items", b.ID, b.NeedSlots, len(b.Entries)))
			}
		}
	}
	if len(details) == 0 {
		return CheckResult{Name: "bad_slots", Status: StatusOK, Message: "Slot counts fit their candidate lists"}
	}
	return CheckResult{Name: "bad_slots", Status: StatusWarning, Message: "Slot counts outside the candidate list", Details: details}
}

func checkEmptyBundles(defs domain.Definitions) CheckResult {
	var details []string
	for _, set := range demandSets(defs) {
		if len(set.entries) == 0 {
			details = append(details, fmt.Sprintf("%s %s has no items", set.kind, set.id))
		}
	}
	if len(details) == 0 {
		return CheckResult{Name: "empty_bundle", Status: StatusOK, Message: "Every bundle and quest lists items"}
	}
	return CheckResult{Name: "empty_bundle", Status: StatusWarning, Message: "Bundles or quests without items", Details: details}
}

func checkQualities(defs domain.Definitions) CheckResult {
	var details []string
	for _, set := range demandSets(defs) {
		for _, e := range set.entries {
			if !e.IsQuality() {
				continue
			}
			if err := domain.ValidateQuality(string(e.Quality)); err != nil {
				details = append(details, fmt.Sprintf("%s %s: %s has quality %q", set.kind, set.id, e.Item, e.Quality))
			}
		}
	}
	if len(details) == 0 {
		return CheckResult{Name: "bad_quality", Status: StatusOK, Message: "Quality tiers are valid"}
	}
	return CheckResult{Name: "bad_quality", Status: StatusError, Message: "Unknown quality tiers", Details: details}
}

func checkItemNotes(cat *catalog.Catalog, defs domain.Definitions) CheckResult {
	var details []string
	for name := range defs.ItemNotes {
		if !cat.HasItem(name) {
			details = append(details, fmt.Sprintf("note for unknown item %s", name))
		}
	}
	sort.Strings(details)
	if len(details) == 0 {
		return CheckResult{Name: "orphan_note", Status: StatusOK, Message: "Item notes refer to known items"}
	}
	return CheckResult{Name: "orphan_note", Status: StatusWarning, Message: "Item notes for unknown items", Details: details}
}
