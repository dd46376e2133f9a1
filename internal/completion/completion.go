// Package completion decides whether a ledger item is finished under the
// currently visible requirement categories.
package completion

import (
	"sort"

	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/ledger"
)

// Totals is the summed progress of an item over the visible categories.
// Unbounded categories are tracked apart from the counted sums.
type Totals struct {
	Need          int  `json:"need"`
	Done          int  `json:"done"`
	HasUnbounded  bool `json:"hasUnbounded,omitempty"`
	UnboundedDone bool `json:"unboundedDone,omitempty"`
}

func visibleCategories(it *ledger.Item, visible []domain.Category) []domain.Category {
	if len(visible) > 0 {
		return visible
	}
	out := make([]domain.Category, 0, len(it.Needs))
	for c := range it.Needs {
		out = append(out, c)
	}
	return out
}

func includes(cats []domain.Category, c domain.Category) bool {
	for _, have := range cats {
		if have == c {
			return true
		}
	}
	return false
}

// ComputeTotals sums need and done over the visible categories. An empty
// visible list means every category of the item.
func ComputeTotals(it *ledger.Item, visible []domain.Category) Totals {
	t := Totals{UnboundedDone: true}
	for _, c := range visibleCategories(it, visible) {
		need, ok := it.Needs[c]
		if !ok {
			continue
		}
		if need.Unbounded {
			t.HasUnbounded = true
			if it.Done[c] < 1 {
				t.UnboundedDone = false
			}
			continue
		}
		t.Need += need.Count
		t.Done += min(it.Done[c], need.Count)
	}
	if !t.HasUnbounded {
		t.UnboundedDone = false
	}
	return t
}

// QualityDone reports whether every required quality tier is satisfied
func QualityDone(it *ledger.Item) bool {
	for q, need := range it.QualityNeeds {
		if need > 0 && it.QualityDone[q] < need {
			return false
		}
	}
	return true
}

// Countable reports whether the item has anything to track under the visible categories.
func Countable(it *ledger.Item, visible []domain.Category) bool {
	t := ComputeTotals(it, visible)
	if t.Need > 0 || t.HasUnbounded {
		return true
	}
	return qualityVisible(it, visible)
}

func qualityVisible(it *ledger.Item, visible []domain.Category) bool {
	if !it.HasQuality() {
		return false
	}
	return len(visible) == 0 || includes(visible, domain.CategoryDonation)
}

// IsComplete reports whether the item is finished. Items with nothing to
// track are complete only when manually marked so.
func IsComplete(it *ledger.Item, visible []domain.Category) bool {
	t := ComputeTotals(it, visible)
	quality := qualityVisible(it, visible)

	if t.Need == 0 && !t.HasUnbounded && !quality {
		return it.ManuallySatisfied
	}
	if t.Done < t.Need {
		return false
	}
	if t.HasUnbounded && !t.UnboundedDone {
		return false
	}
	if quality && !QualityDone(it) {
		return false
	}
	return true
}

// Sort moves complete items after incomplete ones, keeping relative order otherwise.
func Sort(items []ledger.Item, visible []domain.Category) {
	done := make(map[string]bool, len(items))
	for i := range items {
		done[items[i].Name] = IsComplete(&items[i], visible)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return !done[items[i].Name] && done[items[j].Name]
	})
}
