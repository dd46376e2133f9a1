package domain

import (
	"fmt"
	"strings"
)

// Category represents a requirement category (a column in the checklist)
type Category string

const (
	CategoryDonation    Category = "donation"
	CategoryQuest       Category = "quest"
	CategoryRecipe      Category = "recipe"
	CategoryCrafting    Category = "crafting"
	CategoryShipping    Category = "shipping"
	CategoryPolyculture Category = "polyculture"
	CategoryTotem       Category = "totem"
)

// DefaultCategories lists the built-in categories in column order.
var DefaultCategories = []Category{
	CategoryDonation,
	CategoryQuest,
	CategoryRecipe,
	CategoryCrafting,
	CategoryShipping,
	CategoryPolyculture,
	CategoryTotem,
}

// IsDynamic reports whether the category is derived from bundle/quest selections
func (c Category) IsDynamic() bool {
	return c == CategoryDonation || c == CategoryQuest
}

// Quality represents an item quality tier
type Quality string

const (
	QualitySilver  Quality = "silver"
	QualityGold    Quality = "gold"
	QualityIridium Quality = "iridium"
)

// QualityOrder is the display order of quality tiers.
var QualityOrder = []Quality{QualitySilver, QualityGold, QualityIridium}

// Need is a requirement value. Unbounded means "needed but not countable".
type Need struct {
	Count     int  `json:"count"`
	Unbounded bool `json:"unbounded,omitempty"`
}

// UnboundedMarker is the catalog sentinel for an unbounded requirement.
const UnboundedMarker = "x"

// Counted returns a countable need.
func Counted(n int) Need {
	return Need{Count: n}
}

// UnboundedNeed returns the unbounded sentinel need.
func UnboundedNeed() Need {
	return Need{Unbounded: true}
}

// Add returns the need increased by n. Unbounded needs stay unbounded.
func (n Need) Add(delta int) Need {
	if n.Unbounded {
		return n
	}
	return Need{Count: n.Count + delta}
}

func (n Need) String() string {
	if n.Unbounded {
		return UnboundedMarker
	}
	return fmt.Sprintf("%d", n.Count)
}

// Entry is a single (item, quantity) demand line of a bundle or quest.
// Quality entries carry their quantity in QualityCount and leave Count at 0.
type Entry struct {
	Item         string  `json:"name" yaml:"name"`
	Count        int     `json:"count,omitempty" yaml:"count,omitempty"`
	Quality      Quality `json:"quality,omitempty" yaml:"quality,omitempty"`
	QualityCount int     `json:"qCount,omitempty" yaml:"qCount,omitempty"`
}

// IsQuality reports whether the entry is a quality-tier requirement
func (e Entry) IsQuality() bool {
	return e.Quality != ""
}

// EntryNote is a free-text note attached to an item within a bundle or quest.
type EntryNote struct {
	Item string `json:"item" yaml:"item"`
	Text string `json:"text" yaml:"text"`
}

// Bundle is a named demand set tied to a donation objective
type Bundle struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Entries []Entry     `json:"items" yaml:"items"`
	Notes   []EntryNote `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// BundleGroup is a room of base bundles
type BundleGroup struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Bundles []Bundle `json:"bundles" yaml:"bundles"`
}

// RemixBundle is an alternate bundle that may replace one of its base bundles.
// NeedSlots > 0 restricts the contribution to the picked subset of entries.
type RemixBundle struct {
	Bundle        `yaml:",inline"`
	BaseBundleIDs []string `json:"baseBundleIds" yaml:"baseBundleIds"`
	NeedSlots     int      `json:"needSlots,omitempty" yaml:"needSlots,omitempty"`
}

// Replaces reports whether the remix bundle may substitute the given base bundle
func (r RemixBundle) Replaces(baseID string) bool {
	for _, id := range r.BaseBundleIDs {
		if id == baseID {
			return true
		}
	}
	return false
}

// SlotLimited reports whether only a picked subset of entries counts.
func (r RemixBundle) SlotLimited() bool {
	return r.NeedSlots > 0 && r.NeedSlots < len(r.Entries)
}

// HasEntry reports whether an item is one of the remix candidates
func (r RemixBundle) HasEntry(item string) bool {
	for _, e := range r.Entries {
		if e.Item == item {
			return true
		}
	}
	return false
}

// RemixGroup is a room of remix bundles
type RemixGroup struct {
	ID      string        `json:"id" yaml:"id"`
	Name    string        `json:"name" yaml:"name"`
	Bundles []RemixBundle `json:"bundles" yaml:"bundles"`
}

// Quest is a named demand set tied to a quest
type Quest struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Entries []Entry     `json:"items" yaml:"items"`
	Notes   []EntryNote `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// QuestGroup is a category of quests
type QuestGroup struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Quests []Quest `json:"quests" yaml:"quests"`
}

// ItemNoteKind distinguishes free text notes from recipe notes
type ItemNoteKind string

const (
	ItemNoteText   ItemNoteKind = "text"
	ItemNoteRecipe ItemNoteKind = "recipe"
)

// ItemNote is a per-item hint displayed next to the item name.
type ItemNote struct {
	Kind    ItemNoteKind `json:"kind" yaml:"kind"`
	Text    string       `json:"text,omitempty" yaml:"text,omitempty"`
	N       int          `json:"n,omitempty" yaml:"n,omitempty"`
	As      string       `json:"as,omitempty" yaml:"as,omitempty"`
	Machine string       `json:"machine,omitempty" yaml:"machine,omitempty"`
	Days    int          `json:"days,omitempty" yaml:"days,omitempty"`
	Extra   string       `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Format renders the note for display
func (n ItemNote) Format(item string) string {
	if n.Kind != ItemNoteRecipe {
		return n.Text
	}
	var b strings.Builder
	fmt.Fprintf(&b, "use %d %q to make %q; machine: %s; takes %d days", n.N, item, n.As, n.Machine, n.Days)
	if n.Extra != "" {
		b.WriteString("; ")
		b.WriteString(n.Extra)
	}
	return b.String()
}
