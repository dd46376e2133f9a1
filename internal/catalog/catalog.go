// Package catalog holds the immutable reference data: items, donation bundles,
// remix bundles, quests and item notes.
package catalog

import (
	"github.com/lherron/farmlist/internal/domain"
)

// BundleRef locates a base bundle within its group.
type BundleRef struct {
	GroupID   string
	GroupName string
	Bundle    domain.Bundle
}

// RemixRef locates a remix bundle within its group.
type RemixRef struct {
	GroupID   string
	GroupName string
	Bundle    domain.RemixBundle
}

// QuestRef locates a quest within its group.
type QuestRef struct {
	GroupID   string
	GroupName string
	Quest     domain.Quest
}

// Catalog is read-only after Build.
type Catalog struct {
	categories []domain.Category
	items      []domain.ItemRecord
	defs       domain.Definitions

	itemIndex   map[string]int
	bundleIndex map[string]BundleRef
	remixIndex  map[string]RemixRef
	questIndex  map[string]QuestRef
	remixByBase map[string][]string
}

// Build indexes the given records and definitions. Duplicate item names and
// duplicate ids are tolerated: the first occurrence wins.
func Build(categories []domain.Category, items []domain.ItemRecord, defs domain.Definitions) *Catalog {
	c := &Catalog{
		itemIndex:   make(map[string]int),
		bundleIndex: make(map[string]BundleRef),
		remixIndex:  make(map[string]RemixRef),
		questIndex:  make(map[string]QuestRef),
		remixByBase: make(map[string][]string),
		defs:        defs,
	}

	c.categories = mergeCategories(categories)

	for _, rec := range items {
		if rec.Name == "" {
			continue
		}
		if _, dup := c.itemIndex[rec.Name]; dup {
			continue
		}
		c.itemIndex[rec.Name] = len(c.items)
		c.items = append(c.items, rec)
	}

	for _, g := range defs.Donations {
		for _, b := range g.Bundles {
			if _, dup := c.bundleIndex[b.ID]; dup || b.ID == "" {
				continue
			}
			c.bundleIndex[b.ID] = BundleRef{GroupID: g.ID, GroupName: g.Name, Bundle: b}
		}
	}

	for _, g := range defs.Remixes {
		for _, r := range g.Bundles {
			if _, dup := c.remixIndex[r.ID]; dup || r.ID == "" {
				continue
			}
			c.remixIndex[r.ID] = RemixRef{GroupID: g.ID, GroupName: g.Name, Bundle: r}
			for _, base := range r.BaseBundleIDs {
				c.remixByBase[base] = append(c.remixByBase[base], r.ID)
			}
		}
	}

	for _, g := range defs.Quests {
		for _, q := range g.Quests {
			if _, dup := c.questIndex[q.ID]; dup || q.ID == "" {
				continue
			}
			c.questIndex[q.ID] = QuestRef{GroupID: g.ID, GroupName: g.Name, Quest: q}
		}
	}

	return c
}

// mergeCategories returns the built-in categories followed by any extra ones, without duplicates.
func mergeCategories(extra []domain.Category) []domain.Category {
	seen := make(map[domain.Category]bool)
	var out []domain.Category
	for _, list := range [][]domain.Category{domain.DefaultCategories, extra} {
		for _, c := range list {
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Categories returns the requirement categories in column order
func (c *Catalog) Categories() []domain.Category {
	return append([]domain.Category(nil), c.categories...)
}

// Items returns the item records in catalog order
func (c *Catalog) Items() []domain.ItemRecord {
	return append([]domain.ItemRecord(nil), c.items...)
}

// Item looks up an item record by exact name
func (c *Catalog) Item(name string) (domain.ItemRecord, bool) {
	i, ok := c.itemIndex[name]
	if !ok {
		return domain.ItemRecord{}, false
	}
	return c.items[i], true
}

// HasItem reports whether the catalog lists the item
func (c *Catalog) HasItem(name string) bool {
	_, ok := c.itemIndex[name]
	return ok
}

// ItemNames returns all item names in catalog order
func (c *Catalog) ItemNames() []string {
	names := make([]string, len(c.items))
	for i, rec := range c.items {
		names[i] = rec.Name
	}
	return names
}

// ItemNote returns the display note for an item, if any
func (c *Catalog) ItemNote(name string) (domain.ItemNote, bool) {
	n, ok := c.defs.ItemNotes[name]
	return n, ok
}

// Definitions returns the raw definitions the catalog was built from
func (c *Catalog) Definitions() domain.Definitions {
	return c.defs
}

// DonationGroups returns the base bundle groups
func (c *Catalog) DonationGroups() []domain.BundleGroup {
	return c.defs.Donations
}

// RemixGroups returns the remix bundle groups
func (c *Catalog) RemixGroups() []domain.RemixGroup {
	return c.defs.Remixes
}

// QuestGroups returns the quest groups
func (c *Catalog) QuestGroups() []domain.QuestGroup {
	return c.defs.Quests
}

// Bundle looks up a base bundle by id
func (c *Catalog) Bundle(id string) (BundleRef, bool) {
	ref, ok := c.bundleIndex[id]
	return ref, ok
}

// HasBundle reports whether a base bundle exists
func (c *Catalog) HasBundle(id string) bool {
	_, ok := c.bundleIndex[id]
	return ok
}

// Remix looks up a remix bundle by id
func (c *Catalog) Remix(id string) (RemixRef, bool) {
	ref, ok := c.remixIndex[id]
	return ref, ok
}

// RemixCandidates returns the remix bundles registered as substitutes for a base bundle
func (c *Catalog) RemixCandidates(baseID string) []RemixRef {
	ids := c.remixByBase[baseID]
	out := make([]RemixRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.remixIndex[id])
	}
	return out
}

// Quest looks up a quest by id
func (c *Catalog) Quest(id string) (QuestRef, bool) {
	ref, ok := c.questIndex[id]
	return ref, ok
}

// HasQuest reports whether a quest exists
func (c *Catalog) HasQuest(id string) bool {
	_, ok := c.questIndex[id]
	return ok
}

// BundleGroupIDs returns the base bundle ids of a group, or nil if the group is unknown
func (c *Catalog) BundleGroupIDs(groupID string) []string {
	for _, g := range c.defs.Donations {
		if g.ID != groupID && g.Name != groupID {
			continue
		}
		ids := make([]string, 0, len(g.Bundles))
		for _, b := range g.Bundles {
			ids = append(ids, b.ID)
		}
		return ids
	}
	return nil
}

// QuestGroupIDs returns the quest ids of a group, or nil if the group is unknown
func (c *Catalog) QuestGroupIDs(groupID string) []string {
	for _, g := range c.defs.Quests {
		if g.ID != groupID && g.Name != groupID {
			continue
		}
		ids := make([]string, 0, len(g.Quests))
		for _, q := range g.Quests {
			ids = append(ids, q.ID)
		}
		return ids
	}
	return nil
}

// DefaultBundleIDs returns the ids selected at startup: every base bundle.
func (c *Catalog) DefaultBundleIDs() []string {
	var ids []string
	for _, g := range c.defs.Donations {
		for _, b := range g.Bundles {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// DefaultQuestIDs returns the ids selected at startup: every quest.
func (c *Catalog) DefaultQuestIDs() []string {
	var ids []string
	for _, g := range c.defs.Quests {
		for _, q := range g.Quests {
			ids = append(ids, q.ID)
		}
	}
	return ids
}
