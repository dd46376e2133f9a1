// Package selection holds the user's bundle, quest, substitution and custom
// requirement choices, and stages edits before they are applied.
package selection

import (
	"fmt"
	"strings"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
)

// Catalog is the subset of the catalog the selection layer needs.
type Catalog interface {
	HasBundle(id string) bool
	HasQuest(id string) bool
	BundleGroupIDs(groupID string) []string
	QuestGroupIDs(groupID string) []string
	DefaultBundleIDs() []string
	DefaultQuestIDs() []string
	Remix(id string) (catalog.RemixRef, bool)
	RemixCandidates(baseID string) []catalog.RemixRef
}

// Rule substitutes one base bundle with a remix bundle.
// An empty ReplacementID with AutoResolve picks the unique registered candidate.
type Rule struct {
	BaseBundleID  string   `json:"base"`
	ReplacementID string   `json:"replacement,omitempty"`
	Picked        []string `json:"picked,omitempty"`
	AutoResolve   bool     `json:"auto,omitempty"`
}

// Active reports whether the rule asks for a substitution at all
func (r Rule) Active() bool {
	return r.ReplacementID != "" || r.AutoResolve
}

// IsPicked reports whether item was picked
func (r Rule) IsPicked(item string) bool {
	for _, p := range r.Picked {
		if p == item {
			return true
		}
	}
	return false
}

func (r Rule) clone() Rule {
	r.Picked = append([]string(nil), r.Picked...)
	return r
}

func (r Rule) equal(o Rule) bool {
	if r.BaseBundleID != o.BaseBundleID || r.ReplacementID != o.ReplacementID || r.AutoResolve != o.AutoResolve {
		return false
	}
	if len(r.Picked) != len(o.Picked) {
		return false
	}
	for i := range r.Picked {
		if r.Picked[i] != o.Picked[i] {
			return false
		}
	}
	return true
}

// CustomRequirement is a user-added demand in a possibly new category.
type CustomRequirement struct {
	Category domain.Category `json:"category"`
	Item     string          `json:"item"`
	Quantity int             `json:"quantity"`
	Note     string          `json:"note,omitempty"`
}

// Validate checks the row before it is staged
func (c CustomRequirement) Validate() error {
	if err := domain.ValidateCategoryName(string(c.Category)); err != nil {
		return err
	}
	if strings.TrimSpace(c.Item) == "" {
		return fmt.Errorf("item name cannot be empty")
	}
	return domain.ValidateQuantity(c.Quantity)
}

// State is a complete selection snapshot.
type State struct {
	Bundles Set                 `json:"bundles"`
	Quests  Set                 `json:"quests"`
	Rules   []Rule              `json:"rules,omitempty"`
	Custom  []CustomRequirement `json:"custom,omitempty"`
}

// DefaultState selects every base bundle and every quest.
func DefaultState(cat Catalog) State {
	return State{
		Bundles: NewSet(cat.DefaultBundleIDs()...),
		Quests:  NewSet(cat.DefaultQuestIDs()...),
	}
}

// Rule returns the rule for a base bundle, if any
func (s State) Rule(baseID string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.BaseBundleID == baseID {
			return r, true
		}
	}
	return Rule{}, false
}

// Clone returns a deep copy
func (s State) Clone() State {
	out := State{Bundles: s.Bundles, Quests: s.Quests}
	for _, r := range s.Rules {
		out.Rules = append(out.Rules, r.clone())
	}
	out.Custom = append([]CustomRequirement(nil), s.Custom...)
	return out
}

// Equal compares two states, including rule order
func (s State) Equal(o State) bool {
	if !s.Bundles.Equal(o.Bundles) || !s.Quests.Equal(o.Quests) {
		return false
	}
	if len(s.Rules) != len(o.Rules) || len(s.Custom) != len(o.Custom) {
		return false
	}
	for i := range s.Rules {
		if !s.Rules[i].equal(o.Rules[i]) {
			return false
		}
	}
	for i := range s.Custom {
		if s.Custom[i] != o.Custom[i] {
			return false
		}
	}
	return true
}
