package selectors

import (
	"fmt"
	"strings"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
)

// Type represents the type of resource being selected
type Type string

const (
	TypeBundle Type = "bundle"
	TypeRemix  Type = "remix"
	TypeQuest  Type = "quest"
	TypeGroup  Type = "group"
	TypeItem   Type = "item"
	TypeAuto   Type = "auto" // Auto-detect based on selector
)

var prefixes = []struct {
	prefix string
	typ    Type
}{
	{"b:", TypeBundle},
	{"r:", TypeRemix},
	{"q:", TypeQuest},
	{"g:", TypeGroup},
	{"i:", TypeItem},
}

// Selector represents a parsed typed selector
type Selector struct {
	Type  Type
	Token string // The part after the prefix (e.g., "bb_dye" from "b:bb_dye")
}

// Parse parses a selector string and returns the type and token
// Supports: b:, r:, q:, g:, i: prefixes or a plain token (auto-detect)
func Parse(selector string) Selector {
	for _, p := range prefixes {
		if strings.HasPrefix(selector, p.prefix) {
			return Selector{
				Type:  p.typ,
				Token: strings.TrimPrefix(selector, p.prefix),
			}
		}
	}

	return Selector{
		Type:  TypeAuto,
		Token: selector,
	}
}

func expect(parsed Selector, want Type) error {
	if parsed.Type != want && parsed.Type != TypeAuto {
		return fmt.Errorf("expected %s selector, got %s selector", want, parsed.Type)
	}
	if strings.TrimSpace(parsed.Token) == "" {
		return fmt.Errorf("empty %s selector", want)
	}
	return nil
}

// candidate is an id plus the display name it can also be selected by
type candidate struct {
	id   string
	name string
}

// match finds the candidate whose id equals token, or failing that the
// single candidate whose id or name equals token ignoring case.
func match(kind, token string, cands []candidate) (string, error) {
	for _, c := range cands {
		if c.id == token {
			return c.id, nil
		}
	}

	var found []string
	for _, c := range cands {
		if strings.EqualFold(c.id, token) || strings.EqualFold(c.name, token) {
			found = append(found, c.id)
		}
	}
	switch len(found) {
	case 0:
		return "", &domain.NotFoundError{Kind: kind, ID: token}
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("ambiguous %s selector %q matches %s", kind, token, strings.Join(found, ", "))
	}
}

// ResolveBundle resolves a base bundle selector to its id
func ResolveBundle(cat *catalog.Catalog, selector string) (string, error) {
	parsed := Parse(selector)
	if err := expect(parsed, TypeBundle); err != nil {
		return "", err
	}

	var cands []candidate
	for _, g := range cat.DonationGroups() {
		for _, b := range g.Bundles {
			cands = append(cands, candidate{b.ID, b.Name})
		}
	}
	return match("bundle", parsed.Token, cands)
}

// ResolveRemix resolves a remix bundle selector to its id
func ResolveRemix(cat *catalog.Catalog, selector string) (string, error) {
	parsed := Parse(selector)
	if err := expect(parsed, TypeRemix); err != nil {
		return "", err
	}

	var cands []candidate
	for _, g := range cat.RemixGroups() {
		for _, b := range g.Bundles {
			cands = append(cands, candidate{b.ID, b.Name})
		}
	}
	return match("remix bundle", parsed.Token, cands)
}

// ResolveQuest resolves a quest selector to its id
func ResolveQuest(cat *catalog.Catalog, selector string) (string, error) {
	parsed := Parse(selector)
	if err := expect(parsed, TypeQuest); err != nil {
		return "", err
	}

	var cands []candidate
	for _, g := range cat.QuestGroups() {
		for _, q := range g.Quests {
			cands = append(cands, candidate{q.ID, q.Name})
		}
	}
	return match("quest", parsed.Token, cands)
}

// ResolveBundleGroup resolves a donation group selector to its id
func ResolveBundleGroup(cat *catalog.Catalog, selector string) (string, error) {
	parsed := Parse(selector)
	if err := expect(parsed, TypeGroup); err != nil {
		return "", err
	}

	var cands []candidate
	for _, g := range cat.DonationGroups() {
		cands = append(cands, candidate{g.ID, g.Name})
	}
	return match("bundle group", parsed.Token, cands)
}

// ResolveQuestGroup resolves a quest group selector to its id
func ResolveQuestGroup(cat *catalog.Catalog, selector string) (string, error) {
	parsed := Parse(selector)
	if err := expect(parsed, TypeGroup); err != nil {
		return "", err
	}

	var cands []candidate
	for _, g := range cat.QuestGroups() {
		cands = append(cands, candidate{g.ID, g.Name})
	}
	return match("quest group", parsed.Token, cands)
}

// ResolveItem resolves an item selector against a list of item names.
// Names match exactly first, then ignoring case.
func ResolveItem(names []string, selector string) (string, error) {
	parsed := Parse(selector)
	if err := expect(parsed, TypeItem); err != nil {
		return "", err
	}

	cands := make([]candidate, len(names))
	for i, n := range names {
		cands[i] = candidate{n, n}
	}
	name, err := match("item", parsed.Token, cands)
	if err != nil && domain.IsNotFound(err) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownItem, parsed.Token)
	}
	return name, err
}
