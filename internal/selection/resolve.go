package selection

import (
	"errors"
	"fmt"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
)

// Resolve finds the remix bundle a rule substitutes in. The returned error
// explains why the rule cannot take effect.
func Resolve(cat Catalog, r Rule) (catalog.RemixRef, error) {
	if !cat.HasBundle(r.BaseBundleID) {
		return catalog.RemixRef{}, &domain.NotFoundError{Kind: "bundle", ID: r.BaseBundleID}
	}

	if r.ReplacementID != "" {
		ref, ok := cat.Remix(r.ReplacementID)
		if !ok {
			return catalog.RemixRef{}, &domain.NotFoundError{Kind: "remix bundle", ID: r.ReplacementID}
		}
		if !ref.Bundle.Replaces(r.BaseBundleID) {
			return catalog.RemixRef{}, fmt.Errorf("%w: %s does not list %s", domain.ErrInvalidReplacement, r.ReplacementID, r.BaseBundleID)
		}
		return ref, nil
	}

	if !r.AutoResolve {
		return catalog.RemixRef{}, domain.ErrNoReplacement
	}
	candidates := cat.RemixCandidates(r.BaseBundleID)
	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return catalog.RemixRef{}, fmt.Errorf("%w: no remix bundle replaces %s", domain.ErrNoReplacement, r.BaseBundleID)
	default:
		return catalog.RemixRef{}, fmt.Errorf("%w: %d remix bundles replace %s, choose one", domain.ErrNoReplacement, len(candidates), r.BaseBundleID)
	}
}

// ErrNoPicks is reported when a slot-limited replacement has nothing picked yet.
var ErrNoPicks = errors.New("no items picked")

// Contribution returns the entries and notes a remix bundle adds under the given picks.
// A slot-limited bundle contributes only picked entries; with nothing picked it
// contributes nothing and ErrNoPicks is returned.
func Contribution(remix domain.RemixBundle, picked []string) ([]domain.Entry, []domain.EntryNote, error) {
	if !remix.SlotLimited() {
		return remix.Entries, remix.Notes, nil
	}
	if len(picked) == 0 {
		return nil, nil, ErrNoPicks
	}

	chosen := NewSet(picked...)
	taken := make(map[string]bool)
	var entries []domain.Entry
	for _, e := range remix.Entries {
		if !chosen.Has(e.Item) || taken[e.Item] {
			continue
		}
		taken[e.Item] = true
		entries = append(entries, e)
	}
	var notes []domain.EntryNote
	for _, n := range remix.Notes {
		if chosen.Has(n.Item) {
			notes = append(notes, n)
		}
	}
	return entries, notes, nil
}
