package selection

import (
	"fmt"

	"github.com/lherron/farmlist/internal/domain"
)

// Manager keeps the applied selection and a pending copy that collects staged
// edits. Bundle toggles bypass staging and change both copies at once.
type Manager struct {
	cat     Catalog
	applied State
	pending State
}

// CommitResult describes what a Commit applied.
type CommitResult struct {
	Changed   bool
	NewCustom []CustomRequirement
}

// NewManager starts from the default selection
func NewManager(cat Catalog) *Manager {
	return NewManagerWithState(cat, DefaultState(cat))
}

// NewManagerWithState starts from an explicit applied state
func NewManagerWithState(cat Catalog, st State) *Manager {
	return &Manager{cat: cat, applied: st.Clone(), pending: st.Clone()}
}

// Applied returns a copy of the applied state
func (m *Manager) Applied() State {
	return m.applied.Clone()
}

// Pending returns a copy of the pending state
func (m *Manager) Pending() State {
	return m.pending.Clone()
}

// Dirty reports whether staged edits are waiting for Commit
func (m *Manager) Dirty() bool {
	return !m.applied.Equal(m.pending)
}

// ToggleBundle selects or deselects a base bundle immediately.
func (m *Manager) ToggleBundle(id string, on bool) (bool, error) {
	if !m.cat.HasBundle(id) {
		return false, &domain.NotFoundError{Kind: "bundle", ID: id}
	}
	return m.setBundles([]string{id}, on), nil
}

// SelectAllBundles selects every bundle of a group immediately.
func (m *Manager) SelectAllBundles(groupID string) (bool, error) {
	ids := m.cat.BundleGroupIDs(groupID)
	if ids == nil {
		return false, &domain.NotFoundError{Kind: "bundle group", ID: groupID}
	}
	return m.setBundles(ids, true), nil
}

// ClearBundles deselects every bundle of a group immediately.
func (m *Manager) ClearBundles(groupID string) (bool, error) {
	ids := m.cat.BundleGroupIDs(groupID)
	if ids == nil {
		return false, &domain.NotFoundError{Kind: "bundle group", ID: groupID}
	}
	return m.setBundles(ids, false), nil
}

// ResetBundles restores the default bundle selection immediately.
func (m *Manager) ResetBundles() bool {
	def := NewSet(m.cat.DefaultBundleIDs()...)
	if m.applied.Bundles.Equal(def) {
		return false
	}
	m.applied.Bundles = def
	m.pending.Bundles = def
	return true
}

func (m *Manager) setBundles(ids []string, on bool) bool {
	next := m.applied.Bundles.Without(ids...)
	if on {
		next = m.applied.Bundles.With(ids...)
	}
	if next.Equal(m.applied.Bundles) {
		return false
	}
	m.applied.Bundles = next
	m.pending.Bundles = next
	return true
}

// StageQuest stages selecting or deselecting one quest
func (m *Manager) StageQuest(id string, on bool) error {
	if !m.cat.HasQuest(id) {
		return &domain.NotFoundError{Kind: "quest", ID: id}
	}
	m.stageQuests([]string{id}, on)
	return nil
}

// StageQuestGroup stages every quest of a group
func (m *Manager) StageQuestGroup(groupID string, on bool) error {
	ids := m.cat.QuestGroupIDs(groupID)
	if ids == nil {
		return &domain.NotFoundError{Kind: "quest group", ID: groupID}
	}
	m.stageQuests(ids, on)
	return nil
}

// StageAllQuests stages every quest in the catalog
func (m *Manager) StageAllQuests(on bool) {
	m.stageQuests(m.cat.DefaultQuestIDs(), on)
}

func (m *Manager) stageQuests(ids []string, on bool) {
	if on {
		m.pending.Quests = m.pending.Quests.With(ids...)
	} else {
		m.pending.Quests = m.pending.Quests.Without(ids...)
	}
}

// StageRule stages a rule, replacing any pending rule for the same base bundle.
// Picks are checked against the replacement when it can be resolved.
func (m *Manager) StageRule(r Rule) error {
	if !m.cat.HasBundle(r.BaseBundleID) {
		return &domain.NotFoundError{Kind: "bundle", ID: r.BaseBundleID}
	}
	if r.ReplacementID != "" {
		if _, err := Resolve(m.cat, r); err != nil {
			return err
		}
	}
	if len(r.Picked) > 0 {
		ref, err := Resolve(m.cat, r)
		if err != nil {
			return fmt.Errorf("cannot pick items: %w", err)
		}
		seen := NewSet()
		for _, item := range r.Picked {
			if !ref.Bundle.HasEntry(item) {
				return fmt.Errorf("%w: %s", domain.ErrUnknownPick, item)
			}
			seen = seen.With(item)
		}
		if ref.Bundle.SlotLimited() && seen.Len() > ref.Bundle.NeedSlots {
			return fmt.Errorf("%w: %d picked, %d allowed", domain.ErrSlotsFull, seen.Len(), ref.Bundle.NeedSlots)
		}
	}
	m.putRule(r.clone())
	return nil
}

// StageReplacement stages an explicit replacement for a base bundle. Picks are
// kept only if the replacement is unchanged.
func (m *Manager) StageReplacement(baseID, replacementID string) error {
	r := Rule{BaseBundleID: baseID, ReplacementID: replacementID}
	if prev, ok := m.pending.Rule(baseID); ok && prev.ReplacementID == replacementID && !prev.AutoResolve {
		r.Picked = prev.Picked
	}
	return m.StageRule(r)
}

// StageAuto stages a rule that resolves to the base bundle's unique candidate.
func (m *Manager) StageAuto(baseID string) error {
	return m.StageRule(Rule{BaseBundleID: baseID, AutoResolve: true})
}

// StageRevert stages removing the substitution for a base bundle
func (m *Manager) StageRevert(baseID string) {
	out := m.pending.Rules[:0:0]
	for _, r := range m.pending.Rules {
		if r.BaseBundleID != baseID {
			out = append(out, r)
		}
	}
	m.pending.Rules = out
}

// StagePick stages picking or unpicking one candidate item of the replacement
// bundle. Rejected picks leave the pending state untouched.
func (m *Manager) StagePick(baseID, item string, on bool) error {
	r, ok := m.pending.Rule(baseID)
	if !ok || !r.Active() {
		return fmt.Errorf("%w for %s", domain.ErrNoReplacement, baseID)
	}
	ref, err := Resolve(m.cat, r)
	if err != nil {
		return err
	}
	if !ref.Bundle.HasEntry(item) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownPick, item)
	}

	r = r.clone()
	if on {
		if r.IsPicked(item) {
			return nil
		}
		if ref.Bundle.SlotLimited() && len(r.Picked) >= ref.Bundle.NeedSlots {
			return fmt.Errorf("%w: %d of %d", domain.ErrSlotsFull, len(r.Picked), ref.Bundle.NeedSlots)
		}
		r.Picked = append(r.Picked, item)
	} else {
		kept := r.Picked[:0]
		for _, p := range r.Picked {
			if p != item {
				kept = append(kept, p)
			}
		}
		r.Picked = kept
	}
	m.putRule(r)
	return nil
}

func (m *Manager) putRule(r Rule) {
	for i := range m.pending.Rules {
		if m.pending.Rules[i].BaseBundleID == r.BaseBundleID {
			m.pending.Rules[i] = r
			return
		}
	}
	m.pending.Rules = append(m.pending.Rules, r)
}

// StageCustom stages a custom requirement row
func (m *Manager) StageCustom(req CustomRequirement) error {
	if err := req.Validate(); err != nil {
		return err
	}
	m.pending.Custom = append(m.pending.Custom, req)
	return nil
}

// Commit applies the pending state. Custom rows added since the last commit
// are returned so the caller can extend its ledger once.
func (m *Manager) Commit() CommitResult {
	if !m.Dirty() {
		return CommitResult{}
	}
	res := CommitResult{Changed: true}
	if n := len(m.applied.Custom); len(m.pending.Custom) > n {
		res.NewCustom = append([]CustomRequirement(nil), m.pending.Custom[n:]...)
	}
	m.applied = m.pending.Clone()
	return res
}

// Discard drops staged edits
func (m *Manager) Discard() {
	m.pending = m.applied.Clone()
}
