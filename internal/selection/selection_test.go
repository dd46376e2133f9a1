package selection

import (
	"errors"
	"testing"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
)

func testCatalog() *catalog.Catalog {
	one := func(names ...string) []domain.Entry {
		var out []domain.Entry
		for _, n := range names {
			out = append(out, domain.Entry{Item: n, Count: 1})
		}
		return out
	}
	defs := domain.Definitions{
		Donations: []domain.BundleGroup{
			{ID: "crafts", Name: "Crafts Room", Bundles: []domain.Bundle{
				{ID: "spring", Name: "Spring", Entries: one("Wild Horseradish", "Daffodil")},
				{ID: "summer", Name: "Summer", Entries: one("Grape")},
			}},
			{ID: "board", Name: "Bulletin Board", Bundles: []domain.Bundle{
				{ID: "dye", Name: "Dye", Entries: one("Sunflower")},
			}},
		},
		Remixes: []domain.RemixGroup{{ID: "crafts_rm", Name: "Crafts Room", Bundles: []domain.RemixBundle{
			{Bundle: domain.Bundle{ID: "rm_spring", Entries: one("Wild Horseradish", "Daffodil", "Leek")}, BaseBundleIDs: []string{"spring"}},
			{Bundle: domain.Bundle{ID: "rm_dye", Entries: one("A", "B", "C", "D", "E")}, BaseBundleIDs: []string{"dye"}, NeedSlots: 3},
			{Bundle: domain.Bundle{ID: "rm_dye_alt", Entries: one("F")}, BaseBundleIDs: []string{"dye"}},
		}}},
		Quests: []domain.QuestGroup{{ID: "story", Name: "Story", Quests: []domain.Quest{
			{ID: "q1", Entries: one("Melon")},
			{ID: "q2", Entries: one("Pumpkin")},
		}}},
	}
	return catalog.Build(nil, nil, defs)
}

func TestSet(t *testing.T) {
	s := NewSet("b", "a", "")
	if s.Len() != 2 || !s.Has("a") || s.Has("") {
		t.Fatalf("NewSet() = %v", s.Slice())
	}

	s2 := s.With("c")
	if s.Has("c") {
		t.Error("With must not modify the receiver")
	}
	if got := s2.Slice(); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("Slice() = %v", got)
	}

	s3 := s2.Without("a", "missing")
	if s3.Has("a") || !s2.Has("a") {
		t.Error("Without must return a modified copy")
	}
	if !s3.Equal(NewSet("b", "c")) || s3.Equal(s2) {
		t.Error("Equal mismatch")
	}

	var zero Set
	if zero.Has("a") || zero.Len() != 0 || !zero.Equal(NewSet()) {
		t.Error("zero Set should behave as empty")
	}
}

func TestDefaultState(t *testing.T) {
	st := DefaultState(testCatalog())
	if st.Bundles.Len() != 3 {
		t.Errorf("default bundles = %v", st.Bundles.Slice())
	}
	if !st.Quests.Equal(NewSet("q1", "q2")) {
		t.Errorf("every quest should be selected by default, got %v", st.Quests.Slice())
	}
}

func TestResolve(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		name    string
		rule    Rule
		want    string
		wantErr error
	}{
		{"explicit", Rule{BaseBundleID: "spring", ReplacementID: "rm_spring"}, "rm_spring", nil},
		{"auto unique", Rule{BaseBundleID: "spring", AutoResolve: true}, "rm_spring", nil},
		{"auto ambiguous", Rule{BaseBundleID: "dye", AutoResolve: true}, "", domain.ErrNoReplacement},
		{"auto none", Rule{BaseBundleID: "summer", AutoResolve: true}, "", domain.ErrNoReplacement},
		{"empty without auto", Rule{BaseBundleID: "spring"}, "", domain.ErrNoReplacement},
		{"wrong base", Rule{BaseBundleID: "summer", ReplacementID: "rm_spring"}, "", domain.ErrInvalidReplacement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Resolve(cat, tt.rule)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if ref.Bundle.ID != tt.want {
				t.Errorf("Resolve() = %s, want %s", ref.Bundle.ID, tt.want)
			}
		})
	}

	if _, err := Resolve(cat, Rule{BaseBundleID: "nope", AutoResolve: true}); !domain.IsNotFound(err) {
		t.Errorf("unknown base should be not found, got %v", err)
	}
}

func TestContribution(t *testing.T) {
	ref, _ := testCatalog().Remix("rm_dye")

	if _, _, err := Contribution(ref.Bundle, nil); !errors.Is(err, ErrNoPicks) {
		t.Errorf("no picks should report ErrNoPicks, got %v", err)
	}

	entries, _, err := Contribution(ref.Bundle, []string{"E", "B"})
	if err != nil {
		t.Fatalf("Contribution() error: %v", err)
	}
	if len(entries) != 2 || entries[0].Item != "B" || entries[1].Item != "E" {
		t.Errorf("picked entries should keep bundle order, got %+v", entries)
	}

	full, _ := testCatalog().Remix("rm_spring")
	entries, _, err = Contribution(full.Bundle, nil)
	if err != nil || len(entries) != 3 {
		t.Errorf("unlimited bundle should contribute everything, got %d, %v", len(entries), err)
	}
}

func TestManager_BundleTogglesAreImmediate(t *testing.T) {
	m := NewManager(testCatalog())

	changed, err := m.ToggleBundle("spring", false)
	if err != nil || !changed {
		t.Fatalf("ToggleBundle() = %v, %v", changed, err)
	}
	if m.Applied().Bundles.Has("spring") {
		t.Error("bundle toggle should apply immediately")
	}
	if m.Dirty() {
		t.Error("bundle toggles should not leave staged edits")
	}

	changed, _ = m.ToggleBundle("spring", false)
	if changed {
		t.Error("repeated toggle should report no change")
	}

	if _, err := m.ToggleBundle("nope", true); !domain.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}

	if changed, _ := m.ClearBundles("crafts"); !changed || m.Applied().Bundles.Len() != 1 {
		t.Errorf("ClearBundles left %v", m.Applied().Bundles.Slice())
	}
	if changed, _ := m.SelectAllBundles("Crafts Room"); !changed || m.Applied().Bundles.Len() != 3 {
		t.Errorf("SelectAllBundles left %v", m.Applied().Bundles.Slice())
	}
	if m.ResetBundles() {
		t.Error("ResetBundles on defaults should report no change")
	}
}

func TestManager_StagedQuests(t *testing.T) {
	m := NewManager(testCatalog())

	if err := m.StageQuest("q1", false); err != nil {
		t.Fatalf("StageQuest() error: %v", err)
	}
	if !m.Applied().Quests.Has("q1") {
		t.Error("staged quest must not change applied state")
	}
	if !m.Dirty() {
		t.Error("manager should be dirty after staging")
	}

	m.Discard()
	if m.Dirty() || !m.Pending().Quests.Has("q1") {
		t.Error("Discard should reset pending from applied")
	}

	_ = m.StageQuestGroup("story", false)
	res := m.Commit()
	if !res.Changed || m.Applied().Quests.Len() != 0 {
		t.Errorf("Commit() = %+v, applied quests %v", res, m.Applied().Quests.Slice())
	}
	if res := m.Commit(); res.Changed {
		t.Error("second commit should report no change")
	}

	m.StageAllQuests(true)
	m.Commit()
	if m.Applied().Quests.Len() != 2 {
		t.Errorf("StageAllQuests(true) applied %v", m.Applied().Quests.Slice())
	}
}

func TestManager_StageRule(t *testing.T) {
	m := NewManager(testCatalog())

	if err := m.StageReplacement("summer", "rm_spring"); !errors.Is(err, domain.ErrInvalidReplacement) {
		t.Errorf("expected ErrInvalidReplacement, got %v", err)
	}
	if err := m.StageReplacement("spring", "rm_spring"); err != nil {
		t.Fatalf("StageReplacement() error: %v", err)
	}
	if err := m.StageAuto("spring"); err != nil {
		t.Fatalf("StageAuto() error: %v", err)
	}
	if len(m.Pending().Rules) != 1 {
		t.Fatalf("one rule per base bundle, got %+v", m.Pending().Rules)
	}
	if r, _ := m.Pending().Rule("spring"); !r.AutoResolve || r.ReplacementID != "" {
		t.Errorf("rule not replaced: %+v", r)
	}

	m.StageRevert("spring")
	if len(m.Pending().Rules) != 0 {
		t.Errorf("StageRevert left %+v", m.Pending().Rules)
	}

	err := m.StageRule(Rule{BaseBundleID: "dye", ReplacementID: "rm_dye", Picked: []string{"A", "B", "C", "D"}})
	if !errors.Is(err, domain.ErrSlotsFull) {
		t.Errorf("expected ErrSlotsFull, got %v", err)
	}
	err = m.StageRule(Rule{BaseBundleID: "dye", ReplacementID: "rm_dye", Picked: []string{"Z"}})
	if !errors.Is(err, domain.ErrUnknownPick) {
		t.Errorf("expected ErrUnknownPick, got %v", err)
	}
}

func TestManager_StagePick(t *testing.T) {
	m := NewManager(testCatalog())

	if err := m.StagePick("dye", "A", true); !errors.Is(err, domain.ErrNoReplacement) {
		t.Fatalf("pick before replacement: got %v", err)
	}
	if err := m.StageReplacement("dye", "rm_dye"); err != nil {
		t.Fatalf("StageReplacement() error: %v", err)
	}

	for _, item := range []string{"A", "C", "E"} {
		if err := m.StagePick("dye", item, true); err != nil {
			t.Fatalf("StagePick(%s) error: %v", item, err)
		}
	}
	before := m.Pending()

	if err := m.StagePick("dye", "B", true); !errors.Is(err, domain.ErrSlotsFull) {
		t.Fatalf("fourth pick: got %v", err)
	}
	if err := m.StagePick("dye", "Z", true); !errors.Is(err, domain.ErrUnknownPick) {
		t.Fatalf("unknown pick: got %v", err)
	}
	if !m.Pending().Equal(before) {
		t.Error("rejected picks must leave pending state unchanged")
	}

	if err := m.StagePick("dye", "C", false); err != nil {
		t.Fatalf("unpick error: %v", err)
	}
	if err := m.StagePick("dye", "B", true); err != nil {
		t.Fatalf("pick after unpick error: %v", err)
	}
	r, _ := m.Pending().Rule("dye")
	if len(r.Picked) != 3 || r.IsPicked("C") || !r.IsPicked("B") {
		t.Errorf("picked = %v", r.Picked)
	}

	if err := m.StageReplacement("dye", "rm_dye"); err != nil {
		t.Fatalf("StageReplacement() error: %v", err)
	}
	if r, _ := m.Pending().Rule("dye"); len(r.Picked) != 3 {
		t.Errorf("re-staging the same replacement should keep picks, got %v", r.Picked)
	}
}

func TestManager_StageCustom(t *testing.T) {
	m := NewManager(testCatalog())

	if err := m.StageCustom(CustomRequirement{Category: "tribute", Item: "Leek", Quantity: 0}); err == nil {
		t.Error("zero quantity should be rejected")
	}
	if err := m.StageCustom(CustomRequirement{Category: "", Item: "Leek", Quantity: 1}); err == nil {
		t.Error("empty category should be rejected")
	}

	first := CustomRequirement{Category: "tribute", Item: "Leek", Quantity: 5}
	if err := m.StageCustom(first); err != nil {
		t.Fatalf("StageCustom() error: %v", err)
	}
	res := m.Commit()
	if len(res.NewCustom) != 1 || res.NewCustom[0] != first {
		t.Fatalf("NewCustom = %+v", res.NewCustom)
	}

	second := CustomRequirement{Category: "tribute", Item: "Ruby", Quantity: 1}
	_ = m.StageCustom(second)
	res = m.Commit()
	if len(res.NewCustom) != 1 || res.NewCustom[0] != second {
		t.Errorf("only the new row should be returned, got %+v", res.NewCustom)
	}
	if len(m.Applied().Custom) != 2 {
		t.Errorf("applied custom rows = %d", len(m.Applied().Custom))
	}
}
