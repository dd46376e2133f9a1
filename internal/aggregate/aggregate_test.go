package aggregate

import (
	"strings"
	"testing"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/selection"
)

func one(names ...string) []domain.Entry {
	var out []domain.Entry
	for _, n := range names {
		out = append(out, domain.Entry{Item: n, Count: 1})
	}
	return out
}

func testCatalog() *catalog.Catalog {
	items := []domain.ItemRecord{}
	for _, n := range []string{"Wild Horseradish", "Daffodil", "Leek", "A", "B", "C", "D", "E", "Wine", "Wood", "Melon", "Pumpkin"} {
		items = append(items, domain.ItemRecord{Name: n})
	}
	defs := domain.Definitions{
		Donations: []domain.BundleGroup{
			{ID: "crafts", Name: "Crafts Room", Bundles: []domain.Bundle{
				{ID: "spring", Name: "Spring Foraging", Entries: one("Wild Horseradish", "Daffodil"),
					Notes: []domain.EntryNote{{Item: "Daffodil", Text: "spring only"}}},
				{ID: "construction", Name: "Construction", Entries: []domain.Entry{{Item: "Wood", Count: 99}, {Item: "Wood", Count: 99}}},
			}},
			{ID: "board", Name: "Bulletin Board", Bundles: []domain.Bundle{
				{ID: "dye", Name: "Dye", Entries: one("Sunflower")},
			}},
			{ID: "joja", Name: "Joja", Bundles: []domain.Bundle{
				{ID: "missing", Name: "Missing", Entries: []domain.Entry{{Item: "Wine", Quality: domain.QualitySilver, QualityCount: 1}}},
			}},
		},
		Remixes: []domain.RemixGroup{{ID: "rm", Name: "Remixed Room", Bundles: []domain.RemixBundle{
			{Bundle: domain.Bundle{ID: "rm_spring", Name: "Spring Foraging (remix)", Entries: one("Wild Horseradish", "Daffodil", "Leek")}, BaseBundleIDs: []string{"spring"}},
			{Bundle: domain.Bundle{ID: "rm_dye", Name: "Dye (remix)", Entries: []domain.Entry{
				{Item: "A", Count: 1}, {Item: "B", Count: 2}, {Item: "C", Count: 3}, {Item: "D", Count: 4}, {Item: "E", Count: 5},
			}}, BaseBundleIDs: []string{"dye"}, NeedSlots: 3},
			{Bundle: domain.Bundle{ID: "rm_wood", Name: "Sticky", Entries: []domain.Entry{{Item: "Wood", Count: 10}}}, BaseBundleIDs: []string{"construction", "missing"}},
		}}},
		Quests: []domain.QuestGroup{{ID: "story", Name: "Story", Quests: []domain.Quest{
			{ID: "q1", Name: "Crop Research", Entries: one("Melon")},
			{ID: "q2", Name: "Big Melon", Entries: []domain.Entry{{Item: "Melon", Count: 2}},
				Notes: []domain.EntryNote{{Item: "Melon", Text: "any quality"}}},
			{ID: "q3", Name: "Carving", Entries: one("Pumpkin")},
		}}},
	}
	return catalog.Build(nil, items, defs)
}

func defaultState(cat *catalog.Catalog) selection.State {
	return selection.DefaultState(cat)
}

func TestCompute_BasePass(t *testing.T) {
	cat := testCatalog()
	res := Compute(cat, defaultState(cat), Options{})

	if res.DonationNeed["Wild Horseradish"] != 1 || res.DonationNeed["Daffodil"] != 1 {
		t.Errorf("spring foraging needs = %v", res.DonationNeed)
	}
	if res.DonationNeed["Wood"] != 198 || len(res.DonationSources["Wood"]) != 2 {
		t.Errorf("duplicate entries should add up: need %d, sources %v", res.DonationNeed["Wood"], res.DonationSources["Wood"])
	}
	if _, ok := res.DonationNeed["Wine"]; ok {
		t.Error("quality requirements must not be summed into the plain need")
	}
	if got := res.QualityNeeds("Wine"); got[domain.QualitySilver] != 1 {
		t.Errorf("QualityNeeds(Wine) = %v", got)
	}
	if got := res.DonationNotes["Daffodil"]; len(got) != 1 || got[0].Name != "Spring Foraging" {
		t.Errorf("notes = %+v", got)
	}
	if len(res.UnknownItems) != 1 || res.UnknownItems[0] != "Sunflower" {
		t.Errorf("UnknownItems = %v", res.UnknownItems)
	}
}

func TestCompute_IgnoresBundleSelectionByDefault(t *testing.T) {
	cat := testCatalog()
	st := defaultState(cat)
	st.Bundles = selection.NewSet()

	if res := Compute(cat, st, Options{}); res.DonationNeed["Daffodil"] != 1 {
		t.Error("every base bundle should contribute by default")
	}
	if res := Compute(cat, st, Options{SelectedBundlesOnly: true}); res.DonationNeed["Daffodil"] != 0 {
		t.Error("SelectedBundlesOnly should skip unselected bundles")
	}
}

func TestCompute_Substitution(t *testing.T) {
	cat := testCatalog()
	st := defaultState(cat)
	base := Compute(cat, st, Options{})

	st.Rules = []selection.Rule{{BaseBundleID: "spring", ReplacementID: "rm_spring"}}
	res := Compute(cat, st, Options{})

	if res.DonationNeed["Leek"] != 1 {
		t.Errorf("leek need = %d, want 1", res.DonationNeed["Leek"])
	}
	if res.DonationNeed["Wild Horseradish"] != 1 {
		t.Errorf("wild horseradish need = %d, want 1 (not doubled)", res.DonationNeed["Wild Horseradish"])
	}
	src := res.DonationSources["Leek"]
	if len(src) != 1 || src[0].Group != "Remixed Room" || src[0].Name != "Spring Foraging (remix)" {
		t.Errorf("replacement should be attributed to the remix bundle, got %+v", src)
	}
	if _, ok := res.DonationNotes["Daffodil"]; ok {
		t.Error("base bundle notes should be removed with the base bundle")
	}

	// Reverting by clearing the replacement restores the base result.
	st.Rules = []selection.Rule{{BaseBundleID: "spring"}}
	reverted := Compute(cat, st, Options{})
	if reverted.DonationNeed["Leek"] != 0 {
		t.Errorf("leek need after revert = %d, want 0", reverted.DonationNeed["Leek"])
	}
	if !reverted.Equal(base) {
		t.Error("applying then reverting a rule should restore the original result")
	}
}

func TestCompute_AutoResolve(t *testing.T) {
	cat := testCatalog()
	st := defaultState(cat)
	st.Rules = []selection.Rule{{BaseBundleID: "spring", AutoResolve: true}}

	if res := Compute(cat, st, Options{}); res.DonationNeed["Leek"] != 1 {
		t.Error("auto rule should resolve to the unique candidate")
	}
}

func TestCompute_SlotLimited(t *testing.T) {
	cat := testCatalog()
	st := defaultState(cat)

	st.Rules = []selection.Rule{{BaseBundleID: "dye", ReplacementID: "rm_dye"}}
	res := Compute(cat, st, Options{})
	for _, item := range []string{"A", "B", "C", "D", "E"} {
		if res.DonationNeed[item] != 0 {
			t.Errorf("%s should not contribute without picks", item)
		}
	}
	if len(res.Withheld) != 1 || !strings.Contains(res.Withheld[0].Reason, "pick 3 of 5") {
		t.Errorf("Withheld = %+v", res.Withheld)
	}
	if len(res.DonationSources["Sunflower"]) != 1 {
		t.Error("a withheld rule must leave the base bundle in place")
	}

	st.Rules = []selection.Rule{{BaseBundleID: "dye", ReplacementID: "rm_dye", Picked: []string{"B", "D", "E"}}}
	res = Compute(cat, st, Options{})
	want := map[string]int{"A": 0, "B": 2, "C": 0, "D": 4, "E": 5, "Sunflower": 0}
	for item, n := range want {
		if got := res.DonationNeed[item]; got != n {
			t.Errorf("need[%s] = %d, want %d", item, got, n)
		}
	}
	if len(res.Withheld) != 0 {
		t.Errorf("unexpected withheld rules: %+v", res.Withheld)
	}
}

func TestCompute_WithheldRules(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		name  string
		rules []selection.Rule
	}{
		{"unknown replacement", []selection.Rule{{BaseBundleID: "spring", ReplacementID: "nope"}}},
		{"replacement for another base", []selection.Rule{{BaseBundleID: "spring", ReplacementID: "rm_dye"}}},
		{"no picks and a duplicate rule", []selection.Rule{{BaseBundleID: "dye", AutoResolve: true}, {BaseBundleID: "dye", AutoResolve: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := defaultState(cat)
			st.Rules = tt.rules
			res := Compute(cat, st, Options{})
			if len(res.Withheld) != len(tt.rules) {
				t.Errorf("Withheld = %+v", res.Withheld)
			}
			if res.DonationNeed["Daffodil"] != 1 {
				t.Error("withheld rules must not change the base contribution")
			}
		})
	}
}

func TestCompute_RemixUsedOnce(t *testing.T) {
	cat := testCatalog()
	st := defaultState(cat)
	st.Rules = []selection.Rule{
		{BaseBundleID: "construction", ReplacementID: "rm_wood"},
		{BaseBundleID: "missing", ReplacementID: "rm_wood"},
	}
	res := Compute(cat, st, Options{})

	if res.DonationNeed["Wood"] != 10 {
		t.Errorf("wood need = %d, want 10", res.DonationNeed["Wood"])
	}
	if len(res.Withheld) != 1 || res.Withheld[0].BaseBundleID != "missing" {
		t.Errorf("second use of the same remix should be withheld, got %+v", res.Withheld)
	}
	if res.QualityNeeds("Wine")[domain.QualitySilver] != 1 {
		t.Error("withheld rule must keep the quality requirement")
	}
}

func TestCompute_QualityRemoval(t *testing.T) {
	cat := testCatalog()
	st := defaultState(cat)
	st.Rules = []selection.Rule{{BaseBundleID: "missing", ReplacementID: "rm_wood"}}
	res := Compute(cat, st, Options{})

	if _, ok := res.Quality["Wine"]; ok {
		t.Errorf("quality lines of the replaced bundle should be removed: %+v", res.Quality)
	}
	if res.DonationNeed["Wood"] != 198+10 {
		t.Errorf("wood need = %d", res.DonationNeed["Wood"])
	}
}

func TestCompute_Quests(t *testing.T) {
	cat := testCatalog()
	st := defaultState(cat)
	st.Quests = selection.NewSet("q1", "q2")
	res := Compute(cat, st, Options{})

	if res.QuestNeed["Melon"] != 3 || len(res.QuestSources["Melon"]) != 2 {
		t.Errorf("melon quest need = %d, sources %+v", res.QuestNeed["Melon"], res.QuestSources["Melon"])
	}
	if res.QuestNeed["Pumpkin"] != 0 {
		t.Error("unselected quests must not contribute")
	}
	if len(res.QuestNotes["Melon"]) != 1 {
		t.Errorf("quest notes = %+v", res.QuestNotes["Melon"])
	}
	if _, ok := res.DonationNeed["Melon"]; ok {
		t.Error("quest needs must stay out of the donation map")
	}
}

func TestCompute_Idempotent(t *testing.T) {
	cat := testCatalog()
	st := defaultState(cat)
	st.Rules = []selection.Rule{
		{BaseBundleID: "spring", AutoResolve: true},
		{BaseBundleID: "dye", ReplacementID: "rm_dye", Picked: []string{"A"}},
	}

	first := Compute(cat, st, Options{})
	second := Compute(cat, st, Options{})
	if !first.Equal(second) {
		t.Error("Compute should be deterministic for the same inputs")
	}
}

func TestSourceLines(t *testing.T) {
	cat := testCatalog()
	res := Compute(cat, defaultState(cat), Options{})

	lines := res.SourceLines("Melon")
	if len(lines) != 2 || lines[0] != "Story / Crop Research ×1" {
		t.Errorf("SourceLines(Melon) = %v", lines)
	}
	if lines := res.SourceLines("Wine"); len(lines) != 1 || !strings.HasSuffix(lines[0], "(silver)") {
		t.Errorf("SourceLines(Wine) = %v", lines)
	}
	if got := res.NoteLines("Melon"); len(got) != 1 || got[0] != "Story / Big Melon: any quality" {
		t.Errorf("NoteLines(Melon) = %v", got)
	}
}
