package catalog

import (
	"testing"

	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/testutil"
)

func sampleCatalog() *Catalog {
	items := []domain.ItemRecord{
		{Name: "Leek", Season: "spring"},
		{Name: "Leek", Season: "winter"},
		{Name: ""},
		{Name: "Daffodil"},
	}
	defs := domain.Definitions{
		Donations: []domain.BundleGroup{{
			ID: "crafts", Name: "Crafts Room",
			Bundles: []domain.Bundle{
				{ID: "spring", Name: "Spring Foraging", Entries: []domain.Entry{{Item: "Leek", Count: 1}}},
				{ID: "spring", Name: "Duplicate"},
				{ID: "summer", Name: "Summer Foraging"},
			},
		}},
		Remixes: []domain.RemixGroup{{
			ID: "crafts_rm", Name: "Crafts Room",
			Bundles: []domain.RemixBundle{
				{Bundle: domain.Bundle{ID: "rm_a"}, BaseBundleIDs: []string{"spring"}},
				{Bundle: domain.Bundle{ID: "rm_b"}, BaseBundleIDs: []string{"spring", "summer"}},
			},
		}},
		Quests: []domain.QuestGroup{{
			ID: "story", Name: "Story",
			Quests: []domain.Quest{{ID: "q1"}, {ID: "q2"}},
		}},
	}
	return Build([]domain.Category{domain.CategoryDonation, "tribute"}, items, defs)
}

func TestBuild_FirstOccurrenceWins(t *testing.T) {
	c := sampleCatalog()

	if got := c.ItemNames(); len(got) != 2 || got[0] != "Leek" || got[1] != "Daffodil" {
		t.Fatalf("ItemNames() = %v", got)
	}
	leek, ok := c.Item("Leek")
	if !ok || leek.Season != "spring" {
		t.Errorf("Item(Leek) = %+v, %v", leek, ok)
	}

	ref, ok := c.Bundle("spring")
	if !ok || ref.Bundle.Name != "Spring Foraging" || ref.GroupName != "Crafts Room" {
		t.Errorf("Bundle(spring) = %+v, %v", ref, ok)
	}
}

func TestBuild_Categories(t *testing.T) {
	cats := sampleCatalog().Categories()
	if len(cats) != len(domain.DefaultCategories)+1 {
		t.Fatalf("Categories() = %v", cats)
	}
	if cats[0] != domain.CategoryDonation || cats[len(cats)-1] != "tribute" {
		t.Errorf("unexpected category order: %v", cats)
	}
}

func TestRemixCandidates(t *testing.T) {
	c := sampleCatalog()

	tests := []struct {
		base string
		want int
	}{
		{"spring", 2},
		{"summer", 1},
		{"unknown", 0},
	}
	for _, tt := range tests {
		if got := c.RemixCandidates(tt.base); len(got) != tt.want {
			t.Errorf("RemixCandidates(%q) = %d candidates, want %d", tt.base, len(got), tt.want)
		}
	}
}

func TestGroupIDs(t *testing.T) {
	c := sampleCatalog()

	if got := c.BundleGroupIDs("Crafts Room"); len(got) != 3 {
		t.Errorf("BundleGroupIDs by name = %v", got)
	}
	if got := c.BundleGroupIDs("nope"); got != nil {
		t.Errorf("unknown group should return nil, got %v", got)
	}
	if got := c.QuestGroupIDs("story"); len(got) != 2 {
		t.Errorf("QuestGroupIDs = %v", got)
	}
	if got := c.DefaultQuestIDs(); len(got) != 2 {
		t.Errorf("DefaultQuestIDs = %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	c, err := LoadDefaults()
	testutil.AssertNoError(t, err)

	if len(c.Items()) == 0 {
		t.Fatal("embedded catalog has no items")
	}
	if !c.HasBundle("cr_spring_foraging") {
		t.Error("embedded catalog is missing cr_spring_foraging")
	}
	if got := c.RemixCandidates("cr_spring_foraging"); len(got) != 1 {
		t.Errorf("expected one remix for spring foraging, got %d", len(got))
	}
	if ref, ok := c.Remix("rm_bb_dye"); !ok || !ref.Bundle.SlotLimited() {
		t.Errorf("rm_bb_dye should be slot limited: %+v", ref)
	}
	if n, ok := c.ItemNote("Grape"); !ok || n.Kind != domain.ItemNoteRecipe {
		t.Errorf("Grape note = %+v, %v", n, ok)
	}
}

func TestLoadDir(t *testing.T) {
	dir := testutil.CatalogDir(t, "name,season,need_donation\nLeek,spring,0\n", `donations:
  - id: crafts
    name: Crafts Room
    bundles:
      - id: spring
        name: Spring
        items:
          - {name: Leek, count: 1}
`)

	c, err := LoadDir(dir)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, true, c.HasItem("Leek"))
	testutil.AssertEqual(t, true, c.HasBundle("spring"))
}

func TestLoadDir_MissingDefinitions(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, ItemsFile, "name\nLeek\n")

	_, err := LoadDir(dir)
	testutil.AssertError(t, err)
}
