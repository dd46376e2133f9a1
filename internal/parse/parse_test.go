package parse

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lherron/farmlist/internal/domain"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:  "valid JSON object",
			input: `{"donations": []}`,
			want:  FormatJSON,
		},
		{
			name:    "invalid JSON returns error",
			input:   `{not valid json}`,
			wantErr: true,
		},
		{
			name: "YAML structure",
			input: `donations:
  - id: crafts
    name: Crafts Room`,
			want: FormatYAML,
		},
		{
			name:    "plain text is not definitions",
			input:   "Just some plain text",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("DetectFormat() expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

const sampleDefinitions = `{
  "donations": [
    {"id": "crafts", "name": "Crafts Room", "bundles": [
      {"id": "spring", "name": "Spring Foraging", "items": [
        {"name": "Wild Horseradish", "count": 1},
        {"name": "Daffodil", "count": "1"},
        {"name": "Leek"}
      ], "notes": [{"item": "Daffodil", "text": "spring only"}]}
    ]}
  ],
  "remixes": [
    {"id": "crafts_rm", "name": "Crafts Room", "bundles": [
      {"id": "rm_spring", "name": "Spring Foraging (remix)", "baseBundleId": "spring", "needSlots": 4,
       "items": [{"name": "Leek", "count": 1}]},
      {"id": "rm_multi", "name": "Treasure", "baseBundleIds": ["a", "b"],
       "items": [{"name": "Ruby", "quality": "gold", "qCount": 2}]}
    ]}
  ],
  "quests": [
    {"id": "story", "name": "Story", "quests": [
      {"id": "q1", "name": "Jodi's Request", "items": [{"name": "Cauliflower", "count": 1}]}
    ]}
  ],
  "itemNotes": {
    "Grape": {"kind": "recipe", "n": 1, "as": "Wine", "machine": "Keg", "days": 7},
    "Leek": "forage in spring"
  }
}`

func TestReadDefinitionsJSON(t *testing.T) {
	defs, err := ReadDefinitionsJSON([]byte(sampleDefinitions))
	if err != nil {
		t.Fatalf("ReadDefinitionsJSON() error: %v", err)
	}

	if len(defs.Donations) != 1 || len(defs.Donations[0].Bundles) != 1 {
		t.Fatalf("unexpected donations: %+v", defs.Donations)
	}
	spring := defs.Donations[0].Bundles[0]
	if len(spring.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(spring.Entries))
	}
	if spring.Entries[1].Count != 1 {
		t.Errorf("string count should parse, got %d", spring.Entries[1].Count)
	}
	if spring.Entries[2].Count != 0 {
		t.Errorf("missing count should default to 0, got %d", spring.Entries[2].Count)
	}
	if len(spring.Notes) != 1 || spring.Notes[0].Text != "spring only" {
		t.Errorf("unexpected notes: %+v", spring.Notes)
	}

	remixes := defs.Remixes[0].Bundles
	if got := remixes[0].BaseBundleIDs; len(got) != 1 || got[0] != "spring" {
		t.Errorf("single base id not read: %v", got)
	}
	if remixes[0].NeedSlots != 4 {
		t.Errorf("NeedSlots = %d, want 4", remixes[0].NeedSlots)
	}
	if got := remixes[1].BaseBundleIDs; len(got) != 2 {
		t.Errorf("base id list not read: %v", got)
	}
	if e := remixes[1].Entries[0]; e.Quality != domain.QualityGold || e.QualityCount != 2 {
		t.Errorf("quality entry not read: %+v", e)
	}

	if len(defs.Quests) != 1 || defs.Quests[0].Quests[0].ID != "q1" {
		t.Errorf("unexpected quests: %+v", defs.Quests)
	}

	if n := defs.ItemNotes["Grape"]; n.Kind != domain.ItemNoteRecipe || n.Machine != "Keg" || n.Days != 7 {
		t.Errorf("recipe note not read: %+v", n)
	}
	if n := defs.ItemNotes["Leek"]; n.Kind != domain.ItemNoteText || n.Text != "forage in spring" {
		t.Errorf("string note not read: %+v", n)
	}
}

func TestReadDefinitionsJSON_Invalid(t *testing.T) {
	if _, err := ReadDefinitionsJSON([]byte(`{"donations": [`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestReadDefinitionsYAML(t *testing.T) {
	input := `donations:
  - id: crafts
    name: Crafts Room
    bundles:
      - id: spring
        name: Spring Foraging
        items:
          - name: Leek
            count: 2
quests:
  - id: story
    name: Story
    quests:
      - id: q1
        name: First
        items:
          - {name: Melon, count: 1}
`
	defs, err := ReadDefinitions([]byte(input), "")
	if err != nil {
		t.Fatalf("ReadDefinitions() error: %v", err)
	}
	if got := defs.Donations[0].Bundles[0].Entries[0]; got.Item != "Leek" || got.Count != 2 {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got := defs.Quests[0].Quests[0].Entries[0]; got.Item != "Melon" || got.Count != 1 {
		t.Errorf("unexpected quest entry: %+v", got)
	}
}

func TestReadItemsCSV(t *testing.T) {
	input := "name,season,category,favorite,remark,note,need_donation,need_recipe,need_totem\n" +
		"Leek,spring,forage,Abigail,xz,,1,2,x\n" +
		",spring,forage,,,,1,1,1\n" +
		"Hops,summer,crop,,,brew it,,abc,-3\n"

	table, err := ReadItemsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadItemsCSV() error: %v", err)
	}
	if table.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", table.Skipped)
	}
	if len(table.Categories) != 3 || table.Categories[2] != "totem" {
		t.Errorf("Categories = %v", table.Categories)
	}
	if len(table.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(table.Records))
	}

	leek := table.Records[0]
	if leek.Needs[domain.CategoryRecipe].Count != 2 {
		t.Errorf("recipe need = %v", leek.Needs[domain.CategoryRecipe])
	}
	if !leek.Needs[domain.CategoryTotem].Unbounded {
		t.Errorf("totem need should be unbounded")
	}
	if !leek.Tags.Has(domain.TagDoNotSell) || !leek.Tags.Has(domain.TagSeasonInsensitive) {
		t.Errorf("tags = %v", leek.Tags.Names())
	}

	hops := table.Records[1]
	for _, c := range table.Categories {
		if n := hops.Needs[c]; n.Count != 0 || n.Unbounded {
			t.Errorf("malformed %s cell should default to 0, got %+v", c, n)
		}
	}
	if hops.Note != "brew it" {
		t.Errorf("Note = %q", hops.Note)
	}
}

func TestWriteItemsCSV_RoundTrip(t *testing.T) {
	cats := []domain.Category{domain.CategoryDonation, domain.CategoryTotem}
	records := []domain.ItemRecord{{
		Name:   "Wood",
		Season: "all",
		Tags:   domain.ParseRemark("x"),
		Needs: map[domain.Category]domain.Need{
			domain.CategoryDonation: domain.Counted(99),
			domain.CategoryTotem:    domain.UnboundedNeed(),
		},
	}}

	var buf bytes.Buffer
	if err := WriteItemsCSV(&buf, cats, records); err != nil {
		t.Fatalf("WriteItemsCSV() error: %v", err)
	}
	table, err := ReadItemsCSV(&buf)
	if err != nil {
		t.Fatalf("ReadItemsCSV() error: %v", err)
	}
	got := table.Records[0]
	if got.Needs[domain.CategoryDonation].Count != 99 || !got.Needs[domain.CategoryTotem].Unbounded || !got.Tags.Has(domain.TagDoNotSell) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
