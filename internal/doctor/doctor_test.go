package doctor

import (
	"strings"
	"testing"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
)

func find(r *Report, name string) CheckResult {
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	return CheckResult{}
}

func TestCheck_Defaults(t *testing.T) {
	cat, err := catalog.LoadDefaults()
	if err != nil {
		t.Fatalf("LoadDefaults() error: %v", err)
	}
	r := Check(cat)
	if r.OverallStatus != StatusOK {
		for _, c := range r.Checks {
			if c.Status != StatusOK {
				t.Errorf("%s: %s %v", c.Name, c.Message, c.Details)
			}
		}
	}
}

func TestCheck_Findings(t *testing.T) {
	items := []domain.ItemRecord{{Name: "Sunflower"}, {Name: "Leek"}}
	defs := domain.Definitions{
		Donations: []domain.BundleGroup{{ID: "g", Bundles: []domain.Bundle{
			{ID: "dye", Entries: []domain.Entry{{Item: "Sunflwer", Count: 1}}},
			{ID: "dye", Entries: []domain.Entry{{Item: "Leek", Count: 1}}},
			{ID: "empty"},
			{ID: "leek", Entries: []domain.Entry{{Item: "Leek", Count: 1}}},
		}}},
		Remixes: []domain.RemixGroup{{ID: "rm", Bundles: []domain.RemixBundle{
			{Bundle: domain.Bundle{ID: "rm_dye", Entries: []domain.Entry{{Item: "Leek", Count: 1}}}, BaseBundleIDs: []string{"nope"}, NeedSlots: 3},
		}}},
		Quests: []domain.QuestGroup{{ID: "q", Quests: []domain.Quest{
			{ID: "q1", Entries: []domain.Entry{{Item: "Leek", Quality: "platinum", QualityCount: 1}}},
		}}},
		ItemNotes: map[string]domain.ItemNote{"Ghost": {Kind: domain.ItemNoteText, Text: "boo"}},
	}
	r := Check(catalog.Build(nil, items, defs))

	tests := []struct {
		check  string
		status string
		detail string
	}{
		{"unknown_item", StatusWarning, "did you mean Sunflower?"},
		{"duplicate_id", StatusWarning, "bundle dye defined more than once"},
		{"duplicate_source", StatusWarning, "group g: Leek ×1 in dye, leek"},
		{"dangling_base", StatusError, "unknown base bundle nope"},
		{"bad_slots", StatusWarning, "needs 3 of 1 items"},
		{"empty_bundle", StatusWarning, "bundle empty has no items"},
		{"bad_quality", StatusError, "platinum"},
		{"orphan_note", StatusWarning, "Ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.check, func(t *testing.T) {
			c := find(r, tt.check)
			if c.Status != tt.status {
				t.Fatalf("status = %q, want %q", c.Status, tt.status)
			}
			if !strings.Contains(strings.Join(c.Details, "\n"), tt.detail) {
				t.Errorf("details %v do not mention %q", c.Details, tt.detail)
			}
		})
	}
	if r.OverallStatus != StatusError || r.Errors != 2 || r.Warnings != 6 {
		t.Errorf("report = %s, %d errors, %d warnings", r.OverallStatus, r.Errors, r.Warnings)
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"Leek", "Leeks", "Melon", "Lemon"}
	got := Suggest("leek", names)
	if len(got) != 2 || got[0] != "Leek" || got[1] != "Leeks" {
		t.Errorf("Suggest(leek) = %v", got)
	}
	if got := Suggest("Pumpkin", names); len(got) != 0 {
		t.Errorf("Suggest(Pumpkin) = %v, want none", got)
	}
}

func TestValidateDefinitions(t *testing.T) {
	files, err := catalog.DefaultFiles()
	if err != nil {
		t.Fatalf("DefaultFiles() error: %v", err)
	}
	if c := CheckFiles(files); c.Status != StatusOK {
		t.Errorf("default definitions: %s %v", c.Message, c.Details)
	}

	tests := []struct {
		name    string
		data    string
		format  string
		wantErr bool
	}{
		{"minimal json", `{"donations":[]}`, "json", false},
		{"bad quality", `{"donations":[{"id":"g","bundles":[{"id":"b","items":[{"name":"Leek","quality":"platinum"}]}]}]}`, "json", true},
		{"negative count", `{"quests":[{"id":"g","quests":[{"id":"q","items":[{"name":"Leek","count":-1}]}]}]}`, "json", true},
		{"remix without base", `{"remixes":[{"id":"g","bundles":[{"id":"r","items":[]}]}]}`, "json", true},
		{"yaml", "remixes:\n  - id: g\n    bundles:\n      - id: r\n        baseBundleId: b\n        needSlots: 1\n        items:\n          - name: Leek\n            count: 1\n", "yaml", false},
		{"string item note", `{"itemNotes":{"Wood":"keep two stacks"}}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDefinitions([]byte(tt.data), tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDefinitions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
