package domain

// ItemRecord is a static catalog row describing one tracked item.
type ItemRecord struct {
	Name     string            `json:"name" yaml:"name"`
	Season   string            `json:"season,omitempty" yaml:"season,omitempty"`
	Category string            `json:"category,omitempty" yaml:"category,omitempty"`
	Favorite string            `json:"favorite,omitempty" yaml:"favorite,omitempty"`
	Note     string            `json:"note,omitempty" yaml:"note,omitempty"`
	Water    string            `json:"water,omitempty" yaml:"water,omitempty"`
	Weather  string            `json:"weather,omitempty" yaml:"weather,omitempty"`
	Tags     TagSet            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Needs    map[Category]Need `json:"needs,omitempty" yaml:"needs,omitempty"`
}

// Definitions holds the bundle, remix, quest and item-note definitions of a catalog.
type Definitions struct {
	Donations []BundleGroup       `json:"donations" yaml:"donations"`
	Remixes   []RemixGroup        `json:"remixes" yaml:"remixes"`
	Quests    []QuestGroup        `json:"quests" yaml:"quests"`
	ItemNotes map[string]ItemNote `json:"itemNotes,omitempty" yaml:"itemNotes,omitempty"`
}
