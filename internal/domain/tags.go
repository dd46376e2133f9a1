package domain

import "strings"

// Tag is an item capability marker drawn from a fixed vocabulary
type Tag uint8

const (
	TagDoNotSell Tag = 1 << iota
	TagDoNotKeep
	TagSeasonInsensitive
)

// TagDef describes a tag and the remark character that encodes it.
type TagDef struct {
	Tag   Tag
	Code  rune
	Name  string
	Label string
	Hint  string
}

// TagVocabulary is the fixed set of tags understood in catalog remarks.
var TagVocabulary = []TagDef{
	{Tag: TagDoNotSell, Code: 'x', Name: "do-not-sell", Label: "keep", Hint: "resource: keep all of them, no need to sell"},
	{Tag: TagDoNotKeep, Code: 'y', Name: "do-not-keep", Label: "no stock", Hint: "many sources: make or fetch when needed"},
	{Tag: TagSeasonInsensitive, Code: 'z', Name: "season-insensitive", Label: "any season", Hint: "stable output once production starts"},
}

func (t Tag) String() string {
	for _, def := range TagVocabulary {
		if def.Tag == t {
			return def.Name
		}
	}
	return "unknown"
}

// TagSet is a set of tags
type TagSet uint8

// ParseRemark maps remark characters onto the tag vocabulary.
// Characters outside the vocabulary are ignored.
func ParseRemark(remark string) TagSet {
	var s TagSet
	for _, r := range strings.ToLower(remark) {
		for _, def := range TagVocabulary {
			if def.Code == r {
				s = s.Add(def.Tag)
			}
		}
	}
	return s
}

// ParseTagNames builds a set from tag names, ignoring unknown names
func ParseTagNames(names []string) TagSet {
	var s TagSet
	for _, n := range names {
		for _, def := range TagVocabulary {
			if def.Name == n {
				s = s.Add(def.Tag)
			}
		}
	}
	return s
}

// Has reports whether the set contains the tag
func (s TagSet) Has(t Tag) bool {
	return s&TagSet(t) != 0
}

// Add returns the set with the tag added
func (s TagSet) Add(t Tag) TagSet {
	return s | TagSet(t)
}

// List returns the tags in vocabulary order
func (s TagSet) List() []Tag {
	var out []Tag
	for _, def := range TagVocabulary {
		if s.Has(def.Tag) {
			out = append(out, def.Tag)
		}
	}
	return out
}

// Names returns the tag names in vocabulary order
func (s TagSet) Names() []string {
	var out []string
	for _, t := range s.List() {
		out = append(out, t.String())
	}
	return out
}
