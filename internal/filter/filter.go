// Package filter selects which ledger rows are shown.
package filter

import (
	"strings"
	"unicode"

	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/ledger"
)

// AllSeasons marks an item available in every season. It always passes the
// season filter and is never offered as a season option.
const AllSeasons = "all"

// allSeasonsAliases are accepted spellings of AllSeasons.
var allSeasonsAliases = []string{AllSeasons, "四季"}

// FishingToken is the category token that enables the water and weather filters.
const FishingToken = "fishing"

// Tokens splits a season, category, water or weather cell into tokens.
func Tokens(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case ';', '/', '、':
			return true
		default:
			return unicode.IsSpace(r)
		}
	})
}

// IsAllSeasons reports whether a token means every season
func IsAllSeasons(tok string) bool {
	for _, a := range allSeasonsAliases {
		if strings.EqualFold(tok, a) {
			return true
		}
	}
	return false
}

// Filter is a row filter. Empty token lists do not filter.
type Filter struct {
	Seasons    []string          `json:"seasons,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	Visible    []domain.Category `json:"visible"`
	Water      []string          `json:"water,omitempty"`
	Weather    []string          `json:"weather,omitempty"`
	// Query keeps items whose name contains it, case-insensitively.
	Query string `json:"query,omitempty"`
	// Tags keeps items carrying every listed tag.
	Tags domain.TagSet `json:"tags,omitempty"`
}

// Match reports whether the item row is shown.
func (f Filter) Match(it *ledger.Item) bool {
	if len(f.Visible) == 0 {
		return false
	}

	if seasons := Tokens(it.Season); len(f.Seasons) > 0 && len(seasons) > 0 {
		all := false
		for _, s := range seasons {
			if IsAllSeasons(s) {
				all = true
				break
			}
		}
		if !all && !intersects(seasons, f.Seasons) {
			return false
		}
	}

	cats := Tokens(it.Category)
	if len(f.Categories) > 0 && len(cats) > 0 && !intersects(cats, f.Categories) {
		return false
	}

	if contains(cats, FishingToken) {
		if water := Tokens(it.Water); len(f.Water) > 0 && len(water) > 0 && !intersects(water, f.Water) {
			return false
		}
		if weather := Tokens(it.Weather); len(f.Weather) > 0 && len(weather) > 0 && !intersects(weather, f.Weather) {
			return false
		}
	}

	if f.Query != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Query)) {
		return false
	}
	if f.Tags != 0 && it.Tags&f.Tags != f.Tags {
		return false
	}
	return true
}

func intersects(have, want []string) bool {
	for _, h := range have {
		if contains(want, h) {
			return true
		}
	}
	return false
}

func contains(list []string, tok string) bool {
	for _, s := range list {
		if strings.EqualFold(s, tok) {
			return true
		}
	}
	return false
}

// Choices lists the filter values present in a ledger, in first-seen order.
type Choices struct {
	Seasons    []string          `json:"seasons"`
	Categories []string          `json:"categories"`
	Needs      []domain.Category `json:"needs"`
	Water      []string          `json:"water"`
	Weather    []string          `json:"weather"`
}

// Options collects the available filter choices from the ledger items.
func Options(l *ledger.Ledger) Choices {
	ch := Choices{Needs: l.Categories()}
	add := func(list *[]string, raw string) {
		for _, tok := range Tokens(raw) {
			if !contains(*list, tok) {
				*list = append(*list, tok)
			}
		}
	}
	for _, it := range l.Items() {
		for _, tok := range Tokens(it.Season) {
			if !IsAllSeasons(tok) && !contains(ch.Seasons, tok) {
				ch.Seasons = append(ch.Seasons, tok)
			}
		}
		add(&ch.Categories, it.Category)
		if contains(Tokens(it.Category), FishingToken) {
			add(&ch.Water, it.Water)
			add(&ch.Weather, it.Weather)
		}
	}
	return ch
}

// Default shows every row with every need category visible.
func Default(l *ledger.Ledger) Filter {
	return Filter{Visible: l.Categories()}
}
