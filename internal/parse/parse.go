package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lherron/farmlist/internal/domain"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format represents supported definition formats
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat attempts to determine the format of definition data
// Returns an error if the format cannot be reliably determined
func DetectFormat(data []byte) (Format, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "", fmt.Errorf("empty definitions")
	}

	// Check for JSON - validate it's actually valid JSON
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if gjson.Valid(trimmed) {
			return FormatJSON, nil
		}
		// If it starts with { but isn't valid JSON, that's an error
		return "", fmt.Errorf("input appears to be JSON but is invalid")
	}

	// YAML parser is very permissive - plain text is valid YAML
	// Only treat as YAML if it has structure (map)
	var yamlTest interface{}
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		if _, ok := yamlTest.(map[string]interface{}); ok {
			return FormatYAML, nil
		}
	}

	return "", fmt.Errorf("unrecognized definitions format")
}

// ReadDefinitions parses definitions in the specified format
// If format is empty, auto-detects the format
func ReadDefinitions(data []byte, format string) (domain.Definitions, error) {
	var detected Format
	if format == "" {
		f, err := DetectFormat(data)
		if err != nil {
			return domain.Definitions{}, err
		}
		detected = f
	} else {
		detected = Format(format)
	}

	switch detected {
	case FormatJSON:
		return ReadDefinitionsJSON(data)
	case FormatYAML, "yml":
		return ReadDefinitionsYAML(data)
	default:
		return domain.Definitions{}, fmt.Errorf("unsupported format: %s", format)
	}
}

// ReadDefinitionsYAML parses YAML definitions by converting them to JSON
// and reading them with the same tolerant rules as ReadDefinitionsJSON.
func ReadDefinitionsYAML(data []byte) (domain.Definitions, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Definitions{}, fmt.Errorf("invalid YAML: %w", err)
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return domain.Definitions{}, fmt.Errorf("failed to convert YAML definitions: %w", err)
	}
	return ReadDefinitionsJSON(js)
}

// ReadDefinitionsJSON parses JSON definitions. Only the document itself must be
// valid JSON; missing or ill-typed fields default to zero values.
func ReadDefinitionsJSON(data []byte) (domain.Definitions, error) {
	if !gjson.ValidBytes(data) {
		return domain.Definitions{}, fmt.Errorf("invalid JSON definitions")
	}
	root := gjson.ParseBytes(data)

	var defs domain.Definitions

	root.Get("donations").ForEach(func(_, g gjson.Result) bool {
		group := domain.BundleGroup{
			ID:   g.Get("id").String(),
			Name: g.Get("name").String(),
		}
		g.Get("bundles").ForEach(func(_, b gjson.Result) bool {
			group.Bundles = append(group.Bundles, readBundle(b))
			return true
		})
		defs.Donations = append(defs.Donations, group)
		return true
	})

	root.Get("remixes").ForEach(func(_, g gjson.Result) bool {
		group := domain.RemixGroup{
			ID:   g.Get("id").String(),
			Name: g.Get("name").String(),
		}
		g.Get("bundles").ForEach(func(_, b gjson.Result) bool {
			remix := domain.RemixBundle{
				Bundle:    readBundle(b),
				NeedSlots: int(b.Get("needSlots").Int()),
			}
			// Both a single baseBundleId and a baseBundleIds list are accepted.
			if base := b.Get("baseBundleId").String(); base != "" {
				remix.BaseBundleIDs = append(remix.BaseBundleIDs, base)
			}
			b.Get("baseBundleIds").ForEach(func(_, id gjson.Result) bool {
				if s := id.String(); s != "" {
					remix.BaseBundleIDs = append(remix.BaseBundleIDs, s)
				}
				return true
			})
			group.Bundles = append(group.Bundles, remix)
			return true
		})
		defs.Remixes = append(defs.Remixes, group)
		return true
	})

	root.Get("quests").ForEach(func(_, g gjson.Result) bool {
		group := domain.QuestGroup{
			ID:   g.Get("id").String(),
			Name: g.Get("name").String(),
		}
		g.Get("quests").ForEach(func(_, q gjson.Result) bool {
			group.Quests = append(group.Quests, domain.Quest{
				ID:      q.Get("id").String(),
				Name:    q.Get("name").String(),
				Entries: readEntries(q.Get("items")),
				Notes:   readNotes(q.Get("notes")),
			})
			return true
		})
		defs.Quests = append(defs.Quests, group)
		return true
	})

	if notes := root.Get("itemNotes"); notes.IsObject() {
		defs.ItemNotes = make(map[string]domain.ItemNote)
		notes.ForEach(func(k, v gjson.Result) bool {
			defs.ItemNotes[k.String()] = readItemNote(v)
			return true
		})
	}

	return defs, nil
}

func readBundle(b gjson.Result) domain.Bundle {
	return domain.Bundle{
		ID:      b.Get("id").String(),
		Name:    b.Get("name").String(),
		Entries: readEntries(b.Get("items")),
		Notes:   readNotes(b.Get("notes")),
	}
}

func readEntries(items gjson.Result) []domain.Entry {
	var out []domain.Entry
	items.ForEach(func(_, e gjson.Result) bool {
		out = append(out, domain.Entry{
			Item:         strings.TrimSpace(e.Get("name").String()),
			Count:        int(e.Get("count").Int()),
			Quality:      domain.Quality(e.Get("quality").String()),
			QualityCount: int(e.Get("qCount").Int()),
		})
		return true
	})
	return out
}

func readNotes(notes gjson.Result) []domain.EntryNote {
	var out []domain.EntryNote
	notes.ForEach(func(_, n gjson.Result) bool {
		out = append(out, domain.EntryNote{
			Item: n.Get("item").String(),
			Text: n.Get("text").String(),
		})
		return true
	})
	return out
}

func readItemNote(v gjson.Result) domain.ItemNote {
	if v.Type == gjson.String {
		return domain.ItemNote{Kind: domain.ItemNoteText, Text: v.String()}
	}
	kind := domain.ItemNoteKind(v.Get("kind").String())
	if kind != domain.ItemNoteRecipe {
		kind = domain.ItemNoteText
	}
	return domain.ItemNote{
		Kind:    kind,
		Text:    v.Get("text").String(),
		N:       int(v.Get("n").Int()),
		As:      v.Get("as").String(),
		Machine: v.Get("machine").String(),
		Days:    int(v.Get("days").Int()),
		Extra:   v.Get("extra").String(),
	}
}
