// Package snapshot provides canonical JSON snapshots of tracker state and
// portable catalog dumps.
//
// Snapshots are deterministic: the same state always encodes to the same
// bytes, and the sha256 of those bytes is the snapshot rev.
package snapshot

import (
	"time"

	"github.com/lherron/farmlist/internal/aggregate"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/ledger"
	"github.com/lherron/farmlist/internal/notes"
	"github.com/lherron/farmlist/internal/selection"
)

// SchemaVersion is bumped whenever the snapshot shape changes.
const SchemaVersion = 1

// Meta contains snapshot metadata.
type Meta struct {
	SchemaVersion int    `json:"schema_version"`
	SnapshotRev   string `json:"snapshot_rev,omitempty"`
	GeneratedAt   string `json:"generated_at,omitempty"`
}

// Snapshot is the complete state of one tracker.
type Snapshot struct {
	Meta         Meta                 `json:"meta"`
	Categories   []domain.Category    `json:"categories"`
	Selection    selection.State      `json:"selection"`
	Pending      *selection.State     `json:"pending,omitempty"`
	Items        []ledger.Item        `json:"items"`
	Withheld     []aggregate.Withheld `json:"withheld,omitempty"`
	UnknownItems []string             `json:"unknown_items,omitempty"`
	Notes        []notes.Note         `json:"notes,omitempty"`
}

// CatalogDump is a self-contained catalog export.
type CatalogDump struct {
	Meta        Meta                `json:"meta"`
	Categories  []domain.Category   `json:"categories"`
	Items       []domain.ItemRecord `json:"items"`
	Definitions domain.Definitions  `json:"definitions"`
}

// ExportOptions configures catalog export behavior.
type ExportOptions struct {
	// OutputPath is the file to write to (default: farmlist-catalog.json)
	OutputPath string
	// Canonical enables canonical JSON instead of indented output
	Canonical bool
	// Zstd compresses the dump; implied by a .zst output path
	Zstd bool
}

// ExportResult contains the result of an export operation.
type ExportResult struct {
	OutputPath  string `json:"out"`
	SnapshotRev string `json:"snapshot_rev"`
	ItemCount   int    `json:"items"`
	BundleCount int    `json:"bundles"`
	RemixCount  int    `json:"remixes"`
	QuestCount  int    `json:"quests"`
	Compressed  bool   `json:"compressed,omitempty"`
	Bytes       int    `json:"bytes"`
}

// ImportResult contains the result of reading a catalog dump.
type ImportResult struct {
	InputPath   string `json:"from"`
	SnapshotRev string `json:"snapshot_rev"`
	ItemCount   int    `json:"items"`
	BundleCount int    `json:"bundles"`
	RemixCount  int    `json:"remixes"`
	QuestCount  int    `json:"quests"`
	Compressed  bool   `json:"compressed,omitempty"`
}

// DefaultOutputPath is the default catalog dump location.
const DefaultOutputPath = "farmlist-catalog.json"

// FormatTimestamp formats a time.Time as ISO-8601 with Z suffix.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func countDefinitions(defs domain.Definitions) (bundles, remixes, quests int) {
	for _, g := range defs.Donations {
		bundles += len(g.Bundles)
	}
	for _, g := range defs.Remixes {
		remixes += len(g.Bundles)
	}
	for _, g := range defs.Quests {
		quests += len(g.Quests)
	}
	return bundles, remixes, quests
}
