package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/lherron/farmlist/internal/catalog"
)

// zstdMagic is the frame header every zstd stream starts with.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// IsCompressed reports whether data is a zstd stream
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// IsDump reports whether data looks like a catalog dump rather than a
// plain definitions document.
func IsDump(data []byte) bool {
	if IsCompressed(data) {
		return true
	}
	var probe struct {
		Meta *Meta `json:"meta"`
	}
	return json.Unmarshal(data, &probe) == nil && probe.Meta != nil
}

// DecodeDump parses a plain or zstd-compressed catalog dump and verifies its rev.
func DecodeDump(data []byte) (*CatalogDump, bool, error) {
	compressed := IsCompressed(data)
	if compressed {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, false, fmt.Errorf("failed to decompress catalog dump: %w", err)
		}
	}

	var d CatalogDump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, compressed, fmt.Errorf("failed to parse catalog dump: %w", err)
	}
	if d.Meta.SchemaVersion > SchemaVersion {
		return nil, compressed, fmt.Errorf("catalog dump schema %d is newer than supported %d", d.Meta.SchemaVersion, SchemaVersion)
	}

	if want := d.Meta.SnapshotRev; want != "" {
		check := d
		if err := SealDump(&check); err != nil {
			return nil, compressed, err
		}
		if check.Meta.SnapshotRev != want {
			return nil, compressed, fmt.Errorf("catalog dump rev mismatch: recorded %s, computed %s", want, check.Meta.SnapshotRev)
		}
	}
	return &d, compressed, nil
}

// ImportCatalog reads a dump file and rebuilds the catalog.
func ImportCatalog(path string) (*catalog.Catalog, *ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog dump: %w", err)
	}
	d, compressed, err := DecodeDump(data)
	if err != nil {
		return nil, nil, err
	}

	bundles, remixes, quests := countDefinitions(d.Definitions)
	res := &ImportResult{
		InputPath:   path,
		SnapshotRev: d.Meta.SnapshotRev,
		ItemCount:   len(d.Items),
		BundleCount: bundles,
		RemixCount:  remixes,
		QuestCount:  quests,
		Compressed:  compressed,
	}
	return catalog.Build(d.Categories, d.Items, d.Definitions), res, nil
}
