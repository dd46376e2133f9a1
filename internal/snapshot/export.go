package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/lherron/farmlist/internal/catalog"
)

// BuildDump captures a catalog as a sealed dump.
func BuildDump(cat *catalog.Catalog, now time.Time) (*CatalogDump, error) {
	cats, items, defs := cat.Parts()
	d := &CatalogDump{
		Meta:        Meta{SchemaVersion: SchemaVersion, GeneratedAt: FormatTimestamp(now)},
		Categories:  cats,
		Items:       items,
		Definitions: defs,
	}
	if err := SealDump(d); err != nil {
		return nil, err
	}
	return d, nil
}

// EncodeCatalog renders a catalog dump, compressing it when asked.
func EncodeCatalog(cat *catalog.Catalog, opts ExportOptions) ([]byte, *ExportResult, error) {
	d, err := BuildDump(cat, time.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build catalog dump: %w", err)
	}

	var data []byte
	if opts.Canonical {
		data, err = CanonicalJSON(d)
	} else {
		data, err = PrettyJSON(d)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate JSON: %w", err)
	}

	compress := opts.Zstd || strings.HasSuffix(opts.OutputPath, ".zst")
	if compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		enc.Close()
	}

	bundles, remixes, quests := countDefinitions(d.Definitions)
	return data, &ExportResult{
		OutputPath:  opts.OutputPath,
		SnapshotRev: d.Meta.SnapshotRev,
		ItemCount:   len(d.Items),
		BundleCount: bundles,
		RemixCount:  remixes,
		QuestCount:  quests,
		Compressed:  compress,
		Bytes:       len(data),
	}, nil
}

// ExportCatalog writes a catalog dump to opts.OutputPath.
func ExportCatalog(cat *catalog.Catalog, opts ExportOptions) (*ExportResult, error) {
	if opts.OutputPath == "" {
		opts.OutputPath = DefaultOutputPath
		if opts.Zstd {
			opts.OutputPath += ".zst"
		}
	}

	data, res, err := EncodeCatalog(cat, opts)
	if err != nil {
		return nil, err
	}

	// Ensure output directory exists
	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write catalog dump: %w", err)
	}
	return res, nil
}
