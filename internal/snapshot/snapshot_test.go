package snapshot

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/selection"
)

func TestCanonicalJSON_SortsKeys(t *testing.T) {
	v := map[string]interface{}{
		"b": 1,
		"a": map[string]string{"z": "<x>", "y": "2"},
	}
	got, err := CanonicalJSON(v)
	if err != nil {
		t.Fatalf("CanonicalJSON() error: %v", err)
	}
	want := `{"a":{"y":"2","z":"<x>"},"b":1}`
	if string(got) != want {
		t.Errorf("CanonicalJSON() = %s, want %s", got, want)
	}
}

func TestCanonicalJSON_StructFieldsSorted(t *testing.T) {
	got, err := CanonicalJSON(Meta{SchemaVersion: 1, SnapshotRev: "r"})
	if err != nil {
		t.Fatalf("CanonicalJSON() error: %v", err)
	}
	if string(got) != `{"schema_version":1,"snapshot_rev":"r"}` {
		t.Errorf("CanonicalJSON() = %s", got)
	}
}

func TestComputeSnapshotRev(t *testing.T) {
	rev := ComputeSnapshotRev([]byte("{}"))
	if !strings.HasPrefix(rev, "sha256:") || len(rev) != len("sha256:")+64 {
		t.Errorf("unexpected rev format: %s", rev)
	}
	if rev != ComputeSnapshotRev([]byte("{}")) {
		t.Error("rev must be deterministic")
	}
}

func TestSeal(t *testing.T) {
	s := &Snapshot{
		Meta:       Meta{SchemaVersion: SchemaVersion},
		Categories: []domain.Category{domain.CategoryDonation},
		Selection:  selection.State{Bundles: selection.NewSet("b", "a")},
	}
	if err := Seal(s); err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	first := s.Meta.SnapshotRev

	s.Meta.GeneratedAt = "2026-01-01T00:00:00Z"
	if err := Seal(s); err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	if s.Meta.SnapshotRev != first {
		t.Error("generation time must not change the rev")
	}

	s.Selection.Bundles = s.Selection.Bundles.With("c")
	_ = Seal(s)
	if s.Meta.SnapshotRev == first {
		t.Error("state change must change the rev")
	}
}

func TestCatalogDumpRoundTrip(t *testing.T) {
	cat, err := catalog.LoadDefaults()
	if err != nil {
		t.Fatalf("LoadDefaults() error: %v", err)
	}

	for _, zst := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "catalog.json")
		res, err := ExportCatalog(cat, ExportOptions{OutputPath: path, Zstd: zst})
		if err != nil {
			t.Fatalf("ExportCatalog(zstd=%v) error: %v", zst, err)
		}
		if res.Compressed != zst || res.ItemCount != len(cat.Items()) {
			t.Errorf("ExportResult = %+v", res)
		}

		got, imp, err := ImportCatalog(path)
		if err != nil {
			t.Fatalf("ImportCatalog(zstd=%v) error: %v", zst, err)
		}
		if imp.SnapshotRev != res.SnapshotRev || imp.Compressed != zst {
			t.Errorf("ImportResult = %+v, export rev %s", imp, res.SnapshotRev)
		}
		if len(got.Items()) != len(cat.Items()) || !got.HasBundle("cr_spring_foraging") {
			t.Error("imported catalog differs from the exported one")
		}
	}
}

func TestDecodeDump_RevMismatch(t *testing.T) {
	cat := catalog.Build(nil, []domain.ItemRecord{{Name: "Leek"}}, domain.Definitions{})
	d, err := BuildDump(cat, time.Now())
	if err != nil {
		t.Fatalf("BuildDump() error: %v", err)
	}
	d.Items[0].Name = "Tampered"
	data, _ := CanonicalJSON(d)

	if _, _, err := DecodeDump(data); err == nil || !strings.Contains(err.Error(), "rev mismatch") {
		t.Errorf("expected rev mismatch, got %v", err)
	}
	if !IsDump(data) {
		t.Error("IsDump should recognise a dump")
	}
	if IsDump([]byte(`{"donations":[]}`)) {
		t.Error("IsDump should reject plain definitions")
	}
}
