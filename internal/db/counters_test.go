package db_test

import (
	"testing"
)

func TestCounterDrifts_DetectAndRepair(t *testing.T) {
	database, _ := openTemp(t)
	if _, err := database.Migrate(); err != nil {
		t.Fatal(err)
	}

	drifts, err := database.CounterDrifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(drifts) != 0 {
		t.Fatalf("fresh database has drift: %v", drifts)
	}

	// An explicit friendly id bypasses the sequence trigger.
	if _, err := database.Exec(`
		INSERT INTO imports (uuid, id, source, snapshot_rev)
		VALUES ('import-uuid-1', 'IMP-00042', 'dump:sha256:0', 'sha256:0')
	`); err != nil {
		t.Fatal(err)
	}

	drifts, err = database.CounterDrifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(drifts) != 1 || drifts[0].Name != "import_seq" || drifts[0].MaxID != 42 || drifts[0].Seq != 0 {
		t.Fatalf("unexpected drifts: %+v", drifts)
	}
	if got := drifts[0].String(); got != "import_seq (table imports): sqlite_sequence=0, max_id=42" {
		t.Errorf("String() = %q", got)
	}

	repaired, err := database.RepairCounters()
	if err != nil {
		t.Fatal(err)
	}
	if len(repaired) != 1 {
		t.Fatalf("repaired %d counters, want 1", len(repaired))
	}

	// The next generated id continues after the repaired sequence.
	if _, err := database.Exec(`INSERT INTO imports (uuid, source, snapshot_rev) VALUES ('import-uuid-2', 'embedded', 'sha256:1')`); err != nil {
		t.Fatal(err)
	}
	var id string
	if err := database.QueryRow(`SELECT id FROM imports WHERE uuid = 'import-uuid-2'`).Scan(&id); err != nil {
		t.Fatal(err)
	}
	if id != "IMP-00043" {
		t.Errorf("generated id = %s, want IMP-00043", id)
	}

	if drifts, _ := database.CounterDrifts(); len(drifts) != 0 {
		t.Errorf("drift remains after repair: %v", drifts)
	}
}
