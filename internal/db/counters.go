package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// Counter is an AUTOINCREMENT table whose sqlite_sequence row must stay
// at or above the highest id it has handed out.
type Counter struct {
	// Name is the sqlite_sequence row
	Name string `json:"name"`
	// Table and Prefix locate the ids derived from it. An empty Prefix
	// means the ids are plain integers.
	Table  string `json:"table"`
	Prefix string `json:"prefix,omitempty"`
}

// Counters lists the catalog database's id counters
var Counters = []Counter{
	{Name: "import_seq", Table: "imports", Prefix: "IMP-"},
	{Name: "event_log", Table: "event_log"},
}

// CounterDrift is a counter that fell behind its table
type CounterDrift struct {
	Counter
	MaxID int `json:"max_id"`
	Seq   int `json:"seq"`
}

func (d CounterDrift) String() string {
	return fmt.Sprintf("%s (table %s): sqlite_sequence=%d, max_id=%d", d.Name, d.Table, d.Seq, d.MaxID)
}

// CounterDrifts returns every counter whose sequence is below the highest
// id in its table. Importing a catalog dump with explicit ids can cause it.
func (db *DB) CounterDrifts() ([]CounterDrift, error) {
	var drifts []CounterDrift
	for _, c := range Counters {
		maxID, err := db.maxID(c)
		if err != nil {
			return nil, fmt.Errorf("failed to read max id of %s: %w", c.Table, err)
		}
		seq, err := db.sequence(c.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sqlite_sequence for %s: %w", c.Name, err)
		}
		if seq < maxID {
			drifts = append(drifts, CounterDrift{Counter: c, MaxID: maxID, Seq: seq})
		}
	}
	return drifts, nil
}

// RepairCounters raises drifted sequences to their table's highest id in
// one transaction and returns what it changed.
func (db *DB) RepairCounters() ([]CounterDrift, error) {
	drifts, err := db.CounterDrifts()
	if err != nil || len(drifts) == 0 {
		return drifts, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for _, d := range drifts {
		res, err := tx.Exec(`UPDATE sqlite_sequence SET seq = ? WHERE name = ?`, d.MaxID, d.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to update sqlite_sequence for %s: %w", d.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO sqlite_sequence (name, seq) VALUES (?, ?)`, d.Name, d.MaxID); err != nil {
			return nil, fmt.Errorf("failed to insert sqlite_sequence for %s: %w", d.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return drifts, nil
}

func (db *DB) maxID(c Counter) (int, error) {
	var maxID int
	if c.Prefix == "" {
		err := db.QueryRow(fmt.Sprintf(`SELECT COALESCE(MAX(id), 0) FROM %s`, c.Table)).Scan(&maxID)
		return maxID, err
	}
	err := db.QueryRow(
		fmt.Sprintf(`SELECT COALESCE(MAX(CAST(SUBSTR(id, ?) AS INTEGER)), 0) FROM %s WHERE id LIKE ?`, c.Table),
		len(c.Prefix)+1, c.Prefix+"%",
	).Scan(&maxID)
	return maxID, err
}

func (db *DB) sequence(name string) (int, error) {
	var seq sql.NullInt64
	err := db.QueryRow(`SELECT seq FROM sqlite_sequence WHERE name = ?`, name).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(seq.Int64), nil
}
