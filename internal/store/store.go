// Package store keeps imported catalogs in the sqlite database. Every write
// runs in a single transaction together with its event_log entry.
package store

import (
	"database/sql"
	"fmt"

	"github.com/lherron/farmlist/internal/db"
	"github.com/lherron/farmlist/internal/events"
)

type Store struct {
	db *db.DB

	Catalogs *CatalogStore
}

func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Catalogs = &CatalogStore{store: s}
	return s
}

// Events reads the event log outside any transaction.
func (s *Store) Events() *events.Writer {
	return events.NewWriter(s.db.DB)
}

// Stats counts what the database currently holds.
type Stats struct {
	Imports int `json:"imports"`
	Items   int `json:"items"`
	Bundles int `json:"bundles"`
	Events  int `json:"events"`
}

// Empty reports whether no catalog is stored.
func (st Stats) Empty() bool {
	return st.Items == 0 && st.Bundles == 0
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	counts := []struct {
		table string
		dst   *int
	}{
		{"imports", &st.Imports},
		{"items", &st.Items},
		{"bundles", &st.Bundles},
		{"event_log", &st.Events},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + c.table).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return st, nil
}

// write runs fn in a transaction and commits only when fn succeeds. The
// event writer passed to fn logs through the same transaction.
func (s *Store) write(what string, fn func(tx *sql.Tx, log *events.Writer) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin %s: %w", what, err)
	}
	defer tx.Rollback()

	if err := fn(tx, events.NewWriter(s.db.DB)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", what, err)
	}
	return nil
}
