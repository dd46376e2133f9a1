package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Event is one event_log row.
type Event struct {
	ID           int64   `json:"id"`
	Timestamp    string  `json:"timestamp"`
	ResourceType string  `json:"resource_type"`
	ResourceUUID *string `json:"resource_uuid,omitempty"`
	EventType    string  `json:"event_type"`
	Payload      *string `json:"payload,omitempty"`
}

// Event types
const (
	TypeCatalogImported = "catalog.imported"
	TypeCatalogCleared  = "catalog.cleared"
)

// ImportInfo is the payload of a catalog.imported event.
type ImportInfo struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	SnapshotRev string `json:"snapshot_rev"`
	Items       int    `json:"items"`
	Bundles     int    `json:"bundles"`
	Remixes     int    `json:"remixes"`
	Quests      int    `json:"quests"`
}

// Writer appends to and reads from event_log.
type Writer struct {
	db *sql.DB
}

func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// LogEvent appends e, inside tx when tx is not nil.
func (w *Writer) LogEvent(tx *sql.Tx, e *Event) error {
	var ex execer = w.db
	if tx != nil {
		ex = tx
	}
	_, err := ex.Exec(`INSERT INTO event_log (resource_type, resource_uuid, event_type, payload) VALUES (?, ?, ?, ?)`,
		e.ResourceType, e.ResourceUUID, e.EventType, e.Payload)
	if err != nil {
		return fmt.Errorf("failed to write %s event: %w", e.EventType, err)
	}
	return nil
}

// LogCatalogImported records an import with info as its payload.
func (w *Writer) LogCatalogImported(tx *sql.Tx, importUUID string, info ImportInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode import info: %w", err)
	}
	payload := string(data)
	return w.LogEvent(tx, &Event{
		ResourceType: "catalog",
		ResourceUUID: &importUUID,
		EventType:    TypeCatalogImported,
		Payload:      &payload,
	})
}

func (w *Writer) LogCatalogCleared(tx *sql.Tx) error {
	return w.LogEvent(tx, &Event{
		ResourceType: "catalog",
		EventType:    TypeCatalogCleared,
	})
}

// Recent returns the newest events first, at most limit of them.
func (w *Writer) Recent(limit int) ([]Event, error) {
	rows, err := w.db.Query(`
		SELECT id, timestamp, resource_type, resource_uuid, event_type, payload
		FROM event_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ResourceType, &e.ResourceUUID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
