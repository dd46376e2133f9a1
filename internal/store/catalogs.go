package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/events"
	"github.com/lherron/farmlist/internal/snapshot"
)

// ErrNoCatalog is returned by Load when nothing has been imported yet.
var ErrNoCatalog = errors.New("no catalog has been imported")

// CatalogStore handles catalog persistence operations.
type CatalogStore struct {
	store *Store
}

// ImportRecord is one row of the import history.
type ImportRecord struct {
	UUID        string `json:"uuid"`
	ID          string `json:"id"`
	Source      string `json:"source"`
	SnapshotRev string `json:"snapshot_rev"`
	ItemCount   int    `json:"item_count"`
	BundleCount int    `json:"bundle_count"`
	RemixCount  int    `json:"remix_count"`
	QuestCount  int    `json:"quest_count"`
	CreatedAt   string `json:"created_at"`
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// Save replaces the stored catalog in one transaction and logs a
// catalog.imported event. source describes where the catalog came from.
func (cs *CatalogStore) Save(cat *catalog.Catalog, source string) (*ImportRecord, error) {
	dump, err := snapshot.BuildDump(cat, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute catalog rev: %w", err)
	}
	categories, items, defs := cat.Parts()

	rec := &ImportRecord{
		UUID:        uuid.NewString(),
		Source:      source,
		SnapshotRev: dump.Meta.SnapshotRev,
		ItemCount:   len(items),
	}

	err = cs.store.write("catalog import", func(tx *sql.Tx, log *events.Writer) error {
		if err := clearCatalog(tx); err != nil {
			return err
		}
		for i, c := range categories {
			if _, err := tx.Exec(`INSERT INTO categories (position, name) VALUES (?, ?)`, i+1, string(c)); err != nil {
				return fmt.Errorf("failed to save category %s: %w", c, err)
			}
		}
		for i, it := range items {
			if err := saveItem(tx, i+1, it); err != nil {
				return err
			}
		}

		for _, g := range defs.Donations {
			gid, err := saveGroup(tx, "donation", g.ID, g.Name)
			if err != nil {
				return err
			}
			for _, b := range g.Bundles {
				if _, err := saveBundle(tx, gid, b, 0); err != nil {
					return err
				}
				rec.BundleCount++
			}
		}
		for _, g := range defs.Remixes {
			gid, err := saveGroup(tx, "remix", g.ID, g.Name)
			if err != nil {
				return err
			}
			for _, r := range g.Bundles {
				bid, err := saveBundle(tx, gid, r.Bundle, r.NeedSlots)
				if err != nil {
					return err
				}
				for i, base := range r.BaseBundleIDs {
					if _, err := tx.Exec(`INSERT INTO remix_bases (bid, position, base_id) VALUES (?, ?, ?)`, bid, i, base); err != nil {
						return fmt.Errorf("failed to save remix base %s: %w", base, err)
					}
				}
				rec.RemixCount++
			}
		}
		for _, g := range defs.Quests {
			gid, err := saveGroup(tx, "quest", g.ID, g.Name)
			if err != nil {
				return err
			}
			for _, q := range g.Quests {
				b := domain.Bundle{ID: q.ID, Name: q.Name, Entries: q.Entries, Notes: q.Notes}
				if _, err := saveBundle(tx, gid, b, 0); err != nil {
					return err
				}
				rec.QuestCount++
			}
		}
		for item, n := range defs.ItemNotes {
			if n.Kind != domain.ItemNoteRecipe {
				n.Kind = domain.ItemNoteText
			}
			_, err := tx.Exec(`
				INSERT INTO item_notes (item, kind, text, n, as_item, machine, days, extra)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, item, string(n.Kind), n.Text, n.N, n.As, n.Machine, n.Days, n.Extra)
			if err != nil {
				return fmt.Errorf("failed to save note for %s: %w", item, err)
			}
		}

		_, err := tx.Exec(`
			INSERT INTO imports (uuid, source, snapshot_rev, item_count, bundle_count, remix_count, quest_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, rec.UUID, rec.Source, rec.SnapshotRev, rec.ItemCount, rec.BundleCount, rec.RemixCount, rec.QuestCount)
		if err != nil {
			return fmt.Errorf("failed to record import: %w", err)
		}
		if err := tx.QueryRow(`SELECT id, created_at FROM imports WHERE uuid = ?`, rec.UUID).Scan(&rec.ID, &rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to read import id: %w", err)
		}

		return log.LogCatalogImported(tx, rec.UUID, events.ImportInfo{
			ID:          rec.ID,
			Source:      rec.Source,
			SnapshotRev: rec.SnapshotRev,
			Items:       rec.ItemCount,
			Bundles:     rec.BundleCount,
			Remixes:     rec.RemixCount,
			Quests:      rec.QuestCount,
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func clearCatalog(tx execer) error {
	for _, table := range []string{"bundle_groups", "item_needs", "items", "categories", "item_notes"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func saveItem(tx execer, position int, it domain.ItemRecord) error {
	_, err := tx.Exec(`
		INSERT INTO items (position, name, season, category, favorite, note, water, weather, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, position, it.Name, it.Season, it.Category, it.Favorite, it.Note, it.Water, it.Weather, strings.Join(it.Tags.Names(), ","))
	if err != nil {
		return fmt.Errorf("failed to save item %s: %w", it.Name, err)
	}
	for c, n := range it.Needs {
		_, err := tx.Exec(`
			INSERT INTO item_needs (item_name, category, count, unbounded) VALUES (?, ?, ?, ?)
		`, it.Name, string(c), n.Count, n.Unbounded)
		if err != nil {
			return fmt.Errorf("failed to save %s need of %s: %w", c, it.Name, err)
		}
	}
	return nil
}

func saveGroup(tx *sql.Tx, kind, id, name string) (int64, error) {
	res, err := tx.Exec(`INSERT INTO bundle_groups (kind, id, name) VALUES (?, ?, ?)`, kind, id, name)
	if err != nil {
		return 0, fmt.Errorf("failed to save %s group %s: %w", kind, id, err)
	}
	return res.LastInsertId()
}

func saveBundle(tx *sql.Tx, gid int64, b domain.Bundle, needSlots int) (int64, error) {
	res, err := tx.Exec(`INSERT INTO bundles (gid, id, name, need_slots) VALUES (?, ?, ?, ?)`, gid, b.ID, b.Name, needSlots)
	if err != nil {
		return 0, fmt.Errorf("failed to save bundle %s: %w", b.ID, err)
	}
	bid, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get bundle row id: %w", err)
	}
	for i, e := range b.Entries {
		_, err := tx.Exec(`
			INSERT INTO entries (bid, position, item, count, quality, q_count) VALUES (?, ?, ?, ?, ?, ?)
		`, bid, i, e.Item, e.Count, string(e.Quality), e.QualityCount)
		if err != nil {
			return 0, fmt.Errorf("failed to save entry %s of %s: %w", e.Item, b.ID, err)
		}
	}
	for i, n := range b.Notes {
		if _, err := tx.Exec(`INSERT INTO entry_notes (bid, position, item, text) VALUES (?, ?, ?, ?)`, bid, i, n.Item, n.Text); err != nil {
			return 0, fmt.Errorf("failed to save note of %s: %w", b.ID, err)
		}
	}
	return bid, nil
}

// Latest returns the most recent import, or ErrNoCatalog.
func (cs *CatalogStore) Latest() (*ImportRecord, error) {
	recs, err := cs.History(1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNoCatalog
	}
	return &recs[0], nil
}

// History returns the import history, newest first.
func (cs *CatalogStore) History(limit int) ([]ImportRecord, error) {
	rows, err := cs.store.db.Query(`
		SELECT uuid, id, source, snapshot_rev, item_count, bundle_count, remix_count, quest_count, created_at
		FROM imports
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.UUID, &r.ID, &r.Source, &r.SnapshotRev, &r.ItemCount, &r.BundleCount, &r.RemixCount, &r.QuestCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Clear removes the stored catalog and its import history.
func (cs *CatalogStore) Clear() error {
	return cs.store.write("catalog clear", func(tx *sql.Tx, log *events.Writer) error {
		if err := clearCatalog(tx); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM imports`); err != nil {
			return fmt.Errorf("failed to clear imports: %w", err)
		}
		return log.LogCatalogCleared(tx)
	})
}

// Load rebuilds the stored catalog.
func (cs *CatalogStore) Load() (*catalog.Catalog, *ImportRecord, error) {
	rec, err := cs.Latest()
	if err != nil {
		return nil, nil, err
	}
	d := cs.store.db

	var categories []domain.Category
	if err := queryEach(d, `SELECT name FROM categories ORDER BY position`, nil, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		categories = append(categories, domain.Category(name))
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to load categories: %w", err)
	}

	items, err := loadItems(d)
	if err != nil {
		return nil, nil, err
	}
	defs, err := loadDefinitions(d)
	if err != nil {
		return nil, nil, err
	}
	return catalog.Build(categories, items, defs), rec, nil
}

type querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

func queryEach(q querier, query string, args []interface{}, fn func(*sql.Rows) error) error {
	rows, err := q.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func loadItems(q querier) ([]domain.ItemRecord, error) {
	var items []domain.ItemRecord
	index := make(map[string]int)
	err := queryEach(q, `
		SELECT name, season, category, favorite, note, water, weather, tags
		FROM items ORDER BY position
	`, nil, func(rows *sql.Rows) error {
		var it domain.ItemRecord
		var tags string
		if err := rows.Scan(&it.Name, &it.Season, &it.Category, &it.Favorite, &it.Note, &it.Water, &it.Weather, &tags); err != nil {
			return err
		}
		if tags != "" {
			it.Tags = domain.ParseTagNames(strings.Split(tags, ","))
		}
		it.Needs = make(map[domain.Category]domain.Need)
		index[it.Name] = len(items)
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	err = queryEach(q, `SELECT item_name, category, count, unbounded FROM item_needs`, nil, func(rows *sql.Rows) error {
		var name, c string
		var n domain.Need
		if err := rows.Scan(&name, &c, &n.Count, &n.Unbounded); err != nil {
			return err
		}
		if i, ok := index[name]; ok {
			items[i].Needs[domain.Category(c)] = n
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load item needs: %w", err)
	}
	return items, nil
}

type bundleRow struct {
	gid       int64
	kind      string
	groupID   string
	groupName string
	bundle    domain.Bundle
	needSlots int
	bases     []string
	hasBundle bool
}

func loadDefinitions(q querier) (domain.Definitions, error) {
	var defs domain.Definitions

	var bundles []*bundleRow
	byBID := make(map[int64]*bundleRow)
	err := queryEach(q, `
		SELECT g.gid, g.kind, g.id, g.name, b.bid, b.id, b.name, b.need_slots
		FROM bundle_groups g
		LEFT JOIN bundles b ON b.gid = g.gid
		ORDER BY g.gid, b.bid
	`, nil, func(rows *sql.Rows) error {
		var bid sql.NullInt64
		var bundleID, bundleName sql.NullString
		var slots sql.NullInt64
		r := &bundleRow{}
		if err := rows.Scan(&r.gid, &r.kind, &r.groupID, &r.groupName, &bid, &bundleID, &bundleName, &slots); err != nil {
			return err
		}
		// A group without bundles still yields one row from the LEFT JOIN.
		if bid.Valid {
			r.hasBundle = true
			r.bundle = domain.Bundle{ID: bundleID.String, Name: bundleName.String}
			r.needSlots = int(slots.Int64)
			byBID[bid.Int64] = r
		}
		bundles = append(bundles, r)
		return nil
	})
	if err != nil {
		return defs, fmt.Errorf("failed to load bundles: %w", err)
	}

	err = queryEach(q, `SELECT bid, item, count, quality, q_count FROM entries ORDER BY bid, position`, nil, func(rows *sql.Rows) error {
		var bid int64
		var e domain.Entry
		var quality string
		if err := rows.Scan(&bid, &e.Item, &e.Count, &quality, &e.QualityCount); err != nil {
			return err
		}
		e.Quality = domain.Quality(quality)
		if r, ok := byBID[bid]; ok {
			r.bundle.Entries = append(r.bundle.Entries, e)
		}
		return nil
	})
	if err != nil {
		return defs, fmt.Errorf("failed to load entries: %w", err)
	}

	err = queryEach(q, `SELECT bid, item, text FROM entry_notes ORDER BY bid, position`, nil, func(rows *sql.Rows) error {
		var bid int64
		var n domain.EntryNote
		if err := rows.Scan(&bid, &n.Item, &n.Text); err != nil {
			return err
		}
		if r, ok := byBID[bid]; ok {
			r.bundle.Notes = append(r.bundle.Notes, n)
		}
		return nil
	})
	if err != nil {
		return defs, fmt.Errorf("failed to load entry notes: %w", err)
	}

	err = queryEach(q, `SELECT bid, base_id FROM remix_bases ORDER BY bid, position`, nil, func(rows *sql.Rows) error {
		var bid int64
		var base string
		if err := rows.Scan(&bid, &base); err != nil {
			return err
		}
		if r, ok := byBID[bid]; ok {
			r.bases = append(r.bases, base)
		}
		return nil
	})
	if err != nil {
		return defs, fmt.Errorf("failed to load remix bases: %w", err)
	}

	assemble(&defs, bundles)

	err = queryEach(q, `SELECT item, kind, text, n, as_item, machine, days, extra FROM item_notes`, nil, func(rows *sql.Rows) error {
		var item, kind string
		var n domain.ItemNote
		if err := rows.Scan(&item, &kind, &n.Text, &n.N, &n.As, &n.Machine, &n.Days, &n.Extra); err != nil {
			return err
		}
		n.Kind = domain.ItemNoteKind(kind)
		if defs.ItemNotes == nil {
			defs.ItemNotes = make(map[string]domain.ItemNote)
		}
		defs.ItemNotes[item] = n
		return nil
	})
	if err != nil {
		return defs, fmt.Errorf("failed to load item notes: %w", err)
	}
	return defs, nil
}

// assemble groups the ordered bundle rows back into definition groups.
func assemble(defs *domain.Definitions, rows []*bundleRow) {
	var last *bundleRow
	for _, r := range rows {
		newGroup := last == nil || last.gid != r.gid
		last = r
		switch r.kind {
		case "donation":
			if newGroup {
				defs.Donations = append(defs.Donations, domain.BundleGroup{ID: r.groupID, Name: r.groupName})
			}
			if r.hasBundle {
				g := &defs.Donations[len(defs.Donations)-1]
				g.Bundles = append(g.Bundles, r.bundle)
			}
		case "remix":
			if newGroup {
				defs.Remixes = append(defs.Remixes, domain.RemixGroup{ID: r.groupID, Name: r.groupName})
			}
			if r.hasBundle {
				g := &defs.Remixes[len(defs.Remixes)-1]
				g.Bundles = append(g.Bundles, domain.RemixBundle{Bundle: r.bundle, BaseBundleIDs: r.bases, NeedSlots: r.needSlots})
			}
		case "quest":
			if newGroup {
				defs.Quests = append(defs.Quests, domain.QuestGroup{ID: r.groupID, Name: r.groupName})
			}
			if r.hasBundle {
				g := &defs.Quests[len(defs.Quests)-1]
				g.Quests = append(g.Quests, domain.Quest{ID: r.bundle.ID, Name: r.bundle.Name, Entries: r.bundle.Entries, Notes: r.bundle.Notes})
			}
		}
	}
}
