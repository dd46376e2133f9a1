package parse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lherron/farmlist/internal/domain"
)

// NeedColumnPrefix prefixes every requirement column in the items table.
const NeedColumnPrefix = "need_"

// ItemsTable is the parsed items CSV: the requirement categories found in
// the header (in column order) and one record per named row.
type ItemsTable struct {
	Categories []domain.Category
	Records    []domain.ItemRecord
	Skipped    int
}

// ReadItemsCSV reads the items table. Rows without a name are skipped and
// malformed requirement cells default to 0.
func ReadItemsCSV(r io.Reader) (*ItemsTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &ItemsTable{}, nil
		}
		return nil, fmt.Errorf("failed to read items header: %w", err)
	}

	cols := make(map[string]int, len(header))
	table := &ItemsTable{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[h] = i
		if strings.HasPrefix(h, NeedColumnPrefix) {
			table.Categories = append(table.Categories, domain.Category(strings.TrimPrefix(h, NeedColumnPrefix)))
		}
	}

	get := func(row []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken row must not fail the whole load.
			table.Skipped++
			continue
		}

		name := get(row, "name")
		if name == "" {
			table.Skipped++
			continue
		}

		rec := domain.ItemRecord{
			Name:     name,
			Season:   get(row, "season"),
			Category: get(row, "category"),
			Favorite: get(row, "favorite"),
			Note:     get(row, "note"),
			Water:    get(row, "water"),
			Weather:  get(row, "weather"),
			Tags:     domain.ParseRemark(get(row, "remark")),
			Needs:    make(map[domain.Category]domain.Need, len(table.Categories)),
		}
		for _, c := range table.Categories {
			rec.Needs[c] = ParseNeed(get(row, NeedColumnPrefix+string(c)))
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

// ParseNeed parses a requirement cell: a non-negative integer or the unbounded marker.
// Anything else is treated as 0.
func ParseNeed(raw string) domain.Need {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, domain.UnboundedMarker) {
		return domain.UnboundedNeed()
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return domain.Counted(0)
	}
	return domain.Counted(n)
}

// WriteItemsCSV writes records back in the layout ReadItemsCSV accepts.
func WriteItemsCSV(w io.Writer, categories []domain.Category, records []domain.ItemRecord) error {
	writer := csv.NewWriter(w)
	header := []string{"name", "season", "category", "favorite", "remark", "note", "water", "weather"}
	for _, c := range categories {
		header = append(header, NeedColumnPrefix+string(c))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		var remark strings.Builder
		for _, def := range domain.TagVocabulary {
			if rec.Tags.Has(def.Tag) {
				remark.WriteRune(def.Code)
			}
		}
		row := []string{rec.Name, rec.Season, rec.Category, rec.Favorite, remark.String(), rec.Note, rec.Water, rec.Weather}
		for _, c := range categories {
			row = append(row, rec.Needs[c].String())
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
