package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/parse"
)

//go:embed defaults/items.csv defaults/definitions.json
var defaultsFS embed.FS

// ItemsFile is the item table file name inside a catalog directory.
const ItemsFile = "items.csv"

// DefinitionFiles are the accepted definitions file names, in lookup order.
var DefinitionFiles = []string{"definitions.json", "definitions.yaml", "definitions.yml"}

// Files is the raw content of a catalog: the items table and the definitions document.
type Files struct {
	Items       []byte
	Definitions []byte
	// DefinitionsName is the file name the definitions came from, used for format detection.
	DefinitionsName string
}

// LoadDefaults builds the catalog that ships with the binary.
func LoadDefaults() (*Catalog, error) {
	files, err := DefaultFiles()
	if err != nil {
		return nil, err
	}
	return FromFiles(files)
}

// DefaultFiles returns the embedded default catalog files.
func DefaultFiles() (Files, error) {
	items, err := defaultsFS.ReadFile("defaults/" + ItemsFile)
	if err != nil {
		return Files{}, fmt.Errorf("failed to read embedded items: %w", err)
	}
	defs, err := defaultsFS.ReadFile("defaults/definitions.json")
	if err != nil {
		return Files{}, fmt.Errorf("failed to read embedded definitions: %w", err)
	}
	return Files{Items: items, Definitions: defs, DefinitionsName: "definitions.json"}, nil
}

// ReadDir reads the catalog files from a directory. Both files are required.
func ReadDir(dir string) (Files, error) {
	items, err := os.ReadFile(filepath.Join(dir, ItemsFile))
	if err != nil {
		return Files{}, fmt.Errorf("failed to read items table: %w", err)
	}
	for _, name := range DefinitionFiles {
		defs, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Files{}, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return Files{Items: items, Definitions: defs, DefinitionsName: name}, nil
	}
	return Files{}, fmt.Errorf("no definitions file in %s (expected one of %v)", dir, DefinitionFiles)
}

// LoadDir builds a catalog from a directory holding items.csv and a definitions file.
func LoadDir(dir string) (*Catalog, error) {
	files, err := ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return FromFiles(files)
}

// FromFiles parses raw catalog files and builds the catalog.
func FromFiles(files Files) (*Catalog, error) {
	table, err := parse.ReadItemsCSV(bytes.NewReader(files.Items))
	if err != nil {
		return nil, err
	}
	defs, err := parse.ReadDefinitions(files.Definitions, formatForName(files.DefinitionsName))
	if err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}
	return Build(table.Categories, table.Records, defs), nil
}

func formatForName(name string) string {
	switch filepath.Ext(name) {
	case ".json":
		return string(parse.FormatJSON)
	case ".yaml", ".yml":
		return string(parse.FormatYAML)
	default:
		return ""
	}
}

// Parts returns the inputs Build would need to rebuild the catalog.
func (c *Catalog) Parts() ([]domain.Category, []domain.ItemRecord, domain.Definitions) {
	return c.Categories(), c.Items(), c.defs
}
