package doctor

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/parse"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/definitions.schema.json
var definitionsSchema string

const definitionsSchemaURL = "definitions.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(definitionsSchemaURL, definitionsSchema)
	})
	return schema, schemaErr
}

// ValidateDefinitions checks a raw definitions document against the schema.
// YAML documents are converted to JSON values first.
func ValidateDefinitions(data []byte, format string) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile definitions schema: %w", err)
	}

	if format == "" {
		f, err := parse.DetectFormat(data)
		if err != nil {
			return err
		}
		format = string(f)
	}
	if format == "yml" || format == string(parse.FormatYAML) {
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
		if data, err = json.Marshal(raw); err != nil {
			return fmt.Errorf("failed to convert YAML definitions: %w", err)
		}
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON definitions: %w", err)
	}
	return s.Validate(v)
}

// CheckFiles validates the definitions document of a catalog source.
func CheckFiles(files catalog.Files) CheckResult {
	format := ""
	switch filepath.Ext(files.DefinitionsName) {
	case ".json":
		format = string(parse.FormatJSON)
	case ".yaml", ".yml":
		format = string(parse.FormatYAML)
	}
	if err := ValidateDefinitions(files.Definitions, format); err != nil {
		return CheckResult{
			Name:    "definitions_schema",
			Status:  StatusError,
			Message: "Definitions do not match the schema",
			Details: []string{err.Error()},
		}
	}
	return CheckResult{Name: "definitions_schema", Status: StatusOK, Message: "Definitions match the schema"}
}
