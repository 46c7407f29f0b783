package document

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// exportSchemaJSON describes the document skeleton an export must have before
// it is ingested. Node facets are left to Parse, which confines a malformed
// facet to its own node.
const exportSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"},
    "currentPage": {"type": "string"},
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "children"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "children": {"type": "array", "items": {"type": "object"}}
        }
      }
    }
  }
}`

var exportSchemaLoader = gojsonschema.NewStringLoader(exportSchemaJSON)

// ValidationError lists every schema violation of an export.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document export is invalid: %s", strings.Join(e.Issues, "; "))
}

// Validate checks an export against the ingestion schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(exportSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return &ValidationError{Issues: issues}
}

// Load validates and parses an export.
func Load(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	return Parse(data)
}
