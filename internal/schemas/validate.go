// Package schemas validates stage output documents against embedded JSON
// Schemas before they are admitted into workflow state. A model response
// that parses as JSON can still be structurally wrong; the schema check
// catches that before downstream stages consume it.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFS embed.FS

var (
	mu       sync.Mutex
	compiled = make(map[string]*gojsonschema.Schema)
)

// FieldError is one violation at a specific document field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports all schema violations found in a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "document failed %s validation:\n", e.Schema)
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// SchemaLoadError reports a problem with the schema itself rather than the
// document under validation.
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Validate checks a JSON document against the named embedded schema
// (e.g. "parsed_job"). It returns a *ValidationError when the document does
// not conform, and a *SchemaLoadError when the schema is missing or broken.
func Validate(name string, document []byte) error {
	schema, err := load(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &SchemaLoadError{Name: name, Message: "failed to validate document", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}

func load(name string) (*gojsonschema.Schema, error) {
	mu.Lock()
	defer mu.Unlock()

	if schema, ok := compiled[name]; ok {
		return schema, nil
	}

	data, err := schemaFS.ReadFile(name + ".schema.json")
	if err != nil {
		return nil, &SchemaLoadError{Name: name, Message: "schema not found", Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Name: name, Message: "failed to compile schema", Cause: err}
	}

	compiled[name] = schema
	return schema, nil
}
