package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FileReadError reports an input document that could not be read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("cannot read file: %v", e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// ParseError reports an input document that is not valid JSON or does not
// have the expected shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadDocument reads path and checks that it holds a single JSON value. The
// bytes are returned untouched so they can be sent verbatim.
func LoadDocument(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}

	if err := checkJSON(data); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return json.RawMessage(bytes.TrimSpace(data)), nil
}

func checkJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return nil
}

// templateSchema is the minimum structure an experiment template needs for
// the four per-instance fields to be rewritten.
const templateSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["kubernetes_objects"],
  "properties": {
    "experiment_name": {"type": "string"},
    "kubernetes_objects": {
      "type": "array",
      "minItems": 1,
      "prefixItems": [
        {
          "type": "object",
          "required": ["containers"],
          "properties": {
            "containers": {
              "type": "array",
              "minItems": 1,
              "prefixItems": [{"type": "object"}]
            }
          }
        }
      ]
    }
  }
}`

var compiledTemplateSchema = mustCompileSchema("experiment-template.json", templateSchema)

func mustCompileSchema(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("invalid schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

func validateTemplateEntry(entry json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(entry, &v); err != nil {
		return err
	}
	if err := compiledTemplateSchema.Validate(v); err != nil {
		return fmt.Errorf("experiment template does not match the expected shape: %w", err)
	}
	return nil
}
