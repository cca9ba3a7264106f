package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/kaptinlin/jsonschema"

	"github.com/agenthub-dev/agenthub/core/errors"
)

//go:embed agent_manifest.schema.json
var manifestSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		schema, schemaErr = compiler.Compile(manifestSchemaJSON)
	})
	if schemaErr != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", schemaErr)
	}
	return schema, nil
}

// ValidateYAML checks raw YAML manifest content against the manifest schema.
func ValidateYAML(raw []byte) error {
	var decoded any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return errors.Wrap(fmt.Errorf("invalid yaml: %w", err), errors.CategoryInvalidInput, "invalid_manifest", "")
	}
	asMap, ok := decoded.(map[string]any)
	if !ok {
		return errors.New("manifest must be a yaml mapping", errors.CategoryInvalidInput, "invalid_manifest", "")
	}
	encoded, err := json.Marshal(asMap)
	if err != nil {
		return errors.Wrap(fmt.Errorf("encode manifest for validation: %w", err), errors.CategoryInternalFailure, "manifest_encode_failed", "")
	}
	return ValidateJSON(encoded)
}

// ValidateJSON checks JSON manifest content against the manifest schema.
func ValidateJSON(data []byte) error {
	compiled, err := compiledSchema()
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternalFailure, "schema_compile_failed", "")
	}
	result := compiled.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return errors.New(
		fmt.Sprintf("manifest schema validation failed: %v", result.Errors),
		errors.CategoryInvalidInput, "invalid_manifest", "fix the listed manifest fields and retry")
}
