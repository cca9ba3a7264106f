package manifest

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agenthub-dev/agenthub/core/errors"
	"github.com/agenthub-dev/agenthub/core/fsx"
)

// Load reads a YAML manifest, validates it against the manifest schema and
// normalizes enum fields.
func Load(path string) (Manifest, error) {
	// #nosec G304 -- manifest path is explicit local user input.
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, errors.New(
				fmt.Sprintf("manifest file not found: %s", path),
				errors.CategoryNotFound, "manifest_missing", "")
		}
		return Manifest{}, errors.Wrap(fmt.Errorf("read manifest: %w", err), errors.CategoryIOFailure, "manifest_read_failed", "")
	}
	return Parse(raw)
}

// Parse validates and decodes YAML manifest content.
func Parse(raw []byte) (Manifest, error) {
	if err := ValidateYAML(raw); err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, errors.Wrap(fmt.Errorf("decode manifest: %w", err), errors.CategoryInvalidInput, "invalid_manifest", "")
	}
	normalize(&m)
	return m, nil
}

// Save writes a manifest as YAML, replacing the destination atomically.
func Save(m Manifest, path string) error {
	encoded, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(fmt.Errorf("encode manifest: %w", err), errors.CategoryInternalFailure, "manifest_encode_failed", "")
	}
	if err := fsx.WriteFileAtomic(path, encoded, 0o644); err != nil {
		return errors.Wrap(fmt.Errorf("write manifest: %w", err), errors.CategoryIOFailure, "manifest_write_failed", "")
	}
	return nil
}

func normalize(m *Manifest) {
	for i, protocol := range m.Protocols {
		m.Protocols[i] = NormalizeProtocol(string(protocol))
	}
	if m.LifecycleState == "" {
		m.LifecycleState = StateActive
		return
	}
	if state, ok := ParseLifecycleState(string(m.LifecycleState)); ok {
		m.LifecycleState = state
	}
}
