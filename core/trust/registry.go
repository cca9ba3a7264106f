package trust

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agenthub-dev/agenthub/core/errors"
	"github.com/agenthub-dev/agenthub/core/fsx"
	"github.com/agenthub-dev/agenthub/core/sign"
)

const RegistryFileName = "trusted-verifiers.yaml"

// VerifierEntry is a trust anchor: an attestation whose verifier name
// resolves here is trusted only when its embedded key matches byte for byte.
type VerifierEntry struct {
	Name        string `yaml:"name" json:"name"`
	PublicKey   string `yaml:"public_key" json:"public_key"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	AddedAt     string `yaml:"added_at,omitempty" json:"added_at,omitempty"`
}

type registryFile struct {
	Verifiers []VerifierEntry `yaml:"verifiers"`
}

// Registry is the trusted-verifier registry, backed by a human-editable
// YAML file. Entries keep file order. The registry is only ever populated
// by explicit administrative action, never from observed attestations.
type Registry struct {
	path    string
	entries []VerifierEntry
}

// LoadRegistry reads the registry file; a missing file is an empty
// registry, not an error.
func LoadRegistry(path string) (*Registry, error) {
	reg := &Registry{path: path}
	// #nosec G304 -- registry path is explicit local configuration.
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, errors.Wrap(fmt.Errorf("read verifier registry: %w", err), errors.CategoryIOFailure, "registry_read_failed", "")
	}
	var file registryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrap(fmt.Errorf("decode verifier registry: %w", err), errors.CategoryInvalidInput, "registry_corrupt", "fix or remove "+path)
	}
	reg.entries = file.Verifiers
	return reg, nil
}

func (r *Registry) Path() string {
	return r.path
}

// Add registers a trust anchor. An existing name is a conflict unless
// overwrite is requested.
func (r *Registry) Add(name, publicKey, description string, overwrite bool, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("verifier name is required", errors.CategoryInvalidInput, "invalid_verifier", "")
	}
	if _, err := sign.ParsePublicKeyBase64(strings.TrimSpace(publicKey)); err != nil {
		return err
	}
	entry := VerifierEntry{
		Name:        name,
		PublicKey:   strings.TrimSpace(publicKey),
		Description: description,
		AddedAt:     now.UTC().Format(time.RFC3339),
	}
	for i, existing := range r.entries {
		if existing.Name == name {
			if !overwrite {
				return errors.New(
					fmt.Sprintf("verifier %q already exists", name),
					errors.CategoryConflict, "verifier_exists", "pass --overwrite to replace the key")
			}
			r.entries[i] = entry
			return nil
		}
	}
	r.entries = append(r.entries, entry)
	return nil
}

// Remove deletes a trust anchor by name.
func (r *Registry) Remove(name string) error {
	for i, existing := range r.entries {
		if existing.Name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return errors.New(
		fmt.Sprintf("verifier %q not found", name),
		errors.CategoryNotFound, "verifier_not_found", "")
}

// Get looks up a trust anchor by name.
func (r *Registry) Get(name string) (VerifierEntry, bool) {
	for _, existing := range r.entries {
		if existing.Name == name {
			return existing, true
		}
	}
	return VerifierEntry{}, false
}

// List returns all entries in file order.
func (r *Registry) List() []VerifierEntry {
	out := make([]VerifierEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Save writes the registry back atomically: the file is either fully
// replaced or left untouched. Concurrent edits race at the file level with
// last-writer-wins, acceptable for rare administrative changes.
func (r *Registry) Save() error {
	encoded, err := yaml.Marshal(registryFile{Verifiers: r.entries})
	if err != nil {
		return errors.Wrap(fmt.Errorf("encode verifier registry: %w", err), errors.CategoryInternalFailure, "registry_encode_failed", "")
	}
	if err := fsx.EnsureDir(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, errors.CategoryIOFailure, "registry_write_failed", "")
	}
	if err := fsx.WriteFileAtomic(r.path, encoded, 0o600); err != nil {
		return errors.Wrap(fmt.Errorf("write verifier registry: %w", err), errors.CategoryIOFailure, "registry_write_failed", "")
	}
	return nil
}
