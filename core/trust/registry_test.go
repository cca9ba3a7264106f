package trust

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agenthub-dev/agenthub/core/errors"
	"github.com/agenthub-dev/agenthub/core/sign"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadRegistry(filepath.Join(t.TempDir(), RegistryFileName))
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func testPublicKeyB64(t *testing.T) string {
	t.Helper()
	return sign.EncodeBase64(testKeyPair(t).Public)
}

func TestRegistryAddGetRemove(t *testing.T) {
	reg := testRegistry(t)
	key := testPublicKeyB64(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := reg.Add("ci", key, "build pipeline", false, now); err != nil {
		t.Fatalf("add: %v", err)
	}
	entry, found := reg.Get("ci")
	if !found {
		t.Fatalf("expected entry")
	}
	if entry.PublicKey != key || entry.Description != "build pipeline" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.AddedAt != "2026-01-01T00:00:00Z" {
		t.Fatalf("unexpected added_at: %s", entry.AddedAt)
	}

	if err := reg.Remove("ci"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, found := reg.Get("ci"); found {
		t.Fatalf("expected entry to be gone")
	}
}

func TestRegistryAddConflict(t *testing.T) {
	reg := testRegistry(t)
	keyA := testPublicKeyB64(t)
	keyB := testPublicKeyB64(t)

	if err := reg.Add("ci", keyA, "", false, time.Now()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := reg.Add("ci", keyB, "", false, time.Now()); !errors.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := reg.Add("ci", keyB, "rotated", true, time.Now()); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	entry, _ := reg.Get("ci")
	if entry.PublicKey != keyB {
		t.Fatalf("expected overwritten key")
	}
}

func TestRegistryAddRejectsBadKey(t *testing.T) {
	reg := testRegistry(t)
	if err := reg.Add("ci", "not-base64", "", false, time.Now()); !errors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input for bad key, got %v", err)
	}
	if err := reg.Add("", testPublicKeyB64(t), "", false, time.Now()); !errors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input for empty name, got %v", err)
	}
}

func TestRegistryRemoveNotFound(t *testing.T) {
	reg := testRegistry(t)
	if err := reg.Remove("ghost"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegistryListKeepsInsertionOrder(t *testing.T) {
	reg := testRegistry(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Add(name, testPublicKeyB64(t), "", false, time.Now()); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	entries := reg.List()
	if len(entries) != 3 {
		t.Fatalf("expected three entries")
	}
	for i, want := range []string{"zeta", "alpha", "mid"} {
		if entries[i].Name != want {
			t.Fatalf("entry %d: expected %s, got %s", i, want, entries[i].Name)
		}
	}
}

func TestRegistrySaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RegistryFileName)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	key := testPublicKeyB64(t)
	if err := reg.Add("ci", key, "build pipeline", false, time.Now()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := reg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	entry, found := reloaded.Get("ci")
	if !found || entry.PublicKey != key {
		t.Fatalf("expected persisted entry, got %+v", entry)
	}
}

func TestLoadRegistryMissingFileIsEmpty(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(reg.List()) != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestLoadRegistryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), RegistryFileName)
	if err := os.WriteFile(path, []byte("verifiers: [unclosed"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error for corrupt registry")
	}
}
