package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHomeDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	home, err := HomeDir()
	if err != nil {
		t.Fatalf("home dir: %v", err)
	}
	if home != dir {
		t.Fatalf("expected override dir, got %s", home)
	}
	keys, err := KeysDir()
	if err != nil {
		t.Fatalf("keys dir: %v", err)
	}
	if keys != filepath.Join(dir, KeysDirName) {
		t.Fatalf("unexpected keys dir: %s", keys)
	}
	db, err := DatabasePath()
	if err != nil {
		t.Fatalf("database path: %v", err)
	}
	if db != filepath.Join(dir, DatabaseName) {
		t.Fatalf("unexpected database path: %s", db)
	}
}

func TestLoadMissingConfig(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	t.Setenv(APIURLEnv, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RemoteMode() {
		t.Fatalf("expected local mode with no config")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	t.Setenv(APIURLEnv, "")
	content := "api_url: https://registry.example.com/\nverifier: my-ci\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "https://registry.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.Verifier != "my-ci" {
		t.Fatalf("unexpected verifier: %s", cfg.Verifier)
	}
	if !cfg.RemoteMode() {
		t.Fatalf("expected remote mode")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("api_url: https://file.example.com\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(APIURLEnv, "https://env.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "https://env.example.com" {
		t.Fatalf("env must override file, got %q", cfg.APIURL)
	}
}

func TestLoadCorruptConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("api_url: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for corrupt config")
	}
}
