package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agenthub-dev/agenthub/core/errors"
)

const (
	DefaultDirName  = ".agenthub"
	ConfigFileName  = "config.yaml"
	KeysDirName     = "keys"
	DatabaseName    = "registry.db"
	HomeEnv         = "AGENTHUB_HOME"
	APIURLEnv       = "AGENTHUB_API_URL"
	DefaultVerifier = ""
)

// Config is the optional per-user config file. Environment variables win
// over file values so CI and tests can redirect everything.
type Config struct {
	APIURL   string `yaml:"api_url"`
	Verifier string `yaml:"verifier"`
}

// HomeDir resolves the AgentHub base directory: AGENTHUB_HOME when set,
// otherwise ~/.agenthub.
func HomeDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(HomeEnv)); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(fmt.Errorf("resolve home dir: %w", err), errors.CategoryIOFailure, "home_dir", "set "+HomeEnv+" explicitly")
	}
	return filepath.Join(home, DefaultDirName), nil
}

func KeysDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, KeysDirName), nil
}

func DatabasePath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DatabaseName), nil
}

// RegistryPath is the trusted-verifier registry file, deliberately outside
// the keys directory.
func RegistryPath(registryFileName string) (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, registryFileName), nil
}

// Load reads the config file when present and applies env overrides. A
// missing file yields a zero config.
func Load() (Config, error) {
	var cfg Config
	home, err := HomeDir()
	if err != nil {
		return Config{}, err
	}
	path := filepath.Join(home, ConfigFileName)
	// #nosec G304 -- config path is derived from the user's own home directory.
	raw, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Wrap(fmt.Errorf("decode config: %w", err), errors.CategoryInvalidInput, "config_corrupt", "fix or remove "+path)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrap(fmt.Errorf("read config: %w", err), errors.CategoryIOFailure, "config_read_failed", "")
	}

	if apiURL := strings.TrimSpace(os.Getenv(APIURLEnv)); apiURL != "" {
		cfg.APIURL = apiURL
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	return cfg, nil
}

// RemoteMode reports whether registry operations should go through the API
// server instead of the local database.
func (c Config) RemoteMode() bool {
	return c.APIURL != ""
}
