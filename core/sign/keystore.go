package sign

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthub-dev/agenthub/core/errors"
	"github.com/agenthub-dev/agenthub/core/fsx"
)

const (
	privateKeyFile = "private.key"
	publicKeyFile  = "public.key"
)

// Keystore holds the local principal's keypair as single-line base64 files.
// The private key never leaves this directory.
type Keystore struct {
	dir string
}

func NewKeystore(dir string) Keystore {
	return Keystore{dir: dir}
}

func (ks Keystore) Dir() string {
	return ks.dir
}

func (ks Keystore) PrivateKeyPath() string {
	return filepath.Join(ks.dir, privateKeyFile)
}

func (ks Keystore) PublicKeyPath() string {
	return filepath.Join(ks.dir, publicKeyFile)
}

func (ks Keystore) Exists() bool {
	_, privErr := os.Stat(ks.PrivateKeyPath())
	_, pubErr := os.Stat(ks.PublicKeyPath())
	return privErr == nil && pubErr == nil
}

// Generate creates a new keypair and persists it. An existing keypair is
// never overwritten unless force is set; accidental rotation would orphan
// every signature made with the previous key.
func (ks Keystore) Generate(force bool) (KeyPair, error) {
	if !force && ks.Exists() {
		return KeyPair{}, errors.New(
			fmt.Sprintf("keypair already exists in %s", ks.dir),
			errors.CategoryConflict, "keypair_exists", "pass --force to rotate the keypair")
	}
	if err := fsx.EnsureDir(ks.dir, 0o700); err != nil {
		return KeyPair{}, errors.Wrap(err, errors.CategoryIOFailure, "keystore_dir", "")
	}
	kp, err := GenerateKeyPair()
	if err != nil {
		return KeyPair{}, errors.Wrap(fmt.Errorf("generate keypair: %w", err), errors.CategoryInternalFailure, "entropy_failure", "")
	}
	if err := fsx.WriteFileAtomic(ks.PrivateKeyPath(), []byte(EncodeBase64(kp.Private)+"\n"), 0o600); err != nil {
		return KeyPair{}, errors.Wrap(fmt.Errorf("write private key: %w", err), errors.CategoryIOFailure, "key_write_failed", "")
	}
	if err := fsx.WriteFileAtomic(ks.PublicKeyPath(), []byte(EncodeBase64(kp.Public)+"\n"), 0o644); err != nil {
		return KeyPair{}, errors.Wrap(fmt.Errorf("write public key: %w", err), errors.CategoryIOFailure, "key_write_failed", "")
	}
	return kp, nil
}

// Load reads the principal's keypair. NotFound when no key has ever been
// generated.
func (ks Keystore) Load() (KeyPair, error) {
	// #nosec G304 -- keystore directory is explicit local configuration.
	raw, err := os.ReadFile(ks.PrivateKeyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return KeyPair{}, errors.New(
				fmt.Sprintf("private key not found at %s", ks.PrivateKeyPath()),
				errors.CategoryNotFound, "keypair_missing", "run 'agenthub keys init' to generate a keypair")
		}
		return KeyPair{}, errors.Wrap(fmt.Errorf("read private key: %w", err), errors.CategoryIOFailure, "key_read_failed", "")
	}
	priv, err := ParsePrivateKeyBase64(strings.TrimSpace(string(raw)))
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Public: priv.Public().(ed25519.PublicKey), Private: priv}, nil
}

// PublicKeyBase64 returns the base64 public half for embedding in signatures
// and attestations.
func (ks Keystore) PublicKeyBase64() (string, error) {
	kp, err := ks.Load()
	if err != nil {
		return "", err
	}
	return EncodeBase64(kp.Public), nil
}
