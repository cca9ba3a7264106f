package sign

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/agenthub-dev/agenthub/core/errors"
)

type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// KeyID is a stable fingerprint of a public key for display and logs.
func KeyID(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:])
}

// Sign signs the exact payload bytes. Ed25519 is deterministic: the same
// payload and key always produce the same signature.
func Sign(priv ed25519.PrivateKey, payload []byte) []byte {
	return ed25519.Sign(priv, payload)
}

// Verify reports whether sig is a valid signature over payload. A false
// result is a negative outcome, not an error.
func Verify(pub ed25519.PublicKey, payload []byte, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, payload, sig)
}

// VerifyBase64 decodes a base64 signature and public key and verifies them
// over payload. Malformed encodings and wrong-length keys are reported as
// errors, distinct from a signature that simply does not verify.
func VerifyBase64(payload []byte, sigB64, pubB64 string) (bool, error) {
	rawSig, err := DecodeSignatureBase64(sigB64)
	if err != nil {
		return false, err
	}
	pub, err := ParsePublicKeyBase64(pubB64)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, payload, rawSig), nil
}

func EncodeBase64(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

func DecodeSignatureBase64(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("decode signature: %w", err), errors.CategoryInvalidInput, "malformed_signature", "signature must be standard base64")
	}
	if l := len(raw); l != ed25519.SignatureSize {
		return nil, errors.New(fmt.Sprintf("invalid signature length: %d", l), errors.CategoryInvalidInput, "malformed_signature", "")
	}
	return raw, nil
}

func ParsePrivateKeyBase64(encoded string) (ed25519.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("decode private key: %w", err), errors.CategoryInvalidInput, "malformed_key", "private key must be standard base64")
	}
	if l := len(raw); l != ed25519.PrivateKeySize {
		return nil, errors.New(fmt.Sprintf("invalid private key length: %d", l), errors.CategoryInvalidInput, "malformed_key", "")
	}
	return ed25519.PrivateKey(raw), nil
}

func ParsePublicKeyBase64(encoded string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("decode public key: %w", err), errors.CategoryInvalidInput, "malformed_key", "public key must be standard base64")
	}
	if l := len(raw); l != ed25519.PublicKeySize {
		return nil, errors.New(fmt.Sprintf("invalid public key length: %d", l), errors.CategoryInvalidInput, "malformed_key", "")
	}
	return ed25519.PublicKey(raw), nil
}
