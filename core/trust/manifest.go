package trust

import (
	"time"

	"github.com/agenthub-dev/agenthub/core/manifest"
	"github.com/agenthub-dev/agenthub/core/sign"
)

// ManifestStatus is the outcome of verifying a manifest's author signature.
// Unsigned means no claim was made; it is never conflated with invalid.
type ManifestStatus string

const (
	ManifestValid    ManifestStatus = "valid"
	ManifestInvalid  ManifestStatus = "invalid"
	ManifestUnsigned ManifestStatus = "unsigned"
)

// SignManifest signs the manifest's canonical payload and returns a copy
// carrying the full signature block. The input is never mutated; persisting
// the result is the caller's responsibility.
func SignManifest(m manifest.Manifest, kp sign.KeyPair, now time.Time) (manifest.Manifest, error) {
	payload, err := manifest.SignableBytes(m)
	if err != nil {
		return manifest.Manifest{}, err
	}
	signed := m.Clone()
	signed.Signature = &manifest.Signature{
		Value:     sign.EncodeBase64(sign.Sign(kp.Private, payload)),
		PublicKey: sign.EncodeBase64(kp.Public),
		SignedAt:  now.UTC().Format(time.RFC3339),
	}
	return signed, nil
}

// VerifyManifest re-derives the canonical payload and checks the embedded
// signature. A failed signature is a negative status, not an error; errors
// are reserved for structurally malformed signature material.
func VerifyManifest(m manifest.Manifest) (ManifestStatus, error) {
	if !m.Signed() {
		return ManifestUnsigned, nil
	}
	payload, err := manifest.SignableBytes(m)
	if err != nil {
		return "", err
	}
	ok, err := sign.VerifyBase64(payload, m.Signature.Value, m.Signature.PublicKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return ManifestInvalid, nil
	}
	return ManifestValid, nil
}
