package trust

import (
	"fmt"
	"strings"
	"time"

	"github.com/agenthub-dev/agenthub/core/errors"
	"github.com/agenthub-dev/agenthub/core/manifest"
	"github.com/agenthub-dev/agenthub/core/sign"
)

// AttestationStatus is the outcome of checking a single attestation.
// Malformed covers missing required fields and undecodable signature
// material, distinct from a signature that simply fails to verify.
type AttestationStatus string

const (
	AttestationValid     AttestationStatus = "valid"
	AttestationInvalid   AttestationStatus = "invalid"
	AttestationMalformed AttestationStatus = "malformed"
)

type AttestationResult struct {
	Status AttestationStatus
	Reason string
}

// Attest signs an attestation draft with the caller's keypair and returns a
// manifest copy with the attestation appended. Insertion order is display
// order; attestations are never deduplicated or reordered by trust.
func Attest(m manifest.Manifest, draft manifest.Attestation, kp sign.KeyPair, verifier string, now time.Time) (manifest.Manifest, error) {
	a := draft.Clone()
	a.Verifier = strings.TrimSpace(verifier)
	a.Timestamp = now.UTC().Format(time.RFC3339)
	a.Signature = ""
	a.PublicKey = ""

	if err := validateDraft(a); err != nil {
		return manifest.Manifest{}, err
	}
	payload, err := manifest.AttestationSignableBytes(a)
	if err != nil {
		return manifest.Manifest{}, err
	}
	a.Signature = sign.EncodeBase64(sign.Sign(kp.Private, payload))
	a.PublicKey = sign.EncodeBase64(kp.Public)

	out := m.Clone()
	out.Attestations = append(out.Attestations, a)
	return out, nil
}

// VerifyAttestation checks one attestation in isolation. One bad attestation
// never affects another's result.
func VerifyAttestation(a manifest.Attestation) AttestationResult {
	if a.Signature == "" || a.PublicKey == "" {
		return AttestationResult{Status: AttestationMalformed, Reason: "attestation is not signed"}
	}
	if err := validateDraft(a); err != nil {
		return AttestationResult{Status: AttestationMalformed, Reason: err.Error()}
	}
	payload, err := manifest.AttestationSignableBytes(a)
	if err != nil {
		return AttestationResult{Status: AttestationMalformed, Reason: err.Error()}
	}
	ok, err := sign.VerifyBase64(payload, a.Signature, a.PublicKey)
	if err != nil {
		return AttestationResult{Status: AttestationMalformed, Reason: err.Error()}
	}
	if !ok {
		return AttestationResult{Status: AttestationInvalid, Reason: "attestation signature does not verify"}
	}
	return AttestationResult{Status: AttestationValid}
}

// VerifyAllAttestations evaluates every attestation independently, in
// insertion order.
func VerifyAllAttestations(m manifest.Manifest) []AttestationResult {
	results := make([]AttestationResult, len(m.Attestations))
	for i, a := range m.Attestations {
		results[i] = VerifyAttestation(a)
	}
	return results
}

func validateDraft(a manifest.Attestation) error {
	if _, ok := manifest.ParseAttestationType(string(a.Type)); !ok {
		return errors.New(
			fmt.Sprintf("unknown attestation type: %q", a.Type),
			errors.CategoryInvalidInput, "invalid_attestation", "type must be one of build, test, security, review, registry, custom")
	}
	if strings.TrimSpace(a.Verifier) == "" {
		return errors.New("attestation verifier is required", errors.CategoryInvalidInput, "invalid_attestation", "")
	}
	if strings.TrimSpace(a.Statement) == "" {
		return errors.New("attestation statement is required", errors.CategoryInvalidInput, "invalid_attestation", "")
	}
	if strings.TrimSpace(a.Timestamp) == "" {
		return errors.New("attestation timestamp is required", errors.CategoryInvalidInput, "invalid_attestation", "")
	}
	return nil
}
