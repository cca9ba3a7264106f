package trust

import "github.com/agenthub-dev/agenthub/core/manifest"

// TrustLevel is a registry judgment about an attestation's signer, separate
// from cryptographic validity. A valid signature from a mismatched key is
// still "valid" but never trusted.
type TrustLevel string

const (
	TrustTrusted   TrustLevel = "trusted"
	TrustUntrusted TrustLevel = "untrusted"
	TrustUnknown   TrustLevel = "unknown"
)

// KeyMismatchWarning is surfaced when a registered verifier name arrives
// with a different key: possible compromise, impersonation, or a rotation
// not yet reflected in the registry. It is deliberately louder than an
// unknown verifier.
const KeyMismatchWarning = "signature valid but key does not match known verifier"

type Decision struct {
	Result      AttestationResult
	Trust       TrustLevel
	MatchedName string
	Warning     string
}

// Accepted reports whether the decision passes for gating purposes. Strict
// pipelines reject anything not explicitly trusted; non-strict treats trust
// as an annotation and only requires a valid signature.
func (d Decision) Accepted(strict bool) bool {
	if d.Result.Status != AttestationValid {
		return false
	}
	if strict {
		return d.Trust == TrustTrusted
	}
	return true
}

// VerifyAttestationTrusted verifies the attestation's signature, then
// resolves its verifier name against the registry.
//
// The decision table:
//
//	signature invalid/malformed  -> status as-is, untrusted
//	valid, name found, key equal -> trusted
//	valid, name found, key diff  -> untrusted, key-mismatch warning
//	valid, name not found        -> unknown
func VerifyAttestationTrusted(a manifest.Attestation, registry *Registry) Decision {
	result := VerifyAttestation(a)
	if result.Status != AttestationValid {
		return Decision{Result: result, Trust: TrustUntrusted}
	}

	entry, found := registry.Get(a.Verifier)
	if !found {
		return Decision{Result: result, Trust: TrustUnknown}
	}
	if entry.PublicKey != a.PublicKey {
		return Decision{
			Result:  result,
			Trust:   TrustUntrusted,
			Warning: KeyMismatchWarning,
		}
	}
	return Decision{Result: result, Trust: TrustTrusted, MatchedName: entry.Name}
}

// VerifyAllAttestationsTrusted evaluates every attestation against the
// registry, in insertion order.
func VerifyAllAttestationsTrusted(m manifest.Manifest, registry *Registry) []Decision {
	decisions := make([]Decision, len(m.Attestations))
	for i, a := range m.Attestations {
		decisions[i] = VerifyAttestationTrusted(a, registry)
	}
	return decisions
}
