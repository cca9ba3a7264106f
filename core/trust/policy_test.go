package trust

import (
	"testing"
	"time"

	"github.com/agenthub-dev/agenthub/core/manifest"
	"github.com/agenthub-dev/agenthub/core/sign"
)

func signedAttestation(t *testing.T, kp sign.KeyPair, verifier string) manifest.Attestation {
	t.Helper()
	m, err := Attest(testManifest(), manifest.Attestation{
		Type:      manifest.AttestationBuild,
		Statement: "built from clean tree",
	}, kp, verifier, time.Now())
	if err != nil {
		t.Fatalf("attest: %v", err)
	}
	return m.Attestations[0]
}

func TestTrustDecisionTrusted(t *testing.T) {
	kp := testKeyPair(t)
	reg := testRegistry(t)
	if err := reg.Add("ci", sign.EncodeBase64(kp.Public), "", false, time.Now()); err != nil {
		t.Fatalf("add: %v", err)
	}

	decision := VerifyAttestationTrusted(signedAttestation(t, kp, "ci"), reg)
	if decision.Result.Status != AttestationValid {
		t.Fatalf("expected valid, got %s", decision.Result.Status)
	}
	if decision.Trust != TrustTrusted {
		t.Fatalf("expected trusted, got %s", decision.Trust)
	}
	if decision.MatchedName != "ci" {
		t.Fatalf("expected matched name ci, got %s", decision.MatchedName)
	}
	if !decision.Accepted(true) || !decision.Accepted(false) {
		t.Fatalf("trusted decision must pass both modes")
	}
}

func TestTrustDecisionKeyMismatch(t *testing.T) {
	signerKP := testKeyPair(t)
	registeredKP := testKeyPair(t)
	reg := testRegistry(t)
	if err := reg.Add("ci", sign.EncodeBase64(registeredKP.Public), "", false, time.Now()); err != nil {
		t.Fatalf("add: %v", err)
	}

	decision := VerifyAttestationTrusted(signedAttestation(t, signerKP, "ci"), reg)
	if decision.Result.Status != AttestationValid {
		t.Fatalf("signature is cryptographically sound, got %s", decision.Result.Status)
	}
	if decision.Trust != TrustUntrusted {
		t.Fatalf("expected untrusted on key mismatch, got %s", decision.Trust)
	}
	if decision.Warning != KeyMismatchWarning {
		t.Fatalf("expected key mismatch warning, got %q", decision.Warning)
	}
	if decision.Accepted(true) {
		t.Fatalf("strict mode must reject a key mismatch")
	}
	if !decision.Accepted(false) {
		t.Fatalf("non-strict mode annotates but accepts a valid signature")
	}
}

func TestTrustDecisionUnknownVerifier(t *testing.T) {
	kp := testKeyPair(t)
	reg := testRegistry(t)

	decision := VerifyAttestationTrusted(signedAttestation(t, kp, "unknown-ci"), reg)
	if decision.Result.Status != AttestationValid {
		t.Fatalf("expected valid, got %s", decision.Result.Status)
	}
	if decision.Trust != TrustUnknown {
		t.Fatalf("expected unknown, got %s", decision.Trust)
	}
	if decision.Warning != "" {
		t.Fatalf("unknown verifier carries no mismatch warning")
	}
	if decision.Accepted(true) {
		t.Fatalf("strict mode must reject an unknown verifier")
	}
	if !decision.Accepted(false) {
		t.Fatalf("non-strict mode accepts an unknown verifier")
	}
}

func TestTrustDecisionInvalidSignature(t *testing.T) {
	kp := testKeyPair(t)
	reg := testRegistry(t)
	if err := reg.Add("ci", sign.EncodeBase64(kp.Public), "", false, time.Now()); err != nil {
		t.Fatalf("add: %v", err)
	}

	a := signedAttestation(t, kp, "ci")
	a.Statement = "tampered"
	decision := VerifyAttestationTrusted(a, reg)
	if decision.Result.Status != AttestationInvalid {
		t.Fatalf("expected invalid, got %s", decision.Result.Status)
	}
	if decision.Trust != TrustUntrusted {
		t.Fatalf("invalid signature is always untrusted, got %s", decision.Trust)
	}
	if decision.Accepted(false) || decision.Accepted(true) {
		t.Fatalf("invalid signature must fail both modes")
	}
}

func TestVerifyAllAttestationsTrusted(t *testing.T) {
	trustedKP := testKeyPair(t)
	strangerKP := testKeyPair(t)
	reg := testRegistry(t)
	if err := reg.Add("ci", sign.EncodeBase64(trustedKP.Public), "", false, time.Now()); err != nil {
		t.Fatalf("add: %v", err)
	}

	m := testManifest()
	var err error
	m, err = Attest(m, manifest.Attestation{Type: manifest.AttestationBuild, Statement: "built"}, trustedKP, "ci", time.Now())
	if err != nil {
		t.Fatalf("attest: %v", err)
	}
	m, err = Attest(m, manifest.Attestation{Type: manifest.AttestationReview, Statement: "reviewed"}, strangerKP, "somebody", time.Now())
	if err != nil {
		t.Fatalf("attest: %v", err)
	}

	decisions := VerifyAllAttestationsTrusted(m, reg)
	if len(decisions) != 2 {
		t.Fatalf("expected two decisions")
	}
	if decisions[0].Trust != TrustTrusted {
		t.Fatalf("first decision: expected trusted, got %s", decisions[0].Trust)
	}
	if decisions[1].Trust != TrustUnknown {
		t.Fatalf("second decision: expected unknown, got %s", decisions[1].Trust)
	}
}
