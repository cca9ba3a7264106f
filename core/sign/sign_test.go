package sign

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	payload := []byte(`{"author":"alice","name":"reviewer"}`)
	sig := Sign(kp.Private, payload)
	if !Verify(kp.Public, payload, sig) {
		t.Fatalf("expected signature to verify")
	}
}

func TestVerifyWrongKey(t *testing.T) {
	kp1, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	kp2, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	payload := []byte("hello")
	sig := Sign(kp1.Private, payload)
	if Verify(kp2.Public, payload, sig) {
		t.Fatalf("expected verification to fail with wrong key")
	}
}

func TestVerifyMutatedPayload(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	sig := Sign(kp.Private, []byte("hello"))
	if Verify(kp.Public, []byte("hello!"), sig) {
		t.Fatalf("expected verification to fail for mutated payload")
	}
}

func TestSignDeterministic(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	payload := []byte("payload")
	a := Sign(kp.Private, payload)
	b := Sign(kp.Private, payload)
	if string(a) != string(b) {
		t.Fatalf("expected deterministic signatures")
	}
}

func TestVerifyBase64(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	payload := []byte("payload")
	sigB64 := EncodeBase64(Sign(kp.Private, payload))
	pubB64 := EncodeBase64(kp.Public)

	ok, err := VerifyBase64(payload, sigB64, pubB64)
	if err != nil {
		t.Fatalf("verify base64: %v", err)
	}
	if !ok {
		t.Fatalf("expected signature to verify")
	}

	ok, err = VerifyBase64([]byte("tampered"), sigB64, pubB64)
	if err != nil {
		t.Fatalf("verify base64: %v", err)
	}
	if ok {
		t.Fatalf("expected negative result for tampered payload")
	}
}

func TestVerifyBase64Malformed(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	payload := []byte("payload")
	sigB64 := EncodeBase64(Sign(kp.Private, payload))

	if _, err := VerifyBase64(payload, "%%%notbase64", EncodeBase64(kp.Public)); err == nil {
		t.Fatalf("expected error for malformed signature")
	}
	if _, err := VerifyBase64(payload, sigB64, "%%%notbase64"); err == nil {
		t.Fatalf("expected error for malformed public key")
	}
	short := base64.StdEncoding.EncodeToString([]byte("short"))
	if _, err := VerifyBase64(payload, short, EncodeBase64(kp.Public)); err == nil {
		t.Fatalf("expected error for short signature")
	}
	if _, err := VerifyBase64(payload, sigB64, short); err == nil {
		t.Fatalf("expected error for short public key")
	}
}

func TestParseKeyBase64RoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	priv, err := ParsePrivateKeyBase64(EncodeBase64(kp.Private))
	if err != nil {
		t.Fatalf("parse private: %v", err)
	}
	pub, err := ParsePublicKeyBase64(EncodeBase64(kp.Public))
	if err != nil {
		t.Fatalf("parse public: %v", err)
	}
	if !ed25519.PublicKey(pub).Equal(kp.Public) {
		t.Fatalf("public key mismatch")
	}
	if !ed25519.PrivateKey(priv).Equal(kp.Private) {
		t.Fatalf("private key mismatch")
	}
}

func TestParseKeyBase64Invalid(t *testing.T) {
	if _, err := ParsePrivateKeyBase64("not-base64"); err == nil {
		t.Fatalf("expected error for invalid private key")
	}
	if _, err := ParsePublicKeyBase64("not-base64"); err == nil {
		t.Fatalf("expected error for invalid public key")
	}
	short := base64.StdEncoding.EncodeToString([]byte("short"))
	if _, err := ParsePrivateKeyBase64(short); err == nil {
		t.Fatalf("expected error for short private key")
	}
	if _, err := ParsePublicKeyBase64(short); err == nil {
		t.Fatalf("expected error for short public key")
	}
}

func TestKeyIDLength(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	if id := KeyID(kp.Public); len(id) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(id))
	}
}
