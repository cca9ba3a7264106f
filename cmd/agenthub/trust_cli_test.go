package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agenthub-dev/agenthub/core/manifest"
)

const sampleManifestYAML = `name: code-reviewer
version: 1.0.0
description: Reviews pull requests for style and correctness
author: alice
capabilities:
  - code-review
protocols:
  - mcp
`

func writeSampleManifest(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "agent.yaml")
	if err := os.WriteFile(path, []byte(sampleManifestYAML), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func localPublicKey(t *testing.T, home string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(home, "keys", "public.key"))
	if err != nil {
		t.Fatalf("read public key: %v", err)
	}
	return strings.TrimSpace(string(raw))
}

func TestSignAndVerifyFlow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("AGENTHUB_HOME", home)
	manifestPath := writeSampleManifest(t, t.TempDir())

	if code := run([]string{"agenthub", "keys", "init"}); code != exitOK {
		t.Fatalf("keys init exit = %d", code)
	}
	if code := run([]string{"agenthub", "sign", manifestPath}); code != exitOK {
		t.Fatalf("sign exit = %d", code)
	}

	signed, err := manifest.Load(manifestPath)
	if err != nil {
		t.Fatalf("load signed manifest: %v", err)
	}
	if !signed.Signed() {
		t.Fatal("manifest not signed after sign command")
	}

	if code := run([]string{"agenthub", "verify", manifestPath}); code != exitOK {
		t.Fatalf("verify exit = %d", code)
	}
	if code := run([]string{"agenthub", "verify", "--strict", manifestPath}); code != exitOK {
		t.Fatalf("strict verify exit = %d", code)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	home := t.TempDir()
	t.Setenv("AGENTHUB_HOME", home)
	manifestPath := writeSampleManifest(t, t.TempDir())

	if code := run([]string{"agenthub", "keys", "init"}); code != exitOK {
		t.Fatalf("keys init exit = %d", code)
	}
	if code := run([]string{"agenthub", "sign", manifestPath}); code != exitOK {
		t.Fatalf("sign exit = %d", code)
	}

	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	tampered := strings.Replace(string(raw), "1.0.0", "9.9.9", 1)
	if err := os.WriteFile(manifestPath, []byte(tampered), 0o644); err != nil {
		t.Fatalf("write tampered manifest: %v", err)
	}

	if code := run([]string{"agenthub", "verify", manifestPath}); code != exitVerifyFailed {
		t.Fatalf("tampered verify exit = %d, want %d", code, exitVerifyFailed)
	}
}

func TestVerifyUnsignedManifest(t *testing.T) {
	t.Setenv("AGENTHUB_HOME", t.TempDir())
	manifestPath := writeSampleManifest(t, t.TempDir())

	if code := run([]string{"agenthub", "verify", manifestPath}); code != exitOK {
		t.Fatalf("unsigned verify exit = %d", code)
	}
	if code := run([]string{"agenthub", "verify", "--strict", manifestPath}); code != exitVerifyFailed {
		t.Fatalf("strict unsigned verify exit = %d, want %d", code, exitVerifyFailed)
	}
}

func TestAttestAndTrustFlow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("AGENTHUB_HOME", home)
	manifestPath := writeSampleManifest(t, t.TempDir())

	if code := run([]string{"agenthub", "keys", "init"}); code != exitOK {
		t.Fatalf("keys init exit = %d", code)
	}
	if code := run([]string{"agenthub", "sign", manifestPath}); code != exitOK {
		t.Fatalf("sign exit = %d", code)
	}
	if code := run([]string{"agenthub", "attest", manifestPath,
		"--type", "security", "--statement", "no known CVEs",
		"--verifier", "sec-scanner", "--meta", "scanner=trivy"}); code != exitOK {
		t.Fatalf("attest exit = %d", code)
	}

	attested, err := manifest.Load(manifestPath)
	if err != nil {
		t.Fatalf("load attested manifest: %v", err)
	}
	if len(attested.Attestations) != 1 {
		t.Fatalf("attestations = %d", len(attested.Attestations))
	}
	if attested.Attestations[0].Metadata["scanner"] != "trivy" {
		t.Fatalf("metadata = %v", attested.Attestations[0].Metadata)
	}
	if !attested.Signed() {
		t.Fatal("author signature lost after attest")
	}

	// Author signature stays valid; the unknown verifier only fails strict mode.
	if code := run([]string{"agenthub", "verify", manifestPath}); code != exitOK {
		t.Fatalf("verify exit = %d", code)
	}
	if code := run([]string{"agenthub", "verify", "--strict", manifestPath}); code != exitVerifyFailed {
		t.Fatalf("strict verify with unknown verifier exit = %d, want %d", code, exitVerifyFailed)
	}

	publicKey := localPublicKey(t, home)
	if code := run([]string{"agenthub", "verifiers", "add", "sec-scanner", publicKey,
		"--description", "security scanning service"}); code != exitOK {
		t.Fatalf("verifiers add exit = %d", code)
	}
	if code := run([]string{"agenthub", "verify", "--strict", manifestPath}); code != exitOK {
		t.Fatalf("strict verify with trusted verifier exit = %d", code)
	}
}

func TestVerifiersAddRemove(t *testing.T) {
	home := t.TempDir()
	t.Setenv("AGENTHUB_HOME", home)

	if code := run([]string{"agenthub", "keys", "init"}); code != exitOK {
		t.Fatalf("keys init exit = %d", code)
	}
	publicKey := localPublicKey(t, home)

	if code := run([]string{"agenthub", "verifiers", "add", "ci-bot", publicKey}); code != exitOK {
		t.Fatalf("verifiers add exit = %d", code)
	}
	if code := run([]string{"agenthub", "verifiers", "add", "ci-bot", publicKey}); code != exitConflict {
		t.Fatalf("duplicate verifiers add exit = %d, want %d", code, exitConflict)
	}
	if code := run([]string{"agenthub", "verifiers", "add", "ci-bot", publicKey, "--overwrite"}); code != exitOK {
		t.Fatalf("overwrite verifiers add exit = %d", code)
	}
	if code := run([]string{"agenthub", "verifiers", "list"}); code != exitOK {
		t.Fatalf("verifiers list exit = %d", code)
	}
	if code := run([]string{"agenthub", "verifiers", "remove", "ci-bot"}); code != exitOK {
		t.Fatalf("verifiers remove exit = %d", code)
	}
	if code := run([]string{"agenthub", "verifiers", "remove", "ci-bot"}); code != exitNotFound {
		t.Fatalf("missing verifiers remove exit = %d, want %d", code, exitNotFound)
	}
}

func TestForkAndLineage(t *testing.T) {
	home := t.TempDir()
	t.Setenv("AGENTHUB_HOME", home)
	workDir := t.TempDir()
	manifestPath := writeSampleManifest(t, workDir)
	forkPath := filepath.Join(workDir, "fork.yaml")

	if code := run([]string{"agenthub", "fork", manifestPath,
		"--name", "reviewer-x", "--author", "bob", "--out", forkPath}); code != exitOK {
		t.Fatalf("fork exit = %d", code)
	}

	child, err := manifest.Load(forkPath)
	if err != nil {
		t.Fatalf("load fork: %v", err)
	}
	if child.Name != "reviewer-x" || child.Author != "bob" {
		t.Fatalf("fork identity = %s by %s", child.Name, child.Author)
	}
	if child.AgentID != "ah:bob/reviewer-x" {
		t.Fatalf("fork agent id = %q", child.AgentID)
	}
	if child.ParentID != "ah:alice/code-reviewer" {
		t.Fatalf("fork parent id = %q", child.ParentID)
	}
	if child.Generation != 1 {
		t.Fatalf("fork generation = %d", child.Generation)
	}
	if child.Signed() || len(child.Attestations) != 0 {
		t.Fatal("fork must start unsigned and unattested")
	}

	if code := run([]string{"agenthub", "lineage", forkPath}); code != exitOK {
		t.Fatalf("lineage exit = %d", code)
	}
	if code := run([]string{"agenthub", "lineage", manifestPath}); code != exitOK {
		t.Fatalf("original lineage exit = %d", code)
	}
}

func TestForkRejectsReservedCharacters(t *testing.T) {
	t.Setenv("AGENTHUB_HOME", t.TempDir())
	manifestPath := writeSampleManifest(t, t.TempDir())

	if code := run([]string{"agenthub", "fork", manifestPath,
		"--name", "bad/name", "--author", "bob"}); code != exitInvalidInput {
		t.Fatalf("fork with reserved separator exit = %d, want %d", code, exitInvalidInput)
	}
}
