package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agenthub-dev/agenthub/core/config"
	"github.com/agenthub-dev/agenthub/core/manifest"
	"github.com/agenthub-dev/agenthub/core/sign"
	"github.com/agenthub-dev/agenthub/core/trust"
)

type attestOutput struct {
	OK        bool   `json:"ok"`
	Name      string `json:"name,omitempty"`
	Type      string `json:"type,omitempty"`
	Verifier  string `json:"verifier,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Path      string `json:"path,omitempty"`
	Error     string `json:"error,omitempty"`
}

// metaFlags collects repeated --meta k=v pairs.
type metaFlags map[string]string

func (m metaFlags) String() string {
	pairs := make([]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (m metaFlags) Set(value string) error {
	key, val, found := strings.Cut(value, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return fmt.Errorf("meta must be k=v, got %q", value)
	}
	m[key] = val
	return nil
}

func runAttest(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Append a signed third-party attestation to a manifest without touching the author's signature.")
	}
	arguments = reorderInterspersedFlags(arguments, map[string]bool{
		"type":        true,
		"statement":   true,
		"verifier":    true,
		"verifier-id": true,
		"meta":        true,
		"out":         true,
	})

	flagSet := flag.NewFlagSet("attest", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var attestationType string
	var statement string
	var verifier string
	var verifierID string
	var outPath string
	var jsonOutput bool
	var helpFlag bool
	meta := metaFlags{}

	flagSet.StringVar(&attestationType, "type", "", "attestation type (build, test, security, review, registry, custom)")
	flagSet.StringVar(&statement, "statement", "", "what the verifier asserts")
	flagSet.StringVar(&verifier, "verifier", "", "verifier name (defaults to config)")
	flagSet.StringVar(&verifierID, "verifier-id", "", "optional stable verifier identifier")
	flagSet.Var(meta, "meta", "metadata entry k=v (repeatable)")
	flagSet.StringVar(&outPath, "out", "", "write the attested manifest here instead of in place")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "attest", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		printAttestUsage()
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}
	manifestPath := flagSet.Args()[0]

	cfg, err := config.Load()
	if err != nil {
		return writeCommandError(jsonOutput, "attest", err)
	}
	if strings.TrimSpace(verifier) == "" {
		verifier = cfg.Verifier
	}
	if strings.TrimSpace(verifier) == "" {
		return writeAttestOutput(jsonOutput, attestOutput{OK: false, Error: "verifier name is required (--verifier or config)"}, exitInvalidInput)
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return writeCommandError(jsonOutput, "attest", err)
	}
	keysDir, err := config.KeysDir()
	if err != nil {
		return writeCommandError(jsonOutput, "attest", err)
	}
	kp, err := sign.NewKeystore(keysDir).Load()
	if err != nil {
		return writeCommandError(jsonOutput, "attest", err)
	}

	draft := manifest.Attestation{
		Type:       manifest.AttestationType(strings.ToLower(strings.TrimSpace(attestationType))),
		VerifierID: strings.TrimSpace(verifierID),
		Statement:  statement,
	}
	if len(meta) > 0 {
		draft.Metadata = meta
	}
	attested, err := trust.Attest(m, draft, kp, verifier, time.Now())
	if err != nil {
		return writeCommandError(jsonOutput, "attest", err)
	}

	target := strings.TrimSpace(outPath)
	if target == "" {
		target = manifestPath
	}
	if err := manifest.Save(attested, target); err != nil {
		return writeCommandError(jsonOutput, "attest", err)
	}

	added := attested.Attestations[len(attested.Attestations)-1]
	output := attestOutput{
		OK:        true,
		Name:      attested.Name,
		Type:      string(added.Type),
		Verifier:  added.Verifier,
		Timestamp: added.Timestamp,
		Path:      target,
	}
	return writeAttestOutput(jsonOutput, output, exitOK)
}

func writeAttestOutput(jsonOutput bool, output attestOutput, exitCode int) int {
	if jsonOutput {
		return writeJSONOutput(output, exitCode)
	}
	if output.OK {
		fmt.Printf("attested %s: %s by %s -> %s\n", output.Name, output.Type, output.Verifier, output.Path)
		return exitCode
	}
	fmt.Printf("attest error: %s\n", output.Error)
	return exitCode
}

func printAttestUsage() {
	fmt.Println("Usage:")
	fmt.Println("  agenthub attest <manifest.yaml> --type <t> --statement <s> [--verifier <name>] [--verifier-id <id>] [--meta k=v]... [--out <path>] [--json]")
}
