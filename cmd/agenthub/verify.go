package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/agenthub-dev/agenthub/core/config"
	"github.com/agenthub-dev/agenthub/core/manifest"
	"github.com/agenthub-dev/agenthub/core/trust"
)

type attestationVerdict struct {
	Type     string `json:"type"`
	Verifier string `json:"verifier"`
	Status   string `json:"status"`
	Trust    string `json:"trust"`
	Reason   string `json:"reason,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

type verifyOutput struct {
	OK           bool                 `json:"ok"`
	Name         string               `json:"name,omitempty"`
	Manifest     string               `json:"manifest_status,omitempty"`
	Attestations []attestationVerdict `json:"attestations,omitempty"`
	Strict       bool                 `json:"strict"`
	Error        string               `json:"error,omitempty"`
}

func runVerify(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Verify a manifest's author signature and every attestation, resolving attestation signers against the trusted verifier registry.")
	}
	arguments = reorderInterspersedFlags(arguments, nil)

	flagSet := flag.NewFlagSet("verify", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var strict bool
	var jsonOutput bool
	var helpFlag bool

	flagSet.BoolVar(&strict, "strict", false, "fail unless the manifest is signed and every attestation is trusted")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "verify", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		fmt.Println("Usage: agenthub verify <manifest.yaml> [--strict] [--json]")
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}

	m, err := manifest.Load(flagSet.Args()[0])
	if err != nil {
		return writeCommandError(jsonOutput, "verify", err)
	}
	registryPath, err := config.RegistryPath(trust.RegistryFileName)
	if err != nil {
		return writeCommandError(jsonOutput, "verify", err)
	}
	registry, err := trust.LoadRegistry(registryPath)
	if err != nil {
		return writeCommandError(jsonOutput, "verify", err)
	}

	status, err := trust.VerifyManifest(m)
	if err != nil {
		return writeCommandError(jsonOutput, "verify", err)
	}
	decisions := trust.VerifyAllAttestationsTrusted(m, registry)

	output := verifyOutput{Name: m.Name, Manifest: string(status), Strict: strict}
	passed := status == trust.ManifestValid || (!strict && status == trust.ManifestUnsigned)
	for i, decision := range decisions {
		a := m.Attestations[i]
		output.Attestations = append(output.Attestations, attestationVerdict{
			Type:     string(a.Type),
			Verifier: a.Verifier,
			Status:   string(decision.Result.Status),
			Trust:    string(decision.Trust),
			Reason:   decision.Result.Reason,
			Warning:  decision.Warning,
		})
		if !decision.Accepted(strict) {
			passed = false
		}
	}
	output.OK = passed
	if !passed {
		output.Error = "verification failed"
	}

	exitCode := exitOK
	if !passed {
		exitCode = exitVerifyFailed
	}
	if jsonOutput {
		return writeJSONOutput(output, exitCode)
	}
	writeVerifyText(output)
	return exitCode
}

func writeVerifyText(output verifyOutput) {
	fmt.Printf("manifest %s: %s\n", output.Name, output.Manifest)
	for _, verdict := range output.Attestations {
		line := fmt.Sprintf("attestation %s by %s: %s (%s)", verdict.Type, verdict.Verifier, verdict.Status, verdict.Trust)
		if verdict.Reason != "" {
			line += " reason=" + verdict.Reason
		}
		fmt.Println(line)
		if verdict.Warning != "" {
			fmt.Printf("warning: %s\n", verdict.Warning)
		}
	}
	if output.OK {
		fmt.Println("verify: pass")
	} else {
		fmt.Println("verify: fail")
	}
}
