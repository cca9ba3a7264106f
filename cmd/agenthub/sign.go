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

type signOutput struct {
	OK       bool   `json:"ok"`
	Name     string `json:"name,omitempty"`
	KeyID    string `json:"key_id,omitempty"`
	SignedAt string `json:"signed_at,omitempty"`
	Path     string `json:"path,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runSign(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Sign a manifest with the local keypair and write the signed manifest back to disk.")
	}
	arguments = reorderInterspersedFlags(arguments, map[string]bool{
		"out": true,
	})

	flagSet := flag.NewFlagSet("sign", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var outPath string
	var jsonOutput bool
	var helpFlag bool

	flagSet.StringVar(&outPath, "out", "", "write the signed manifest here instead of in place")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "sign", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		fmt.Println("Usage: agenthub sign <manifest.yaml> [--out <path>] [--json]")
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}
	manifestPath := flagSet.Args()[0]

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return writeCommandError(jsonOutput, "sign", err)
	}
	keysDir, err := config.KeysDir()
	if err != nil {
		return writeCommandError(jsonOutput, "sign", err)
	}
	kp, err := sign.NewKeystore(keysDir).Load()
	if err != nil {
		return writeCommandError(jsonOutput, "sign", err)
	}

	signed, err := trust.SignManifest(m, kp, time.Now())
	if err != nil {
		return writeCommandError(jsonOutput, "sign", err)
	}

	target := strings.TrimSpace(outPath)
	if target == "" {
		target = manifestPath
	}
	if err := manifest.Save(signed, target); err != nil {
		return writeCommandError(jsonOutput, "sign", err)
	}

	output := signOutput{
		OK:       true,
		Name:     signed.Name,
		KeyID:    sign.KeyID(kp.Public),
		SignedAt: signed.Signature.SignedAt,
		Path:     target,
	}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	fmt.Printf("signed %s (key_id=%s) -> %s\n", output.Name, output.KeyID, output.Path)
	return exitOK
}
