package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/agenthub-dev/agenthub/core/config"
	"github.com/agenthub-dev/agenthub/core/trust"
)

type verifierOutput struct {
	OK    bool   `json:"ok"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

type verifierListOutput struct {
	OK        bool                  `json:"ok"`
	Count     int                   `json:"count"`
	Verifiers []trust.VerifierEntry `json:"verifiers"`
	Error     string                `json:"error,omitempty"`
}

func runVerifiers(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Manage the local registry of trusted verifier names and their public keys.")
	}
	if len(arguments) == 0 {
		printVerifiersUsage()
		return exitInvalidInput
	}
	if arguments[0] == "--help" || arguments[0] == "-h" {
		printVerifiersUsage()
		return exitOK
	}
	switch arguments[0] {
	case "add":
		return runVerifiersAdd(arguments[1:])
	case "remove":
		return runVerifiersRemove(arguments[1:])
	case "list":
		return runVerifiersList(arguments[1:])
	default:
		printVerifiersUsage()
		return exitInvalidInput
	}
}

func runVerifiersAdd(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Register a verifier name with its base64 ed25519 public key. Attestations signed by that key become trusted.")
	}
	arguments = reorderInterspersedFlags(arguments, map[string]bool{
		"description": true,
	})

	flagSet := flag.NewFlagSet("verifiers-add", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var description string
	var overwrite bool
	var jsonOutput bool
	var helpFlag bool

	flagSet.StringVar(&description, "description", "", "what this verifier attests to")
	flagSet.BoolVar(&overwrite, "overwrite", false, "replace an existing entry with the same name")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "verifiers add", err)
	}
	if helpFlag || len(flagSet.Args()) != 2 {
		printVerifiersUsage()
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}
	name, publicKey := flagSet.Args()[0], flagSet.Args()[1]

	registry, err := loadVerifierRegistry()
	if err != nil {
		return writeCommandError(jsonOutput, "verifiers add", err)
	}
	if err := registry.Add(name, publicKey, description, overwrite, time.Now()); err != nil {
		return writeCommandError(jsonOutput, "verifiers add", err)
	}
	if err := registry.Save(); err != nil {
		return writeCommandError(jsonOutput, "verifiers add", err)
	}
	output := verifierOutput{OK: true, Name: name}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	fmt.Printf("added verifier %s\n", name)
	return exitOK
}

func runVerifiersRemove(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Remove a verifier from the trusted registry. Its past attestations become unknown, not invalid.")
	}
	arguments = reorderInterspersedFlags(arguments, nil)

	flagSet := flag.NewFlagSet("verifiers-remove", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var jsonOutput bool
	var helpFlag bool

	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "verifiers remove", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		printVerifiersUsage()
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}
	name := flagSet.Args()[0]

	registry, err := loadVerifierRegistry()
	if err != nil {
		return writeCommandError(jsonOutput, "verifiers remove", err)
	}
	if err := registry.Remove(name); err != nil {
		return writeCommandError(jsonOutput, "verifiers remove", err)
	}
	if err := registry.Save(); err != nil {
		return writeCommandError(jsonOutput, "verifiers remove", err)
	}
	output := verifierOutput{OK: true, Name: name}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	fmt.Printf("removed verifier %s\n", name)
	return exitOK
}

func runVerifiersList(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("List trusted verifiers in registry file order.")
	}
	arguments = reorderInterspersedFlags(arguments, nil)

	flagSet := flag.NewFlagSet("verifiers-list", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var jsonOutput bool
	var helpFlag bool

	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "verifiers list", err)
	}
	if helpFlag {
		printVerifiersUsage()
		return exitOK
	}

	registry, err := loadVerifierRegistry()
	if err != nil {
		return writeCommandError(jsonOutput, "verifiers list", err)
	}
	entries := registry.List()
	output := verifierListOutput{OK: true, Count: len(entries), Verifiers: entries}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	if len(entries) == 0 {
		fmt.Println("no trusted verifiers")
		return exitOK
	}
	for _, entry := range entries {
		line := fmt.Sprintf("%-24s %s", entry.Name, entry.PublicKey)
		if entry.Description != "" {
			line += "  # " + entry.Description
		}
		fmt.Println(line)
	}
	return exitOK
}

func loadVerifierRegistry() (*trust.Registry, error) {
	path, err := config.RegistryPath(trust.RegistryFileName)
	if err != nil {
		return nil, err
	}
	return trust.LoadRegistry(path)
}

func printVerifiersUsage() {
	fmt.Println("Usage:")
	fmt.Println("  agenthub verifiers add <name> <public_key> [--description <text>] [--overwrite] [--json]")
	fmt.Println("  agenthub verifiers remove <name> [--json]")
	fmt.Println("  agenthub verifiers list [--json]")
}
