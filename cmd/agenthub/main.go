package main

import (
	"fmt"
	"os"
)

// version is stamped at release time via ldflags; default stays dev for local builds.
var version = "0.0.0-dev"

const (
	exitOK              = 0
	exitVerifyFailed    = 1
	exitInvalidInput    = 2
	exitNotFound        = 3
	exitConflict        = 4
	exitInternalFailure = 5
)

func main() {
	os.Exit(run(os.Args))
}

func run(arguments []string) int {
	correlationID := newCorrelationID(arguments)
	setCurrentCorrelationID(correlationID)
	exitCode := runDispatch(arguments)
	setCurrentCorrelationID("")
	return exitCode
}

func runDispatch(arguments []string) int {
	if len(arguments) < 2 {
		printUsage()
		return exitInvalidInput
	}
	if arguments[1] == "--explain" {
		return writeExplain("AgentHub is a CLI for registering, signing, attesting, and verifying agent manifests with portable Ed25519 trust material.")
	}

	switch arguments[1] {
	case "keys":
		return runKeys(arguments[2:])
	case "register":
		return runRegister(arguments[2:])
	case "list":
		return runList(arguments[2:])
	case "search":
		return runSearch(arguments[2:])
	case "info":
		return runInfo(arguments[2:])
	case "deprecate":
		return runDeprecate(arguments[2:])
	case "remove":
		return runRemove(arguments[2:])
	case "sign":
		return runSign(arguments[2:])
	case "verify":
		return runVerify(arguments[2:])
	case "attest":
		return runAttest(arguments[2:])
	case "verifiers":
		return runVerifiers(arguments[2:])
	case "fork":
		return runFork(arguments[2:])
	case "lineage":
		return runLineage(arguments[2:])
	case "version", "--version", "-v":
		if hasExplainFlag(arguments[2:]) {
			return writeExplain("Print the CLI version.")
		}
		fmt.Println("agenthub", version)
		return exitOK
	case "--help", "-h", "help":
		printUsage()
		return exitOK
	default:
		printUsage()
		return exitInvalidInput
	}
}

func printUsage() {
	fmt.Println("Usage: agenthub <command> [arguments]")
	fmt.Println()
	fmt.Println("Keys:")
	fmt.Println("  keys init [--force] [--json]        generate a local ed25519 keypair")
	fmt.Println("  keys show [--json]                  print the public key and key id")
	fmt.Println()
	fmt.Println("Registry:")
	fmt.Println("  register <manifest.yaml> [--json]   validate and register an agent")
	fmt.Println("  list [--state <state>] [--json]     list registered agents")
	fmt.Println("  search [--capability <c>|--query <q>] [--json]")
	fmt.Println("  info <name> [--json]                show one agent")
	fmt.Println("  deprecate <name> [--reason <text>] [--json]")
	fmt.Println("  remove <name> --yes [--json]        delete an agent")
	fmt.Println()
	fmt.Println("Trust:")
	fmt.Println("  sign <manifest.yaml> [--out <path>] [--json]")
	fmt.Println("  verify <manifest.yaml> [--strict] [--json]")
	fmt.Println("  attest <manifest.yaml> --type <t> --statement <s> [--verifier <name>] [--verifier-id <id>] [--meta k=v]... [--out <path>] [--json]")
	fmt.Println("  verifiers add <name> <public_key> [--description <text>] [--overwrite] [--json]")
	fmt.Println("  verifiers remove <name> [--json]")
	fmt.Println("  verifiers list [--json]")
	fmt.Println()
	fmt.Println("Lineage:")
	fmt.Println("  fork <manifest.yaml> --name <fork> --author <author> [--out <path>] [--json]")
	fmt.Println("  lineage <manifest.yaml> [--json]")
	fmt.Println()
	fmt.Println("  version                             print the CLI version")
}
