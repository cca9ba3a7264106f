package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/agenthub-dev/agenthub/core/config"
	"github.com/agenthub-dev/agenthub/core/sign"
)

type keysInitOutput struct {
	OK             bool   `json:"ok"`
	KeyID          string `json:"key_id,omitempty"`
	PublicKey      string `json:"public_key,omitempty"`
	PublicKeyPath  string `json:"public_key_path,omitempty"`
	PrivateKeyPath string `json:"private_key_path,omitempty"`
	Error          string `json:"error,omitempty"`
}

type keysShowOutput struct {
	OK        bool   `json:"ok"`
	KeyID     string `json:"key_id,omitempty"`
	PublicKey string `json:"public_key,omitempty"`
	Error     string `json:"error,omitempty"`
}

func runKeys(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Manage the local ed25519 keypair used to sign manifests and attestations.")
	}
	if len(arguments) == 0 {
		printKeysUsage()
		return exitInvalidInput
	}
	if arguments[0] == "--help" || arguments[0] == "-h" {
		printKeysUsage()
		return exitOK
	}
	switch arguments[0] {
	case "init":
		return runKeysInit(arguments[1:])
	case "show":
		return runKeysShow(arguments[1:])
	default:
		printKeysUsage()
		return exitInvalidInput
	}
}

func runKeysInit(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Generate a new ed25519 keypair and write base64-encoded key files under the agenthub home directory.")
	}
	arguments = reorderInterspersedFlags(arguments, nil)

	flagSet := flag.NewFlagSet("keys-init", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var force bool
	var jsonOutput bool
	var helpFlag bool

	flagSet.BoolVar(&force, "force", false, "overwrite existing key files")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "keys init", err)
	}
	if helpFlag {
		printKeysUsage()
		return exitOK
	}
	if len(flagSet.Args()) > 0 {
		return writeKeysInitOutput(jsonOutput, keysInitOutput{OK: false, Error: "unexpected positional arguments"}, exitInvalidInput)
	}

	keysDir, err := config.KeysDir()
	if err != nil {
		return writeCommandError(jsonOutput, "keys init", err)
	}
	keystore := sign.NewKeystore(keysDir)
	kp, err := keystore.Generate(force)
	if err != nil {
		return writeCommandError(jsonOutput, "keys init", err)
	}
	return writeKeysInitOutput(jsonOutput, keysInitOutput{
		OK:             true,
		KeyID:          sign.KeyID(kp.Public),
		PublicKey:      sign.EncodeBase64(kp.Public),
		PublicKeyPath:  keystore.PublicKeyPath(),
		PrivateKeyPath: keystore.PrivateKeyPath(),
	}, exitOK)
}

func runKeysShow(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Print the public key and key id of the local keypair.")
	}
	arguments = reorderInterspersedFlags(arguments, nil)

	flagSet := flag.NewFlagSet("keys-show", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var jsonOutput bool
	var helpFlag bool

	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "keys show", err)
	}
	if helpFlag {
		printKeysUsage()
		return exitOK
	}

	keysDir, err := config.KeysDir()
	if err != nil {
		return writeCommandError(jsonOutput, "keys show", err)
	}
	kp, err := sign.NewKeystore(keysDir).Load()
	if err != nil {
		return writeCommandError(jsonOutput, "keys show", err)
	}
	return writeKeysShowOutput(jsonOutput, keysShowOutput{
		OK:        true,
		KeyID:     sign.KeyID(kp.Public),
		PublicKey: sign.EncodeBase64(kp.Public),
	}, exitOK)
}

func writeKeysInitOutput(jsonOutput bool, output keysInitOutput, exitCode int) int {
	if jsonOutput {
		return writeJSONOutput(output, exitCode)
	}
	if output.OK {
		fmt.Printf("keys init ok: key_id=%s public=%s\n", output.KeyID, output.PublicKeyPath)
		return exitCode
	}
	fmt.Printf("keys init error: %s\n", output.Error)
	return exitCode
}

func writeKeysShowOutput(jsonOutput bool, output keysShowOutput, exitCode int) int {
	if jsonOutput {
		return writeJSONOutput(output, exitCode)
	}
	if output.OK {
		fmt.Printf("key_id: %s\npublic_key: %s\n", output.KeyID, output.PublicKey)
		return exitCode
	}
	fmt.Printf("keys show error: %s\n", output.Error)
	return exitCode
}

func printKeysUsage() {
	fmt.Println("Usage:")
	fmt.Println("  agenthub keys init [--force] [--json] [--explain]")
	fmt.Println("  agenthub keys show [--json] [--explain]")
}
