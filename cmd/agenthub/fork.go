package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agenthub-dev/agenthub/core/identity"
	"github.com/agenthub-dev/agenthub/core/manifest"
)

type forkOutput struct {
	OK         bool   `json:"ok"`
	Name       string `json:"name,omitempty"`
	AgentID    string `json:"agent_id,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
	Generation int    `json:"generation"`
	Path       string `json:"path,omitempty"`
	Error      string `json:"error,omitempty"`
}

type lineageOutput struct {
	OK         bool     `json:"ok"`
	AgentID    string   `json:"agent_id,omitempty"`
	Generation int      `json:"generation"`
	Lineage    []string `json:"lineage,omitempty"`
	Tree       string   `json:"tree,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func runFork(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Create a fork of an agent manifest: new name, author, and identity, with lineage pointing back at the parent. The fork starts unsigned.")
	}
	arguments = reorderInterspersedFlags(arguments, map[string]bool{
		"name":   true,
		"author": true,
		"out":    true,
	})

	flagSet := flag.NewFlagSet("fork", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var forkName string
	var author string
	var outPath string
	var jsonOutput bool
	var helpFlag bool

	flagSet.StringVar(&forkName, "name", "", "name of the fork")
	flagSet.StringVar(&author, "author", "", "author of the fork")
	flagSet.StringVar(&outPath, "out", "", "write the fork manifest here (default <name>.yaml)")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "fork", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		fmt.Println("Usage: agenthub fork <manifest.yaml> --name <fork> --author <author> [--out <path>] [--json]")
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}
	if strings.TrimSpace(forkName) == "" || strings.TrimSpace(author) == "" {
		return writeForkOutput(jsonOutput, forkOutput{OK: false, Error: "--name and --author are required"}, exitInvalidInput)
	}

	parent, err := manifest.Load(flagSet.Args()[0])
	if err != nil {
		return writeCommandError(jsonOutput, "fork", err)
	}
	child, err := manifest.Fork(parent, forkName, author, time.Now())
	if err != nil {
		return writeCommandError(jsonOutput, "fork", err)
	}

	target := strings.TrimSpace(outPath)
	if target == "" {
		target = child.Name + ".yaml"
	}
	if err := manifest.Save(child, target); err != nil {
		return writeCommandError(jsonOutput, "fork", err)
	}
	return writeForkOutput(jsonOutput, forkOutput{
		OK:         true,
		Name:       child.Name,
		AgentID:    child.AgentID,
		ParentID:   child.ParentID,
		Generation: child.Generation,
		Path:       target,
	}, exitOK)
}

func runLineage(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Show an agent's ancestry as a tree, oldest ancestor first.")
	}
	arguments = reorderInterspersedFlags(arguments, nil)

	flagSet := flag.NewFlagSet("lineage", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var jsonOutput bool
	var helpFlag bool

	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "lineage", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		fmt.Println("Usage: agenthub lineage <manifest.yaml> [--json]")
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}

	m, err := manifest.Load(flagSet.Args()[0])
	if err != nil {
		return writeCommandError(jsonOutput, "lineage", err)
	}
	if err := manifest.EnsureAgentID(&m); err != nil {
		return writeCommandError(jsonOutput, "lineage", err)
	}

	versions := map[string]string{m.AgentID: m.Version}
	tree := identity.FormatLineageTree(m.Lineage, m.AgentID, versions)
	output := lineageOutput{
		OK:         true,
		AgentID:    m.AgentID,
		Generation: m.Generation,
		Lineage:    m.Lineage,
		Tree:       tree,
	}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	fmt.Println(tree)
	return exitOK
}

func writeForkOutput(jsonOutput bool, output forkOutput, exitCode int) int {
	if jsonOutput {
		return writeJSONOutput(output, exitCode)
	}
	if output.OK {
		fmt.Printf("forked %s (generation %d) -> %s\n", output.AgentID, output.Generation, output.Path)
		return exitCode
	}
	fmt.Printf("fork error: %s\n", output.Error)
	return exitCode
}
