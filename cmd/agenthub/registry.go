package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/agenthub-dev/agenthub/core/manifest"
)

type registerOutput struct {
	OK      bool   `json:"ok"`
	Name    string `json:"name,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

type agentListOutput struct {
	OK     bool           `json:"ok"`
	Count  int            `json:"count"`
	Agents []agentSummary `json:"agents"`
	Error  string         `json:"error,omitempty"`
}

type agentSummary struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	Author         string `json:"author"`
	Description    string `json:"description"`
	LifecycleState string `json:"lifecycle_state"`
	AgentID        string `json:"agent_id,omitempty"`
	Signed         bool   `json:"signed"`
	Attestations   int    `json:"attestations"`
}

type agentInfoOutput struct {
	OK    bool               `json:"ok"`
	Agent *manifest.Manifest `json:"agent,omitempty"`
	Error string             `json:"error,omitempty"`
}

type lifecycleOutput struct {
	OK             bool   `json:"ok"`
	Name           string `json:"name,omitempty"`
	LifecycleState string `json:"lifecycle_state,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Error          string `json:"error,omitempty"`
}

func runRegister(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Validate an agent manifest against the schema, derive its identity when absent, and store it in the registry.")
	}
	arguments = reorderInterspersedFlags(arguments, nil)

	flagSet := flag.NewFlagSet("register", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var jsonOutput bool
	var helpFlag bool

	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "register", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		fmt.Println("Usage: agenthub register <manifest.yaml> [--json]")
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}

	m, err := manifest.Load(flagSet.Args()[0])
	if err != nil {
		return writeCommandError(jsonOutput, "register", err)
	}
	if err := manifest.EnsureAgentID(&m); err != nil {
		return writeCommandError(jsonOutput, "register", err)
	}

	backend, err := openBackend()
	if err != nil {
		return writeCommandError(jsonOutput, "register", err)
	}
	defer func() {
		_ = backend.Close()
	}()

	stored, err := backend.Register(m)
	if err != nil {
		return writeCommandError(jsonOutput, "register", err)
	}
	output := registerOutput{OK: true, Name: stored.Name, AgentID: stored.AgentID, Version: stored.Version}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	fmt.Printf("registered %s %s (%s)\n", stored.Name, stored.Version, stored.AgentID)
	return exitOK
}

func runList(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("List registered agents, optionally filtered by lifecycle state.")
	}
	arguments = reorderInterspersedFlags(arguments, map[string]bool{
		"state": true,
		"limit": true,
	})

	flagSet := flag.NewFlagSet("list", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var stateFilter string
	var limit int
	var jsonOutput bool
	var helpFlag bool

	flagSet.StringVar(&stateFilter, "state", "", "filter by lifecycle state")
	flagSet.IntVar(&limit, "limit", 0, "maximum number of agents")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "list", err)
	}
	if helpFlag {
		fmt.Println("Usage: agenthub list [--state active|deprecated|retired|revoked] [--limit n] [--json]")
		return exitOK
	}

	var state manifest.LifecycleState
	if stateFilter != "" {
		parsed, ok := manifest.ParseLifecycleState(stateFilter)
		if !ok {
			return writeAgentList(jsonOutput, agentListOutput{OK: false, Error: fmt.Sprintf("unknown lifecycle state: %q", stateFilter)}, exitInvalidInput)
		}
		state = parsed
	}

	backend, err := openBackend()
	if err != nil {
		return writeCommandError(jsonOutput, "list", err)
	}
	defer func() {
		_ = backend.Close()
	}()

	agents, err := backend.List(state, limit)
	if err != nil {
		return writeCommandError(jsonOutput, "list", err)
	}
	return writeAgentList(jsonOutput, summarize(agents), exitOK)
}

func runSearch(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Search registered agents by capability or free text over name and description.")
	}
	arguments = reorderInterspersedFlags(arguments, map[string]bool{
		"capability": true,
		"query":      true,
		"limit":      true,
	})

	flagSet := flag.NewFlagSet("search", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var capability string
	var query string
	var limit int
	var jsonOutput bool
	var helpFlag bool

	flagSet.StringVar(&capability, "capability", "", "capability substring to match")
	flagSet.StringVar(&query, "query", "", "free text over name and description")
	flagSet.IntVar(&limit, "limit", 0, "maximum number of agents")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "search", err)
	}
	if helpFlag {
		fmt.Println("Usage: agenthub search [--capability <c>|--query <q>] [--limit n] [--json]")
		return exitOK
	}
	if strings.TrimSpace(capability) == "" && strings.TrimSpace(query) == "" {
		return writeAgentList(jsonOutput, agentListOutput{OK: false, Error: "either --capability or --query is required"}, exitInvalidInput)
	}

	backend, err := openBackend()
	if err != nil {
		return writeCommandError(jsonOutput, "search", err)
	}
	defer func() {
		_ = backend.Close()
	}()

	agents, err := backend.Search(capability, query, limit)
	if err != nil {
		return writeCommandError(jsonOutput, "search", err)
	}
	return writeAgentList(jsonOutput, summarize(agents), exitOK)
}

func runInfo(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Show the full stored manifest for one agent.")
	}
	arguments = reorderInterspersedFlags(arguments, nil)

	flagSet := flag.NewFlagSet("info", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var jsonOutput bool
	var helpFlag bool

	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "info", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		fmt.Println("Usage: agenthub info <name> [--json]")
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}

	backend, err := openBackend()
	if err != nil {
		return writeCommandError(jsonOutput, "info", err)
	}
	defer func() {
		_ = backend.Close()
	}()

	m, err := backend.Get(flagSet.Args()[0])
	if err != nil {
		return writeCommandError(jsonOutput, "info", err)
	}
	if jsonOutput {
		return writeJSONOutput(agentInfoOutput{OK: true, Agent: &m}, exitOK)
	}
	printAgentInfo(m)
	return exitOK
}

func runDeprecate(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Mark an agent deprecated; the agent stays visible but is flagged for consumers.")
	}
	arguments = reorderInterspersedFlags(arguments, map[string]bool{
		"reason": true,
	})

	flagSet := flag.NewFlagSet("deprecate", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var reason string
	var jsonOutput bool
	var helpFlag bool

	flagSet.StringVar(&reason, "reason", "", "why the agent is being deprecated")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "deprecate", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		fmt.Println("Usage: agenthub deprecate <name> [--reason <text>] [--json]")
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}

	backend, err := openBackend()
	if err != nil {
		return writeCommandError(jsonOutput, "deprecate", err)
	}
	defer func() {
		_ = backend.Close()
	}()

	updated, err := backend.UpdateLifecycle(flagSet.Args()[0], manifest.StateDeprecated)
	if err != nil {
		return writeCommandError(jsonOutput, "deprecate", err)
	}
	output := lifecycleOutput{OK: true, Name: updated.Name, LifecycleState: string(updated.LifecycleState), Reason: strings.TrimSpace(reason)}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	fmt.Printf("deprecated %s\n", updated.Name)
	if output.Reason != "" {
		fmt.Printf("reason: %s\n", output.Reason)
	}
	return exitOK
}

func runRemove(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Delete an agent from the registry. Requires --yes.")
	}
	arguments = reorderInterspersedFlags(arguments, nil)

	flagSet := flag.NewFlagSet("remove", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var yes bool
	var jsonOutput bool
	var helpFlag bool

	flagSet.BoolVar(&yes, "yes", false, "confirm deletion")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCommandError(jsonOutput, "remove", err)
	}
	if helpFlag || len(flagSet.Args()) != 1 {
		fmt.Println("Usage: agenthub remove <name> --yes [--json]")
		if helpFlag {
			return exitOK
		}
		return exitInvalidInput
	}
	name := flagSet.Args()[0]
	if !yes {
		return writeLifecycleOutput(jsonOutput, "remove", lifecycleOutput{OK: false, Name: name, Error: "refusing to delete without --yes"}, exitInvalidInput)
	}

	backend, err := openBackend()
	if err != nil {
		return writeCommandError(jsonOutput, "remove", err)
	}
	defer func() {
		_ = backend.Close()
	}()

	if err := backend.Delete(name); err != nil {
		return writeCommandError(jsonOutput, "remove", err)
	}
	output := lifecycleOutput{OK: true, Name: name}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	fmt.Printf("removed %s\n", name)
	return exitOK
}

func summarize(agents []manifest.Manifest) agentListOutput {
	output := agentListOutput{OK: true, Count: len(agents), Agents: make([]agentSummary, 0, len(agents))}
	for _, m := range agents {
		output.Agents = append(output.Agents, agentSummary{
			Name:           m.Name,
			Version:        m.Version,
			Author:         m.Author,
			Description:    m.Description,
			LifecycleState: string(m.LifecycleState),
			AgentID:        m.AgentID,
			Signed:         m.Signed(),
			Attestations:   len(m.Attestations),
		})
	}
	return output
}

func writeAgentList(jsonOutput bool, output agentListOutput, exitCode int) int {
	if jsonOutput {
		return writeJSONOutput(output, exitCode)
	}
	if !output.OK {
		fmt.Printf("error: %s\n", output.Error)
		return exitCode
	}
	if output.Count == 0 {
		fmt.Println("no agents found")
		return exitCode
	}
	for _, agent := range output.Agents {
		marker := " "
		if agent.Signed {
			marker = "*"
		}
		fmt.Printf("%s %-24s %-10s %-12s %s\n", marker, agent.Name, agent.Version, agent.LifecycleState, agent.Description)
	}
	return exitCode
}

func writeLifecycleOutput(jsonOutput bool, command string, output lifecycleOutput, exitCode int) int {
	if jsonOutput {
		return writeJSONOutput(output, exitCode)
	}
	if output.OK {
		fmt.Printf("%s ok: %s\n", command, output.Name)
		return exitCode
	}
	fmt.Printf("%s error: %s\n", command, output.Error)
	return exitCode
}

func printAgentInfo(m manifest.Manifest) {
	fmt.Printf("name: %s\nversion: %s\nauthor: %s\ndescription: %s\n", m.Name, m.Version, m.Author, m.Description)
	if m.AgentID != "" {
		fmt.Printf("agent_id: %s\n", m.AgentID)
	}
	if m.LifecycleState != "" {
		fmt.Printf("lifecycle_state: %s\n", m.LifecycleState)
	}
	if len(m.Capabilities) > 0 {
		fmt.Printf("capabilities: %s\n", strings.Join(m.Capabilities, ", "))
	}
	if len(m.Protocols) > 0 {
		names := make([]string, 0, len(m.Protocols))
		for _, p := range m.Protocols {
			names = append(names, string(p))
		}
		fmt.Printf("protocols: %s\n", strings.Join(names, ", "))
	}
	if len(m.Permissions) > 0 {
		fmt.Printf("permissions: %s\n", strings.Join(m.Permissions, ", "))
	}
	if m.ParentID != "" {
		fmt.Printf("parent_id: %s (generation %d)\n", m.ParentID, m.Generation)
	}
	if m.Signed() {
		fmt.Printf("signed: yes (at %s)\n", m.Signature.SignedAt)
	} else {
		fmt.Println("signed: no")
	}
	if len(m.Attestations) > 0 {
		fmt.Printf("attestations: %d\n", len(m.Attestations))
		for _, a := range m.Attestations {
			fmt.Printf("  - %s by %s: %s\n", a.Type, a.Verifier, a.Statement)
		}
	}
}
