package main

import "testing"

func TestRunWithoutArgumentsFails(t *testing.T) {
	if code := run([]string{"agenthub"}); code != exitInvalidInput {
		t.Fatalf("exit = %d, want %d", code, exitInvalidInput)
	}
}

func TestRunVersion(t *testing.T) {
	if code := run([]string{"agenthub", "version"}); code != exitOK {
		t.Fatalf("exit = %d", code)
	}
	if code := run([]string{"agenthub", "--version"}); code != exitOK {
		t.Fatalf("exit = %d", code)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"agenthub", "frobnicate"}); code != exitInvalidInput {
		t.Fatalf("exit = %d, want %d", code, exitInvalidInput)
	}
}

func TestRunExplain(t *testing.T) {
	if code := run([]string{"agenthub", "--explain"}); code != exitOK {
		t.Fatalf("exit = %d", code)
	}
	if code := run([]string{"agenthub", "sign", "--explain"}); code != exitOK {
		t.Fatalf("exit = %d", code)
	}
}

func TestCorrelationIDIsStable(t *testing.T) {
	first := newCorrelationID([]string{"agenthub", "verify", "m.yaml"})
	second := newCorrelationID([]string{"agenthub", "verify", "m.yaml"})
	if first != second {
		t.Fatalf("correlation ids differ: %s vs %s", first, second)
	}
	if len(first) != 24 {
		t.Fatalf("correlation id length = %d", len(first))
	}
	other := newCorrelationID([]string{"agenthub", "verify", "other.yaml"})
	if other == first {
		t.Fatal("different arguments produced the same correlation id")
	}
}

func TestReorderInterspersedFlags(t *testing.T) {
	reordered := reorderInterspersedFlags(
		[]string{"m.yaml", "--json", "--out", "signed.yaml"},
		map[string]bool{"out": true},
	)
	want := []string{"--json", "--out", "signed.yaml", "m.yaml"}
	if len(reordered) != len(want) {
		t.Fatalf("reordered = %v", reordered)
	}
	for i := range want {
		if reordered[i] != want[i] {
			t.Fatalf("reordered = %v, want %v", reordered, want)
		}
	}
}
