package main

import (
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd("1.0.0", nil)

	if cmd == nil {
		t.Fatal("NewRootCmd returned nil")
	}

	if cmd.Use != "synaptic" {
		t.Errorf("expected Use='synaptic', got %q", cmd.Use)
	}

	if cmd.Version != "1.0.0" {
		t.Errorf("expected Version='1.0.0', got %q", cmd.Version)
	}
}

func TestRootCmdHasFlags(t *testing.T) {
	cmd := NewRootCmd("1.0.0", nil)

	for _, name := range []string{"data", "scope", "json", "log-level"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag %q to exist", name)
		}
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	cmd := NewRootCmd("1.0.0", newApp())

	for _, name := range []string{"init", "chat", "process", "remember", "recall", "count", "clear", "watch", "log"} {
		found, _, err := cmd.Find([]string{name})
		if err != nil || found.Name() != name {
			t.Errorf("expected subcommand %q", name)
		}
	}
}
