package main

import (
	"bytes"
	"path/filepath"
	"testing"
)

// runCLI executes the root command with a fresh app, like a separate
// process invocation would.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	a := newApp()
	defer a.Close()

	root := NewRootCmd("test", a)
	root.SetArgs(args)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.Execute()
	return out.String(), err
}

// setupCLI initializes a hash-embedder data directory and returns its path.
func setupCLI(t *testing.T, extra ...string) string {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "agent")

	args := append([]string{"init", "--data", dataDir, "--backend", "hash", "--log-level", "error"}, extra...)
	if _, err := runCLI(t, args...); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dataDir
}

func runData(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append(args, "--data", dataDir, "--log-level", "error")...)
}
