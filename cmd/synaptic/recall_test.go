package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func seedMemories(t *testing.T, dataDir string, contents ...string) []string {
	t.Helper()
	var ids []string
	for _, c := range contents {
		out, err := runData(t, dataDir, "remember", c)
		if err != nil {
			t.Fatalf("remember %q: %v", c, err)
		}
		ids = append(ids, strings.TrimSpace(out))
	}
	return ids
}

func TestRememberCmdPrintsID(t *testing.T) {
	dataDir := setupCLI(t)

	ids := seedMemories(t, dataDir, "pasta recipe with tomato sauce")
	if len(ids[0]) != 36 {
		t.Errorf("expected a uuid, got %q", ids[0])
	}
}

func TestRememberCmdRejectsBlank(t *testing.T) {
	dataDir := setupCLI(t)

	if _, err := runData(t, dataDir, "remember", "   "); err == nil {
		t.Error("expected error for blank memory")
	}
}

func TestRecallCmd(t *testing.T) {
	dataDir := setupCLI(t)
	seedMemories(t, dataDir,
		"pasta recipe with tomato sauce",
		"weather forecast is sunny today",
		"chocolate cake recipe",
	)

	out, err := runData(t, dataDir, "recall", "-n", "2", "recipe")
	if err != nil {
		t.Fatalf("recall: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{"pasta recipe with tomato sauce", "chocolate cake recipe"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRecallCmdJSON(t *testing.T) {
	dataDir := setupCLI(t)
	ids := seedMemories(t, dataDir, "weather forecast is sunny today", "chocolate cake recipe")

	out, err := runData(t, dataDir, "recall", "--json", "weather")
	if err != nil {
		t.Fatalf("recall: %v", err)
	}

	var results []struct {
		ID       string            `json:"id"`
		Content  string            `json:"content"`
		Score    float32           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != ids[0] {
		t.Errorf("top id = %s, want %s", results[0].ID, ids[0])
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v, %v", results[0].Score, results[1].Score)
	}
	if results[0].Metadata["source"] != "cli" || results[0].Metadata["type"] != "note" {
		t.Errorf("metadata = %v", results[0].Metadata)
	}
}

func TestRecallCmdEmpty(t *testing.T) {
	dataDir := setupCLI(t)

	out, err := runData(t, dataDir, "recall", "anything")
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestRecallCmdInvalidTopK(t *testing.T) {
	dataDir := setupCLI(t)
	seedMemories(t, dataDir, "something")

	if _, err := runData(t, dataDir, "recall", "-n", "0", "something"); err == nil {
		t.Error("expected error for -n 0")
	}
}

func TestCountAndClearCmd(t *testing.T) {
	dataDir := setupCLI(t)
	seedMemories(t, dataDir, "alpha", "beta", "gamma")

	out, err := runData(t, dataDir, "count")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("count = %q, want 3", out)
	}

	if _, err := runData(t, dataDir, "clear"); err == nil {
		t.Error("expected clear without --yes to fail")
	}

	out, err = runData(t, dataDir, "clear", "--yes")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(out, "Cleared 3 memories") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = runData(t, dataDir, "count", "--json")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["count"] != 0 {
		t.Errorf("count after clear = %d", got["count"])
	}
}
