package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/4thel00z/synaptic/internal"
	"github.com/fsnotify/fsnotify"
)

func TestShouldProcessEvent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, internal.IgnoreFilename), []byte("*.log\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ignore, err := internal.NewIgnoreMatcher(root)
	if err != nil {
		t.Fatalf("ignore matcher: %v", err)
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create", fsnotify.Event{Name: filepath.Join(root, "note.txt"), Op: fsnotify.Create}, true},
		{"write", fsnotify.Event{Name: filepath.Join(root, "note.txt"), Op: fsnotify.Write}, true},
		{"remove", fsnotify.Event{Name: filepath.Join(root, "note.txt"), Op: fsnotify.Remove}, false},
		{"chmod", fsnotify.Event{Name: filepath.Join(root, "note.txt"), Op: fsnotify.Chmod}, false},
		{"ignored pattern", fsnotify.Event{Name: filepath.Join(root, "debug.log"), Op: fsnotify.Write}, false},
		{"data dir", fsnotify.Event{Name: filepath.Join(root, internal.DataDirName, "config.yaml"), Op: fsnotify.Write}, false},
		{"swap file", fsnotify.Event{Name: filepath.Join(root, "note.txt.swp"), Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldProcessEvent(tt.event, ignore); got != tt.want {
				t.Errorf("shouldProcessEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestProcessInboxFile(t *testing.T) {
	rt := setupChatRuntime(t)
	ctx := context.Background()
	root := t.TempDir()

	write := func(name string, data []byte) string {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"text", write("inbox/todo.txt", []byte("  buy coffee beans\n")), true},
		{"empty", write("empty.txt", nil), false},
		{"whitespace", write("blank.txt", []byte(" \n\t\n")), false},
		{"binary", write("image.bin", []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}), false},
		{"missing", filepath.Join(root, "gone.txt"), false},
		{"directory", filepath.Join(root, "inbox"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := processInboxFile(ctx, rt.Loop, root, tt.path)
			if err != nil {
				t.Fatalf("processInboxFile: %v", err)
			}
			if got != tt.want {
				t.Errorf("processed = %v, want %v", got, tt.want)
			}
		})
	}

	if n := rt.Codex.Count(ctx); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}

	matches, err := rt.Codex.Search(ctx, "buy coffee beans", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	mem := matches[0].Memory
	if mem.Content != "buy coffee beans" {
		t.Errorf("content = %q", mem.Content)
	}
	if mem.Metadata["source"] != "file" || mem.Metadata["path"] != "inbox/todo.txt" {
		t.Errorf("metadata = %v", mem.Metadata)
	}
}

func TestProcessInboxFileTooLarge(t *testing.T) {
	rt := setupChatRuntime(t)
	root := t.TempDir()

	path := filepath.Join(root, "big.txt")
	data := make([]byte, maxInboxFileSize+1)
	for i := range data {
		data[i] = 'a'
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := processInboxFile(context.Background(), rt.Loop, root, path)
	if err != nil || got {
		t.Errorf("processInboxFile = %v, %v; want false, nil", got, err)
	}
}

func TestAddWatchDirsSkipsIgnored(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"notes/daily", ".git/objects", internal.DataDirName + "/codex"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	ignore, err := internal.NewIgnoreMatcher(root)
	if err != nil {
		t.Fatal(err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, root, ignore); err != nil {
		t.Fatalf("addWatchDirs: %v", err)
	}

	watched := map[string]bool{}
	for _, p := range watcher.WatchList() {
		watched[p] = true
	}

	for _, want := range []string{root, filepath.Join(root, "notes"), filepath.Join(root, "notes", "daily")} {
		if !watched[want] {
			t.Errorf("expected %s to be watched", want)
		}
	}
	for _, skip := range []string{filepath.Join(root, ".git"), filepath.Join(root, internal.DataDirName)} {
		if watched[skip] {
			t.Errorf("expected %s to be skipped", skip)
		}
	}
}
