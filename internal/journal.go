package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBranch = "main"
	DefaultAuthor = "synaptic"
	DefaultEmail  = "synaptic@local"

	SnapshotFilename = "state.yaml"
)

var _ StateRecorder = (*Journal)(nil)

// Snapshot is what the journal stores per cycle.
type Snapshot struct {
	Input string    `yaml:"input" json:"input"`
	Time  time.Time `yaml:"time" json:"time"`
	State State     `yaml:"state" json:"state"`
}

type JournalEntry struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal is a git history of cognitive-state snapshots, one commit per
// cycle.
type Journal struct {
	mu       sync.Mutex
	repo     *git.Repository
	worktree *git.Worktree
	rootPath string
}

// OpenJournal opens the journal at path, initializing it on first use.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	fs := osfs.New(filepath.Join(path, git.GitDirName))
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(path)

	repo, err := git.Open(storage, wt)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.InitWithOptions(storage, wt, git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("open journal repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &Journal{
		repo:     repo,
		worktree: worktree,
		rootPath: path,
	}, nil
}

func (j *Journal) Record(ctx context.Context, state State, input string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := Snapshot{
		Input: input,
		Time:  time.Now().UTC(),
		State: state,
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(filepath.Join(j.rootPath, SnapshotFilename), data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if _, err := j.worktree.Add(SnapshotFilename); err != nil {
		return fmt.Errorf("stage snapshot: %w", err)
	}

	msg := "cycle: " + truncate(strings.Join(strings.Fields(input), " "), 72)
	_, err = j.worktree.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  DefaultAuthor,
			Email: DefaultEmail,
			When:  snap.Time,
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	return nil
}

// Log lists journal entries newest first. A limit of 0 means all.
func (j *Journal) Log(ctx context.Context, limit int) ([]JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	iter, err := j.repo.Log(&git.LogOptions{})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return []JournalEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	entries := []JournalEntry{}
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(entries) >= limit {
			return io.EOF
		}
		entries = append(entries, toJournalEntry(c))
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return entries, nil
}

// Show returns the snapshot recorded at ref (a hash, HEAD, HEAD~2, ...).
func (j *Journal) Show(ctx context.Context, ref string) (*Snapshot, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	resolved, err := j.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolve ref: %w", err)
	}

	commit, err := j.repo.CommitObject(*resolved)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}

	f, err := commit.File(SnapshotFilename)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal([]byte(content), &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}

func toJournalEntry(c *object.Commit) JournalEntry {
	return JournalEntry{
		Hash:      c.Hash.String(),
		Message:   strings.TrimSpace(c.Message),
		Timestamp: c.Author.When,
	}
}
