package internal

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const IgnoreFilename = ".synapticignore"

// defaultIgnores keep the watcher away from its own state and VCS metadata.
var defaultIgnores = []string{
	DataDirName + "/",
	".git/",
	IgnoreFilename,
	"*.swp",
	"*~",
}

// IgnoreMatcher decides which files under a watched directory are skipped,
// using gitignore syntax read from .synapticignore.
type IgnoreMatcher struct {
	patterns []gitignore.Pattern
	basePath string
}

func NewIgnoreMatcher(basePath string) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{basePath: basePath}

	for _, line := range defaultIgnores {
		m.patterns = append(m.patterns, gitignore.ParsePattern(line, nil))
	}

	patterns, err := parseIgnoreFile(filepath.Join(basePath, IgnoreFilename))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	m.patterns = append(m.patterns, patterns...)

	return m, nil
}

func (m *IgnoreMatcher) Match(path string) bool {
	return m.match(path, false)
}

func (m *IgnoreMatcher) MatchDir(path string) bool {
	return m.match(path, true)
}

// match applies patterns in order so later negations ("!keep.txt") win.
func (m *IgnoreMatcher) match(path string, isDir bool) bool {
	relPath, err := filepath.Rel(m.basePath, path)
	if err != nil || relPath == "." || strings.HasPrefix(relPath, "..") {
		return false
	}

	parts := strings.Split(relPath, string(filepath.Separator))

	// a file inside an ignored directory is ignored too
	for i := 1; i < len(parts); i++ {
		if m.result(parts[:i], true) {
			return true
		}
	}
	return m.result(parts, isDir)
}

func (m *IgnoreMatcher) result(parts []string, isDir bool) bool {
	ignored := false
	for _, p := range m.patterns {
		switch p.Match(parts, isDir) {
		case gitignore.Exclude:
			ignored = true
		case gitignore.Include:
			ignored = false
		}
	}
	return ignored
}

func parseIgnoreFile(path string) ([]gitignore.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}
