package internal

import (
	"os"
	"path/filepath"
)

const DataDirName = ".synaptic"

type ScopeType string

const (
	ScopeGlobal   ScopeType = "global"
	ScopeProject  ScopeType = "project"
	ScopeExplicit ScopeType = "explicit"
)

type Scope struct {
	Type     ScopeType
	Path     string // working directory root
	DataPath string // .synaptic directory path
}

func (s Scope) CodexPath() string {
	return filepath.Join(s.DataPath, "codex")
}

func (s Scope) JournalPath() string {
	return filepath.Join(s.DataPath, "journal")
}

func (s Scope) ConfigPath() string {
	return filepath.Join(s.DataPath, "config.yaml")
}

// Initialized reports whether the data directory exists.
func (s Scope) Initialized() bool {
	info, err := os.Stat(s.DataPath)
	return err == nil && info.IsDir()
}

type ScopeResolver struct {
	homeDir string
}

func NewScopeResolver() *ScopeResolver {
	home, _ := os.UserHomeDir()
	return &ScopeResolver{homeDir: home}
}

func (r *ScopeResolver) Global() Scope {
	return Scope{
		Type:     ScopeGlobal,
		Path:     r.homeDir,
		DataPath: filepath.Join(r.homeDir, DataDirName),
	}
}

func (r *ScopeResolver) Project() (Scope, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return Scope{}, false
	}
	return r.findProjectScope(cwd)
}

func (r *ScopeResolver) findProjectScope(dir string) (Scope, bool) {
	for {
		dataPath := filepath.Join(dir, DataDirName)
		info, err := os.Stat(dataPath)
		if err == nil && info.IsDir() && dataPath != filepath.Join(r.homeDir, DataDirName) {
			return Scope{Type: ScopeProject, Path: dir, DataPath: dataPath}, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Scope{}, false
		}
		dir = parent
	}
}

// Explicit pins the data directory, bypassing discovery.
func (r *ScopeResolver) Explicit(dataPath string) Scope {
	abs, err := filepath.Abs(dataPath)
	if err != nil {
		abs = dataPath
	}
	return Scope{
		Type:     ScopeExplicit,
		Path:     filepath.Dir(abs),
		DataPath: abs,
	}
}

// Resolve picks the scope for a command. An explicit data path wins, then
// "global", then the nearest project directory, then the global scope.
func (r *ScopeResolver) Resolve(explicit, dataPath string) Scope {
	if dataPath != "" {
		return r.Explicit(dataPath)
	}
	if explicit == string(ScopeGlobal) {
		return r.Global()
	}
	if scope, ok := r.Project(); ok {
		return scope
	}
	return r.Global()
}
