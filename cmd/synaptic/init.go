package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/4thel00z/synaptic/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new agent data directory",
		Long:  `Create a .synaptic directory holding the memory codex, the state journal and config.yaml.`,
		RunE:  makeInitRunner(a),
	}

	cmd.Flags().Bool("global", false, "Initialize global scope (~/.synaptic)")
	cmd.Flags().String("backend", internal.BackendAuto, "Embeddings backend (auto|hash|openai|gemini)")
	cmd.Flags().String("model", "", "Embeddings model (backend default when empty)")
	cmd.Flags().Int("dimension", 0, "Embedding dimension (backend default when 0)")
	cmd.Flags().Bool("no-journal", false, "Do not record cycles in the state journal")
	return cmd
}

func makeInitRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		scope, err := initScope(cmd, a)
		if err != nil {
			return err
		}

		backend, _ := cmd.Flags().GetString("backend")
		model, _ := cmd.Flags().GetString("model")
		dimension, _ := cmd.Flags().GetInt("dimension")
		noJournal, _ := cmd.Flags().GetBool("no-journal")

		switch backend {
		case internal.BackendAuto, internal.BackendHash, internal.BackendOpenAI, internal.BackendGemini:
		default:
			return fmt.Errorf("unknown backend %q", backend)
		}

		cfg := internal.DefaultConfig()
		cfg.Embeddings.Backend = backend
		cfg.Embeddings.Model = model
		cfg.Embeddings.Dimension = dimension
		cfg.Journal.Enabled = !noJournal

		if err := internal.InitScope(scope, cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized agent data at %s\n", scope.DataPath)
		return nil
	}
}

func initScope(cmd *cobra.Command, a *app) (internal.Scope, error) {
	if dataPath, _ := cmd.Flags().GetString("data"); dataPath != "" {
		return a.resolver.Explicit(dataPath), nil
	}

	isGlobal, _ := cmd.Flags().GetBool("global")
	scopeHint, _ := cmd.Flags().GetString("scope")
	if isGlobal || scopeHint == string(internal.ScopeGlobal) {
		return internal.NewScopeResolver().Global(), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return internal.Scope{}, fmt.Errorf("get working directory: %w", err)
	}
	return internal.Scope{
		Type:     internal.ScopeProject,
		Path:     cwd,
		DataPath: filepath.Join(cwd, internal.DataDirName),
	}, nil
}
