package main

import (
	"fmt"
	"log/slog"

	"github.com/4thel00z/synaptic/internal"
	"github.com/spf13/cobra"
)

// app opens the runtime lazily so that commands like init and --help work
// without a data directory.
type app struct {
	resolver *internal.ScopeResolver
	rt       *internal.Runtime
}

func newApp() *app {
	return &app{resolver: internal.NewScopeResolver()}
}

func (a *app) scope(cmd *cobra.Command) internal.Scope {
	scopeHint, _ := cmd.Flags().GetString("scope")
	dataPath, _ := cmd.Flags().GetString("data")
	return a.resolver.Resolve(scopeHint, dataPath)
}

// configure runs before every command: it attaches a logger to the command
// context, honoring --log-level over the scope's config.
func (a *app) configure(cmd *cobra.Command) {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = "info"
		if cfg, err := internal.LoadConfig(a.scope(cmd)); err == nil {
			level = cfg.Logging.Level
		}
	}

	logger := internal.NewLogger(level, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	cmd.SetContext(internal.WithLogger(cmd.Context(), logger))
}

func (a *app) runtime(cmd *cobra.Command) (*internal.Runtime, error) {
	if a.rt != nil {
		return a.rt, nil
	}

	scope := a.scope(cmd)
	cfg, err := internal.LoadConfig(scope)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	rt, err := internal.OpenRuntime(cmd.Context(), scope, cfg)
	if err != nil {
		return nil, err
	}

	a.rt = rt
	return rt, nil
}

func (a *app) Close() {
	if a.rt != nil {
		_ = a.rt.Close()
		a.rt = nil
	}
}
