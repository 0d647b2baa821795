package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "synaptic",
		Short:         "A memory-backed cognitive agent loop",
		Long:          `Store what you tell it as embedded memories, recall related ones, and keep a running set of beliefs and an intention.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if a != nil {
				a.configure(cmd)
			}
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("data", "", "Data directory (overrides scope discovery)")
	cmd.PersistentFlags().String("scope", "", "Target scope (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
}

func addSubcommands(root *cobra.Command, a *app) {
	root.AddCommand(
		NewInitCmd(a),
		NewChatCmd(a),
		NewProcessCmd(a),
		NewRememberCmd(a),
		NewRecallCmd(a),
		NewCountCmd(a),
		NewClearCmd(a),
		NewWatchCmd(a),
		NewLogCmd(a),
	)
}
