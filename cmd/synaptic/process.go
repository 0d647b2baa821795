package main

import (
	"fmt"

	"github.com/4thel00z/synaptic/internal"
	"github.com/spf13/cobra"
)

func NewProcessCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <text>...",
		Short: "Run one cognitive cycle per argument",
		Long:  `Store each argument as sensory input, update beliefs and intention, and print the resulting state.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeProcessRunner(a),
	}

	cmd.Flags().String("source", internal.SourceExternal, "Source recorded with each input")
	return cmd
}

func makeProcessRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")

		rt, err := a.runtime(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		for _, text := range args {
			if err := rt.Loop.ProcessInput(ctx, text, internal.WithSource(source)); err != nil {
				return fmt.Errorf("process input: %w", err)
			}
		}

		state := rt.Loop.State(ctx)
		if wantJSON(cmd) {
			return outputJSON(cmd, state)
		}
		printState(cmd.OutOrStdout(), state)
		return nil
	}
}
