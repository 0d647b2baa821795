package main

import (
	"fmt"
	"strings"

	"github.com/4thel00z/synaptic/internal"
	"github.com/spf13/cobra"
)

func NewRememberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remember <text>...",
		Short: "Store a memory without running a cycle",
		Long:  `Embed the given text and add it to the codex. Arguments are joined with spaces.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeRememberRunner(a),
	}

	cmd.Flags().StringP("type", "t", "note", "Memory type recorded in metadata")
	return cmd
}

func makeRememberRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		memType, _ := cmd.Flags().GetString("type")
		content := strings.Join(args, " ")

		rt, err := a.runtime(cmd)
		if err != nil {
			return err
		}

		mem, err := rt.Codex.Add(cmd.Context(), content, map[string]any{
			internal.MetaType:   memType,
			internal.MetaSource: "cli",
		})
		if err != nil {
			return fmt.Errorf("remember: %w", err)
		}

		if wantJSON(cmd) {
			return outputJSON(cmd, map[string]any{
				"id":        mem.ID,
				"content":   mem.Content,
				"timestamp": mem.Timestamp,
			})
		}

		fmt.Fprintln(cmd.OutOrStdout(), mem.ID)
		return nil
	}
}
