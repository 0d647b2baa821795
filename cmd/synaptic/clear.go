package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func NewClearCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored memory",
		Long:  `Irreversibly remove all memories from the codex. Requires --yes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return errors.New("refusing to clear memories without --yes")
			}

			rt, err := a.runtime(cmd)
			if err != nil {
				return err
			}

			n := rt.Codex.Count(cmd.Context())
			if err := rt.Codex.ClearAll(cmd.Context()); err != nil {
				return fmt.Errorf("clear: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d memories\n", n)
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Confirm deletion")
	return cmd
}
