package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the number of stored memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.runtime(cmd)
			if err != nil {
				return err
			}

			n := rt.Codex.Count(cmd.Context())
			if wantJSON(cmd) {
				return outputJSON(cmd, map[string]int{"count": n})
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
