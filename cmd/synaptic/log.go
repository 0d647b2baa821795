package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func NewLogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log [ref]",
		Short: "Show the state journal",
		Long:  `List recorded cognitive cycles, or print the state recorded at ref (a hash, HEAD, HEAD~1, ...).`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeLogRunner(a),
	}

	cmd.Flags().IntP("number", "n", 10, "Limit number of entries")
	cmd.Flags().Bool("oneline", false, "Show each entry on one line")
	return cmd
}

func makeLogRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("number")
		oneline, _ := cmd.Flags().GetBool("oneline")

		rt, err := a.runtime(cmd)
		if err != nil {
			return err
		}
		if rt.Journal == nil {
			return errors.New("journal is disabled for this scope")
		}

		if len(args) == 1 {
			snap, err := rt.Journal.Show(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("show %s: %w", args[0], err)
			}
			if wantJSON(cmd) {
				return outputJSON(cmd, snap)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Input:  %s\nDate:   %s\n\n", snap.Input, snap.Time.Format("Mon Jan 2 15:04:05 2006 -0700"))
			printState(cmd.OutOrStdout(), snap.State)
			return nil
		}

		entries, err := rt.Journal.Log(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("get log: %w", err)
		}

		if wantJSON(cmd) {
			return outputJSON(cmd, entries)
		}

		for _, e := range entries {
			if oneline {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", e.Hash[:7], e.Message)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "commit %s\n", e.Hash)
				fmt.Fprintf(cmd.OutOrStdout(), "Date:   %s\n\n", e.Timestamp.Format("Mon Jan 2 15:04:05 2006 -0700"))
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n\n", e.Message)
			}
		}
		return nil
	}
}
