package main

import (
	"fmt"
	"strings"

	"github.com/4thel00z/synaptic/internal"
	"github.com/spf13/cobra"
)

func NewRecallCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall <query>",
		Short: "Retrieve the memories most similar to a query",
		Long:  `Rank stored memories by cosine similarity to the query, most similar first.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeRecallRunner(a),
	}

	cmd.Flags().IntP("number", "n", internal.DefaultTopK, "Maximum results")
	cmd.Flags().Bool("scores", false, "Show similarity scores and ids")
	return cmd
}

func makeRecallRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("number")
		scores, _ := cmd.Flags().GetBool("scores")

		rt, err := a.runtime(cmd)
		if err != nil {
			return err
		}

		if !scores && !wantJSON(cmd) {
			contents, err := rt.Codex.Retrieve(cmd.Context(), query, limit)
			if err != nil {
				return fmt.Errorf("recall: %w", err)
			}
			for _, c := range contents {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		}

		matches, err := rt.Codex.Search(cmd.Context(), query, limit)
		if err != nil {
			return fmt.Errorf("recall: %w", err)
		}

		if wantJSON(cmd) {
			return outputMatchesJSON(cmd, matches)
		}

		for _, m := range matches {
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s  %s\n", m.Score, m.Memory.ID[:8], m.Memory.Content)
		}
		return nil
	}
}

func outputMatchesJSON(cmd *cobra.Command, matches []internal.Match) error {
	out := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		out = append(out, map[string]any{
			"id":        m.Memory.ID,
			"content":   m.Memory.Content,
			"score":     m.Score,
			"metadata":  m.Memory.Metadata,
			"timestamp": m.Memory.Timestamp,
		})
	}
	return outputJSON(cmd, out)
}
