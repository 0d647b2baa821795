package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/4thel00z/synaptic/internal"
	"github.com/spf13/cobra"
)

func wantJSON(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printState(w io.Writer, s internal.State) {
	printBeliefs(w, s.Beliefs)
	printIntention(w, s.Intention)
	fmt.Fprintf(w, "Memories: %d\n", s.MemoryCount)
}

func printBeliefs(w io.Writer, beliefs []string) {
	fmt.Fprintf(w, "Beliefs (%d):\n", len(beliefs))
	if len(beliefs) == 0 {
		fmt.Fprintln(w, "  No beliefs formed yet.")
		return
	}
	for i, b := range beliefs {
		fmt.Fprintf(w, "  %d. %s\n", i+1, b)
	}
}

func printIntention(w io.Writer, intention string) {
	fmt.Fprintln(w, "Intention:")
	if intention == "" {
		fmt.Fprintln(w, "  No intention formed yet.")
		return
	}
	fmt.Fprintf(w, "  %s\n", intention)
}
