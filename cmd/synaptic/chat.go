package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/4thel00z/synaptic/internal"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

const chatHelp = `Commands:
  help              show this help
  status            show beliefs, intention and memory count
  beliefs           show current beliefs
  intention         show current intention
  clear             forget current beliefs (memories are kept)
  reset             forget beliefs and intention
  quit, exit, q     leave the session
Anything else is processed as sensory input.`

type lineReader interface {
	Readline() (string, error)
	Close() error
}

// scanReader reads plain lines when stdin is not a terminal.
type scanReader struct {
	scanner *bufio.Scanner
}

// maxChatLine bounds one piped line; inbox files share the same limit.
const maxChatLine = maxInboxFileSize

func newScanReader(r io.Reader) *scanReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxChatLine)
	return &scanReader{scanner: scanner}
}

func (r *scanReader) Readline() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scanReader) Close() error {
	return nil
}

func NewChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Long:  `Read lines from the terminal and run a cognitive cycle for each one.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.runtime(cmd)
			if err != nil {
				return err
			}

			rl, err := newLineReader(cmd, rt.Scope)
			if err != nil {
				return err
			}
			defer rl.Close()

			return runChat(cmd.Context(), cmd.OutOrStdout(), rl, rt)
		},
	}
}

func newLineReader(cmd *cobra.Command, scope internal.Scope) (lineReader, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); !ok || f != os.Stdin || !readline.DefaultIsTerminal() {
		return newScanReader(in), nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(scope.DataPath, "chat_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          cmd.OutOrStdout(),
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return rl, nil
}

func runChat(ctx context.Context, out io.Writer, rl lineReader, rt *internal.Runtime) error {
	fmt.Fprintf(out, "Synaptic agent ready (%s, %d memories). Type 'help' for commands.\n",
		rt.Embedder.Name(), rt.Codex.Count(ctx))

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		if handleChatLine(ctx, out, rt.Loop, line) {
			break
		}
	}

	fmt.Fprintln(out, "Goodbye.")
	return nil
}

// handleChatLine runs one REPL line and reports whether the session should
// end. Cycle errors are printed and the session continues.
func handleChatLine(ctx context.Context, out io.Writer, loop *internal.SynapticLoop, line string) bool {
	input := strings.TrimSpace(line)

	switch strings.ToLower(input) {
	case "":
		return false
	case "quit", "exit", "q":
		return true
	case "help":
		fmt.Fprintln(out, chatHelp)
	case "status":
		printState(out, loop.State(ctx))
	case "beliefs":
		printBeliefs(out, loop.Beliefs())
	case "intention":
		intention, _ := loop.Intention()
		printIntention(out, intention)
	case "clear":
		loop.ClearBeliefs()
		fmt.Fprintln(out, "All beliefs cleared.")
	case "reset":
		loop.Reset()
		fmt.Fprintln(out, "Beliefs and intention reset.")
	default:
		if err := loop.ProcessInput(ctx, input); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		printState(out, loop.State(ctx))
	}

	return false
}
