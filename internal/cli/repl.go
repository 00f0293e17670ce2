package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/app"
)

const replPrompt = "Enter your question: "

type ReplCmd struct {
	maxRows int
}

func NewReplCmd() *ReplCmd {
	return &ReplCmd{}
}

func (c *ReplCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Ask questions interactively",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, log *slog.Logger, a *app.App, cmd *cobra.Command, args []string) error {
			return c.loop(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
		}),
	}
	cmd.Flags().IntVar(&c.maxRows, "max-rows", defaultMaxRows, "Maximum result rows to print (0 for all)")
	return cmd
}

func (c *ReplCmd) loop(ctx context.Context, a *app.App, in io.Reader, w io.Writer) error {
	fmt.Fprintln(w, "=== Construction Project Database - Natural Language Query Interface ===")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ask questions about the construction project in plain language.")
	fmt.Fprintln(w, "Type 'help' for the database structure, 'examples' for sample questions,")
	fmt.Fprintln(w, "and 'quit', 'exit' or 'q' to leave.")
	fmt.Fprintln(w)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(w, replPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(w, "Goodbye!")
			return nil
		case "help":
			if err := printInfo(ctx, a, w); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
			}
			continue
		case "examples":
			for _, ex := range a.Pipeline.Vocabulary().Examples {
				fmt.Fprintf(w, "  - %s\n", ex.Question)
			}
			fmt.Fprintln(w)
			continue
		}

		fmt.Fprintf(w, "\nProcessing: %q\n", line)
		out := a.Pipeline.Run(ctx, line)
		renderOutcome(w, out, c.maxRows)
		fmt.Fprintln(w)
	}
}
