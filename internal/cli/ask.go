package cli

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/app"
)

type AskCmd struct {
	json    bool
	maxRows int
}

func NewAskCmd() *AskCmd {
	return &AskCmd{}
}

func (c *AskCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, log *slog.Logger, a *app.App, cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			out := a.Pipeline.Run(ctx, question)
			if c.json {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				renderOutcome(cmd.OutOrStdout(), out, c.maxRows)
			}
			if !out.Success {
				cmd.SilenceUsage = true
				return errors.New("question could not be answered")
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&c.json, "json", false, "Print the outcome as JSON")
	cmd.Flags().IntVar(&c.maxRows, "max-rows", defaultMaxRows, "Maximum result rows to print (0 for all)")
	return cmd
}
