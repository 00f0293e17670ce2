package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/app"
)

type SchemaCmd struct {
	instructions bool
}

func NewSchemaCmd() *SchemaCmd {
	return &SchemaCmd{}
}

func (c *SchemaCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema description given to the reasoning service",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, log *slog.Logger, a *app.App, cmd *cobra.Command, args []string) error {
			if c.instructions {
				fmt.Fprintln(cmd.OutOrStdout(), a.Pipeline.Translator().Instructions())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.Pipeline.Schema())
			return nil
		}),
	}
	cmd.Flags().BoolVar(&c.instructions, "instructions", false, "Print the full translation instructions instead")
	return cmd
}
