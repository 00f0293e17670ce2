package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/app"
)

type SQLCmd struct {
	json    bool
	maxRows int
}

func NewSQLCmd() *SQLCmd {
	return &SQLCmd{}
}

func (c *SQLCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Run a read-only SQL query directly against the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, log *slog.Logger, a *app.App, cmd *cobra.Command, args []string) error {
			res, err := a.Querier.Query(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if c.json {
				return writeJSON(cmd.OutOrStdout(), res.Rows)
			}
			renderRows(cmd.OutOrStdout(), res.Columns, res.Rows, c.maxRows)
			fmt.Fprintf(cmd.OutOrStdout(), "(%d rows)\n", res.Count)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&c.json, "json", false, "Print rows as JSON")
	cmd.Flags().IntVar(&c.maxRows, "max-rows", 0, "Maximum rows to print (0 for all)")
	return cmd
}
