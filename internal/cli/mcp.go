package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/app"
	"github.com/malbeclabs/nlquery/pkg/mcpserver"
)

type MCPCmd struct{}

func NewMCPCmd() *MCPCmd {
	return &MCPCmd{}
}

func (c *MCPCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the ask, schema and info tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, log *slog.Logger, a *app.App, cmd *cobra.Command, args []string) error {
			srv, err := mcpserver.New(mcpserver.Config{
				Logger:   log,
				Pipeline: a.Pipeline,
				Catalog:  a.Catalog,
				Version:  Version,
			})
			if err != nil {
				return fmt.Errorf("failed to create mcp server: %w", err)
			}
			return srv.RunStdio(ctx)
		}),
	}
}
