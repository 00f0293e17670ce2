package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/app"
)

type InfoCmd struct{}

func NewInfoCmd() *InfoCmd {
	return &InfoCmd{}
}

func (c *InfoCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database statistics, stories and categories",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, log *slog.Logger, a *app.App, cmd *cobra.Command, args []string) error {
			return printInfo(ctx, a, cmd.OutOrStdout())
		}),
	}
}

func printInfo(ctx context.Context, a *app.App, w io.Writer) error {
	info, err := a.Catalog.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get info: %w", err)
	}
	summary, err := a.Catalog.StorySummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to get story summary: %w", err)
	}

	fmt.Fprintln(w, "=== Database Structure ===")
	fmt.Fprintf(w, "Stories:     %d\n", info.StoryCount)
	fmt.Fprintf(w, "Elements:    %d\n", info.ElementCount)
	fmt.Fprintf(w, "Total items: %d\n", info.TotalItems)
	fmt.Fprintf(w, "Categories:  %s\n\n", strings.Join(info.Categories, ", "))

	table := newTable(w, []string{"Story", "Name", "Elements", "Items"})
	for _, s := range summary {
		table.Append([]string{
			s.Code,
			s.Name,
			strconv.FormatInt(s.ElementCount, 10),
			strconv.FormatInt(s.TotalItems, 10),
		})
	}
	table.Render()
	return nil
}
