package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/store"
	"github.com/malbeclabs/nlquery/pkg/store/seed"
)

type ProvisionCmd struct {
	reset bool
}

func NewProvisionCmd() *ProvisionCmd {
	return &ProvisionCmd{}
}

// Command opens the store directly: the pipeline needs the tables to exist
// before it can describe them.
func (c *ProvisionCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create the construction project tables, views and seed data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := store.Open(ctx, cfg.Store(log))
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer db.Close()

			if !c.reset {
				ok, err := seed.Provisioned(ctx, db)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Store is already provisioned; use --reset to recreate it.")
					return nil
				}
			}
			if err := seed.Provision(ctx, seed.Config{Logger: log, DB: db, Reset: c.reset}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provisioned %d stories, %d elements and %d placements (%s).\n",
				len(seed.Stories), len(seed.Elements), len(seed.Placements()), store.RedactDSN(cfg.DBDSN))
			return nil
		},
	}
	cmd.Flags().BoolVar(&c.reset, "reset", false, "Drop existing tables and views first")
	return cmd
}

