// Package cli implements the nlquery command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/app"
	"github.com/malbeclabs/nlquery/pkg/config"
	"github.com/malbeclabs/nlquery/pkg/logger"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

// Set by LDFLAGS in cmd/nlquery.
var Version = "dev"

func Run() ExitCode {
	if err := NewRootCmd().Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "nlquery",
		Short:   "Ask questions about the construction project database in natural language.",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")

	var envFile string
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file loaded before ./.env and ~/.env")

	var provision bool
	rootCmd.PersistentFlags().BoolVar(&provision, "provision", false, "Seed the construction dataset if the store is empty")

	rootCmd.AddCommand(
		NewAskCmd().Command(),
		NewReplCmd().Command(),
		NewBatchCmd().Command(),
		NewSchemaCmd().Command(),
		NewInfoCmd().Command(),
		NewSQLCmd().Command(),
		NewExamplesCmd().Command(),
		NewProvisionCmd().Command(),
		NewMCPCmd().Command(),
	)
	return rootCmd
}

type appFunc func(ctx context.Context, log *slog.Logger, a *app.App, cmd *cobra.Command, args []string) error

// withApp resolves configuration and opens the application for the duration
// of the command. Logs go to stderr so stdout stays clean for results and for
// the MCP stdio transport.
func withApp(f appFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		log, cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		provision, err := cmd.Root().PersistentFlags().GetBool("provision")
		if err != nil {
			return fmt.Errorf("failed to get provision flag: %w", err)
		}

		a, err := app.New(ctx, log, cfg, app.Options{Provision: provision})
		if err != nil {
			return err
		}
		defer a.Close()

		return f(ctx, log, a, cmd, args)
	}
}

func setup(cmd *cobra.Command) (*slog.Logger, *config.Config, error) {
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), verbose)

	envFile, err := cmd.Root().PersistentFlags().GetString("env-file")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get env-file flag: %w", err)
	}
	loaded, err := config.LoadEnvFiles(envFile)
	if err != nil {
		return nil, nil, err
	}
	if len(loaded) > 0 {
		log.Debug("cli: loaded env files", "files", strings.Join(loaded, ","))
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return log, cfg, nil
}
