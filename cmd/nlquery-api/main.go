package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/malbeclabs/nlquery/pkg/api"
	"github.com/malbeclabs/nlquery/pkg/app"
	"github.com/malbeclabs/nlquery/pkg/config"
	"github.com/malbeclabs/nlquery/pkg/logger"
	"github.com/malbeclabs/nlquery/pkg/mcpserver"
	"github.com/malbeclabs/nlquery/pkg/metrics"
	"github.com/malbeclabs/nlquery/pkg/psql"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultHTTPListenAddr     = "0.0.0.0:5000"
	defaultPostgresListenAddr = ""
	defaultReadHeaderTimeout  = 30 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultMetricsAddr        = "0.0.0.0:8080"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	envFileFlag := flag.String("env-file", "", "Path to a .env file loaded before ./.env and ~/.env")
	httpListenAddrFlag := flag.String("http-listen-addr", defaultHTTPListenAddr, "HTTP server listen address (or set NLQUERY_HTTP_LISTEN_ADDR env var)")
	postgresListenAddrFlag := flag.String("postgres-listen-addr", defaultPostgresListenAddr, "PostgreSQL wire protocol listen address, empty to disable (or set NLQUERY_POSTGRES_LISTEN_ADDR env var)")
	readHeaderTimeoutFlag := flag.Duration("read-header-timeout", defaultReadHeaderTimeout, "HTTP read header timeout")
	shutdownTimeoutFlag := flag.Duration("shutdown-timeout", defaultShutdownTimeout, "Server shutdown timeout")
	metricsAddrFlag := flag.String("metrics-addr", defaultMetricsAddr, "Address to listen on for prometheus metrics")
	allowedOriginsFlag := flag.StringSlice("allowed-origins", []string{"*"}, "CORS allowed origins")
	enableMCPFlag := flag.Bool("enable-mcp", false, "Serve MCP tools over streamable HTTP at /mcp")
	provisionFlag := flag.Bool("provision", false, "Seed the construction dataset if the store is empty")

	flag.Parse()

	log := logger.New(*verboseFlag)

	loaded, err := config.LoadEnvFiles(*envFileFlag)
	if err != nil {
		return err
	}
	if len(loaded) > 0 {
		log.Debug("server: loaded env files", "files", strings.Join(loaded, ","))
	}

	// Override flags with environment variables if set
	if v := os.Getenv("NLQUERY_HTTP_LISTEN_ADDR"); v != "" {
		*httpListenAddrFlag = v
	}
	if v := os.Getenv("NLQUERY_POSTGRES_LISTEN_ADDR"); v != "" {
		*postgresListenAddrFlag = v
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigCh
		log.Info("server: received signal", "signal", sig.String())
		cancel()
	}()

	var metricsServerErrCh = make(chan error, 1)
	if *metricsAddrFlag != "" {
		metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
		go func() {
			listener, err := net.Listen("tcp", *metricsAddrFlag)
			if err != nil {
				log.Error("failed to start prometheus metrics server listener", "error", err)
				metricsServerErrCh <- err
				return
			}
			log.Info("prometheus metrics server listening", "address", listener.Addr().String())
			http.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, nil); err != nil {
				log.Error("failed to start prometheus metrics server", "error", err)
				metricsServerErrCh <- err
				return
			}
		}()
	}

	a, err := app.New(ctx, log, cfg, app.Options{Provision: *provisionFlag})
	if err != nil {
		return err
	}
	defer a.Close()

	httpListener, err := net.Listen("tcp", *httpListenAddrFlag)
	if err != nil {
		return fmt.Errorf("failed to create HTTP listener: %w", err)
	}
	defer httpListener.Close()

	// PostgreSQL wire frontend (optional)
	var postgresListener net.Listener
	var psqlServer *psql.Server
	if *postgresListenAddrFlag != "" {
		accounts, err := psql.AccountsFromEnv()
		if err != nil {
			return err
		}
		psqlServer, err = psql.New(psql.Config{
			Logger:   log,
			Runner:   a.Pipeline,
			Accounts: accounts,
		})
		if err != nil {
			return fmt.Errorf("failed to create psql server: %w", err)
		}
		postgresListener, err = net.Listen("tcp", *postgresListenAddrFlag)
		if err != nil {
			return fmt.Errorf("failed to create PostgreSQL listener: %w", err)
		}
		defer postgresListener.Close()
		log.Info("PostgreSQL wire protocol enabled", "address", *postgresListenAddrFlag, "auth", len(accounts) > 0)
	} else {
		log.Info("PostgreSQL wire protocol disabled")
	}

	var mcpHandler http.Handler
	if *enableMCPFlag {
		mcpServer, err := mcpserver.New(mcpserver.Config{
			Logger:   log,
			Pipeline: a.Pipeline,
			Catalog:  a.Catalog,
			Version:  version,
		})
		if err != nil {
			return fmt.Errorf("failed to create mcp server: %w", err)
		}
		mcpHandler = mcpServer.Handler()
	}

	srv, err := api.New(api.Config{
		Logger:            log,
		Pipeline:          a.Pipeline,
		Catalog:           a.Catalog,
		DB:                a.DB,
		HTTPListener:      httpListener,
		PostgresListener:  postgresListener,
		Psql:              psqlServer,
		MCP:               mcpHandler,
		AllowedOrigins:    *allowedOriginsFlag,
		InfoCacheTTL:      cfg.InfoCacheTTL,
		ReadHeaderTimeout: *readHeaderTimeoutFlag,
		ShutdownTimeout:   *shutdownTimeoutFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to create api server: %w", err)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	return awaitShutdown(ctx, log, serverErrCh, metricsServerErrCh)
}

// awaitShutdown blocks until the server stops. On cancellation it waits for
// the server to finish draining so deferred cleanup does not race it.
func awaitShutdown(ctx context.Context, log *slog.Logger, serverErrCh, metricsServerErrCh <-chan error) error {
	select {
	case <-ctx.Done():
		log.Info("server: shutting down", "reason", ctx.Err())
		if err := <-serverErrCh; err != nil {
			log.Error("server: shutdown error", "error", err)
			return err
		}
		log.Info("server: shutdown complete")
		return nil
	case err := <-serverErrCh:
		log.Error("server: server error causing shutdown", "error", err)
		return err
	case err := <-metricsServerErrCh:
		log.Error("server: metrics server error causing shutdown", "error", err)
		return err
	}
}
