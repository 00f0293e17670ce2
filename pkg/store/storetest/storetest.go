// Package storetest provides seeded stores for tests.
package storetest

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcch "github.com/testcontainers/testcontainers-go/modules/clickhouse"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/malbeclabs/nlquery/pkg/store"
	"github.com/malbeclabs/nlquery/pkg/store/seed"
)

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// NewEmptyDuckDB opens an in-memory DuckDB that is closed when the test ends.
func NewEmptyDuckDB(t testing.TB) *store.SQLDB {
	t.Helper()

	db, err := store.Open(t.Context(), store.Config{
		Logger: Logger(),
		Driver: store.DriverDuckDB,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close duckdb: %v", err)
		}
	})
	return db
}

// NewDuckDB opens an in-memory DuckDB loaded with the construction dataset.
func NewDuckDB(t testing.TB) *store.SQLDB {
	t.Helper()

	db := NewEmptyDuckDB(t)
	require.NoError(t, seed.Provision(t.Context(), seed.Config{Logger: Logger(), DB: db}))
	return db
}

// NewPostgres starts a Postgres container and returns a seeded store.
func NewPostgres(t testing.TB) *store.SQLDB {
	t.Helper()
	ctx := t.Context()

	container, err := tcpg.Run(ctx, "postgres:16-alpine",
		tcpg.WithDatabase("testdb"),
		tcpg.WithUsername("testuser"),
		tcpg.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	return openSeeded(t, store.DriverPostgres, dsn)
}

// NewClickHouse starts a ClickHouse container and returns a seeded store.
func NewClickHouse(t testing.TB) *store.SQLDB {
	t.Helper()
	ctx := t.Context()

	container, err := tcch.Run(ctx, "clickhouse/clickhouse-server:latest",
		tcch.WithDatabase("test"),
		tcch.WithUsername("default"),
		tcch.WithPassword("password"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate clickhouse container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("9000/tcp"))
	require.NoError(t, err)
	dsn := fmt.Sprintf("clickhouse://default:password@%s:%s/test", host, port.Port())

	return openSeeded(t, store.DriverClickHouse, dsn)
}

func openSeeded(t testing.TB, driver store.Driver, dsn string) *store.SQLDB {
	t.Helper()

	db, err := store.Open(t.Context(), store.Config{
		Logger:         Logger(),
		Driver:         driver,
		DSN:            dsn,
		ConnectTimeout: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, seed.Provision(t.Context(), seed.Config{Logger: Logger(), DB: db, Reset: true}))
	return db
}
