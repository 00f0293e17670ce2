package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/cenkalti/backoff/v5"
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB is a relational store the pipeline reads from.
type DB interface {
	Conn(ctx context.Context) (Connection, error)
	Dialect() Dialect
	Ping(ctx context.Context) error
	Close() error
}

type Connection interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

const (
	defaultMaxOpenConns   = 10
	defaultConnectTimeout = 30 * time.Second
)

type Config struct {
	Logger *slog.Logger
	Driver Driver
	DSN    string

	// MaxOpenConns caps the pool. Zero means 10.
	MaxOpenConns int
	// ConnectTimeout bounds how long Open keeps retrying the initial ping.
	ConnectTimeout time.Duration
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if _, err := DialectFor(cfg.Driver); err != nil {
		return err
	}
	if cfg.Driver != DriverDuckDB && cfg.DSN == "" {
		return fmt.Errorf("dsn is required for driver %q", cfg.Driver)
	}
	if cfg.MaxOpenConns < 0 {
		return errors.New("max open connections must be non-negative")
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	return nil
}

// SQLDB is a DB backed by a database/sql pool.
type SQLDB struct {
	log     *slog.Logger
	db      *sql.DB
	dialect Dialect
}

// Open connects to the store and waits until it answers a ping.
func Open(ctx context.Context, cfg Config) (*SQLDB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate store config: %w", err)
	}
	dialect, _ := DialectFor(cfg.Driver)

	db, err := openSQL(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	s := &SQLDB{log: cfg.Logger, db: db, dialect: dialect}

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return struct{}{}, db.PingContext(pingCtx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(cfg.ConnectTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			cfg.Logger.Warn("store: ping failed, retrying", "driver", cfg.Driver, "attempt", attempt, "next", next, "error", err)
		}),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	cfg.Logger.Info("store: connected", "driver", cfg.Driver, "dsn", RedactDSN(cfg.DSN))
	return s, nil
}

// New wraps a pool that is already open. It does not ping.
func New(log *slog.Logger, db *sql.DB, driver Driver) (*SQLDB, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if db == nil {
		return nil, errors.New("database is required")
	}
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &SQLDB{log: log, db: db, dialect: dialect}, nil
}

func openSQL(driver Driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverDuckDB:
		return sql.Open("duckdb", dsn)
	case DriverPostgres:
		return sql.Open("pgx", dsn)
	case DriverClickHouse:
		opts, err := clickhouse.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse clickhouse dsn: %w", err)
		}
		if opts.Settings == nil {
			opts.Settings = clickhouse.Settings{}
		}
		if _, ok := opts.Settings["max_execution_time"]; !ok {
			opts.Settings["max_execution_time"] = 60
		}
		return clickhouse.OpenDB(opts), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func (s *SQLDB) Dialect() Dialect {
	return s.dialect
}

func (s *SQLDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLDB) Conn(ctx context.Context) (Connection, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return &SQLConnection{conn: conn}, nil
}

func (s *SQLDB) Close() error {
	return s.db.Close()
}

type SQLConnection struct {
	conn *sql.Conn
}

func (c *SQLConnection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

func (c *SQLConnection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

func (c *SQLConnection) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.conn.QueryRowContext(ctx, query, args...)
}

func (c *SQLConnection) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.conn.BeginTx(ctx, opts)
}

func (c *SQLConnection) Close() error {
	return c.conn.Close()
}
