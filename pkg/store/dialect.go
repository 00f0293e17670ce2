package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

type Driver string

const (
	DriverDuckDB     Driver = "duckdb"
	DriverPostgres   Driver = "postgres"
	DriverClickHouse Driver = "clickhouse"
)

// Column describes one table column as reported by the store catalog.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

// Queryer is satisfied by Connection, *sql.DB and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Dialect captures what differs between stores: catalog introspection,
// identifier quoting and bind placeholders.
type Dialect interface {
	Driver() Driver
	// Name is the human readable SQL flavor, used in translation instructions.
	Name() string
	QuoteIdent(name string) string
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string
	// ReadOnlyTx reports whether statements can run in a READ ONLY transaction.
	ReadOnlyTx() bool

	Tables(ctx context.Context, q Queryer) ([]string, error)
	Views(ctx context.Context, q Queryer) ([]string, error)
	Columns(ctx context.Context, q Queryer, table string) ([]Column, error)
}

func DialectFor(driver Driver) (Dialect, error) {
	switch driver {
	case DriverDuckDB:
		return duckDBDialect{}, nil
	case DriverPostgres:
		return postgresDialect{}, nil
	case DriverClickHouse:
		return clickHouseDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q (want duckdb, postgres or clickhouse)", driver)
	}
}

func queryStrings(ctx context.Context, q Queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func queryColumns(ctx context.Context, q Queryer, query string, args ...any) ([]Column, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.Type, &c.NotNull, &c.PrimaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func quoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type duckDBDialect struct{}

func (duckDBDialect) Driver() Driver             { return DriverDuckDB }
func (duckDBDialect) Name() string               { return "DuckDB" }
func (duckDBDialect) QuoteIdent(n string) string { return quoteDouble(n) }
func (duckDBDialect) Placeholder(int) string     { return "?" }

// The duckdb driver does not accept read-only transaction options.
func (duckDBDialect) ReadOnlyTx() bool { return false }

func (duckDBDialect) Tables(ctx context.Context, q Queryer) ([]string, error) {
	return queryStrings(ctx, q, `
		SELECT table_name FROM duckdb_tables()
		WHERE database_name = current_database() AND schema_name = current_schema()
		  AND NOT internal AND NOT temporary
		ORDER BY table_name`)
}

func (duckDBDialect) Views(ctx context.Context, q Queryer) ([]string, error) {
	return queryStrings(ctx, q, `
		SELECT view_name FROM duckdb_views()
		WHERE database_name = current_database() AND schema_name = current_schema()
		  AND NOT internal AND NOT temporary
		ORDER BY view_name`)
}

func (duckDBDialect) Columns(ctx context.Context, q Queryer, table string) ([]Column, error) {
	return queryColumns(ctx, q, `
		SELECT c.column_name, c.data_type, NOT c.is_nullable,
		       EXISTS (
		           SELECT 1 FROM duckdb_constraints() k
		           WHERE k.database_name = c.database_name AND k.schema_name = c.schema_name
		             AND k.table_name = c.table_name AND k.constraint_type = 'PRIMARY KEY'
		             AND list_contains(k.constraint_column_names, c.column_name)
		       )
		FROM duckdb_columns() c
		WHERE c.database_name = current_database() AND c.schema_name = current_schema()
		  AND c.table_name = ?
		ORDER BY c.column_index`, table)
}

type postgresDialect struct{}

func (postgresDialect) Driver() Driver             { return DriverPostgres }
func (postgresDialect) Name() string               { return "PostgreSQL" }
func (postgresDialect) QuoteIdent(n string) string { return quoteDouble(n) }
func (postgresDialect) Placeholder(n int) string   { return "$" + strconv.Itoa(n) }
func (postgresDialect) ReadOnlyTx() bool           { return true }

func (postgresDialect) Tables(ctx context.Context, q Queryer) ([]string, error) {
	return queryStrings(ctx, q, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
}

func (postgresDialect) Views(ctx context.Context, q Queryer) ([]string, error) {
	return queryStrings(ctx, q, `
		SELECT table_name FROM information_schema.views
		WHERE table_schema = current_schema()
		ORDER BY table_name`)
}

func (postgresDialect) Columns(ctx context.Context, q Queryer, table string) ([]Column, error) {
	return queryColumns(ctx, q, `
		SELECT c.column_name, upper(c.data_type), c.is_nullable = 'NO',
		       EXISTS (
		           SELECT 1 FROM information_schema.table_constraints tc
		           JOIN information_schema.key_column_usage k
		             ON k.constraint_name = tc.constraint_name
		            AND k.table_schema = tc.table_schema
		            AND k.table_name = tc.table_name
		           WHERE tc.constraint_type = 'PRIMARY KEY'
		             AND tc.table_schema = c.table_schema
		             AND tc.table_name = c.table_name
		             AND k.column_name = c.column_name
		       )
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema() AND c.table_name = $1
		ORDER BY c.ordinal_position`, table)
}

type clickHouseDialect struct{}

func (clickHouseDialect) Driver() Driver { return DriverClickHouse }
func (clickHouseDialect) Name() string   { return "ClickHouse" }
func (clickHouseDialect) QuoteIdent(n string) string {
	return "`" + strings.ReplaceAll(n, "`", "\\`") + "`"
}
func (clickHouseDialect) Placeholder(int) string { return "?" }
func (clickHouseDialect) ReadOnlyTx() bool       { return false }

func (clickHouseDialect) Tables(ctx context.Context, q Queryer) ([]string, error) {
	return queryStrings(ctx, q, `
		SELECT name FROM system.tables
		WHERE database = currentDatabase()
		  AND engine NOT IN ('View', 'MaterializedView', 'LiveView')
		  AND NOT is_temporary
		ORDER BY name`)
}

func (clickHouseDialect) Views(ctx context.Context, q Queryer) ([]string, error) {
	return queryStrings(ctx, q, `
		SELECT name FROM system.tables
		WHERE database = currentDatabase() AND engine IN ('View', 'MaterializedView')
		ORDER BY name`)
}

func (clickHouseDialect) Columns(ctx context.Context, q Queryer, table string) ([]Column, error) {
	return queryColumns(ctx, q, `
		SELECT name, type, toBool(NOT startsWith(type, 'Nullable(')), toBool(is_in_primary_key)
		FROM system.columns
		WHERE database = currentDatabase() AND table = ?
		ORDER BY position`, table)
}
