package querier

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"github.com/malbeclabs/nlquery/pkg/store"
)

type Querier struct {
	log *slog.Logger
	cfg Config
}

func New(cfg Config) (*Querier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate querier config: %w", err)
	}
	return &Querier{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

type Result struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Count   int      `json:"count"`
}

// Dialect returns the dialect of the underlying store.
func (q *Querier) Dialect() store.Dialect {
	return q.cfg.DB.Dialect()
}

// Query runs a single statement and returns its rows in store order.
func (q *Querier) Query(ctx context.Context, query string, args ...any) (Result, error) {
	if !q.cfg.AllowWrites {
		if err := CheckReadOnly(query); err != nil {
			return Result{}, err
		}
	}

	conn, err := q.cfg.DB.Conn(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	start := time.Now()

	var rows *sql.Rows
	if !q.cfg.AllowWrites && q.cfg.DB.Dialect().ReadOnlyTx() {
		tx, err := conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
		if err != nil {
			return Result{}, fmt.Errorf("failed to begin read-only transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		rows, err = tx.QueryContext(ctx, query, args...)
		if err != nil {
			return Result{}, fmt.Errorf("failed to execute query: %w", err)
		}
	} else {
		rows, err = conn.QueryContext(ctx, query, args...)
		if err != nil {
			return Result{}, fmt.Errorf("failed to execute query: %w", err)
		}
	}
	defer rows.Close()

	res, err := ScanRows(rows)
	if err != nil {
		return Result{}, err
	}

	q.log.Debug("querier: query executed", "rows", res.Count, "duration", time.Since(start))
	return res, nil
}

// ScanRows reads every row of rows into a Result, normalizing driver values.
func ScanRows(rows *sql.Rows) (Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("failed to get columns: %w", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return Result{}, fmt.Errorf("failed to get column types: %w", err)
	}
	typeNames := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		typeNames[i] = strings.ToUpper(ct.DatabaseTypeName())
	}

	resultRows := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return Result{}, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, val := range values {
			values[i] = normalizeValue(typeNames[i], val)
		}
		resultRows = append(resultRows, Row{columns: columns, values: values})
	}

	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("error iterating rows: %w", err)
	}

	return Result{
		Columns: columns,
		Rows:    resultRows,
		Count:   len(resultRows),
	}, nil
}

// normalizeValue converts driver specific values into plain Go scalars.
// typeName is the upper-cased database type of the column.
func normalizeValue(typeName string, val any) any {
	switch v := val.(type) {
	case []byte:
		switch typeName {
		case "UUID":
			if id, err := uuid.FromBytes(v); err == nil {
				return id.String()
			}
			return string(v)
		case "BLOB", "BYTEA", "VARBINARY", "BINARY", "BYTES":
			return v
		}
		return string(v)
	case *big.Int:
		if v != nil && v.IsInt64() {
			return v.Int64()
		}
		return v
	case duckdb.Decimal:
		return v.Float64()
	default:
		return val
	}
}
