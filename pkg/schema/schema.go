// Package schema renders a textual description of the store for use as
// grounding context in translation instructions.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/malbeclabs/nlquery/pkg/querier"
	"github.com/malbeclabs/nlquery/pkg/store"
)

// Description is the rendered schema. It is immutable once built.
type Description string

func (d Description) String() string { return string(d) }

const sampleRows = 3

// Describe lists every table with its columns and up to three sample rows,
// followed by the view names. It only reads from the store.
func Describe(ctx context.Context, db store.DB) (Description, error) {
	dialect := db.Dialect()

	conn, err := db.Conn(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	tables, err := dialect.Tables(ctx, conn)
	if err != nil {
		return "", fmt.Errorf("failed to list tables: %w", err)
	}

	var sb strings.Builder
	for _, table := range tables {
		columns, err := dialect.Columns(ctx, conn, table)
		if err != nil {
			return "", fmt.Errorf("failed to list columns of %s: %w", table, err)
		}

		fmt.Fprintf(&sb, "\n--- TABLE: %s ---\n", table)
		for _, c := range columns {
			sb.WriteString(c.Name)
			sb.WriteByte(' ')
			sb.WriteString(c.Type)
			if c.PrimaryKey {
				sb.WriteString(" PRIMARY KEY")
			}
			if c.NotNull {
				sb.WriteString(" NOT NULL")
			}
			sb.WriteByte('\n')
		}

		rows, err := sample(ctx, conn, dialect, table, columns)
		if err != nil {
			return "", fmt.Errorf("failed to sample %s: %w", table, err)
		}
		if len(rows) > 0 {
			sb.WriteString("Sample data:\n")
			for _, row := range rows {
				b, err := json.Marshal(row)
				if err != nil {
					return "", fmt.Errorf("failed to encode sample row of %s: %w", table, err)
				}
				sb.Write(b)
				sb.WriteByte('\n')
			}
		}
	}

	views, err := dialect.Views(ctx, conn)
	if err != nil {
		return "", fmt.Errorf("failed to list views: %w", err)
	}
	if len(views) > 0 {
		sb.WriteString("\n--- VIEWS ---\n")
		for _, v := range views {
			fmt.Fprintf(&sb, "VIEW: %s\n", v)
		}
	}

	return Description(sb.String()), nil
}

func sample(ctx context.Context, conn store.Connection, dialect store.Dialect, table string, columns []store.Column) ([]querier.Row, error) {
	var order []string
	for _, c := range columns {
		if c.PrimaryKey {
			order = append(order, dialect.QuoteIdent(c.Name))
		}
	}
	// Without a key, order by every column position so the sample is stable.
	if len(order) == 0 {
		for i := range columns {
			order = append(order, strconv.Itoa(i+1))
		}
	}

	query := fmt.Sprintf("SELECT * FROM %s", dialect.QuoteIdent(table))
	if len(order) > 0 {
		query += " ORDER BY " + strings.Join(order, ", ")
	}
	query += fmt.Sprintf(" LIMIT %d", sampleRows)

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res, err := querier.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}
