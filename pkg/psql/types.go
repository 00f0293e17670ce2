package psql

import (
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	wire "github.com/jeroenrinzema/psql-wire"
	"github.com/lib/pq/oid"

	"github.com/malbeclabs/nlquery/pkg/pipeline"
)

// encodeResults derives a column type from the first non-null value of each
// column, widening integer columns to numeric when a later value does not fit
// in int64, and converts every value to the Go type pgtype encodes for it.
func encodeResults(out pipeline.Outcome) (wire.Columns, [][]any) {
	columns := make(wire.Columns, len(out.Columns))
	for i, name := range out.Columns {
		columns[i] = wire.Column{Name: name, Oid: columnOID(out, i)}
	}

	rows := make([][]any, 0, len(out.Results))
	for _, row := range out.Results {
		values := make([]any, len(columns))
		for i, v := range row.Values() {
			values[i] = encodeValue(v, columns[i].Oid)
		}
		rows = append(rows, values)
	}
	return columns, rows
}

func columnOID(out pipeline.Outcome, col int) oid.Oid {
	typ := oid.Oid(0)
	for _, row := range out.Results {
		v := row.Values()[col]
		if v == nil {
			continue
		}
		next := oidForValue(v)
		switch {
		case typ == 0:
			typ = next
		case next == pgtype.NumericOID && isIntegerOID(typ):
			return pgtype.NumericOID
		}
	}
	if typ == 0 {
		return pgtype.TextOID
	}
	return typ
}

func isIntegerOID(typ oid.Oid) bool {
	return typ == pgtype.Int2OID || typ == pgtype.Int4OID || typ == pgtype.Int8OID
}

func oidForValue(v any) oid.Oid {
	switch x := v.(type) {
	case bool:
		return pgtype.BoolOID
	case int8, int16:
		return pgtype.Int2OID
	case int32:
		return pgtype.Int4OID
	case int, int64, uint8, uint16, uint32:
		return pgtype.Int8OID
	case uint64:
		if x > math.MaxInt64 {
			return pgtype.NumericOID
		}
		return pgtype.Int8OID
	case *big.Int:
		return pgtype.NumericOID
	case float32:
		return pgtype.Float4OID
	case float64:
		return pgtype.Float8OID
	case time.Time:
		return pgtype.TimestamptzOID
	case []byte:
		return pgtype.ByteaOID
	default:
		return pgtype.TextOID
	}
}

func encodeValue(v any, typ oid.Oid) any {
	if v == nil {
		return nil
	}

	switch typ {
	case pgtype.BoolOID, pgtype.Float4OID, pgtype.Float8OID, pgtype.TimestamptzOID, pgtype.ByteaOID:
		return v
	case pgtype.Int2OID:
		switch x := v.(type) {
		case int8:
			return int16(x)
		case int16:
			return x
		}
	case pgtype.Int4OID:
		if x, ok := v.(int32); ok {
			return x
		}
	case pgtype.Int8OID:
		switch x := v.(type) {
		case int:
			return int64(x)
		case int64:
			return x
		case uint8:
			return int64(x)
		case uint16:
			return int64(x)
		case uint32:
			return int64(x)
		case uint64:
			if x <= math.MaxInt64 {
				return int64(x)
			}
		}
	}
	return fmt.Sprintf("%v", v)
}
