package psql

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/nlquery/pkg/pipeline"
	"github.com/malbeclabs/nlquery/pkg/querier"
)

func Test_oidForValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		val      any
		expected oid.Oid
	}{
		{"bool", true, pgtype.BoolOID},
		{"int8", int8(1), pgtype.Int2OID},
		{"int16", int16(1), pgtype.Int2OID},
		{"int32", int32(1), pgtype.Int4OID},
		{"int64", int64(1), pgtype.Int8OID},
		{"uint32", uint32(1), pgtype.Int8OID},
		{"uint64 small", uint64(7), pgtype.Int8OID},
		{"uint64 overflow", uint64(math.MaxUint64), pgtype.NumericOID},
		{"big int", big.NewInt(1), pgtype.NumericOID},
		{"float32", float32(1.5), pgtype.Float4OID},
		{"float64", 1.5, pgtype.Float8OID},
		{"time", time.Unix(0, 0), pgtype.TimestamptzOID},
		{"bytes", []byte("x"), pgtype.ByteaOID},
		{"string", "x", pgtype.TextOID},
		{"list", []any{1, 2}, pgtype.TextOID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, oidForValue(tt.val))
		})
	}
}

func Test_encodeValue(t *testing.T) {
	t.Parallel()

	require.Nil(t, encodeValue(nil, pgtype.Int8OID))
	require.Equal(t, int16(3), encodeValue(int8(3), pgtype.Int2OID))
	require.Equal(t, int64(9), encodeValue(uint32(9), pgtype.Int8OID))
	require.Equal(t, int64(5), encodeValue(5, pgtype.Int8OID))
	require.Equal(t, "18446744073709551615", encodeValue(uint64(math.MaxUint64), pgtype.NumericOID))
	require.Equal(t, "12345678901234567890", encodeValue(mustBig("12345678901234567890"), pgtype.NumericOID))
	require.Equal(t, 2.5, encodeValue(2.5, pgtype.Float8OID))
	require.Equal(t, "[1 2]", encodeValue([]any{1, 2}, pgtype.TextOID))
}

func Test_encodeResults_WidensIntegerColumns(t *testing.T) {
	t.Parallel()

	cols := []string{"n", "big", "label"}
	out := pipeline.Outcome{
		Columns: cols,
		Results: []querier.Row{
			querier.NewRow(cols, []any{uint64(1), int64(1), nil}),
			querier.NewRow(cols, []any{uint64(math.MaxUint64), mustBig("170141183460469231731687303715884105727"), "x"}),
			querier.NewRow(cols, []any{nil, int64(2), "y"}),
		},
	}

	columns, rows := encodeResults(out)
	require.Len(t, columns, 3)
	require.Equal(t, oid.Oid(pgtype.NumericOID), columns[0].Oid)
	require.Equal(t, oid.Oid(pgtype.NumericOID), columns[1].Oid)
	require.Equal(t, oid.Oid(pgtype.TextOID), columns[2].Oid)

	require.Equal(t, []any{"1", "1", nil}, rows[0])
	require.Equal(t, []any{"18446744073709551615", "170141183460469231731687303715884105727", "x"}, rows[1])
	require.Equal(t, []any{nil, "2", "y"}, rows[2])
}

func Test_encodeResults_AllNullColumnIsText(t *testing.T) {
	t.Parallel()

	cols := []string{"empty"}
	columns, rows := encodeResults(pipeline.Outcome{
		Columns: cols,
		Results: []querier.Row{querier.NewRow(cols, []any{nil})},
	})
	require.Equal(t, oid.Oid(pgtype.TextOID), columns[0].Oid)
	require.Equal(t, []any{nil}, rows[0])
}

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return n
}
