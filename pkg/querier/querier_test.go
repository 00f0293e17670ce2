package querier_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/nlquery/pkg/querier"
	"github.com/malbeclabs/nlquery/pkg/store/storetest"
)

func newQuerier(t *testing.T, allowWrites bool) *querier.Querier {
	t.Helper()
	q, err := querier.New(querier.Config{
		Logger:      storetest.Logger(),
		DB:          storetest.NewDuckDB(t),
		AllowWrites: allowWrites,
	})
	require.NoError(t, err)
	return q
}

func TestQuerier_Config_Validate(t *testing.T) {
	t.Parallel()

	_, err := querier.New(querier.Config{})
	require.ErrorContains(t, err, "logger is required")

	_, err = querier.New(querier.Config{Logger: storetest.Logger()})
	require.ErrorContains(t, err, "database is required")
}

func TestQuerier_Query(t *testing.T) {
	t.Parallel()

	q := newQuerier(t, false)

	t.Run("preserves store order and column order", func(t *testing.T) {
		t.Parallel()

		res, err := q.Query(t.Context(), "SELECT story_code, floor_level FROM stories ORDER BY floor_level ASC")
		require.NoError(t, err)
		require.Equal(t, []string{"story_code", "floor_level"}, res.Columns)
		require.Equal(t, 4, res.Count)

		codes := make([]any, 0, res.Count)
		for _, row := range res.Rows {
			require.Equal(t, res.Columns, row.Columns())
			v, ok := row.Get("story_code")
			require.True(t, ok)
			codes = append(codes, v)
		}
		require.Equal(t, []any{"1UG", "EG", "1OG", "2OG"}, codes)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		t.Parallel()

		res, err := q.Query(t.Context(), "SELECT * FROM stories WHERE story_code = 'DG'")
		require.NoError(t, err)
		require.NotNil(t, res.Rows)
		require.Empty(t, res.Rows)

		b, err := json.Marshal(res)
		require.NoError(t, err)
		require.Contains(t, string(b), `"rows":[]`)
	})

	t.Run("aggregates become plain numbers", func(t *testing.T) {
		t.Parallel()

		res, err := q.Query(t.Context(), "SELECT SUM(quantity) AS total FROM story_elements")
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		v, _ := res.Rows[0].Get("total")
		require.EqualValues(t, 1420, v)
	})

	t.Run("store error carries message", func(t *testing.T) {
		t.Parallel()

		_, err := q.Query(t.Context(), "SELECT no_such_column FROM stories")
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to execute query")
		require.ErrorContains(t, err, "no_such_column")
	})

	t.Run("writes are rejected", func(t *testing.T) {
		t.Parallel()

		_, err := q.Query(t.Context(), "DELETE FROM story_elements")
		require.ErrorIs(t, err, querier.ErrNotReadOnly)

		res, err := q.Query(t.Context(), "SELECT COUNT(*) AS n FROM story_elements")
		require.NoError(t, err)
		n, _ := res.Rows[0].Get("n")
		require.EqualValues(t, 97, n)
	})
}

func TestQuerier_AllowWrites(t *testing.T) {
	t.Parallel()

	q := newQuerier(t, true)

	_, err := q.Query(t.Context(), "UPDATE story_elements SET quantity = quantity + 1 WHERE id = 1 RETURNING id")
	require.NoError(t, err)

	res, err := q.Query(t.Context(), "SELECT quantity FROM story_elements WHERE id = 1")
	require.NoError(t, err)
	v, _ := res.Rows[0].Get("quantity")
	require.EqualValues(t, 7, v)
}

func TestQuerier_Query_BinaryValues(t *testing.T) {
	t.Parallel()

	q := newQuerier(t, false)

	res, err := q.Query(t.Context(), "SELECT '0b1c2d3e-4f50-6172-8394-a5b6c7d8e9f0'::UUID AS id, '\\xAA\\x00\\xFF'::BLOB AS payload, 'plain' AS label")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	id, _ := res.Rows[0].Get("id")
	require.Equal(t, "0b1c2d3e-4f50-6172-8394-a5b6c7d8e9f0", id)

	payload, _ := res.Rows[0].Get("payload")
	require.Equal(t, []byte{0xAA, 0x00, 0xFF}, payload)

	label, _ := res.Rows[0].Get("label")
	require.Equal(t, "plain", label)

	b, err := json.Marshal(res.Rows[0])
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"0b1c2d3e-4f50-6172-8394-a5b6c7d8e9f0","payload":"qgD/","label":"plain"}`, string(b))
}
