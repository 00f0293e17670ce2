package schema_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/nlquery/pkg/schema"
	"github.com/malbeclabs/nlquery/pkg/store/storetest"
)

func TestSchema_Describe_DuckDB(t *testing.T) {
	t.Parallel()

	db := storetest.NewDuckDB(t)
	desc, err := schema.Describe(t.Context(), db)
	require.NoError(t, err)

	text := desc.String()
	require.True(t, strings.HasPrefix(text, "\n--- TABLE: elements ---\n"), text)

	for _, want := range []string{
		"\n--- TABLE: stories ---\n",
		"\n--- TABLE: story_elements ---\n",
		"story_code VARCHAR NOT NULL\n",
		"description VARCHAR\n",
		"quantity INTEGER NOT NULL\n",
		"Sample data:\n",
		`{"story_id":1,"story_code":"2OG","story_name":"2. Obergeschoss","floor_level":2,"description":"Zweites Obergeschoss"}`,
	} {
		require.Contains(t, text, want)
	}
	require.Regexp(t, `(?m)^story_id INTEGER PRIMARY KEY`, text)
	require.NotContains(t, text, "1. Untergeschoss", "only three sample rows per table")

	views := text[strings.Index(text, "\n--- VIEWS ---"):]
	want := "\n--- VIEWS ---\n" +
		"VIEW: element_totals_view\n" +
		"VIEW: story_elements_view\n" +
		"VIEW: story_summary_view\n"
	if diff := cmp.Diff(want, views); diff != "" {
		t.Fatalf("views section mismatch (-want +got):\n%s", diff)
	}
}

func TestSchema_Describe_Idempotent(t *testing.T) {
	t.Parallel()

	db := storetest.NewDuckDB(t)

	first, err := schema.Describe(t.Context(), db)
	require.NoError(t, err)
	second, err := schema.Describe(t.Context(), db)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("describe is not idempotent (-first +second):\n%s", diff)
	}
}

func TestSchema_Describe_EmptyStore(t *testing.T) {
	t.Parallel()

	db := storetest.NewEmptyDuckDB(t)
	desc, err := schema.Describe(t.Context(), db)
	require.NoError(t, err)
	require.Empty(t, desc)
}

func TestSchema_Describe_TableWithoutRows(t *testing.T) {
	t.Parallel()

	db := storetest.NewEmptyDuckDB(t)
	conn, err := db.Conn(t.Context())
	require.NoError(t, err)
	_, err = conn.ExecContext(t.Context(), "CREATE TABLE notes (body VARCHAR)")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	desc, err := schema.Describe(t.Context(), db)
	require.NoError(t, err)
	require.Equal(t, schema.Description("\n--- TABLE: notes ---\nbody VARCHAR\n"), desc)
}
