package store_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/nlquery/pkg/store"
	"github.com/malbeclabs/nlquery/pkg/store/storetest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStore_Config_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     store.Config
		wantErr string
	}{
		{name: "missing logger", cfg: store.Config{Driver: store.DriverDuckDB}, wantErr: "logger is required"},
		{name: "unknown driver", cfg: store.Config{Logger: testLogger(), Driver: "sqlite"}, wantErr: "unsupported driver"},
		{name: "postgres without dsn", cfg: store.Config{Logger: testLogger(), Driver: store.DriverPostgres}, wantErr: "dsn is required"},
		{name: "negative pool", cfg: store.Config{Logger: testLogger(), Driver: store.DriverDuckDB, MaxOpenConns: -1}, wantErr: "non-negative"},
		{name: "duckdb in memory", cfg: store.Config{Logger: testLogger(), Driver: store.DriverDuckDB}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, 10, tt.cfg.MaxOpenConns)
		})
	}
}

func TestStore_Dialect_Placeholders(t *testing.T) {
	t.Parallel()

	pg, err := store.DialectFor(store.DriverPostgres)
	require.NoError(t, err)
	require.Equal(t, "$3", pg.Placeholder(3))
	require.True(t, pg.ReadOnlyTx())
	require.Equal(t, `"we""ird"`, pg.QuoteIdent(`we"ird`))

	ch, err := store.DialectFor(store.DriverClickHouse)
	require.NoError(t, err)
	require.Equal(t, "?", ch.Placeholder(3))
	require.Equal(t, "`stories`", ch.QuoteIdent("stories"))

	duck, err := store.DialectFor(store.DriverDuckDB)
	require.NoError(t, err)
	require.Equal(t, "DuckDB", duck.Name())
	require.False(t, duck.ReadOnlyTx())
}

func TestStore_DuckDB_Catalog(t *testing.T) {
	t.Parallel()

	db := storetest.NewDuckDB(t)
	ctx := t.Context()

	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	tables, err := db.Dialect().Tables(ctx, conn)
	require.NoError(t, err)
	require.Equal(t, []string{"elements", "stories", "story_elements"}, tables)

	views, err := db.Dialect().Views(ctx, conn)
	require.NoError(t, err)
	require.Equal(t, []string{"element_totals_view", "story_elements_view", "story_summary_view"}, views)

	cols, err := db.Dialect().Columns(ctx, conn, "stories")
	require.NoError(t, err)
	require.Len(t, cols, 5)
	require.Equal(t, "story_id", cols[0].Name)
	require.Equal(t, "INTEGER", cols[0].Type)
	require.True(t, cols[0].PrimaryKey)
	require.Equal(t, "story_code", cols[1].Name)
	require.True(t, cols[1].NotNull)
	require.False(t, cols[1].PrimaryKey)
	require.Equal(t, "description", cols[4].Name)
	require.False(t, cols[4].NotNull)
}

func TestStore_RedactDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/var/lib/nlquery/project.duckdb", "/var/lib/nlquery/project.duckdb"},
		{"postgres://app:secret@db:5432/project?sslmode=disable", "postgres://app:REDACTED@db:5432/project?sslmode=disable"},
		{"host=db user=app password=secret dbname=project", "host=db user=app password=REDACTED dbname=project"},
		{"clickhouse://db:9000/project?password=secret&username=app", "clickhouse://db:9000/project?password=REDACTED&username=app"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, store.RedactDSN(tt.in), tt.in)
	}
}

func TestStore_New_WrapsPool(t *testing.T) {
	t.Parallel()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = store.New(nil, sqlDB, store.DriverPostgres)
	require.ErrorContains(t, err, "logger is required")
	_, err = store.New(testLogger(), sqlDB, store.Driver("sqlite"))
	require.Error(t, err)

	db, err := store.New(testLogger(), sqlDB, store.DriverPostgres)
	require.NoError(t, err)
	require.Equal(t, "PostgreSQL", db.Dialect().Name())

	mock.ExpectPing()
	require.NoError(t, db.Ping(t.Context()))
	require.NoError(t, mock.ExpectationsWereMet())
}
