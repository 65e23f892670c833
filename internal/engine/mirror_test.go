package engine_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socio-dash/internal/dataset"
	"socio-dash/internal/domain"
	"socio-dash/internal/engine"
)

func openDuckDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func combined(t *testing.T) *dataset.Table {
	t.Helper()
	b := dataset.MustBuilder("iso3", "name", "time", "GDP_PC", "spending")
	require.NoError(t, b.Append(dataset.String("AAA"), dataset.String("Aland"), dataset.Number(2000), dataset.Number(100), dataset.Number(5)))
	require.NoError(t, b.Append(dataset.String("AAA"), dataset.String("Aland"), dataset.Number(2001), dataset.Number(200), dataset.Null))
	require.NoError(t, b.Append(dataset.String("TST"), dataset.Null, dataset.Number(2000), dataset.Null, dataset.Number(1)))
	return b.Build()
}

func newMirror(t *testing.T) *engine.Mirror {
	t.Helper()
	m, err := engine.NewMirror(context.Background(), openDuckDB(t), combined(t), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return m
}

func TestMirror_RoundTrip(t *testing.T) {
	m := newMirror(t)

	got, err := m.Query(context.Background(), `SELECT iso3, "time", GDP_PC, spending FROM combined ORDER BY iso3, "time"`)
	require.NoError(t, err)

	assert.Equal(t, []string{"iso3", "time", "GDP_PC", "spending"}, got.Columns())
	require.Equal(t, 3, got.Len())
	assert.Equal(t, "AAA", got.Value(0, "iso3").Text())
	year, ok := got.Value(1, "time").Int()
	require.True(t, ok)
	assert.Equal(t, 2001, year)
	assert.True(t, got.Value(1, "spending").IsNull())
	assert.True(t, got.Value(2, "GDP_PC").IsNull())
}

func TestMirror_Aggregate(t *testing.T) {
	m := newMirror(t)

	got, err := m.Query(context.Background(), "SELECT count(*) AS n, avg(GDP_PC) AS gdp FROM combined")
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	n, _ := got.Value(0, "n").Float()
	assert.Equal(t, 3.0, n)
	gdp, _ := got.Value(0, "gdp").Float()
	assert.Equal(t, 150.0, gdp)
}

func TestMirror_RejectsWrites(t *testing.T) {
	m := newMirror(t)

	for _, q := range []string{
		"DROP TABLE combined",
		"DELETE FROM combined",
		"SELECT 1; DROP TABLE combined",
		"SELECTED",
	} {
		_, err := m.Query(context.Background(), q)
		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve), "query %q should be rejected", q)
	}
}

func TestIsReadOnly(t *testing.T) {
	assert.True(t, engine.IsReadOnly("  select * from combined;"))
	assert.True(t, engine.IsReadOnly("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.True(t, engine.IsReadOnly("DESCRIBE combined"))
	assert.False(t, engine.IsReadOnly("INSERT INTO combined VALUES (1)"))
	assert.False(t, engine.IsReadOnly(""))
}
