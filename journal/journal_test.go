package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alpham/smalllang/lib"
)

func exerciseJournal(t *testing.T, j Journal) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	old, err := NewEntry("old", "x = 1\n", "", lib.Result{Statements: 1, Last: 1, Env: map[string]int64{"x": 1}}, nil, base, time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, old))
	require.NotZero(t, old.ID)

	failed, err := NewEntry("failed", "print(2)\nz\n", "2\n", lib.Result{Statements: 2, Last: 0}, errors.New("undefined variable 'z'"), base.Add(time.Hour), time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, failed))

	recent, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "failed", recent[0].Name)
	require.Equal(t, "2\n", recent[0].Output)
	require.Equal(t, "undefined variable 'z'", recent[0].Error)
	require.Equal(t, "old", recent[1].Name)

	bindings, err := recent[1].BindingsMap()
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"x": 1}, bindings)

	limited, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	pruned, err := j.Prune(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), pruned)

	recent, err = j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "failed", recent[0].Name)

	// Already pruned entries are not counted again.
	pruned, err = j.Prune(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(0), pruned)
}

func TestSqliteJournal(t *testing.T) {
	j, err := Open(DriverSqlite, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	exerciseJournal(t, j)
}

func TestPostgresJournal(t *testing.T) {
	dsn := os.Getenv("SMALLLANG_PG_DSN")
	if dsn == "" {
		t.Skip("SMALLLANG_PG_DSN not set")
	}
	j, err := Open(DriverPostgres, dsn)
	require.NoError(t, err)
	defer j.Close()

	pg := j.(*postgresJournal)
	_, err = pg.db.Exec("TRUNCATE runs")
	require.NoError(t, err)

	// Applying migrations twice is a no-op.
	require.NoError(t, RunMigrations(context.Background(), pg.db))

	exerciseJournal(t, j)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	require.Error(t, err)
}

func TestHashSource(t *testing.T) {
	a := HashSource("x = 1\n")
	require.Len(t, a, 64)
	require.Equal(t, a, HashSource("x = 1\n"))
	require.NotEqual(t, a, HashSource("x = 2\n"))
}

func TestNewEntryNilEnv(t *testing.T) {
	e, err := NewEntry("", "z\n", "", lib.Result{}, errors.New("boom"), time.Now(), 0)
	require.NoError(t, err)
	require.Equal(t, "{}", e.Bindings)
	require.Equal(t, "boom", e.Error)
}
