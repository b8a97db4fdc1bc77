package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Migration is one forward-only schema change of the postgres journal.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_runs",
		UpSQL: `CREATE TABLE IF NOT EXISTS runs (
	id BIGSERIAL PRIMARY KEY,
	source_hash TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	output TEXT NOT NULL,
	result BIGINT NOT NULL,
	bindings TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMP WITH TIME ZONE NOT NULL,
	duration_ns BIGINT NOT NULL,
	deleted SMALLINT NOT NULL DEFAULT 0
)`,
	},
	{
		Version: 2,
		Name:    "index_runs_started_at",
		UpSQL:   "CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs (started_at)",
	},
	{
		Version: 3,
		Name:    "index_runs_source_hash",
		UpSQL:   "CREATE INDEX IF NOT EXISTS idx_runs_source_hash ON runs (source_hash)",
	},
}

type postgresJournal struct {
	db *sql.DB
}

func openPostgres(connectionString string) (*postgresJournal, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &postgresJournal{db: db}, nil
}

// RunMigrations applies every migration newer than the recorded version, each
// in its own transaction.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	err := requireMigrationsTable(ctx, db)
	if err != nil {
		return err
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}
		err = execMigration(ctx, db, migration)
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}

	return nil
}

func requireMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS journal_migrations (version INT PRIMARY KEY, at TIMESTAMP WITH TIME ZONE NOT NULL)")
	return err
}

func currentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM journal_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

func execMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, migration.UpSQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO journal_migrations (version, at) VALUES ($1, $2)",
		migration.Version, time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (j *postgresJournal) Record(ctx context.Context, entry *Entry) error {
	return j.db.QueryRowContext(ctx,
		`INSERT INTO runs (source_hash, name, source, output, result, bindings, error, started_at, duration_ns)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		entry.SourceHash, entry.Name, entry.Source, entry.Output, entry.Result,
		entry.Bindings, entry.Error, entry.StartedAt, entry.DurationNs,
	).Scan(&entry.ID)
}

func (j *postgresJournal) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, source_hash, name, source, output, result, bindings, error, started_at, duration_ns
FROM runs WHERE deleted = 0 ORDER BY started_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		e := &Entry{}
		err := rows.Scan(&e.ID, &e.SourceHash, &e.Name, &e.Source, &e.Output, &e.Result,
			&e.Bindings, &e.Error, &e.StartedAt, &e.DurationNs)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *postgresJournal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		"UPDATE runs SET deleted = 1 WHERE deleted = 0 AND started_at < $1", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (j *postgresJournal) Close() error {
	return j.db.Close()
}
