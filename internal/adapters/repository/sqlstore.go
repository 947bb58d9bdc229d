package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver

	model "github.com/okian/pelota/internal/domain/model"
)

// dialect selects placeholder and DDL flavor.
type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

const sqliteDDL = `
CREATE TABLE IF NOT EXISTS samples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sample_id TEXT NOT NULL UNIQUE,
	player_id TEXT NOT NULL,
	score REAL NOT NULL,
	duration_seconds REAL NOT NULL,
	moves TEXT NOT NULL,
	death_cause TEXT NOT NULL,
	ts_unix_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_player ON samples(player_id, id);
`

const postgresDDL = `
CREATE TABLE IF NOT EXISTS samples (
	id BIGSERIAL PRIMARY KEY,
	sample_id TEXT NOT NULL UNIQUE,
	player_id TEXT NOT NULL,
	score DOUBLE PRECISION NOT NULL,
	duration_seconds DOUBLE PRECISION NOT NULL,
	moves TEXT NOT NULL,
	death_cause TEXT NOT NULL,
	ts_unix_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_player ON samples(player_id, id);
`

// SQLStore is a SampleStore backed by database/sql. It speaks sqlite
// for single-node deployments and postgres for shared ones; the
// queries are written once with ? placeholders and rebound per
// dialect.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLStore opens the database, verifies connectivity, and applies
// the schema.
func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var d dialect
	var driverName string
	switch driver {
	case "sqlite":
		d, driverName = dialectSQLite, "sqlite"
	case "postgres":
		d, driverName = dialectPostgres, "pgx"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if d == dialectSQLite {
		// sqlite is single-writer; one pooled connection also keeps
		// in-memory databases on a single handle.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	ddl := sqliteDDL
	if s.dialect == dialectPostgres {
		ddl = postgresDDL
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $N for the postgres dialect.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AppendSample persists one sample. A sample ID that was stored
// before is silently skipped.
func (s *SQLStore) AppendSample(ctx context.Context, sample model.Sample) (err error) {
	start := time.Now()
	defer func() { observeStore("append_sample", start, err) }()

	moves, err := json.Marshal(sample.Moves)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	const q = `INSERT INTO samples (sample_id, player_id, score, duration_seconds, moves, death_cause, ts_unix_ms)
VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (sample_id) DO NOTHING`

	if _, err = s.db.ExecContext(ctx, s.rebind(q),
		sample.SampleID,
		sample.PlayerID,
		sample.Score,
		sample.DurationSeconds,
		string(moves),
		sample.DeathCause,
		sample.TS.UnixMilli(),
	); err != nil {
		err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
		return err
	}
	return nil
}

// RecentSamples returns a player's samples oldest first; n <= 0
// returns everything.
func (s *SQLStore) RecentSamples(ctx context.Context, playerID string, n int) (samples []model.Sample, err error) {
	start := time.Now()
	defer func() { observeStore("recent_samples", start, err) }()

	const base = `SELECT sample_id, player_id, score, duration_seconds, moves, death_cause, ts_unix_ms
FROM samples WHERE player_id = ? ORDER BY id ASC`
	const windowed = `SELECT sample_id, player_id, score, duration_seconds, moves, death_cause, ts_unix_ms
FROM (SELECT * FROM samples WHERE player_id = ? ORDER BY id DESC LIMIT ?) sub ORDER BY id ASC`

	var rows *sql.Rows
	if n <= 0 {
		rows, err = s.db.QueryContext(ctx, s.rebind(base), playerID)
	} else {
		rows, err = s.db.QueryContext(ctx, s.rebind(windowed), playerID, n)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			sample model.Sample
			moves  string
			tsMS   int64
		)
		if err = rows.Scan(
			&sample.SampleID,
			&sample.PlayerID,
			&sample.Score,
			&sample.DurationSeconds,
			&moves,
			&sample.DeathCause,
			&tsMS,
		); err != nil {
			err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
			return nil, err
		}
		if moves != "" {
			if err = json.Unmarshal([]byte(moves), &sample.Moves); err != nil {
				err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
				return nil, err
			}
		}
		sample.TS = time.UnixMilli(tsMS).UTC()
		samples = append(samples, sample)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
		return nil, err
	}
	return samples, nil
}

// PlayerIDs lists every player with at least one stored sample.
func (s *SQLStore) PlayerIDs(ctx context.Context) (ids []string, err error) {
	start := time.Now()
	defer func() { observeStore("player_ids", start, err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT player_id FROM samples ORDER BY player_id`)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
			return nil, err
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
		return nil, err
	}
	return ids, nil
}

// SampleCount returns the total number of stored samples.
func (s *SQLStore) SampleCount(ctx context.Context) (count int, err error) {
	start := time.Now()
	defer func() { observeStore("sample_count", start, err) }()

	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&count); err != nil {
		err = fmt.Errorf("%w: %w", ErrQueryFailed, err)
		return 0, err
	}
	return count, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
