package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/pkg/metrics"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists snapshots in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// NewSQLiteStore opens (or creates) the database at path and migrates it to
// the latest schema. Use ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, opts: o}, nil
}

func dsn(path string) string {
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// m is not closed: closing it would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

const insertRecord = `INSERT INTO records
	(snapshot_id, position, event_id, event_label, category, swimmer_name, age, sex_category, club, time_raw, score)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Put stores snap as the newest version of its meet in one transaction.
func (s *SQLiteStore) Put(ctx context.Context, snap Snapshot) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := validSnapshot(snap); err != nil {
		return err
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = s.opts.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, meet_id, name, created_at) VALUES (?, ?, ?, ?)`,
		snap.ID.String(), snap.MeetID, snap.Name, snap.CreatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("prepare records: %w", err)
	}
	defer stmt.Close()
	for i, r := range snap.Records {
		if _, err = stmt.ExecContext(ctx,
			snap.ID.String(), i, r.EventID, r.EventLabel, string(r.Category), r.SwimmerName,
			r.Age, string(r.SexCategory), r.Club, r.TimeRaw, r.Score,
		); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if s.opts.maxVersions > 0 {
		if err = prune(ctx, tx, snap.MeetID, s.opts.maxVersions); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit put: %w", err)
	}

	var total int
	if s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&total) == nil {
		metrics.UpdateRepositorySnapshots(total)
	}
	return nil
}

func prune(ctx context.Context, tx *sql.Tx, meetID string, keep int) error {
	const stale = `SELECT id FROM snapshots WHERE meet_id = ? ORDER BY seq DESC LIMIT -1 OFFSET ?`
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE snapshot_id IN (`+stale+`)`, meetID, keep); err != nil {
		return fmt.Errorf("prune records: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id IN (`+stale+`)`, meetID, keep); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// Latest returns the newest snapshot of meetID.
func (s *SQLiteStore) Latest(ctx context.Context, meetID string) (Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var (
		snap    = Snapshot{MeetID: meetID}
		id      string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM snapshots WHERE meet_id = ? ORDER BY seq DESC LIMIT 1`, meetID,
	).Scan(&id, &snap.Name, &created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Snapshot{}, ErrNotFound
	case err != nil:
		return Snapshot{}, fmt.Errorf("query snapshot %q: %w", meetID, err)
	}
	if snap.ID, err = uuid.Parse(id); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot id %q: %w", id, err)
	}
	snap.CreatedAt = time.Unix(0, created)

	rows, err := s.db.QueryContext(ctx, `SELECT event_id, event_label, category, swimmer_name, age,
		sex_category, club, time_raw, score FROM records WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query records %q: %w", meetID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r        model.PerformanceRecord
			cat, sex string
		)
		if err := rows.Scan(&r.EventID, &r.EventLabel, &cat, &r.SwimmerName, &r.Age,
			&sex, &r.Club, &r.TimeRaw, &r.Score); err != nil {
			return Snapshot{}, fmt.Errorf("scan record: %w", err)
		}
		r.Category = model.Category(cat)
		r.SexCategory = model.SexCategory(sex)
		snap.Records = append(snap.Records, r)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("read records: %w", err)
	}
	return snap, nil
}

// List describes the newest snapshot of every meet.
func (s *SQLiteStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.meet_id, s.name, s.created_at,
			(SELECT COUNT(*) FROM records r WHERE r.snapshot_id = s.id),
			(SELECT COUNT(*) FROM snapshots v WHERE v.meet_id = s.meet_id)
		FROM snapshots s
		WHERE s.seq = (SELECT MAX(seq) FROM snapshots x WHERE x.meet_id = s.meet_id)
		ORDER BY s.meet_id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info    SnapshotInfo
			id      string
			created int64
		)
		if err := rows.Scan(&id, &info.MeetID, &info.Name, &created, &info.Records, &info.Versions); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if info.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("snapshot id %q: %w", id, err)
		}
		info.CreatedAt = time.Unix(0, created)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Count returns the number of meets, or 0 if the database cannot be read.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT meet_id) FROM snapshots`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
