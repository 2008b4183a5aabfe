package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// SQLiteStore implements Store and Directory on a single sqlite database.
// Writes are serialized by a mutex; sqlite handles one writer anyway and the
// tracker has a single scheduler instance.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations from migrationsDir.
func OpenSQLite(path, migrationsDir string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("prepare migration driver: %w", err)
	}
	migrator, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "tmwrr", driver)
	if err != nil {
		return nil, fmt.Errorf("prepare migrator: %w", err)
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Exists reports whether a snapshot row exists for (category, createdAt).
func (s *SQLiteStore) Exists(ctx context.Context, cat scores.Category, createdAt time.Time) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM snapshots WHERE category = ? AND created_at = ?`,
		cat.String(), createdAt.Unix(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check snapshot existence: %w", err)
	}
	return true, nil
}

// Save persists the snapshot with its records and points in one
// transaction. A uniqueness violation on (category, created_at) maps to
// ErrConflict.
func (s *SQLiteStore) Save(ctx context.Context, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, category, created_at, published_at, no_changes, player_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID.String(), snap.Category.String(), snap.CreatedAt.Unix(),
		snap.PublishedAt.Unix(), snap.NoChanges, snap.PlayerCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}

	for _, r := range snap.Records {
		var ghost *string
		if r.Ghost != nil {
			ghost = &r.Ghost.URI
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (snapshot_id, map_uid, ord, rank, score, login, ghost_uri)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			snap.ID.String(), r.MapUID, r.Order, r.Rank, r.Score, r.Player.Login, ghost,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	for _, p := range snap.Points {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO points (snapshot_id, rank, points) VALUES (?, ?, ?)`,
			snap.ID.String(), p.Rank, p.Points,
		)
		if err != nil {
			return fmt.Errorf("insert point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// LatestRecords returns the records of the most recent snapshot carrying
// data for the category, scoped to mapUID when non-empty.
func (s *SQLiteStore) LatestRecords(ctx context.Context, cat scores.Category, mapUID string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.ord, r.rank, r.score, r.map_uid, r.login, COALESCE(p.nickname, ''), r.ghost_uri
		 FROM records r
		 JOIN snapshots s ON s.id = r.snapshot_id
		 LEFT JOIN players p ON p.login = r.login
		 WHERE s.category = ? AND r.map_uid = ?
		   AND s.created_at = (
		     SELECT MAX(s2.created_at)
		     FROM snapshots s2
		     JOIN records r2 ON r2.snapshot_id = s2.id
		     WHERE s2.category = ? AND r2.map_uid = ?
		   )
		 ORDER BY r.ord`,
		cat.String(), mapUID, cat.String(), mapUID,
	)
	if err != nil {
		return nil, fmt.Errorf("query latest records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// LatestSnapshot returns the most recent snapshot for the category with its
// records and points loaded.
func (s *SQLiteStore) LatestSnapshot(ctx context.Context, cat scores.Category) (*model.Snapshot, error) {
	var (
		id                     string
		createdAt, publishedAt int64
		snap                   model.Snapshot
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, published_at, no_changes, player_count
		 FROM snapshots WHERE category = ?
		 ORDER BY created_at DESC LIMIT 1`,
		cat.String(),
	).Scan(&id, &createdAt, &publishedAt, &snap.NoChanges, &snap.PlayerCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	snap.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot id: %w", err)
	}
	snap.Category = cat
	snap.CreatedAt = time.Unix(createdAt, 0).UTC()
	snap.PublishedAt = time.Unix(publishedAt, 0).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.ord, r.rank, r.score, r.map_uid, r.login, COALESCE(p.nickname, ''), r.ghost_uri
		 FROM records r
		 LEFT JOIN players p ON p.login = r.login
		 WHERE r.snapshot_id = ?
		 ORDER BY r.map_uid, r.ord`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot records: %w", err)
	}
	defer rows.Close()
	if snap.Records, err = scanRecords(rows); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx,
		`SELECT rank, points FROM points WHERE snapshot_id = ? ORDER BY rank`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot points: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var p model.Point
		if err := prows.Scan(&p.Rank, &p.Points); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		snap.Points = append(snap.Points, p)
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}

	return &snap, nil
}

// ResolvePlayers upserts the referenced players, refreshing nicknames.
func (s *SQLiteStore) ResolvePlayers(ctx context.Context, players []model.PlayerRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin player resolution: %w", err)
	}
	defer tx.Rollback()

	for _, p := range players {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO players (login, nickname) VALUES (?, ?)
			 ON CONFLICT (login) DO UPDATE SET nickname = excluded.nickname
			 WHERE excluded.nickname != ''`,
			p.Login, p.Nickname,
		)
		if err != nil {
			return fmt.Errorf("resolve player %s: %w", p.Login, err)
		}
	}
	return tx.Commit()
}

// ResolveMaps upserts the referenced maps.
func (s *SQLiteStore) ResolveMaps(ctx context.Context, maps []model.MapRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin map resolution: %w", err)
	}
	defer tx.Rollback()

	for _, m := range maps {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO maps (uid, name, mode) VALUES (?, ?, ?)
			 ON CONFLICT (uid) DO UPDATE SET name = excluded.name, mode = excluded.mode
			 WHERE excluded.name != ''`,
			m.UID, m.Name, int(m.Mode),
		)
		if err != nil {
			return fmt.Errorf("resolve map %s: %w", m.UID, err)
		}
	}
	return tx.Commit()
}

func scanRecords(rows *sql.Rows) ([]model.Record, error) {
	var records []model.Record
	for rows.Next() {
		var (
			r     model.Record
			ghost sql.NullString
		)
		if err := rows.Scan(&r.Order, &r.Rank, &r.Score, &r.MapUID,
			&r.Player.Login, &r.Player.Nickname, &ghost); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if ghost.Valid {
			r.Ghost = &model.GhostRef{URI: ghost.String}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
