// Package store provides persistence for reward state: achievements, clear
// history, and versioned opaque state blobs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/courtloop/challenge-engine/internal/rewards"
)

// stateVersion is written into every state blob envelope so future format
// changes can detect and migrate old blobs instead of misreading them.
const stateVersion = 1

// SQLite implements reward persistence on a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	return &SQLite{db: db}, nil
}

// NewFromDB wraps an existing sql.DB.
func NewFromDB(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Migrate creates the schema. Safe to run repeatedly.
func (s *SQLite) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			challenge_id TEXT NOT NULL,
			condition TEXT NOT NULL,
			points TEXT NOT NULL DEFAULT '0',
			earned_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_challenge ON achievements(challenge_id)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_earned ON achievements(earned_at)`,
		`CREATE TABLE IF NOT EXISTS clears (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			challenge_id TEXT NOT NULL,
			week INTEGER NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			percentile REAL NOT NULL DEFAULT 0,
			first_clear INTEGER NOT NULL DEFAULT 0,
			high_score INTEGER NOT NULL DEFAULT 0,
			perfect_clear INTEGER NOT NULL DEFAULT 0,
			cleared_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clears_week ON clears(week)`,
		`CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveAchievement inserts a single achievement row. Timestamps are stored as
// ISO-8601 strings so the on-disk format round-trips exactly.
func (s *SQLite) SaveAchievement(ctx context.Context, a rewards.Achievement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO achievements (id, challenge_id, condition, points, earned_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.ChallengeID, a.Condition, a.Points.String(), a.EarnedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store: save achievement: %w", err)
	}
	return nil
}

// ListAchievements returns every achievement ordered oldest first.
func (s *SQLite) ListAchievements(ctx context.Context) ([]rewards.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, challenge_id, condition, points, earned_at
		 FROM achievements ORDER BY earned_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list achievements: %w", err)
	}
	defer rows.Close()

	var out []rewards.Achievement
	for rows.Next() {
		var a rewards.Achievement
		var points, earnedAt string
		if err := rows.Scan(&a.ID, &a.ChallengeID, &a.Condition, &points, &earnedAt); err != nil {
			return nil, fmt.Errorf("store: scan achievement: %w", err)
		}
		a.Points, err = decimal.NewFromString(points)
		if err != nil {
			return nil, fmt.Errorf("store: achievement %s has bad points %q: %w", a.ID, points, err)
		}
		a.EarnedAt, err = time.Parse(time.RFC3339Nano, earnedAt)
		if err != nil {
			return nil, fmt.Errorf("store: achievement %s has bad timestamp %q: %w", a.ID, earnedAt, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveClear appends a clear record.
func (s *SQLite) SaveClear(ctx context.Context, c rewards.ChallengeClear) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clears (challenge_id, week, score, percentile, first_clear, high_score, perfect_clear, cleared_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ChallengeID, c.Week, c.Score, c.Percentile,
		boolToInt(c.FirstClear), boolToInt(c.HighScore), boolToInt(c.PerfectClear),
		c.ClearedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store: save clear: %w", err)
	}
	return nil
}

// ListClears returns clear records newest week first with the total count.
// A limit of 0 returns everything.
func (s *SQLite) ListClears(ctx context.Context, limit, offset int) ([]rewards.ChallengeClear, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clears").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count clears: %w", err)
	}

	query := `SELECT challenge_id, week, score, percentile, first_clear, high_score, perfect_clear, cleared_at
		 FROM clears ORDER BY week DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list clears: %w", err)
	}
	defer rows.Close()

	var out []rewards.ChallengeClear
	for rows.Next() {
		var c rewards.ChallengeClear
		var firstClear, highScore, perfectClear int
		var clearedAt string
		if err := rows.Scan(&c.ChallengeID, &c.Week, &c.Score, &c.Percentile, &firstClear, &highScore, &perfectClear, &clearedAt); err != nil {
			return nil, 0, fmt.Errorf("store: scan clear: %w", err)
		}
		c.FirstClear = firstClear == 1
		c.HighScore = highScore == 1
		c.PerfectClear = perfectClear == 1
		c.ClearedAt, err = time.Parse(time.RFC3339Nano, clearedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("store: clear has bad timestamp %q: %w", clearedAt, err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// stateEnvelope versions opaque state blobs on disk.
type stateEnvelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// SaveState serializes v as a versioned JSON blob under key, replacing any
// previous value.
func (s *SQLite) SaveState(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal state %q: %w", key, err)
	}
	blob, err := json.Marshal(stateEnvelope{Version: stateVersion, Data: data})
	if err != nil {
		return fmt.Errorf("store: marshal envelope %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO app_state (key, version, data, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET version = excluded.version, data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		key, stateVersion, string(blob),
	)
	if err != nil {
		return fmt.Errorf("store: save state %q: %w", key, err)
	}
	return nil
}

// LoadState deserializes the blob under key into out. A missing key or a
// blob that fails to parse reports found=false without an error: opaque
// state is best-effort and callers fall back to empty defaults.
func (s *SQLite) LoadState(ctx context.Context, key string, out any) (found bool, err error) {
	var blob string
	err = s.db.QueryRowContext(ctx, "SELECT data FROM app_state WHERE key = ?", key).Scan(&blob)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: load state %q: %w", key, err)
	}
	var env stateEnvelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return false, nil
	}
	if env.Version != stateVersion {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, nil
	}
	return true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
