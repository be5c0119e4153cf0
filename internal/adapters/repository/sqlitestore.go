package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/wordle-buddy/internal/domain/result"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	group_id  TEXT    NOT NULL,
	user_id   TEXT    NOT NULL,
	period    INTEGER NOT NULL,
	score     INTEGER NOT NULL,
	matrix    TEXT    NOT NULL,
	hard_mode INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (group_id, user_id, period)
);
CREATE TABLE IF NOT EXISTS members (
	group_id TEXT NOT NULL,
	user_id  TEXT NOT NULL,
	name     TEXT NOT NULL,
	PRIMARY KEY (group_id, user_id)
);`

// SQLiteStore keeps records in a single SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	opts *options
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serialises writers; each key has one writer anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range append(pragmas, sqliteSchema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply sqlite statement %q: %w", stmt, err)
		}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &SQLiteStore{db: db, opts: o}, nil
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, group, user string, rec result.Record) (err error) {
	start := time.Now()
	defer func() { observeWrite(start, err) }()

	if err = checkKey(group, user); err != nil {
		return err
	}
	matrix, err := json.Marshal(rec.Rows)
	if err != nil {
		return fmt.Errorf("encode matrix: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO records (group_id, user_id, period, score, matrix, hard_mode)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (group_id, user_id, period) DO UPDATE SET
	score = excluded.score,
	matrix = excluded.matrix,
	hard_mode = excluded.hard_mode`,
		group, user, rec.Period, int(rec.Score), string(matrix), boolToInt64(rec.HardMode))
	if err != nil {
		return fmt.Errorf("save %s/%s/%d: %w", group, user, rec.Period, err)
	}
	return nil
}

func (s *SQLiteStore) fetch(ctx context.Context, group, user string, p int) (*result.Record, error) {
	var (
		score    int
		matrix   string
		hardMode int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT score, matrix, hard_mode FROM records WHERE group_id = ? AND user_id = ? AND period = ?`,
		group, user, p).Scan(&score, &matrix, &hardMode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%s/%d: %w", group, user, p, err)
	}
	rec := &result.Record{Period: p, Score: result.Score(score), HardMode: hardMode != 0}
	if err := json.Unmarshal([]byte(matrix), &rec.Rows); err != nil {
		return nil, fmt.Errorf("decode %s/%s/%d: %w", group, user, p, err)
	}
	return rec, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, group string, users []string, periods []int) ([]result.UserResults, error) {
	return assemble(ctx, s, s.opts, s.fetch, group, users, periods)
}

// Users implements Store.
func (s *SQLiteStore) Users(ctx context.Context, group string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM records WHERE group_id = ? ORDER BY user_id`, group)
	if err != nil {
		return nil, fmt.Errorf("list group %s: %w", group, err)
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SaveMember implements Store.
func (s *SQLiteStore) SaveMember(ctx context.Context, group, user, name string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO members (group_id, user_id, name) VALUES (?, ?, ?)
ON CONFLICT (group_id, user_id) DO UPDATE SET name = excluded.name`,
		group, user, name)
	if err != nil {
		return fmt.Errorf("save member %s/%s: %w", group, user, err)
	}
	return nil
}

// MemberName implements Store.
func (s *SQLiteStore) MemberName(ctx context.Context, group, user string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM members WHERE group_id = ? AND user_id = ?`, group, user).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("member %s in %s: %w", user, group, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
