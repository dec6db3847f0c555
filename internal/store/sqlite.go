// Package store persists finished games in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/tmak94/legallynotset/internal/game"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT    NOT NULL,
	score          INTEGER NOT NULL,
	claimed        INTEGER NOT NULL,
	deck_remaining INTEGER NOT NULL,
	finished_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_score ON results (score DESC, finished_at ASC);
`

// Store records game results. It implements game.ResultRecorder.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ game.ResultRecorder = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	// SQLite serialises writers anyway; one connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	logger.Info("results store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// RecordResult stores one finished game.
func (s *Store) RecordResult(ctx context.Context, r game.Result) error {
	if s.db == nil {
		return ErrClosed
	}
	finished := r.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (session_id, score, claimed, deck_remaining, finished_at) VALUES (?, ?, ?, ?, ?)`,
		r.SessionID, r.Score, r.Claimed, r.DeckRemaining, finished.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	s.logger.Debug("result recorded",
		zap.String("session_id", r.SessionID),
		zap.Int("score", r.Score),
	)
	return nil
}

// TopScores returns up to limit results, best score first. Ties go to the
// earlier game.
func (s *Store) TopScores(ctx context.Context, limit int) ([]game.Result, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, score, claimed, deck_remaining, finished_at
		 FROM results ORDER BY score DESC, finished_at ASC, id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []game.Result
	for rows.Next() {
		var (
			r        game.Result
			finished int64
		)
		if err := rows.Scan(&r.SessionID, &r.Score, &r.Claimed, &r.DeckRemaining, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return out, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
