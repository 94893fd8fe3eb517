// Package storage persists finished-match results in SQLite. Live match
// state is never persisted; sessions are rebuilt from scratch on departure.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ResultRow is one finished match.
type ResultRow struct {
	ID         int64           `json:"id"`
	Room       string          `json:"room"`
	Winner     string          `json:"winner"` // empty for a tie
	Scores     json.RawMessage `json:"scores"`
	FinishedAt time.Time       `json:"finishedAt"`
}

// Store handles SQLite persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS match_results (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			room        TEXT NOT NULL,
			winner      TEXT NOT NULL DEFAULT '',
			scores_json TEXT NOT NULL,
			finished_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_room ON match_results(room);
	`)
	return err
}

// SaveResult appends one finished match.
func (s *Store) SaveResult(room, winner, scoresJSON string) error {
	_, err := s.db.Exec(
		"INSERT INTO match_results (room, winner, scores_json) VALUES (?, ?, ?)",
		room, winner, scoresJSON,
	)
	return err
}

// ListResults returns the most recent finished matches, newest first.
func (s *Store) ListResults(limit int) ([]ResultRow, error) {
	rows, err := s.db.Query(
		"SELECT id, room, winner, scores_json, finished_at FROM match_results ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ResultRow
	for rows.Next() {
		var rr ResultRow
		var scores string
		if err := rows.Scan(&rr.ID, &rr.Room, &rr.Winner, &scores, &rr.FinishedAt); err != nil {
			return nil, err
		}
		rr.Scores = json.RawMessage(scores)
		result = append(result, rr)
	}
	return result, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
