package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"trivia-quiz-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_sessions (
	id                 TEXT PRIMARY KEY,
	player_name        TEXT NOT NULL,
	score              INTEGER NOT NULL,
	questions_answered INTEGER NOT NULL,
	correct_answers    INTEGER NOT NULL,
	time_spent_seconds INTEGER NOT NULL,
	category           INTEGER NOT NULL,
	outcome            TEXT NOT NULL,
	finished_at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_sessions_finished_at ON game_sessions(finished_at);`

// GameSessionStore keeps the local history of finished sessions in a SQLite file.
// finished_at is stored as unix milliseconds.
type GameSessionStore struct {
	db *sql.DB
}

// Open creates the database file and its directory when missing.
func Open(ctx context.Context, path string) (*GameSessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &GameSessionStore{db: db}, nil
}

func (s *GameSessionStore) Close() error {
	return s.db.Close()
}

func (s *GameSessionStore) SaveGameSession(ctx context.Context, rec domain.GameSessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO game_sessions
			(id, player_name, score, questions_answered, correct_answers, time_spent_seconds, category, outcome, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PlayerName, rec.Score, rec.QuestionsAnswered, rec.CorrectAnswers,
		rec.TimeSpentSeconds, rec.Category, string(rec.Outcome), rec.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert game session: %w", err)
	}
	return nil
}

// Recent lists records newest first.
func (s *GameSessionStore) Recent(ctx context.Context, limit int) ([]domain.GameSessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, player_name, score, questions_answered, correct_answers, time_spent_seconds, category, outcome, finished_at
		FROM game_sessions ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query game sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.GameSessionRecord
	for rows.Next() {
		var (
			rec      domain.GameSessionRecord
			outcome  string
			finished int64
		)
		if err := rows.Scan(&rec.ID, &rec.PlayerName, &rec.Score, &rec.QuestionsAnswered, &rec.CorrectAnswers,
			&rec.TimeSpentSeconds, &rec.Category, &outcome, &finished); err != nil {
			return nil, fmt.Errorf("scan game session: %w", err)
		}
		rec.Outcome = domain.Outcome(outcome)
		rec.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PruneBefore deletes records finished before cutoff and reports how many went.
func (s *GameSessionStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM game_sessions WHERE finished_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune game sessions: %w", err)
	}
	return res.RowsAffected()
}
