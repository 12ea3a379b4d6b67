package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"trivia-quiz-service/internal/domain"
)

type leaderboardRow struct {
	bun.BaseModel `bun:"table:leaderboard"`

	ID               int64     `bun:"id,pk,autoincrement"`
	PlayerName       string    `bun:"player_name,notnull"`
	Score            int       `bun:"score,notnull"`
	CorrectAnswers   int       `bun:"correct_answers,notnull"`
	TimeSpentSeconds int       `bun:"time_spent_seconds,notnull"`
	Category         int       `bun:"category,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
}

// LeaderboardStore is the shared ranking of finished sessions.
type LeaderboardStore struct {
	db *bun.DB
}

func NewLeaderboardStore(db *bun.DB) *LeaderboardStore {
	return &LeaderboardStore{db: db}
}

func (s *LeaderboardStore) AddEntry(ctx context.Context, entry domain.LeaderboardEntry) error {
	row := leaderboardRow{
		PlayerName:       entry.PlayerName,
		Score:            entry.Score,
		CorrectAnswers:   entry.CorrectAnswers,
		TimeSpentSeconds: entry.TimeSpentSeconds,
		Category:         entry.Category,
		CreatedAt:        entry.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}
	return nil
}

// Top ranks by score, then by the faster time, then by who got there first.
func (s *LeaderboardStore) Top(ctx context.Context, category, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("category = ?", category).
		OrderExpr("score DESC, time_spent_seconds ASC, created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}

	out := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.LeaderboardEntry{
			PlayerName:       row.PlayerName,
			Score:            row.Score,
			CorrectAnswers:   row.CorrectAnswers,
			TimeSpentSeconds: row.TimeSpentSeconds,
			Category:         row.Category,
			CreatedAt:        row.CreatedAt,
		})
	}
	return out, nil
}
