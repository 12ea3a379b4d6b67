package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// ScoreStore keeps game-session history and leaderboard rows in memory.
// It stands in for both the local and the remote store when no database is configured.
type ScoreStore struct {
	mu          sync.RWMutex
	history     []domain.GameSessionRecord
	leaderboard []domain.LeaderboardEntry
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

func (s *ScoreStore) SaveGameSession(_ context.Context, rec domain.GameSessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, rec)
	return nil
}

func (s *ScoreStore) Recent(_ context.Context, limit int) ([]domain.GameSessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GameSessionRecord, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.history[i])
	}
	return out, nil
}

// PruneBefore drops history finished before cutoff and reports how many rows went.
func (s *ScoreStore) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.history[:0]
	for _, rec := range s.history {
		if !rec.FinishedAt.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	removed := int64(len(s.history) - len(kept))
	s.history = kept
	return removed, nil
}

func (s *ScoreStore) AddEntry(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboard = append(s.leaderboard, entry)
	return nil
}

func (s *ScoreStore) Top(_ context.Context, category, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.leaderboard))
	for _, e := range s.leaderboard {
		if e.Category == category {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].TimeSpentSeconds != entries[j].TimeSpentSeconds {
			return entries[i].TimeSpentSeconds < entries[j].TimeSpentSeconds
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
