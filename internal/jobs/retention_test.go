package jobs

import (
	"context"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func TestRetentionRunOncePrunesOldRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScoreStore()
	now := time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)

	_ = store.SaveGameSession(ctx, domain.GameSessionRecord{ID: "stale", FinishedAt: now.Add(-31 * 24 * time.Hour)})
	_ = store.SaveGameSession(ctx, domain.GameSessionRecord{ID: "fresh", FinishedAt: now.Add(-time.Hour)})

	job := NewRetention(store, 30*24*time.Hour, nil)
	job.now = func() time.Time { return now }

	removed, err := job.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	left, _ := store.Recent(ctx, 10)
	if len(left) != 1 || left[0].ID != "fresh" {
		t.Fatalf("unexpected history %+v", left)
	}
}

func TestRetentionDisabledWithoutWindow(t *testing.T) {
	store := memory.NewScoreStore()
	_ = store.SaveGameSession(context.Background(), domain.GameSessionRecord{ID: "old", FinishedAt: time.Unix(0, 0)})

	removed, err := NewRetention(store, 0, nil).RunOnce(context.Background())
	if err != nil || removed != 0 {
		t.Fatalf("expected no-op, got %d %v", removed, err)
	}
}

func TestRetentionStartRejectsBadSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := NewRetention(memory.NewScoreStore(), time.Hour, nil)
	if err := job.Start(ctx, "every tuesday-ish"); err == nil {
		t.Fatalf("expected invalid cron spec to fail")
	}
	if err := job.Start(ctx, "@hourly"); err != nil {
		t.Fatalf("start: %v", err)
	}
}
