package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestCatalogStoreDeleteCategoryFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(sampleCatalog())

	if err := store.DeleteCategory(ctx, 2); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	catalog, _ := store.LoadCatalog(ctx)
	if len(catalog.Categories) != 1 {
		t.Fatalf("expected 1 category left, got %d", len(catalog.Categories))
	}
	for _, q := range catalog.Questions {
		if q.ID == 2 && (len(q.Categories) != 1 || q.Categories[0] != domain.DefaultCategoryID) {
			t.Fatalf("expected orphaned question to fall back to default, got %v", q.Categories)
		}
	}

	if err := store.DeleteCategory(ctx, 2); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogStoreQuestionWrites(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(domain.Catalog{})

	created, err := store.CreateQuestion(ctx, domain.Question{
		Text:          "Largest planet?",
		Options:       []domain.Option{{Text: "Mars"}, {Text: "Jupiter"}},
		CorrectAnswer: 1,
		Points:        50,
		Categories:    []int{1},
	})
	if err != nil || created.ID != 1 {
		t.Fatalf("create: %+v %v", created, err)
	}

	created.Text = "Largest planet in the solar system?"
	if err := store.UpdateQuestion(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	catalog, _ := store.LoadCatalog(ctx)
	if catalog.Questions[0].Text != created.Text {
		t.Fatalf("update not applied")
	}
	if catalog.Settings.DurationSeconds != domain.DefaultSettings().DurationSeconds {
		t.Fatalf("expected default settings, got %+v", catalog.Settings)
	}

	// Mutating a loaded snapshot must not leak into the store.
	catalog.Questions[0].Options[0].Text = "Pluto"
	again, _ := store.LoadCatalog(ctx)
	if again.Questions[0].Options[0].Text != "Mars" {
		t.Fatalf("store shares option slices with callers")
	}

	if err := store.DeleteQuestion(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.UpdateQuestion(ctx, created); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestScoreStoreRanksAndPrunes(t *testing.T) {
	ctx := context.Background()
	store := NewScoreStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_ = store.AddEntry(ctx, domain.LeaderboardEntry{PlayerName: "slow", Score: 100, TimeSpentSeconds: 90, Category: 1, CreatedAt: base})
	_ = store.AddEntry(ctx, domain.LeaderboardEntry{PlayerName: "fast", Score: 100, TimeSpentSeconds: 30, Category: 1, CreatedAt: base})
	_ = store.AddEntry(ctx, domain.LeaderboardEntry{PlayerName: "top", Score: 150, TimeSpentSeconds: 200, Category: 1, CreatedAt: base})
	_ = store.AddEntry(ctx, domain.LeaderboardEntry{PlayerName: "other", Score: 500, Category: 2, CreatedAt: base})

	top, _ := store.Top(ctx, 1, 2)
	if len(top) != 2 || top[0].PlayerName != "top" || top[1].PlayerName != "fast" {
		t.Fatalf("unexpected ranking %+v", top)
	}

	_ = store.SaveGameSession(ctx, domain.GameSessionRecord{ID: "old", FinishedAt: base.Add(-48 * time.Hour)})
	_ = store.SaveGameSession(ctx, domain.GameSessionRecord{ID: "new", FinishedAt: base})
	removed, _ := store.PruneBefore(ctx, base.Add(-24*time.Hour))
	if removed != 1 {
		t.Fatalf("expected 1 pruned row, got %d", removed)
	}
	recent, _ := store.Recent(ctx, 10)
	if len(recent) != 1 || recent[0].ID != "new" {
		t.Fatalf("unexpected history %+v", recent)
	}
}
