package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func TestAdminCheckPIN(t *testing.T) {
	admin := app.NewAdminService(memory.NewCatalogStore(domain.Catalog{}), nil, "4321", nil)
	if !admin.CheckPIN("4321") {
		t.Fatalf("expected configured PIN to pass")
	}
	if admin.CheckPIN("1234") || admin.CheckPIN("") {
		t.Fatalf("expected wrong PIN to fail")
	}

	disabled := app.NewAdminService(memory.NewCatalogStore(domain.Catalog{}), nil, "", nil)
	if disabled.CheckPIN("") {
		t.Fatalf("an empty PIN must disable the admin panel")
	}
}

func TestAdminWritesInvalidateCatalogCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCatalogStore(domain.Catalog{
		Categories: []domain.Category{{ID: 1, Name: "Grade 1-2"}},
	})
	cache := memory.NewCatalogRepository(store, time.Hour)
	admin := app.NewAdminService(store, cache, "4321", nil)

	before, err := cache.GetCatalog(ctx)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if len(before.Questions) != 0 {
		t.Fatalf("expected empty bank")
	}

	created, err := admin.CreateQuestion(ctx, domain.Question{
		Text:          "  Which is a mammal?  ",
		Options:       []domain.Option{{Text: "Shark"}, {Text: "Whale"}},
		CorrectAnswer: 1,
		Points:        40,
		Categories:    []int{1},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if created.Text != "Which is a mammal?" {
		t.Fatalf("expected normalized text, got %q", created.Text)
	}

	after, _ := cache.GetCatalog(ctx)
	if len(after.Questions) != 1 {
		t.Fatalf("expected cache to be invalidated, got %d questions", len(after.Questions))
	}

	settings := domain.DefaultSettings()
	settings.ReviewMode = true
	if err := admin.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	after, _ = cache.GetCatalog(ctx)
	if !after.Settings.ReviewMode {
		t.Fatalf("expected settings change to be visible")
	}
}

func TestAdminRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	admin := app.NewAdminService(memory.NewCatalogStore(domain.Catalog{}), nil, "4321", nil)

	_, err := admin.CreateQuestion(ctx, domain.Question{
		Text:          "One option only",
		Options:       []domain.Option{{Text: "A"}},
		CorrectAnswer: 0,
		Points:        10,
		Categories:    []int{1},
	})
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question, got %v", err)
	}

	if _, err := admin.CreateCategory(ctx, domain.Category{Name: " "}); !errors.Is(err, domain.ErrInvalidCategory) {
		t.Fatalf("expected invalid category, got %v", err)
	}

	if err := admin.SaveSettings(ctx, domain.Settings{DurationSeconds: 0}); !errors.Is(err, domain.ErrInvalidSettings) {
		t.Fatalf("expected invalid settings, got %v", err)
	}

	if err := admin.DeleteQuestion(ctx, 99); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
