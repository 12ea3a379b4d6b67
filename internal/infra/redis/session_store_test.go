package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/engine"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)

	eng, err := engine.New(engine.Config{Settings: sampleCatalog().Settings, Questions: sampleCatalog().Questions, Category: 1})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	runner := app.NewRunner("s-1", "Alice", eng, app.DefaultTiming(), nil)

	store.Put(runner)
	if got, err := mr.Get("trivia:session:s-1"); err != nil || got != "Alice" {
		t.Fatalf("expected liveness marker, got %q %v", got, err)
	}
	if r, ok := store.Get("s-1"); !ok || r != runner {
		t.Fatalf("expected local runner")
	}
	if n, err := store.LiveCount(context.Background()); err != nil || n != 1 {
		t.Fatalf("expected 1 live session, got %d %v", n, err)
	}

	store.Delete("s-1")
	if mr.Exists("trivia:session:s-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected runner to be dropped")
	}
}
