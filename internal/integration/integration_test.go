package integration

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/file"
	"trivia-quiz-service/internal/infra/postgres"
	infraredis "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/infra/sqlite"
	"trivia-quiz-service/internal/report"
)

func TestPlaySessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.OpenBun(pgURL)
	defer db.Close()
	if _, err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.Connect(ctx, pgURL, 4)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	catalogStore := postgres.NewCatalogStore(pool)
	if err := catalogStore.ImportCatalog(ctx, sampleBank(t)); err != nil {
		t.Fatalf("import catalog: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	catalogRepo := infraredis.NewCatalogRepository(redisClient, catalogStore, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)

	history, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer history.Close()
	leaderboard := postgres.NewLeaderboardStore(db)

	timing := app.DefaultTiming()
	timing.FeedbackDelay = 10 * time.Millisecond
	service := app.NewQuizService(app.Dependencies{
		Catalog:     catalogRepo,
		Sessions:    sessionStore,
		Reporter:    report.NewReporter(history, leaderboard, nil),
		Leaderboard: leaderboard,
		History:     history,
		Timing:      timing,
		NewRand:     func() *rand.Rand { return rand.New(rand.NewSource(5)) },
	})

	// Admin edits go through Postgres and invalidate the shared cache.
	admin := app.NewAdminService(catalogStore, catalogRepo, "2468", nil)
	if _, err := catalogRepo.GetCatalog(ctx); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if err := admin.DeleteCategory(ctx, 2); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	catalog, err := catalogRepo.GetCatalog(ctx)
	if err != nil {
		t.Fatalf("reload catalog: %v", err)
	}
	if len(catalog.Categories) != 1 {
		t.Fatalf("expected cache to see the deleted category, got %+v", catalog.Categories)
	}
	for _, q := range catalog.Questions {
		if !q.HasCategory(domain.DefaultCategoryID) {
			t.Fatalf("question %d lost its fallback category: %v", q.ID, q.Categories)
		}
	}

	runner, err := service.Start(ctx, "Alice", 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	updates, cancel := runner.Subscribe()
	defer cancel()

	correct := make(map[int64]int, len(catalog.Questions))
	for _, q := range catalog.Questions {
		correct[q.ID] = q.CorrectAnswer
	}
	var ended *domain.Tally
	for ended == nil {
		snap := runner.Snapshot()
		if _, err := service.Answer(ctx, runner.ID(), correct[snap.Question.ID]); err != nil {
			t.Fatalf("answer: %v", err)
		}
		ended = waitForMove(t, updates, snap.CurrentIndex)
	}
	if ended.Outcome != domain.OutcomeCompleted || ended.CorrectAnswers != len(catalog.Questions) {
		t.Fatalf("unexpected tally %+v", ended)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		top, _ := service.Leaderboard(ctx, 1, 10)
		recent, _ := service.History(ctx, 10)
		if len(top) == 1 && len(recent) == 1 {
			if top[0].Score != ended.Score || recent[0].ID != runner.ID() {
				t.Fatalf("stored results differ from tally: %+v %+v", top[0], recent[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("results were not persisted: leaderboard=%d history=%d", len(top), len(recent))
		}
		time.Sleep(50 * time.Millisecond)
	}
	if n, err := sessionStore.LiveCount(ctx); err != nil || n != 0 {
		t.Fatalf("expected no live sessions, got %d %v", n, err)
	}
}

// waitForMove blocks until the session leaves index or ends, returning the tally on end.
func waitForMove(t *testing.T, updates <-chan app.Event, index int) *domain.Tally {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-updates:
			if !ok {
				t.Fatalf("updates closed early")
			}
			if ev.Type == app.EventEnded {
				return ev.Tally
			}
			if ev.Snapshot != nil && ev.Snapshot.CurrentIndex != index {
				return nil
			}
		case <-timeout:
			t.Fatalf("timed out waiting for the session to advance")
		}
	}
}

func sampleBank(t *testing.T) domain.Catalog {
	t.Helper()
	catalog, err := file.ParseBank([]byte(`
settings:
  duration_seconds: 120
categories:
  - {id: 1, name: Grade 1-2}
  - {id: 2, name: Grade 3-4}
questions:
  - id: 1
    text: What is 2 + 2?
    options: [{text: "3"}, {text: "4"}]
    correct_answer: 1
    points: 50
    categories: [1]
  - id: 2
    text: What is 6 x 7?
    options: [{text: "42"}, {text: "36"}, {text: "48"}]
    correct_answer: 0
    points: 75
    categories: [2]
`))
	if err != nil {
		t.Fatalf("parse bank: %v", err)
	}
	return catalog
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
