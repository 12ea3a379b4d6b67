package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/file"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/postgres"
	infraredis "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/infra/sqlite"
	"trivia-quiz-service/internal/jobs"
	"trivia-quiz-service/internal/logger"
	"trivia-quiz-service/internal/report"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type catalogBackend interface {
	memory.CatalogLoader
	app.CatalogWriter
}

type catalogCache interface {
	app.CatalogRepository
	app.CacheInvalidator
}

type sessionRegistry interface {
	app.SessionRepository
	transport.LiveCounter
}

type historyStore interface {
	report.GameSessionStore
	app.HistoryReader
	jobs.Pruner
}

type leaderboardStore interface {
	report.LeaderboardStore
	app.LeaderboardReader
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var (
		backend catalogBackend
		board   leaderboardStore
	)
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()
		db := postgres.OpenBun(cfg.Postgres.URL)
		defer db.Close()

		backend = postgres.NewCatalogStore(pool)
		board = postgres.NewLeaderboardStore(db)
	} else {
		backend = memory.NewCatalogStore(loadSeedBank(cfg.Catalog.SeedFile, log))
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
	}

	var (
		cache    catalogCache
		sessions sessionRegistry
	)
	if redisClient != nil {
		cache = infraredis.NewCatalogRepository(redisClient, backend, cfg.Catalog.TTL)
		sessions = infraredis.NewSessionStore(redisClient, cfg.Redis.TTL)
	} else {
		cache = memory.NewCatalogRepository(backend, cfg.Catalog.TTL)
		sessions = memory.NewSessionStore()
	}

	var history historyStore
	if cfg.SQLite.Path != "" {
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		history = store
	} else {
		history = memory.NewScoreStore()
	}
	if board == nil {
		board = memory.NewScoreStore()
	}

	timing := app.DefaultTiming()
	if cfg.Server.FeedbackDelay > 0 {
		timing.FeedbackDelay = cfg.Server.FeedbackDelay
	}
	if cfg.Server.AckDelay > 0 {
		timing.AckDelay = cfg.Server.AckDelay
	}

	quiz := app.NewQuizService(app.Dependencies{
		Catalog:     cache,
		Sessions:    sessions,
		Reporter:    report.NewReporter(history, board, log.Named("report")),
		Leaderboard: board,
		History:     history,
		Logger:      log.Named("quiz"),
		Timing:      timing,
	})
	admin := app.NewAdminService(backend, cache, cfg.Admin.PIN, log.Named("admin"))
	if cfg.Admin.PIN == "" {
		log.Warn("ADMIN_PIN not set, admin endpoints will reject every login")
	}

	if cfg.History.PruneSchedule != "" {
		retention := jobs.NewRetention(history, cfg.History.Retention, log.Named("retention"))
		if err := retention.Start(ctx, cfg.History.PruneSchedule); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.RouterConfig{
			Quiz:        quiz,
			Admin:       admin,
			AdminSecret: cfg.Admin.SessionSecret,
			Live:        sessions,
			Logger:      log.Named("http"),
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadSeedBank falls back to an empty catalog so the server can still start and
// be filled through the admin API.
func loadSeedBank(path string, log *zap.Logger) domain.Catalog {
	if path == "" {
		return domain.Catalog{}
	}
	catalog, err := file.LoadBank(path)
	if err != nil {
		log.Warn("question bank not loaded", zap.String("file", path), zap.Error(err))
		return domain.Catalog{}
	}
	log.Info("question bank loaded", zap.String("file", path), zap.Int("questions", len(catalog.Questions)))
	return catalog
}
