package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/engine"
)

// CatalogRepository serves the read-only catalog snapshot a session is built from.
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
}

// SessionRepository tracks live sessions (in-memory, Redis, etc).
type SessionRepository interface {
	Put(r *Runner)
	Get(sessionID string) (*Runner, bool)
	Delete(sessionID string)
}

// ScoreReporter persists a finished session.
type ScoreReporter interface {
	Report(ctx context.Context, tally domain.Tally) error
}

// LeaderboardReader ranks stored results per category.
type LeaderboardReader interface {
	Top(ctx context.Context, category, limit int) ([]domain.LeaderboardEntry, error)
}

// HistoryReader lists locally stored game sessions.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]domain.GameSessionRecord, error)
}

// Dependencies wires a QuizService.
type Dependencies struct {
	Catalog     CatalogRepository
	Sessions    SessionRepository
	Reporter    ScoreReporter
	Leaderboard LeaderboardReader
	History     HistoryReader
	Logger      *zap.Logger
	Timing      Timing
	// NewRand seeds the per-session shuffle; defaults to a time-seeded source.
	NewRand func() *rand.Rand
}

// QuizService contains the player-facing quiz use cases.
type QuizService struct {
	catalog     CatalogRepository
	sessions    SessionRepository
	reporter    ScoreReporter
	leaderboard LeaderboardReader
	history     HistoryReader
	logger      *zap.Logger
	timing      Timing
	newRand     func() *rand.Rand
}

func NewQuizService(deps Dependencies) *QuizService {
	s := &QuizService{
		catalog:     deps.Catalog,
		sessions:    deps.Sessions,
		reporter:    deps.Reporter,
		leaderboard: deps.Leaderboard,
		history:     deps.History,
		logger:      deps.Logger,
		timing:      deps.Timing,
		newRand:     deps.NewRand,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.newRand == nil {
		s.newRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	if s.timing.ReportTimeout <= 0 {
		s.timing.ReportTimeout = 10 * time.Second
	}
	return s
}

// Start builds a session from a fresh catalog snapshot and starts its clock.
func (s *QuizService) Start(ctx context.Context, playerName string, category int) (*Runner, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, domain.ErrPlayerNameRequired
	}

	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	eng, err := engine.New(engine.Config{
		Settings:  catalog.Settings,
		Questions: catalog.Questions,
		Category:  category,
		Rand:      s.newRand(),
	})
	if err != nil {
		return nil, err
	}
	if err := eng.Start(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	if eng.FellBack() {
		s.logger.Info("category has no questions, using full bank",
			zap.String("session", id), zap.Int("category", category), zap.Int("questions", eng.Len()))
	}

	runner := NewRunner(id, name, eng, s.timing, s.finish)
	s.sessions.Put(runner)
	runner.Start()
	s.logger.Info("session started",
		zap.String("session", id), zap.String("player", name), zap.Int("category", category),
		zap.String("mode", string(eng.Mode())))
	return runner, nil
}

func (s *QuizService) Answer(ctx context.Context, sessionID string, option int) (engine.Feedback, error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return engine.Feedback{}, err
	}
	return runner.Answer(ctx, option)
}

func (s *QuizService) Jump(ctx context.Context, sessionID string, index int) error {
	runner, err := s.runner(sessionID)
	if err != nil {
		return err
	}
	return runner.Jump(ctx, index)
}

func (s *QuizService) OpenReview(ctx context.Context, sessionID string) error {
	runner, err := s.runner(sessionID)
	if err != nil {
		return err
	}
	return runner.OpenReview(ctx)
}

func (s *QuizService) Submit(ctx context.Context, sessionID string) error {
	runner, err := s.runner(sessionID)
	if err != nil {
		return err
	}
	return runner.Submit(ctx)
}

// Quit abandons a session. Unknown or finished sessions are ignored.
func (s *QuizService) Quit(ctx context.Context, sessionID string) {
	runner, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	_ = runner.Abandon(ctx)
}

// Subscribe returns a channel that receives state updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan Event, func(), error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := runner.Subscribe()
	return ch, cancel, nil
}

func (s *QuizService) Snapshot(sessionID string) (engine.Snapshot, error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return runner.Snapshot(), nil
}

// Leaderboard returns the best results recorded for a category.
func (s *QuizService) Leaderboard(ctx context.Context, category, limit int) ([]domain.LeaderboardEntry, error) {
	if s.leaderboard == nil {
		return nil, nil
	}
	return s.leaderboard.Top(ctx, category, clampLimit(limit))
}

// History returns the most recent locally stored sessions.
func (s *QuizService) History(ctx context.Context, limit int) ([]domain.GameSessionRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Recent(ctx, clampLimit(limit))
}

// Catalog exposes the cached catalog for read-only endpoints.
func (s *QuizService) Catalog(ctx context.Context) (domain.Catalog, error) {
	return s.catalog.GetCatalog(ctx)
}

func (s *QuizService) runner(sessionID string) (*Runner, error) {
	runner, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return runner, nil
}

// finish tears the session down and reports the tally. It runs off the session loop,
// so a slow or failing store never touches the score already shown to the player.
func (s *QuizService) finish(tally domain.Tally) error {
	s.sessions.Delete(tally.SessionID)
	s.logger.Info("session ended",
		zap.String("session", tally.SessionID), zap.String("outcome", string(tally.Outcome)),
		zap.Int("score", tally.Score), zap.Int("answered", tally.QuestionsAnswered),
		zap.Int("correct", tally.CorrectAnswers), zap.Int("seconds", tally.TimeSpentSeconds))

	if tally.Outcome == domain.OutcomeAbandoned || s.reporter == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timing.ReportTimeout)
	defer cancel()
	if err := s.reporter.Report(ctx, tally); err != nil {
		s.logger.Warn("score report failed", zap.String("session", tally.SessionID), zap.Error(err))
		return err
	}
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 100:
		return 100
	default:
		return limit
	}
}
