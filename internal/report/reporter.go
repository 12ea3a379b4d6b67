package report

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trivia-quiz-service/internal/domain"
)

// GameSessionStore is the local store for per-session history.
type GameSessionStore interface {
	SaveGameSession(ctx context.Context, rec domain.GameSessionRecord) error
}

// LeaderboardStore is the remote store for ranked results.
type LeaderboardStore interface {
	AddEntry(ctx context.Context, entry domain.LeaderboardEntry) error
}

// Reporter writes a finished session to both stores concurrently. One failing store
// does not stop the other.
type Reporter struct {
	local  GameSessionStore
	remote LeaderboardStore
	logger *zap.Logger
}

func NewReporter(local GameSessionStore, remote LeaderboardStore, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{local: local, remote: remote, logger: logger}
}

func (r *Reporter) Report(ctx context.Context, tally domain.Tally) error {
	var (
		g                   errgroup.Group
		localErr, remoteErr error
	)

	if r.local != nil {
		g.Go(func() error {
			if err := r.local.SaveGameSession(ctx, tally.Record()); err != nil {
				localErr = fmt.Errorf("save game session: %w", err)
			}
			return nil
		})
	}
	if r.remote != nil {
		g.Go(func() error {
			if err := r.remote.AddEntry(ctx, tally.LeaderboardEntry()); err != nil {
				remoteErr = fmt.Errorf("add leaderboard entry: %w", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(localErr, remoteErr)
	if err != nil {
		r.logger.Warn("tally persisted partially",
			zap.String("session", tally.SessionID),
			zap.Bool("local_ok", localErr == nil),
			zap.Bool("remote_ok", remoteErr == nil),
			zap.Error(err))
		return err
	}
	r.logger.Debug("tally persisted", zap.String("session", tally.SessionID), zap.Int("category", tally.Category))
	return nil
}
