package app

import (
	"context"
	"crypto/subtle"
	"fmt"

	"go.uber.org/zap"

	"trivia-quiz-service/internal/domain"
)

// CatalogWriter stores admin edits to the catalog.
type CatalogWriter interface {
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, q domain.Question) error
	DeleteQuestion(ctx context.Context, id int64) error
	CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	UpdateCategory(ctx context.Context, c domain.Category) error
	// DeleteCategory also strips the category from every question; a question left
	// without categories falls back to the default one.
	DeleteCategory(ctx context.Context, id int) error
	SaveSettings(ctx context.Context, s domain.Settings) error
}

// CacheInvalidator drops cached catalog snapshots after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// AdminService contains the PIN-gated catalog management use cases.
// Running sessions keep the snapshot they started with.
type AdminService struct {
	writer CatalogWriter
	cache  CacheInvalidator
	pin    string
	logger *zap.Logger
}

func NewAdminService(writer CatalogWriter, cache CacheInvalidator, pin string, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{writer: writer, cache: cache, pin: pin, logger: logger}
}

// CheckPIN compares in constant time. An unset PIN disables the admin panel.
func (a *AdminService) CheckPIN(pin string) bool {
	if a.pin == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.pin), []byte(pin)) == 1
}

func (a *AdminService) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}
	created, err := a.writer.CreateQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	a.invalidate(ctx)
	return created, nil
}

func (a *AdminService) UpdateQuestion(ctx context.Context, q domain.Question) error {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return err
	}
	if err := a.writer.UpdateQuestion(ctx, q); err != nil {
		return fmt.Errorf("update question %d: %w", q.ID, err)
	}
	a.invalidate(ctx)
	return nil
}

func (a *AdminService) DeleteQuestion(ctx context.Context, id int64) error {
	if err := a.writer.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("delete question %d: %w", id, err)
	}
	a.invalidate(ctx)
	return nil
}

func (a *AdminService) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	if err := c.Validate(); err != nil {
		return domain.Category{}, err
	}
	created, err := a.writer.CreateCategory(ctx, c)
	if err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	a.invalidate(ctx)
	return created, nil
}

func (a *AdminService) UpdateCategory(ctx context.Context, c domain.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := a.writer.UpdateCategory(ctx, c); err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	a.invalidate(ctx)
	return nil
}

func (a *AdminService) DeleteCategory(ctx context.Context, id int) error {
	if err := a.writer.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	a.invalidate(ctx)
	return nil
}

func (a *AdminService) SaveSettings(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := a.writer.SaveSettings(ctx, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	a.invalidate(ctx)
	return nil
}

func (a *AdminService) invalidate(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx); err != nil {
		a.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
