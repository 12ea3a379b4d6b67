package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
)

// CatalogStore keeps questions, categories and the settings row in Postgres.
// Options are stored as JSONB and category membership as an int4 array.
type CatalogStore struct {
	pool *pgxpool.Pool
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

func (s *CatalogStore) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	categories, err := s.categories(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	questions, err := s.questions(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	return domain.Catalog{Questions: questions, Categories: categories, Settings: settings}, nil
}

func (s *CatalogStore) categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CatalogStore) questions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, image, options, correct_answer, points, categories FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			rawOptions []byte
			categories []int32
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.Image, &rawOptions, &q.CorrectAnswer, &q.Points, &categories); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of question %d: %w", q.ID, err)
		}
		q.Categories = fromInt32(categories)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *CatalogStore) settings(ctx context.Context) (domain.Settings, error) {
	var st domain.Settings
	err := s.pool.QueryRow(ctx, `
		SELECT duration_seconds, lives_enabled, lives, points_per_question, time_bonus_per_second, review_mode
		FROM settings WHERE id = 1`).
		Scan(&st.DurationSeconds, &st.LivesEnabled, &st.Lives, &st.PointsPerQuestion, &st.TimeBonusPerSecond, &st.ReviewMode)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return st, nil
}

func (s *CatalogStore) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO questions (text, image, options, correct_answer, points, categories)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		q.Text, q.Image, options, q.CorrectAnswer, q.Points, toInt32(q.Categories)).Scan(&q.ID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *CatalogStore) UpdateQuestion(ctx context.Context, q domain.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE questions SET text = $2, image = $3, options = $4, correct_answer = $5, points = $6, categories = $7
		WHERE id = $1`,
		q.ID, q.Text, q.Image, options, q.CorrectAnswer, q.Points, toInt32(q.Categories))
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *CatalogStore) DeleteQuestion(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *CatalogStore) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	if err := s.pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID); err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *CatalogStore) UpdateCategory(ctx context.Context, c domain.Category) error {
	tag, err := s.pool.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes the category from every question in the same transaction.
func (s *CatalogStore) DeleteCategory(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	_, err = tx.Exec(ctx, `
		UPDATE questions
		SET categories = CASE
			WHEN cardinality(array_remove(categories, $1)) = 0 THEN ARRAY[$2]::int[]
			ELSE array_remove(categories, $1)
		END
		WHERE $1 = ANY(categories)`, id, domain.DefaultCategoryID)
	if err != nil {
		return fmt.Errorf("strip category from questions: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *CatalogStore) SaveSettings(ctx context.Context, st domain.Settings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (id, duration_seconds, lives_enabled, lives, points_per_question, time_bonus_per_second, review_mode)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			duration_seconds = EXCLUDED.duration_seconds,
			lives_enabled = EXCLUDED.lives_enabled,
			lives = EXCLUDED.lives,
			points_per_question = EXCLUDED.points_per_question,
			time_bonus_per_second = EXCLUDED.time_bonus_per_second,
			review_mode = EXCLUDED.review_mode`,
		st.DurationSeconds, st.LivesEnabled, st.Lives, st.PointsPerQuestion, st.TimeBonusPerSecond, st.ReviewMode)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ImportCatalog replaces the stored catalog with the given one, keeping ids.
func (s *CatalogStore) ImportCatalog(ctx context.Context, catalog domain.Catalog) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE questions, categories RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate catalog: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range catalog.Categories {
		batch.Queue(`INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	}
	for _, q := range catalog.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options of question %d: %w", q.ID, err)
		}
		batch.Queue(`
			INSERT INTO questions (id, text, image, options, correct_answer, points, categories)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.ID, q.Text, q.Image, options, q.CorrectAnswer, q.Points, toInt32(q.Categories))
	}
	batch.Queue(`SELECT setval(pg_get_serial_sequence('categories', 'id'), GREATEST((SELECT MAX(id) FROM categories), 1))`)
	batch.Queue(`SELECT setval(pg_get_serial_sequence('questions', 'id'), GREATEST((SELECT MAX(id) FROM questions), 1))`)

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("import catalog: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	return s.SaveSettings(ctx, catalog.Settings)
}

func toInt32(ids []int) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}

func fromInt32(ids []int32) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
