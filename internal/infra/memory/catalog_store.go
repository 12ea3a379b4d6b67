package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// CatalogStore is a writable in-memory catalog, seeded from a file or used in tests.
type CatalogStore struct {
	mu             sync.RWMutex
	questions      map[int64]domain.Question
	categories     map[int]domain.Category
	settings       domain.Settings
	nextQuestionID int64
	nextCategoryID int
}

func NewCatalogStore(seed domain.Catalog) *CatalogStore {
	s := &CatalogStore{
		questions:  make(map[int64]domain.Question, len(seed.Questions)),
		categories: make(map[int]domain.Category, len(seed.Categories)),
		settings:   seed.Settings,
	}
	if s.settings == (domain.Settings{}) {
		s.settings = domain.DefaultSettings()
	}
	for _, c := range seed.Categories {
		s.categories[c.ID] = c
		if c.ID > s.nextCategoryID {
			s.nextCategoryID = c.ID
		}
	}
	for _, q := range seed.Questions {
		if q.ID > s.nextQuestionID {
			s.nextQuestionID = q.ID
		}
	}
	for _, q := range seed.Questions {
		q.Normalize()
		if q.ID == 0 {
			s.nextQuestionID++
			q.ID = s.nextQuestionID
		}
		s.questions[q.ID] = cloneQuestion(q)
	}
	return s
}

func (s *CatalogStore) LoadCatalog(context.Context) (domain.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	catalog := domain.Catalog{
		Questions:  make([]domain.Question, 0, len(s.questions)),
		Categories: make([]domain.Category, 0, len(s.categories)),
		Settings:   s.settings,
	}
	for _, q := range s.questions {
		catalog.Questions = append(catalog.Questions, cloneQuestion(q))
	}
	for _, c := range s.categories {
		catalog.Categories = append(catalog.Categories, c)
	}
	sort.Slice(catalog.Questions, func(i, j int) bool { return catalog.Questions[i].ID < catalog.Questions[j].ID })
	sort.Slice(catalog.Categories, func(i, j int) bool { return catalog.Categories[i].ID < catalog.Categories[j].ID })
	return catalog, nil
}

func (s *CatalogStore) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextQuestionID++
	q.ID = s.nextQuestionID
	s.questions[q.ID] = cloneQuestion(q)
	return cloneQuestion(q), nil
}

func (s *CatalogStore) UpdateQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.questions[q.ID] = cloneQuestion(q)
	return nil
}

func (s *CatalogStore) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *CatalogStore) CreateCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCategoryID++
	c.ID = s.nextCategoryID
	s.categories[c.ID] = c
	return c, nil
}

func (s *CatalogStore) UpdateCategory(_ context.Context, c domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	s.categories[c.ID] = c
	return nil
}

func (s *CatalogStore) DeleteCategory(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(s.categories, id)

	for qid, q := range s.questions {
		if !q.HasCategory(id) {
			continue
		}
		kept := make([]int, 0, len(q.Categories))
		for _, c := range q.Categories {
			if c != id {
				kept = append(kept, c)
			}
		}
		q.Categories = kept
		q.Normalize()
		s.questions[qid] = q
	}
	return nil
}

func (s *CatalogStore) SaveSettings(_ context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]domain.Option(nil), q.Options...)
	q.Categories = append([]int(nil), q.Categories...)
	return q
}
