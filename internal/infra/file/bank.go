package file

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trivia-quiz-service/internal/domain"
)

// LoadBank reads a question bank from a YAML file. Missing ids are assigned after
// the highest explicit one, and every question is normalized and validated.
func LoadBank(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, err
	}
	return ParseBank(data)
}

func ParseBank(data []byte) (domain.Catalog, error) {
	var catalog domain.Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode question bank: %w", err)
	}

	if catalog.Settings == (domain.Settings{}) {
		catalog.Settings = domain.DefaultSettings()
	}
	if err := catalog.Settings.Validate(); err != nil {
		return domain.Catalog{}, err
	}

	if len(catalog.Categories) == 0 {
		catalog.Categories = []domain.Category{{ID: domain.DefaultCategoryID, Name: "General"}}
	}
	known := make(map[int]bool, len(catalog.Categories))
	for _, c := range catalog.Categories {
		if err := c.Validate(); err != nil {
			return domain.Catalog{}, err
		}
		known[c.ID] = true
	}

	var maxID int64
	for _, q := range catalog.Questions {
		if q.ID > maxID {
			maxID = q.ID
		}
	}
	for i := range catalog.Questions {
		q := &catalog.Questions[i]
		if q.ID == 0 {
			maxID++
			q.ID = maxID
		}
		q.Normalize()
		if err := q.Validate(); err != nil {
			return domain.Catalog{}, fmt.Errorf("question %d: %w", i+1, err)
		}
		for _, id := range q.Categories {
			if !known[id] {
				return domain.Catalog{}, fmt.Errorf("question %d: %w: unknown category %d", i+1, domain.ErrInvalidQuestion, id)
			}
		}
	}
	return catalog, nil
}
