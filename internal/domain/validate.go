package domain

import (
	"fmt"
	"strings"
)

// Validate checks the structural rules a question must satisfy before it can be stored.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidQuestion)
	}
	if len(q.Options) < MinOptions || len(q.Options) > MaxOptions {
		return fmt.Errorf("%w: need %d-%d options, got %d", ErrInvalidQuestion, MinOptions, MaxOptions, len(q.Options))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" && opt.Image == "" {
			return fmt.Errorf("%w: option %d is empty", ErrInvalidQuestion, i)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("%w: correct answer %d out of range", ErrInvalidQuestion, q.CorrectAnswer)
	}
	if q.Points <= 0 {
		return fmt.Errorf("%w: points must be positive", ErrInvalidQuestion)
	}
	if len(q.Categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidQuestion)
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	return nil
}

func (s Settings) Validate() error {
	switch {
	case s.DurationSeconds <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidSettings)
	case s.LivesEnabled && s.Lives <= 0:
		return fmt.Errorf("%w: lives must be positive when enabled", ErrInvalidSettings)
	case s.PointsPerQuestion < 0:
		return fmt.Errorf("%w: points per question must not be negative", ErrInvalidSettings)
	case s.TimeBonusPerSecond < 0:
		return fmt.Errorf("%w: time bonus must not be negative", ErrInvalidSettings)
	}
	return nil
}
