package engine

import "trivia-quiz-service/internal/domain"

// SelectQuestions filters the bank to a category. When nothing matches, the full
// bank is returned and fallback is true.
func SelectQuestions(bank []domain.Question, categoryID int) (selected []domain.Question, fallback bool) {
	for _, q := range bank {
		if q.HasCategory(categoryID) {
			selected = append(selected, q)
		}
	}
	if len(selected) > 0 {
		return selected, false
	}
	all := make([]domain.Question, len(bank))
	copy(all, bank)
	return all, true
}

// nextUnanswered scans [current+1, len) then [0, current). Finding nothing is terminal.
func (e *Engine) nextUnanswered() (int, bool) {
	for i := e.current + 1; i < len(e.order); i++ {
		if !e.mode.isAnswered(e, i) {
			return i, true
		}
	}
	for i := 0; i < e.current; i++ {
		if !e.mode.isAnswered(e, i) {
			return i, true
		}
	}
	return 0, false
}

// Jump moves to question i. From the review screen any question can be picked
// for editing, which resumes the running state.
func (e *Engine) Jump(i int) error {
	if !e.clockRunning() {
		return domain.ErrNotRunning
	}
	if i < 0 || i >= len(e.order) {
		return domain.ErrQuestionOutOfRange
	}
	if e.state == StateReviewScreen {
		e.state = StateRunning
		e.moveTo(i)
		return nil
	}
	if i == e.current {
		return domain.ErrSameQuestion
	}
	if err := e.mode.canJump(e, i); err != nil {
		return err
	}
	e.moveTo(i)
	return nil
}

// OpenReview shows the review screen before every question is answered.
func (e *Engine) OpenReview() error {
	if e.mode.name() != ModeReview {
		return domain.ErrNotReviewMode
	}
	switch e.state {
	case StateRunning:
		e.state = StateReviewScreen
		return nil
	case StateReviewScreen:
		return nil
	default:
		return domain.ErrNotRunning
	}
}

// Submit grades a review-mode session. Every question in the order needs an answer.
func (e *Engine) Submit() error {
	if e.mode.name() != ModeReview {
		return domain.ErrNotReviewMode
	}
	if !e.clockRunning() {
		return domain.ErrNotRunning
	}
	for i := range e.order {
		if _, ok := e.userAnswers[i]; !ok {
			return domain.ErrIncompleteSubmission
		}
	}
	e.grade()
	e.finish(StateSubmitted, domain.OutcomeSubmitted)
	return nil
}
