package engine

import "trivia-quiz-service/internal/domain"

// mode isolates the transitions that differ between immediate feedback and deferred review.
type mode interface {
	name() Mode
	answer(e *Engine, option int) (Feedback, error)
	isAnswered(e *Engine, i int) bool
	canJump(e *Engine, i int) error
	// exhausted reports a pending end that overrides navigation.
	exhausted(e *Engine) bool
	// settle runs when the next-question scan finds nothing.
	settle(e *Engine)
	expire(e *Engine)
}

type immediateMode struct{}

func (immediateMode) name() Mode { return ModeImmediate }

func (immediateMode) answer(e *Engine, option int) (Feedback, error) {
	i := e.current
	if e.answered[i] {
		return Feedback{}, domain.ErrAlreadyAnswered
	}
	if e.settings.LivesEnabled && e.remainingLives <= 0 {
		return Feedback{}, domain.ErrLivesExhausted
	}

	q := e.order[i]
	e.userAnswers[i] = option
	e.answered[i] = true
	e.questionsAnswered++

	fb := Feedback{Index: i, Option: option, Graded: true}
	if option == q.CorrectAnswer {
		fb.Correct = true
		fb.Awarded = e.points(q)
		e.score += fb.Awarded
		e.correctAnswers++
	} else if e.settings.LivesEnabled {
		e.remainingLives--
	}
	fb.Score = e.score
	fb.RemainingLives = e.remainingLives
	return fb, nil
}

func (immediateMode) isAnswered(e *Engine, i int) bool { return e.answered[i] }

func (immediateMode) canJump(e *Engine, i int) error {
	if e.answered[i] {
		return domain.ErrAlreadyAnswered
	}
	return nil
}

func (immediateMode) exhausted(e *Engine) bool {
	return e.settings.LivesEnabled && e.remainingLives <= 0
}

func (immediateMode) settle(e *Engine) { e.finish(StateEnded, domain.OutcomeCompleted) }

// Running totals are already final; whatever was answered is locked in.
func (immediateMode) expire(e *Engine) { e.finish(StateEnded, domain.OutcomeTimeExpired) }

type reviewMode struct{}

func (reviewMode) name() Mode { return ModeReview }

func (reviewMode) answer(e *Engine, option int) (Feedback, error) {
	e.userAnswers[e.current] = option
	return Feedback{Index: e.current, Option: option}, nil
}

func (reviewMode) isAnswered(e *Engine, i int) bool {
	_, ok := e.userAnswers[i]
	return ok
}

func (reviewMode) canJump(*Engine, int) error { return nil }

func (reviewMode) exhausted(*Engine) bool { return false }

func (reviewMode) settle(e *Engine) { e.state = StateReviewScreen }

func (reviewMode) expire(e *Engine) {
	e.grade()
	e.finish(StateEnded, domain.OutcomeTimeExpired)
}
