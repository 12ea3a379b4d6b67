package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session is unknown or already torn down.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrPlayerNameRequired rejects starting a session without a name.
	ErrPlayerNameRequired = errors.New("player name is required")
	// ErrNoQuestions is returned when the whole question bank is empty.
	ErrNoQuestions = errors.New("no questions available")
	// ErrQuestionNotFound indicates a question ID is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCategoryNotFound indicates a category ID is unknown.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrNotRunning rejects any action once the clock stopped or before it started.
	ErrNotRunning = errors.New("quiz clock is not running")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrSameQuestion    = errors.New("already on that question")
	// ErrQuestionOutOfRange indicates a navigation target outside the session order.
	ErrQuestionOutOfRange = errors.New("question index out of range")
	// ErrInvalidOption indicates a chosen option index the question does not have.
	ErrInvalidOption = errors.New("option index out of range")
	// ErrLivesExhausted rejects answers while the session is waiting to end on zero lives.
	ErrLivesExhausted = errors.New("no lives remaining")
	// ErrNotReviewMode rejects review-only actions in immediate-feedback sessions.
	ErrNotReviewMode = errors.New("session is not in review mode")
	// ErrReviewScreen rejects answers while the review screen is shown; jump to a question first.
	ErrReviewScreen = errors.New("pick a question on the review screen before answering")
	// ErrIncompleteSubmission rejects a review submission with unanswered questions.
	ErrIncompleteSubmission = errors.New("every question must be answered before submitting")

	ErrInvalidQuestion = errors.New("invalid question")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrUnauthorized is returned for admin actions without a valid PIN session.
	ErrUnauthorized = errors.New("admin authorization required")
)
