package engine

import (
	"math/rand"
	"time"

	"trivia-quiz-service/internal/domain"
)

// State is the lifecycle position of a quiz session.
type State int

const (
	StateLoading State = iota
	StateRunning
	StateReviewScreen
	StateSubmitted
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateReviewScreen:
		return "review_screen"
	case StateSubmitted:
		return "submitted"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Mode selects how answers are graded. It is fixed for the session's lifetime.
type Mode string

const (
	ModeImmediate Mode = "immediate"
	ModeReview    Mode = "review"
)

// Config holds everything a session is built from. Nothing is read from ambient state.
type Config struct {
	Settings  domain.Settings
	Questions []domain.Question
	Category  int
	// Rand drives the one-time shuffle; a time-seeded source is used when nil.
	Rand *rand.Rand
}

// Feedback describes what an accepted answer did.
type Feedback struct {
	Index          int  `json:"index"`
	Option         int  `json:"option"`
	Graded         bool `json:"graded"` // false in review mode
	Correct        bool `json:"correct"`
	Awarded        int  `json:"awarded"`
	Score          int  `json:"score"`
	RemainingLives int  `json:"remainingLives"`
}

// Engine is the quiz session state machine. It is not safe for concurrent use;
// a single event loop must own it.
type Engine struct {
	settings domain.Settings
	category int
	mode     mode
	order    []domain.Question
	fallback bool

	state   State
	outcome domain.Outcome
	current int

	remainingSeconds int
	remainingLives   int

	answered    map[int]bool
	userAnswers map[int]int
	visited     map[int]bool

	score             int
	questionsAnswered int
	correctAnswers    int
}

// New filters and shuffles the bank and returns an engine in the loading state.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	pool, fallback := SelectQuestions(cfg.Questions, cfg.Category)
	if len(pool) == 0 {
		return nil, domain.ErrNoQuestions
	}

	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	order := make([]domain.Question, len(pool))
	for i, p := range rnd.Perm(len(pool)) {
		order[i] = pool[p]
	}

	e := &Engine{
		settings:         cfg.Settings,
		category:         cfg.Category,
		order:            order,
		fallback:         fallback,
		state:            StateLoading,
		remainingSeconds: cfg.Settings.DurationSeconds,
		answered:         make(map[int]bool, len(order)),
		userAnswers:      make(map[int]int, len(order)),
		visited:          make(map[int]bool, len(order)),
	}
	if cfg.Settings.LivesEnabled {
		e.remainingLives = cfg.Settings.Lives
	}
	if cfg.Settings.ReviewMode {
		e.mode = reviewMode{}
	} else {
		e.mode = immediateMode{}
	}
	return e, nil
}

// Start begins the countdown on the first question of the shuffled order.
func (e *Engine) Start() error {
	if e.state != StateLoading {
		return domain.ErrNotRunning
	}
	e.state = StateRunning
	e.current = 0
	e.visited[0] = true
	return nil
}

func (e *Engine) State() State            { return e.state }
func (e *Engine) Mode() Mode              { return e.mode.name() }
func (e *Engine) Outcome() domain.Outcome { return e.outcome }
func (e *Engine) CurrentIndex() int       { return e.current }
func (e *Engine) RemainingSeconds() int   { return e.remainingSeconds }
func (e *Engine) RemainingLives() int     { return e.remainingLives }
func (e *Engine) Len() int                { return len(e.order) }

// FellBack reports whether the category matched nothing and the full bank is in play.
func (e *Engine) FellBack() bool { return e.fallback }

// Done reports whether the session reached a terminal state.
func (e *Engine) Done() bool {
	return e.state == StateSubmitted || e.state == StateEnded
}

func (e *Engine) clockRunning() bool {
	return e.state == StateRunning || e.state == StateReviewScreen
}

// Tick consumes one second of the shared budget and reports whether it ended the session.
func (e *Engine) Tick() bool {
	if !e.clockRunning() {
		return false
	}
	if e.remainingSeconds > 0 {
		e.remainingSeconds--
	}
	if e.remainingSeconds == 0 {
		e.mode.expire(e)
		return true
	}
	return false
}

// Answer records the chosen option for the question on screen.
func (e *Engine) Answer(option int) (Feedback, error) {
	switch e.state {
	case StateRunning:
	case StateReviewScreen:
		return Feedback{}, domain.ErrReviewScreen
	default:
		return Feedback{}, domain.ErrNotRunning
	}
	if option < 0 || option >= len(e.order[e.current].Options) {
		return Feedback{}, domain.ErrInvalidOption
	}
	return e.mode.answer(e, option)
}

// Advance is the deferred continuation scheduled after an accepted answer.
// from is the index that was answered; if the player navigated away meanwhile
// only the end-of-session checks run.
func (e *Engine) Advance(from int) {
	if e.state != StateRunning {
		return
	}
	if e.mode.exhausted(e) {
		e.finish(StateEnded, domain.OutcomeLivesExhausted)
		return
	}
	if e.current != from {
		return
	}
	next, ok := e.nextUnanswered()
	if !ok {
		e.mode.settle(e)
		return
	}
	e.moveTo(next)
}

// Abandon tears the session down without a score-bearing outcome.
func (e *Engine) Abandon() {
	if e.Done() {
		return
	}
	e.finish(StateEnded, domain.OutcomeAbandoned)
}

// Tally returns the final result once the session is done.
func (e *Engine) Tally() (domain.Tally, bool) {
	if !e.Done() {
		return domain.Tally{}, false
	}
	t := domain.Tally{
		Score:             e.score,
		QuestionsAnswered: e.questionsAnswered,
		CorrectAnswers:    e.correctAnswers,
		TimeSpentSeconds:  e.settings.DurationSeconds - e.remainingSeconds,
		Category:          e.category,
		Outcome:           e.outcome,
	}
	if e.mode.name() == ModeReview {
		answers := make(map[int]int, len(e.userAnswers))
		for k, v := range e.userAnswers {
			answers[k] = v
		}
		questions := make([]domain.Question, len(e.order))
		copy(questions, e.order)
		t.Review = &domain.ReviewPayload{Questions: questions, UserAnswers: answers}
	}
	return t, true
}

func (e *Engine) moveTo(i int) {
	e.current = i
	e.visited[i] = true
}

func (e *Engine) finish(state State, outcome domain.Outcome) {
	e.state = state
	e.outcome = outcome
}

func (e *Engine) points(q domain.Question) int {
	switch {
	case q.Points > 0:
		return q.Points
	case e.settings.PointsPerQuestion > 0:
		return e.settings.PointsPerQuestion
	default:
		return domain.DefaultPoints
	}
}

// grade recomputes the totals from userAnswers in one pass. Unanswered questions count as wrong.
func (e *Engine) grade() {
	e.score, e.correctAnswers, e.questionsAnswered = 0, 0, 0
	for i, q := range e.order {
		opt, ok := e.userAnswers[i]
		if !ok {
			continue
		}
		e.questionsAnswered++
		if opt == q.CorrectAnswer {
			e.correctAnswers++
			e.score += e.points(q)
		}
	}
}
