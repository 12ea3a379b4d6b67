package engine

import "trivia-quiz-service/internal/domain"

// QuestionView is a question as the player sees it, without the correct answer.
type QuestionView struct {
	ID      int64           `json:"id"`
	Text    string          `json:"text"`
	Image   string          `json:"image,omitempty"`
	Options []domain.Option `json:"options"`
	Points  int             `json:"points"`
}

// Snapshot is a read-only copy of the session state for rendering.
type Snapshot struct {
	State             string         `json:"state"`
	Mode              Mode           `json:"mode"`
	Outcome           domain.Outcome `json:"outcome,omitempty"`
	CurrentIndex      int            `json:"currentIndex"`
	Total             int            `json:"total"`
	Question          QuestionView   `json:"question"`
	RemainingSeconds  int            `json:"remainingSeconds"`
	LivesEnabled      bool           `json:"livesEnabled"`
	RemainingLives    int            `json:"remainingLives"`
	Score             int            `json:"score"`
	QuestionsAnswered int            `json:"questionsAnswered"`
	CorrectAnswers    int            `json:"correctAnswers"`
	Answered          []bool         `json:"answered"`
	Visited           []bool         `json:"visited"`
	UserAnswers       map[int]int    `json:"userAnswers"`
	FellBack          bool           `json:"fellBack,omitempty"`
}

func (e *Engine) Snapshot() Snapshot {
	q := e.order[e.current]
	s := Snapshot{
		State:        e.state.String(),
		Mode:         e.mode.name(),
		Outcome:      e.outcome,
		CurrentIndex: e.current,
		Total:        len(e.order),
		Question: QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Image:   q.Image,
			Options: append([]domain.Option(nil), q.Options...),
			Points:  e.points(q),
		},
		RemainingSeconds:  e.remainingSeconds,
		LivesEnabled:      e.settings.LivesEnabled,
		RemainingLives:    e.remainingLives,
		Score:             e.score,
		QuestionsAnswered: e.questionsAnswered,
		CorrectAnswers:    e.correctAnswers,
		Answered:          make([]bool, len(e.order)),
		Visited:           make([]bool, len(e.order)),
		UserAnswers:       make(map[int]int, len(e.userAnswers)),
		FellBack:          e.fallback,
	}
	for i := range e.order {
		s.Answered[i] = e.mode.isAnswered(e, i)
		s.Visited[i] = e.visited[i]
	}
	for k, v := range e.userAnswers {
		s.UserAnswers[k] = v
	}
	return s
}
