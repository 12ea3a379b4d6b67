package domain

import (
	"strings"
	"time"
)

const (
	// DefaultPoints is awarded for a correct answer when a question carries no value.
	DefaultPoints = 50
	// DefaultCategoryID is the category a question belongs to when none is given.
	DefaultCategoryID = 1

	MinOptions = 2
	MaxOptions = 4
)

// Option represents a possible answer for a question.
type Option struct {
	Text  string `json:"text" yaml:"text"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID            int64    `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Image         string   `json:"image,omitempty" yaml:"image,omitempty"`
	Options       []Option `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correct_answer"` // 0-based
	Points        int      `json:"points" yaml:"points"`
	Categories    []int    `json:"categories" yaml:"categories"`
}

// HasCategory reports whether the question is tagged with the category.
func (q Question) HasCategory(categoryID int) bool {
	for _, id := range q.Categories {
		if id == categoryID {
			return true
		}
	}
	return false
}

// Normalize trims the text and fills in the default point value and category set.
func (q *Question) Normalize() {
	q.Text = strings.TrimSpace(q.Text)
	if q.Points == 0 {
		q.Points = DefaultPoints
	}
	if len(q.Categories) == 0 {
		q.Categories = []int{DefaultCategoryID}
	}
}

// Category is a grade-band grouping used to filter the question bank.
type Category struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Settings configures a quiz session. The engine never mutates them.
type Settings struct {
	DurationSeconds    int  `json:"durationSeconds" yaml:"duration_seconds"`
	LivesEnabled       bool `json:"livesEnabled" yaml:"lives_enabled"`
	Lives              int  `json:"lives" yaml:"lives"`
	PointsPerQuestion  int  `json:"pointsPerQuestion" yaml:"points_per_question"`
	TimeBonusPerSecond int  `json:"timeBonusPerSecond" yaml:"time_bonus_per_second"` // legacy, never applied
	ReviewMode         bool `json:"reviewMode" yaml:"review_mode"`
}

// DefaultSettings mirrors what a fresh install serves before an admin edits anything.
func DefaultSettings() Settings {
	return Settings{
		DurationSeconds:   300,
		LivesEnabled:      false,
		Lives:             3,
		PointsPerQuestion: DefaultPoints,
	}
}

// Catalog is the read-only snapshot a session is built from.
type Catalog struct {
	Questions  []Question `json:"questions" yaml:"questions"`
	Categories []Category `json:"categories" yaml:"categories"`
	Settings   Settings   `json:"settings" yaml:"settings"`
}

// Outcome describes how a session reached its terminal state.
type Outcome string

const (
	OutcomeCompleted      Outcome = "completed"
	OutcomeTimeExpired    Outcome = "time_expired"
	OutcomeLivesExhausted Outcome = "lives_exhausted"
	OutcomeSubmitted      Outcome = "submitted"
	OutcomeAbandoned      Outcome = "abandoned"
)

// ReviewPayload carries what is needed to render a right/wrong breakdown after review mode.
type ReviewPayload struct {
	Questions   []Question  `json:"questions"`
	UserAnswers map[int]int `json:"userAnswers"` // position in Questions -> chosen option
}

// Tally is the final result handed to the score reporter.
type Tally struct {
	SessionID         string         `json:"sessionId"`
	PlayerName        string         `json:"playerName"`
	Score             int            `json:"score"`
	QuestionsAnswered int            `json:"questionsAnswered"`
	CorrectAnswers    int            `json:"correctAnswers"`
	TimeSpentSeconds  int            `json:"timeSpentSeconds"`
	Category          int            `json:"category"`
	Outcome           Outcome        `json:"outcome"`
	FinishedAt        time.Time      `json:"finishedAt"`
	Review            *ReviewPayload `json:"reviewPayload,omitempty"`
}

// GameSessionRecord is the locally stored history row for one play-through.
type GameSessionRecord struct {
	ID                string    `json:"id"`
	PlayerName        string    `json:"playerName"`
	Score             int       `json:"score"`
	QuestionsAnswered int       `json:"questionsAnswered"`
	CorrectAnswers    int       `json:"correctAnswers"`
	TimeSpentSeconds  int       `json:"timeSpentSeconds"`
	Category          int       `json:"category"`
	Outcome           Outcome   `json:"outcome"`
	FinishedAt        time.Time `json:"finishedAt"`
}

// LeaderboardEntry is one ranked result for a category.
type LeaderboardEntry struct {
	PlayerName       string    `json:"playerName"`
	Score            int       `json:"score"`
	CorrectAnswers   int       `json:"correctAnswers"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	Category         int       `json:"category"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Record projects the tally into a history row.
func (t Tally) Record() GameSessionRecord {
	return GameSessionRecord{
		ID:                t.SessionID,
		PlayerName:        t.PlayerName,
		Score:             t.Score,
		QuestionsAnswered: t.QuestionsAnswered,
		CorrectAnswers:    t.CorrectAnswers,
		TimeSpentSeconds:  t.TimeSpentSeconds,
		Category:          t.Category,
		Outcome:           t.Outcome,
		FinishedAt:        t.FinishedAt,
	}
}

// LeaderboardEntry projects the tally into a leaderboard row.
func (t Tally) LeaderboardEntry() LeaderboardEntry {
	return LeaderboardEntry{
		PlayerName:       t.PlayerName,
		Score:            t.Score,
		CorrectAnswers:   t.CorrectAnswers,
		TimeSpentSeconds: t.TimeSpentSeconds,
		Category:         t.Category,
		CreatedAt:        t.FinishedAt,
	}
}
