package models

import "time"

// QuizQuestion is immutable once generated. Answer is always one of Options.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type QuizState string

const (
	QuizStateIdle    QuizState = "idle"
	QuizStateLoading QuizState = "loading"
	QuizStateActive  QuizState = "active"
	QuizStateResult  QuizState = "result"
)

// ExamResult records one completed quiz, append-only.
type ExamResult struct {
	ID             int       `json:"id" db:"id"`
	OwnerID        string    `json:"owner_id" db:"owner_id"`
	Score          int       `json:"score" db:"score"`
	TotalQuestions int       `json:"total_questions" db:"total_questions"`
	TopicsCovered  string    `json:"topics_covered" db:"topics_covered"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type QuizSubmitRequest struct {
	Option string `json:"option"`
}

// QuizView is the engine state exposed to the client. The correct answer of
// the current question is withheld while the quiz is active.
type QuizView struct {
	State    QuizState `json:"state"`
	Index    int       `json:"index"`
	Total    int       `json:"total"`
	Score    int       `json:"score"`
	Question string    `json:"question,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Passed   bool      `json:"passed,omitempty"`
}
