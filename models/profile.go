package models

import "time"

// UserProfile is the single progression row per owner. It is mutated only by
// the progression ledger, which always writes a full replacement.
type UserProfile struct {
	OwnerID        string    `json:"owner_id" db:"owner_id"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	XP             int       `json:"xp" db:"xp"`
	Streak         int       `json:"streak" db:"streak"`
	LastActiveDate time.Time `json:"last_active_date" db:"last_active_date"`
	TopicsMastered int       `json:"topics_mastered" db:"topics_mastered"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// ProgressionEvent identifies what is being credited.
type ProgressionEvent string

const (
	EventLogin    ProgressionEvent = "login"
	EventMastery  ProgressionEvent = "mastery"
	EventQuizPass ProgressionEvent = "quiz_pass"
)
