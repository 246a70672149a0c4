package models

import "time"

const VaultStatusMastered = "Mastered"

// VaultEntry is a mastered-concept record. Entries are never mutated by the
// engine; for a given owner no two entries share a case-insensitive title.
type VaultEntry struct {
	ID        int       `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Title     string    `json:"title" db:"title"`
	Status    string    `json:"status" db:"status"`
	Notes     string    `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HiddenPayload is the structured metadata carried in the out-of-band
// channel of a mentor reply.
type HiddenPayload struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}
