package services

import (
	"log"

	"policypath/models"
)

// SignalListener receives engine events for the presentation layer to
// render. The engine only guarantees the signal is emitted; rendering is
// out of scope.
type SignalListener interface {
	MasteryCommitted(entry *models.VaultEntry)
	DuplicateSuppressed(ownerID, title string)
	QuizStateChanged(ownerID string, state models.QuizState)
	ProgressionUpdated(profile *models.UserProfile)
}

// LogSignalListener is the default listener.
type LogSignalListener struct{}

func (LogSignalListener) MasteryCommitted(entry *models.VaultEntry) {
	log.Printf("[INFO] Signal: mastery committed for owner %s: %q", entry.OwnerID, entry.Title)
}

func (LogSignalListener) DuplicateSuppressed(ownerID, title string) {
	log.Printf("[INFO] Signal: duplicate suppressed for owner %s: %q", ownerID, title)
}

func (LogSignalListener) QuizStateChanged(ownerID string, state models.QuizState) {
	log.Printf("[INFO] Signal: quiz state for owner %s is now %s", ownerID, state)
}

func (LogSignalListener) ProgressionUpdated(profile *models.UserProfile) {
	log.Printf("[INFO] Signal: progression updated for owner %s: xp=%d streak=%d", profile.OwnerID, profile.XP, profile.Streak)
}
