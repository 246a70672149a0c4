package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"policypath/db"
	"policypath/models"
)

// Mentor is the chat-mode remote model collaborator.
type Mentor interface {
	Chat(ctx context.Context, ownerID string, payload *TurnPayload) (string, error)
}

// SessionService runs one request/response cycle per learner turn: assemble
// context, call the mentor, split the reply channels, commit any mastery,
// credit progression, and append to the conversation log.
type SessionService struct {
	history     db.HistoryRepository
	mentor      Mentor
	vault       *VaultService
	progression *ProgressionService
	signals     SignalListener

	// busy serializes turns per owner so history ordering stays
	// deterministic. A second submission while one is outstanding is
	// rejected, not queued.
	mu   sync.Mutex
	busy map[string]bool
}

func NewSessionService(history db.HistoryRepository, mentor Mentor, vault *VaultService,
	progression *ProgressionService, signals SignalListener) *SessionService {

	return &SessionService{
		history:     history,
		mentor:      mentor,
		vault:       vault,
		progression: progression,
		signals:     signals,
		busy:        make(map[string]bool),
	}
}

func (s *SessionService) Turn(ctx context.Context, ownerID, query string) (*models.ChatResponse, error) {
	if err := s.acquire(ownerID); err != nil {
		return nil, err
	}
	defer s.release(ownerID)

	log.Printf("[INFO] Starting chat turn for owner %s", ownerID)

	history, err := s.history.GetHistory(ownerID)
	if err != nil {
		log.Printf("[ERROR] Failed to load history for owner %s: %v", ownerID, err)
		return nil, &TransportError{Err: err}
	}

	payload, err := BuildTurn(history, query)
	if err != nil {
		return nil, err
	}

	raw, err := s.mentor.Chat(ctx, ownerID, payload)
	if err != nil {
		log.Printf("[ERROR] Mentor call failed for owner %s: %v", ownerID, err)
		return nil, &TransportError{Err: err}
	}

	parsed := ParseReply(raw)
	if parsed.Visible == "" {
		return nil, &MalformedResponseError{Err: fmt.Errorf("mentor reply had no visible text")}
	}

	botMessage := models.Message{Role: models.RoleBot, Text: parsed.Visible}
	saved, duplicate := false, false

	if parsed.Hidden != nil {
		existing, err := s.vault.GetEntries(ownerID)
		if err != nil {
			log.Printf("[ERROR] Failed to snapshot vault for owner %s: %v", ownerID, err)
			return nil, err
		}

		outcome, err := s.vault.Commit(ownerID, parsed.Hidden.Title, parsed.Hidden.Notes, existing)
		if err != nil {
			// The reply is still delivered; the concept can be re-earned on
			// a later turn.
			log.Printf("[ERROR] Vault commit failed for owner %s, continuing turn: %v", ownerID, err)
		} else if outcome.Inserted {
			saved = true
			botMessage.Saved = true
			botMessage.Citation = outcome.Title
			botMessage.Text += "\n\nSaved to your vault: " + outcome.Title

			if _, err := s.progression.Credit(ownerID, models.EventMastery, time.Now()); err != nil {
				log.Printf("[ERROR] Mastery credit failed for owner %s: %v", ownerID, err)
			}
		} else {
			duplicate = true
			botMessage.Citation = outcome.Title
			botMessage.Text += "\n\nAlready in your vault: " + outcome.Title
		}
	}

	updated := make([]models.Message, len(history), len(history)+2)
	copy(updated, history)
	updated = append(updated,
		models.Message{Role: models.RoleUser, Text: payload.Query},
		botMessage,
	)

	if err := s.history.SaveHistory(ownerID, updated); err != nil {
		log.Printf("[ERROR] Failed to save history for owner %s: %v", ownerID, err)
		return nil, &TransportError{Err: err}
	}

	log.Printf("[INFO] Chat turn completed for owner %s (saved=%t duplicate=%t)", ownerID, saved, duplicate)
	return &models.ChatResponse{
		Messages:  updated,
		Saved:     saved,
		Duplicate: duplicate,
	}, nil
}

func (s *SessionService) GetHistory(ownerID string) ([]models.Message, error) {
	history, err := s.history.GetHistory(ownerID)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return history, nil
}

func (s *SessionService) acquire(ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy[ownerID] {
		return ErrTurnInFlight
	}
	s.busy[ownerID] = true
	return nil
}

func (s *SessionService) release(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, ownerID)
}
