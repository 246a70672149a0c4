package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"policypath/db"
	"policypath/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// CommitOutcome is the result of a mastery commit. Duplicate is a defined
// outcome, not an error.
type CommitOutcome struct {
	Inserted bool
	Entry    *models.VaultEntry
	Title    string
}

type VaultService struct {
	repo    db.VaultRepository
	signals SignalListener
}

func NewVaultService(repo db.VaultRepository, signals SignalListener) *VaultService {
	return &VaultService{repo: repo, signals: signals}
}

// Commit inserts a mastered concept unless an entry with a
// case-insensitive-equal title already exists for the owner. The snapshot
// scan is best-effort under concurrent writers; the unique index on
// (owner_id, lower(title)) settles the race at the store.
func (s *VaultService) Commit(ownerID, title, notes string, existing []*models.VaultEntry) (*CommitOutcome, error) {
	log.Printf("[INFO] Starting vault commit for owner %s: %q", ownerID, title)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	duplicate := lo.ContainsBy(existing, func(entry *models.VaultEntry) bool {
		return strings.EqualFold(entry.Title, title)
	})
	if duplicate {
		log.Printf("[INFO] Duplicate title suppressed for owner %s: %q", ownerID, title)
		s.signals.DuplicateSuppressed(ownerID, title)
		return &CommitOutcome{Inserted: false, Title: title}, nil
	}

	entry := &models.VaultEntry{
		OwnerID: ownerID,
		Title:   title,
		Status:  models.VaultStatusMastered,
		Notes:   notes,
	}

	if err := s.repo.CreateEntry(entry); err != nil {
		if errors.Is(err, db.ErrDuplicateEntry) {
			log.Printf("[INFO] Store rejected stale-snapshot duplicate for owner %s: %q", ownerID, title)
			s.signals.DuplicateSuppressed(ownerID, title)
			return &CommitOutcome{Inserted: false, Title: title}, nil
		}
		log.Printf("[ERROR] Failed to create vault entry: %v", err)
		return nil, &TransportError{Err: err}
	}

	log.Printf("[INFO] Successfully committed vault entry %d for owner %s", entry.ID, ownerID)
	s.signals.MasteryCommitted(entry)
	return &CommitOutcome{Inserted: true, Entry: entry, Title: title}, nil
}

func (s *VaultService) GetEntries(ownerID string) ([]*models.VaultEntry, error) {
	entries, err := s.repo.GetEntriesByOwner(ownerID)
	if err != nil {
		log.Printf("[ERROR] Failed to get vault entries for owner %s: %v", ownerID, err)
		return nil, &TransportError{Err: err}
	}

	return entries, nil
}

// Topics returns the vault titles for an owner, newest first.
func (s *VaultService) Topics(ownerID string) ([]string, error) {
	entries, err := s.GetEntries(ownerID)
	if err != nil {
		return nil, err
	}

	return lo.Map(entries, func(entry *models.VaultEntry, _ int) string {
		return entry.Title
	}), nil
}

// SearchEntries filters an owner's vault by fuzzy match against title and
// notes.
func (s *VaultService) SearchEntries(ownerID string, terms []string) ([]*models.VaultEntry, error) {
	log.Printf("[INFO] Starting vault search for owner %s with %d terms", ownerID, len(terms))

	entries, err := s.GetEntries(ownerID)
	if err != nil {
		return nil, err
	}

	if len(terms) == 0 {
		return entries, nil
	}

	matching := lo.Filter(entries, func(entry *models.VaultEntry, _ int) bool {
		return entryMatchesSearch(entry, terms)
	})

	log.Printf("[INFO] Found %d vault entries matching search criteria", len(matching))
	return matching, nil
}

func entryMatchesSearch(entry *models.VaultEntry, terms []string) bool {
	haystack := entry.Title + " " + entry.Notes
	words := strings.Fields(strings.ToLower(haystack))

	cleanWords := make([]string, 0, len(words))
	for _, word := range words {
		cleanWord := strings.Trim(word, ".,!?;:()[]{}\"'")
		if len(cleanWord) > 0 {
			cleanWords = append(cleanWords, cleanWord)
		}
	}

	for _, term := range terms {
		if fuzzy.MatchFold(term, haystack) {
			return true
		}
		if len(fuzzy.Find(strings.ToLower(term), cleanWords)) > 0 {
			return true
		}
	}

	return false
}
