package services

import (
	"log"
	"sync"
	"time"

	"policypath/db"
	"policypath/models"
)

const (
	LoginBonusXP    = 10
	MasteryBonusXP  = 25
	QuizPassBonusXP = 50
)

// ApplyEvent computes the full replacement profile for one progression
// event. It is deterministic given (profile, event, now) and performs no
// partial updates.
//
// A Login on a calendar day that already has recorded activity is a no-op:
// the login bonus was credited earlier that day. The streak is only
// recomputed when the day changes; mastery and quiz-pass bonuses are
// independent of the day boundary.
func ApplyEvent(profile models.UserProfile, event models.ProgressionEvent, now time.Time) models.UserProfile {
	sameDay := isSameCalendarDay(profile.LastActiveDate, now)

	if event == models.EventLogin && sameDay {
		return profile
	}

	if !sameDay {
		if isPreviousCalendarDay(profile.LastActiveDate, now) {
			profile.Streak++
		} else {
			profile.Streak = 1
		}
	}

	switch event {
	case models.EventLogin:
		profile.XP += LoginBonusXP
	case models.EventMastery:
		profile.XP += MasteryBonusXP
		profile.TopicsMastered++
	case models.EventQuizPass:
		profile.XP += QuizPassBonusXP
	}

	profile.LastActiveDate = now
	return profile
}

func isSameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func isPreviousCalendarDay(last, now time.Time) bool {
	return isSameCalendarDay(last.AddDate(0, 0, 1), now)
}

// ProgressionService runs the load/apply/save cycle for an owner. Events
// for the same owner are serialized so two near-simultaneous credits cannot
// interleave their read-modify-write.
type ProgressionService struct {
	repo    db.ProfileRepository
	signals SignalListener

	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

func NewProgressionService(repo db.ProfileRepository, signals SignalListener) *ProgressionService {
	return &ProgressionService{
		repo:    repo,
		signals: signals,
		owners:  make(map[string]*sync.Mutex),
	}
}

func (s *ProgressionService) Credit(ownerID string, event models.ProgressionEvent, now time.Time) (*models.UserProfile, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := s.repo.GetProfile(ownerID)
	if err != nil {
		log.Printf("[ERROR] Failed to load profile for owner %s: %v", ownerID, err)
		return nil, &TransportError{Err: err}
	}

	updated := ApplyEvent(*profile, event, now)
	if updated == *profile {
		log.Printf("[INFO] Progression event %s is a no-op for owner %s", event, ownerID)
		return profile, nil
	}

	if err := s.repo.UpdateProfile(&updated); err != nil {
		log.Printf("[ERROR] Failed to save profile for owner %s: %v", ownerID, err)
		return nil, &TransportError{Err: err}
	}

	log.Printf("[INFO] Credited %s for owner %s: xp=%d streak=%d", event, ownerID, updated.XP, updated.Streak)
	s.signals.ProgressionUpdated(&updated)
	return &updated, nil
}

func (s *ProgressionService) GetProfile(ownerID string) (*models.UserProfile, error) {
	profile, err := s.repo.GetProfile(ownerID)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return profile, nil
}

func (s *ProgressionService) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.owners[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.owners[ownerID] = lock
	}
	return lock
}
