package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"policypath/db"
	"policypath/models"
)

// In-memory collaborators for service tests.

type fakeVaultRepo struct {
	mu         sync.Mutex
	entries    []*models.VaultEntry
	nextID     int
	failing    bool
	failCreate bool
}

func (r *fakeVaultRepo) CreateEntry(entry *models.VaultEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing || r.failCreate {
		return errors.New("store down")
	}

	for _, existing := range r.entries {
		if existing.OwnerID == entry.OwnerID && strings.EqualFold(existing.Title, entry.Title) {
			return db.ErrDuplicateEntry
		}
	}

	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now()
	stored := *entry
	r.entries = append(r.entries, &stored)
	return nil
}

func (r *fakeVaultRepo) GetEntriesByOwner(ownerID string) ([]*models.VaultEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return nil, errors.New("store down")
	}

	var out []*models.VaultEntry
	for _, entry := range r.entries {
		if entry.OwnerID == ownerID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeVaultRepo) Close() error { return nil }

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]models.UserProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]models.UserProfile)}
}

func (r *fakeProfileRepo) GetProfile(ownerID string) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[ownerID]
	if !ok {
		profile = models.UserProfile{OwnerID: ownerID}
		r.profiles[ownerID] = profile
	}
	out := profile
	return &out, nil
}

func (r *fakeProfileRepo) UpdateProfile(profile *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.OwnerID] = *profile
	return nil
}

func (r *fakeProfileRepo) Close() error { return nil }

type fakeHistoryRepo struct {
	mu      sync.Mutex
	logs    map[string][]models.Message
	saveErr error
	loadErr error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{logs: make(map[string][]models.Message)}
}

func (r *fakeHistoryRepo) GetHistory(ownerID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]models.Message{}, r.logs[ownerID]...), nil
}

func (r *fakeHistoryRepo) SaveHistory(ownerID string, messages []models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	r.logs[ownerID] = append([]models.Message{}, messages...)
	return nil
}

func (r *fakeHistoryRepo) Close() error { return nil }

type fakeMentor struct {
	reply string
	err   error

	mu    sync.Mutex
	calls int
	block chan struct{}
}

func (m *fakeMentor) Chat(ctx context.Context, ownerID string, payload *TurnPayload) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.block != nil {
		<-m.block
	}
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type recordingSignals struct {
	mu          sync.Mutex
	committed   []string
	suppressed  []string
	quizStates  []models.QuizState
	progression int
}

func (s *recordingSignals) MasteryCommitted(entry *models.VaultEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, entry.Title)
}

func (s *recordingSignals) DuplicateSuppressed(ownerID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressed = append(s.suppressed, title)
}

func (s *recordingSignals) QuizStateChanged(ownerID string, state models.QuizState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizStates = append(s.quizStates, state)
}

func (s *recordingSignals) ProgressionUpdated(profile *models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progression++
}
