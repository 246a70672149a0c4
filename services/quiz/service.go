package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"policypath/db"
	"policypath/models"
	"policypath/services"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ContextRetriever supplies reference passages to ground quiz generation.
// It is optional; without one the quiz is generated from topic titles
// alone.
type ContextRetriever interface {
	QueryTopicChunks(topics []string, limit int) ([]string, error)
}

// Service owns the quiz lifecycle per owner: idle -> loading -> active ->
// result -> idle. All state transitions go through the per-owner Session.
type Service struct {
	llm         llms.Model
	retriever   ContextRetriever
	vault       *services.VaultService
	examRepo    db.ExamResultRepository
	progression *services.ProgressionService
	signals     services.SignalListener

	// passThreshold is the score a learner must exceed on the fixed
	// ten-question scale to earn the quiz-pass bonus.
	passThreshold int

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewService(apiKey string, retriever ContextRetriever, vault *services.VaultService,
	examRepo db.ExamResultRepository, progression *services.ProgressionService,
	signals services.SignalListener, passThreshold int) (*Service, error) {

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return NewServiceWithModel(llm, retriever, vault, examRepo, progression, signals, passThreshold), nil
}

func NewServiceWithModel(llm llms.Model, retriever ContextRetriever, vault *services.VaultService,
	examRepo db.ExamResultRepository, progression *services.ProgressionService,
	signals services.SignalListener, passThreshold int) *Service {

	return &Service{
		llm:           llm,
		retriever:     retriever,
		vault:         vault,
		examRepo:      examRepo,
		progression:   progression,
		signals:       signals,
		passThreshold: passThreshold,
		sessions:      make(map[string]*Session),
	}
}

// Start begins a quiz for an owner. It rejects an empty vault before any
// network call; generation or parse failure resets the session to idle and
// surfaces a recoverable error, never a silent partial quiz.
func (s *Service) Start(ctx context.Context, ownerID string) (*models.QuizView, error) {
	log.Printf("[INFO] Starting quiz for owner %s", ownerID)

	topics, err := s.vault.Topics(ownerID)
	if err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		log.Printf("[INFO] Quiz start rejected for owner %s: vault is empty", ownerID)
		return nil, services.ErrEmptyVault
	}

	session := s.session(ownerID)

	s.mu.Lock()
	err = session.beginLoading(topics)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.signals.QuizStateChanged(ownerID, models.QuizStateLoading)

	// The LLM call runs outside the lock; the loading state keeps a second
	// Start from racing in.
	questions, genErr := s.generateQuestions(ctx, topics)

	s.mu.Lock()
	defer s.mu.Unlock()

	if genErr != nil {
		session.reset()
		s.signals.QuizStateChanged(ownerID, models.QuizStateIdle)
		return nil, &services.MalformedResponseError{Err: genErr}
	}

	if err := session.activate(questions); err != nil {
		session.reset()
		s.signals.QuizStateChanged(ownerID, models.QuizStateIdle)
		return nil, &services.MalformedResponseError{Err: err}
	}

	log.Printf("[INFO] Quiz active for owner %s with %d questions", ownerID, len(session.Questions))
	s.signals.QuizStateChanged(ownerID, models.QuizStateActive)
	return session.view(), nil
}

// Submit grades one option for the owner's active quiz. Outside the active
// state it is rejected. Completing the final question persists the
// ExamResult and credits the quiz-pass bonus when the score exceeds the
// configured threshold. A persist or credit failure rolls the final grading
// back to active so the last submit can be retried; an already persisted
// result is not written twice on retry.
func (s *Service) Submit(ownerID, option string) (*models.QuizView, error) {
	s.mu.Lock()
	session, ok := s.sessions[ownerID]
	if !ok {
		s.mu.Unlock()
		return nil, services.ErrQuizNotActive
	}

	correct, done, err := session.submit(option)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if !done {
		view := session.view()
		s.mu.Unlock()
		return view, nil
	}

	score := session.Score
	total := len(session.Questions)
	topics := session.Topics
	passed := score > s.passThreshold
	session.Passed = passed
	alreadyPersisted := session.resultPersisted
	view := session.view()
	s.mu.Unlock()

	log.Printf("[INFO] Quiz completed for owner %s: score %d/%d", ownerID, score, total)

	if !alreadyPersisted {
		result := &models.ExamResult{
			OwnerID:        ownerID,
			Score:          score,
			TotalQuestions: total,
			TopicsCovered:  strings.Join(topics, ", "),
		}
		if err := s.examRepo.CreateExamResult(result); err != nil {
			log.Printf("[ERROR] Failed to persist exam result for owner %s, reverting final submit: %v", ownerID, err)
			s.revertFinalSubmit(session, correct)
			return nil, &services.TransportError{Err: err}
		}

		s.mu.Lock()
		session.resultPersisted = true
		s.mu.Unlock()
	}

	if passed {
		if _, err := s.progression.Credit(ownerID, models.EventQuizPass, time.Now()); err != nil {
			log.Printf("[ERROR] Failed to credit quiz pass for owner %s, reverting final submit: %v", ownerID, err)
			s.revertFinalSubmit(session, correct)
			return nil, err
		}
	}

	s.signals.QuizStateChanged(ownerID, models.QuizStateResult)
	return view, nil
}

// revertFinalSubmit undoes the grading of the last question so the session
// is active again and the submit is retry-eligible.
func (s *Service) revertFinalSubmit(session *Session, correct bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.Index--
	if correct {
		session.Score--
	}
	session.State = models.QuizStateActive
	session.Passed = false
}

// Close returns a finished quiz to idle.
func (s *Service) Close(ownerID string) (*models.QuizView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[ownerID]
	if !ok || session.State != models.QuizStateResult {
		return nil, errors.New("no quiz result to close")
	}

	session.reset()
	s.signals.QuizStateChanged(ownerID, models.QuizStateIdle)
	return session.view(), nil
}

// View reports the current engine state for an owner.
func (s *Service) View(ownerID string) *models.QuizView {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[ownerID]
	if !ok {
		return NewSession().view()
	}
	return session.view()
}

func (s *Service) session(ownerID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[ownerID]
	if !ok {
		session = NewSession()
		s.sessions[ownerID] = session
	}
	return session
}
