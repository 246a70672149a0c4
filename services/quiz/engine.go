package quiz

import (
	"fmt"

	"policypath/models"
	"policypath/services"
)

// maxQuestions is the fixed quiz scale; generated payloads are truncated to
// this many questions.
const maxQuestions = 10

// Session is the transient per-owner quiz state. It is never persisted;
// only the ExamResult of a completed quiz is. Invariant after every
// transition: 0 <= Score <= Index <= len(Questions).
type Session struct {
	State     models.QuizState
	Questions []models.QuizQuestion
	Index     int
	Score     int
	Topics    []string
	Passed    bool

	// resultPersisted guards the append-only exam record when the final
	// submit is retried after a partial completion failure.
	resultPersisted bool
}

func NewSession() *Session {
	return &Session{State: models.QuizStateIdle}
}

func (s *Session) beginLoading(topics []string) error {
	if s.State != models.QuizStateIdle {
		return fmt.Errorf("cannot start quiz from state %s", s.State)
	}

	s.State = models.QuizStateLoading
	s.Topics = topics
	s.Questions = nil
	s.Index = 0
	s.Score = 0
	s.Passed = false
	s.resultPersisted = false
	return nil
}

func (s *Session) activate(questions []models.QuizQuestion) error {
	if s.State != models.QuizStateLoading {
		return fmt.Errorf("cannot activate quiz from state %s", s.State)
	}
	if len(questions) == 0 {
		return fmt.Errorf("quiz needs at least one question")
	}

	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}

	s.State = models.QuizStateActive
	s.Questions = questions
	return nil
}

// reset returns to idle from any state, discarding session progress. Used
// for the hard reset on generation failure and for closing a result.
func (s *Session) reset() {
	s.State = models.QuizStateIdle
	s.Questions = nil
	s.Index = 0
	s.Score = 0
	s.Topics = nil
	s.Passed = false
	s.resultPersisted = false
}

// submit grades one option against the current question and advances.
// Returns whether the option was correct and whether the session moved to
// the result state.
func (s *Session) submit(option string) (correct bool, done bool, err error) {
	if s.State != models.QuizStateActive {
		return false, false, services.ErrQuizNotActive
	}

	if option == s.Questions[s.Index].Answer {
		s.Score++
		correct = true
	}
	s.Index++

	if s.Index == len(s.Questions) {
		s.State = models.QuizStateResult
		done = true
	}

	return correct, done, nil
}

func (s *Session) view() *models.QuizView {
	view := &models.QuizView{
		State:  s.State,
		Index:  s.Index,
		Total:  len(s.Questions),
		Score:  s.Score,
		Passed: s.Passed,
	}

	if s.State == models.QuizStateActive {
		current := s.Questions[s.Index]
		view.Question = current.Question
		view.Options = current.Options
	}

	return view
}
