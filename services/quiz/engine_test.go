package quiz

import (
	"errors"
	"fmt"
	"testing"

	"policypath/models"
	"policypath/services"
)

func makeQuestions(n int) []models.QuizQuestion {
	questions := make([]models.QuizQuestion, n)
	for i := range questions {
		questions[i] = models.QuizQuestion{
			Question: fmt.Sprintf("Question %d?", i+1),
			Options:  []string{"right", "wrong", "also wrong"},
			Answer:   "right",
		}
	}
	return questions
}

func checkInvariant(t *testing.T, s *Session) {
	t.Helper()
	if !(0 <= s.Score && s.Score <= s.Index && s.Index <= len(s.Questions)) {
		t.Fatalf("invariant violated: score=%d index=%d len=%d", s.Score, s.Index, len(s.Questions))
	}
}

func TestSessionLifecycle(t *testing.T) {
	session := NewSession()
	if session.State != models.QuizStateIdle {
		t.Fatalf("new session state = %s, expected idle", session.State)
	}

	if err := session.beginLoading([]string{"Article 21"}); err != nil {
		t.Fatalf("beginLoading() error = %v", err)
	}
	if session.State != models.QuizStateLoading {
		t.Fatalf("state = %s, expected loading", session.State)
	}

	if err := session.activate(makeQuestions(3)); err != nil {
		t.Fatalf("activate() error = %v", err)
	}
	if session.State != models.QuizStateActive {
		t.Fatalf("state = %s, expected active", session.State)
	}
	checkInvariant(t, session)

	answers := []string{"right", "wrong", "right"}
	for i, answer := range answers {
		_, done, err := session.submit(answer)
		if err != nil {
			t.Fatalf("submit(%d) error = %v", i, err)
		}
		checkInvariant(t, session)

		wantDone := i == len(answers)-1
		if done != wantDone {
			t.Errorf("submit(%d) done = %v, expected %v", i, done, wantDone)
		}
	}

	if session.State != models.QuizStateResult {
		t.Errorf("state = %s, expected result after final submit", session.State)
	}
	if session.Score != 2 {
		t.Errorf("Score = %d, expected 2", session.Score)
	}

	session.reset()
	if session.State != models.QuizStateIdle || session.Index != 0 || session.Score != 0 || session.Questions != nil {
		t.Errorf("reset left residue: %+v", session)
	}
}

func TestSessionResultOnlyAtLastQuestion(t *testing.T) {
	session := NewSession()
	session.beginLoading([]string{"t"})
	session.activate(makeQuestions(4))

	for i := 0; i < 3; i++ {
		_, done, err := session.submit("wrong")
		if err != nil {
			t.Fatalf("submit() error = %v", err)
		}
		if done {
			t.Fatalf("done after %d of 4 submits", i+1)
		}
		if session.State != models.QuizStateActive {
			t.Fatalf("state = %s mid-quiz", session.State)
		}
	}

	_, done, err := session.submit("wrong")
	if err != nil {
		t.Fatalf("final submit() error = %v", err)
	}
	if !done || session.State != models.QuizStateResult {
		t.Errorf("final submit: done=%v state=%s", done, session.State)
	}
	if session.Index != len(session.Questions) {
		t.Errorf("Index = %d, expected %d", session.Index, len(session.Questions))
	}
}

func TestSessionSubmitRejectedOutsideActive(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Session)
	}{
		{"idle", func(s *Session) {}},
		{"loading", func(s *Session) { s.beginLoading([]string{"t"}) }},
		{"result", func(s *Session) {
			s.beginLoading([]string{"t"})
			s.activate(makeQuestions(1))
			s.submit("right")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession()
			tt.setup(session)

			_, _, err := session.submit("right")
			if !errors.Is(err, services.ErrQuizNotActive) {
				t.Errorf("submit() error = %v, expected ErrQuizNotActive", err)
			}
		})
	}
}

func TestSessionBeginLoadingOnlyFromIdle(t *testing.T) {
	session := NewSession()
	if err := session.beginLoading([]string{"t"}); err != nil {
		t.Fatalf("beginLoading() error = %v", err)
	}
	if err := session.beginLoading([]string{"t"}); err == nil {
		t.Error("expected error starting to load while already loading")
	}

	session.activate(makeQuestions(1))
	if err := session.beginLoading([]string{"t"}); err == nil {
		t.Error("expected error starting to load while active")
	}
}

func TestSessionActivateTruncatesToScale(t *testing.T) {
	session := NewSession()
	session.beginLoading([]string{"t"})

	if err := session.activate(makeQuestions(maxQuestions + 4)); err != nil {
		t.Fatalf("activate() error = %v", err)
	}
	if len(session.Questions) != maxQuestions {
		t.Errorf("len(Questions) = %d, expected %d", len(session.Questions), maxQuestions)
	}
}

func TestSessionActivateRejectsEmpty(t *testing.T) {
	session := NewSession()
	session.beginLoading([]string{"t"})

	if err := session.activate(nil); err == nil {
		t.Error("expected error activating with no questions")
	}
}

func TestSessionViewWithholdsAnswer(t *testing.T) {
	session := NewSession()
	session.beginLoading([]string{"t"})
	session.activate(makeQuestions(2))

	view := session.view()
	if view.Question == "" || len(view.Options) == 0 {
		t.Fatalf("active view missing question: %+v", view)
	}
	if view.Total != 2 || view.Index != 0 {
		t.Errorf("view counters = %d/%d", view.Index, view.Total)
	}

	session.submit("right")
	session.submit("wrong")

	view = session.view()
	if view.State != models.QuizStateResult {
		t.Fatalf("state = %s, expected result", view.State)
	}
	if view.Question != "" || view.Options != nil {
		t.Errorf("result view should not carry a question: %+v", view)
	}
	if view.Score != 1 {
		t.Errorf("Score = %d, expected 1", view.Score)
	}
}
