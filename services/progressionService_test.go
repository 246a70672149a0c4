package services

import (
	"testing"
	"time"

	"policypath/models"
)

var noon = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func TestApplyEventLoginIdempotentSameDay(t *testing.T) {
	profile := models.UserProfile{OwnerID: "owner-1", XP: 100, Streak: 3,
		LastActiveDate: noon.Add(-48 * time.Hour)}

	first := ApplyEvent(profile, models.EventLogin, noon)
	if first.XP != 100+LoginBonusXP {
		t.Errorf("first login XP = %d, expected %d", first.XP, 100+LoginBonusXP)
	}

	second := ApplyEvent(first, models.EventLogin, noon.Add(2*time.Hour))
	if second.XP != first.XP {
		t.Errorf("same-day login changed XP: %d -> %d", first.XP, second.XP)
	}
	if second.Streak != first.Streak {
		t.Errorf("same-day login changed streak: %d -> %d", first.Streak, second.Streak)
	}
}

func TestApplyEventStreakArithmetic(t *testing.T) {
	tests := []struct {
		name       string
		lastActive time.Time
		event      models.ProgressionEvent
		wantStreak int
	}{
		{"yesterday extends streak on login", noon.AddDate(0, 0, -1), models.EventLogin, 4},
		{"yesterday extends streak on mastery", noon.AddDate(0, 0, -1), models.EventMastery, 4},
		{"yesterday extends streak on quiz pass", noon.AddDate(0, 0, -1), models.EventQuizPass, 4},
		{"gap resets streak", noon.AddDate(0, 0, -3), models.EventLogin, 1},
		{"gap resets streak on mastery", noon.AddDate(0, 0, -10), models.EventMastery, 1},
		{"same day leaves streak alone", noon.Add(-time.Hour), models.EventMastery, 3},
		{"fresh profile starts at 1", time.Time{}, models.EventMastery, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := models.UserProfile{OwnerID: "owner-1", Streak: 3, LastActiveDate: tt.lastActive}

			updated := ApplyEvent(profile, tt.event, noon)
			if updated.Streak != tt.wantStreak {
				t.Errorf("Streak = %d, expected %d", updated.Streak, tt.wantStreak)
			}
		})
	}
}

func TestApplyEventMastery(t *testing.T) {
	profile := models.UserProfile{OwnerID: "owner-1", XP: 10, TopicsMastered: 2,
		LastActiveDate: noon.Add(-time.Hour)}

	updated := ApplyEvent(profile, models.EventMastery, noon)

	if updated.XP != 10+MasteryBonusXP {
		t.Errorf("XP = %d, expected %d", updated.XP, 10+MasteryBonusXP)
	}
	if updated.TopicsMastered != 3 {
		t.Errorf("TopicsMastered = %d, expected 3", updated.TopicsMastered)
	}
	if !updated.LastActiveDate.Equal(noon) {
		t.Errorf("LastActiveDate = %v, expected %v", updated.LastActiveDate, noon)
	}

	// Mastery on the same day credits again; it is not day-gated.
	again := ApplyEvent(updated, models.EventMastery, noon.Add(time.Minute))
	if again.XP != updated.XP+MasteryBonusXP {
		t.Errorf("second same-day mastery XP = %d, expected %d", again.XP, updated.XP+MasteryBonusXP)
	}
}

func TestApplyEventQuizPass(t *testing.T) {
	profile := models.UserProfile{OwnerID: "owner-1", XP: 5, LastActiveDate: noon.Add(-time.Hour)}

	updated := ApplyEvent(profile, models.EventQuizPass, noon)
	if updated.XP != 5+QuizPassBonusXP {
		t.Errorf("XP = %d, expected %d", updated.XP, 5+QuizPassBonusXP)
	}
	if updated.TopicsMastered != 0 {
		t.Errorf("quiz pass should not touch TopicsMastered, got %d", updated.TopicsMastered)
	}
}

func TestApplyEventDeterministic(t *testing.T) {
	profile := models.UserProfile{OwnerID: "owner-1", XP: 42, Streak: 2,
		LastActiveDate: noon.AddDate(0, 0, -1)}

	first := ApplyEvent(profile, models.EventMastery, noon)
	second := ApplyEvent(profile, models.EventMastery, noon)

	if first != second {
		t.Errorf("ApplyEvent not deterministic: %+v vs %+v", first, second)
	}
}

func TestApplyEventDayBoundaryNotDuration(t *testing.T) {
	// 23:30 yesterday to 00:30 today is under an hour apart but crosses the
	// calendar boundary.
	lastNight := time.Date(2026, 8, 28, 23, 30, 0, 0, time.UTC)
	earlyToday := time.Date(2026, 8, 29, 0, 30, 0, 0, time.UTC)

	profile := models.UserProfile{OwnerID: "owner-1", Streak: 5, LastActiveDate: lastNight}

	updated := ApplyEvent(profile, models.EventLogin, earlyToday)
	if updated.Streak != 6 {
		t.Errorf("Streak = %d, expected 6 across midnight", updated.Streak)
	}
	if updated.XP != LoginBonusXP {
		t.Errorf("XP = %d, expected login bonus across midnight", updated.XP)
	}
}

func TestProgressionServiceCredit(t *testing.T) {
	repo := newFakeProfileRepo()
	signals := &recordingSignals{}
	service := NewProgressionService(repo, signals)

	profile, err := service.Credit("owner-1", models.EventMastery, noon)
	if err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if profile.XP != MasteryBonusXP {
		t.Errorf("XP = %d, expected %d", profile.XP, MasteryBonusXP)
	}

	stored, _ := repo.GetProfile("owner-1")
	if stored.XP != MasteryBonusXP {
		t.Errorf("stored XP = %d, expected %d", stored.XP, MasteryBonusXP)
	}
	if signals.progression != 1 {
		t.Errorf("progression signals = %d, expected 1", signals.progression)
	}
}

func TestProgressionServiceSameDayLoginEmitsNoSignal(t *testing.T) {
	repo := newFakeProfileRepo()
	signals := &recordingSignals{}
	service := NewProgressionService(repo, signals)

	if _, err := service.Credit("owner-1", models.EventLogin, noon); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if _, err := service.Credit("owner-1", models.EventLogin, noon.Add(time.Hour)); err != nil {
		t.Fatalf("second Credit() error = %v", err)
	}

	stored, _ := repo.GetProfile("owner-1")
	if stored.XP != LoginBonusXP {
		t.Errorf("XP = %d, expected single login bonus", stored.XP)
	}
	if signals.progression != 1 {
		t.Errorf("progression signals = %d, expected 1 (no-op emits nothing)", signals.progression)
	}
}
