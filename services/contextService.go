package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"policypath/models"

	"github.com/samber/lo"
)

const (
	// historyWindow is the number of trailing messages rendered into the
	// turn payload.
	historyWindow = 3

	// previousBotLimit bounds the previous tutor message embedded in the
	// payload.
	previousBotLimit = 280

	turnInstructions = `You are PolicyPath, a tutor for the Indian Constitution.

If your previous message posed a question to the learner, treat the new input as an answer and grade it: say clearly whether it is correct, explain why, and give the correct answer if needed.
Otherwise, treat the new input as a new topic request and teach that topic.

When the learner has just demonstrated mastery of a concept, append a hidden block to your reply in exactly this form:
||VAULT_START||Topic: <short concept title>
Summary: <one-line summary>||VAULT_END||
Everything before the block is shown to the learner; the block itself never is.`
)

// TurnPayload is the deterministic packaging of one chat turn for the
// remote mentor.
type TurnPayload struct {
	Query          string
	HistoryContext string
	PreviousBot    string
	Instructions   string
}

// BuildTurn packages the trailing conversation window and the new learner
// input. It is pure construction: the two-mode protocol above is advisory
// text for the mentor, never inferred or enforced here.
func BuildTurn(history []models.Message, newUserText string) (*TurnPayload, error) {
	query := strings.TrimSpace(newUserText)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	lines := lo.Map(window, func(m models.Message, _ int) string {
		return roleTag(m.Role) + ": " + m.Text
	})

	previousBot := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleBot {
			previousBot = truncate(history[i].Text, previousBotLimit)
			break
		}
	}

	return &TurnPayload{
		Query:          query,
		HistoryContext: strings.Join(lines, "\n"),
		PreviousBot:    previousBot,
		Instructions:   turnInstructions,
	}, nil
}

// Prompt renders the payload into the single user message sent to the
// mentor.
func (p *TurnPayload) Prompt() string {
	var b strings.Builder

	if p.HistoryContext != "" {
		fmt.Fprintf(&b, "Recent conversation:\n%s\n\n", p.HistoryContext)
	}
	if p.PreviousBot != "" {
		fmt.Fprintf(&b, "Your previous message was:\n%s\n\n", p.PreviousBot)
	}
	fmt.Fprintf(&b, "Learner input: %s", p.Query)

	return b.String()
}

func roleTag(role string) string {
	if role == models.RoleUser {
		return "User"
	}
	return "Tutor"
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
