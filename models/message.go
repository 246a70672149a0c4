package models

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is one entry in a learner's conversation log. The log is
// append-only within a session and persisted as a whole per owner.
type Message struct {
	Role     string `json:"role"`
	Text     string `json:"text"`
	Citation string `json:"citation,omitempty"`
	Saved    bool   `json:"saved,omitempty"`
}

type ChatRequest struct {
	Query string `json:"query"`
}

type ChatResponse struct {
	Messages  []Message `json:"messages"`
	Saved     bool      `json:"saved"`
	Duplicate bool      `json:"duplicate"`
}
