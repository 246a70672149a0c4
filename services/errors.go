package services

import "errors"

var (
	// ErrEmptyVault rejects a quiz start before any network call when the
	// learner has no mastered topics.
	ErrEmptyVault = errors.New("no mastered topics in vault")

	// ErrTurnInFlight rejects a chat submission while a previous turn for
	// the same owner is still outstanding.
	ErrTurnInFlight = errors.New("a turn is already in flight for this session")

	// ErrQuizNotActive rejects submissions outside the active quiz state.
	ErrQuizNotActive = errors.New("no active quiz")

	// ErrEmptyQuery rejects a chat turn whose query is empty after trimming.
	ErrEmptyQuery = errors.New("query cannot be empty")
)

// TransportError marks a failure reaching the remote model or the store.
// The triggering operation surfaces it as retry-eligible and leaves prior
// state intact.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError marks a remote model reply that could not be
// turned into the expected structure.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return "malformed model response: " + e.Err.Error()
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
