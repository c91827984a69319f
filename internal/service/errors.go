package service

import (
	"errors"
	"fmt"
)

// ErrSessionActive is returned when a search arrives for a session id that
// already has a live session. A session id is never reused concurrently.
var ErrSessionActive = errors.New("session id already has a live session")

// RetrievalError reports a vector store failure or timeout. It is always
// recovered locally: the session proceeds with empty semantic context.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// InterpretationError reports a language service failure or an unparseable
// response. Recovered locally via the fallback parser with degraded
// confidence.
type InterpretationError struct {
	Err error
}

func (e *InterpretationError) Error() string {
	return fmt.Sprintf("interpretation failed: %v", e.Err)
}

func (e *InterpretationError) Unwrap() error { return e.Err }

// RankingError reports an unexpected failure during filtering or scoring.
// Recovered locally by returning an empty result set with zero confidence.
type RankingError struct {
	Err error
}

func (e *RankingError) Error() string {
	return fmt.Sprintf("ranking failed: %v", e.Err)
}

func (e *RankingError) Unwrap() error { return e.Err }
