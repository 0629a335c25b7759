package mail

import (
	"errors"
	"fmt"
)

// Configuration errors, checked before any provider call is made.
var (
	ErrNoTiers            = errors.New("at least one retrieval tier is required")
	ErrInvalidMessageCap  = errors.New("per-thread message cap must be positive")
	ErrInvalidThreadCount = errors.New("target thread count must be positive")
	ErrInvalidPageSize    = errors.New("page size must be positive")
	ErrMissingProvider    = errors.New("mail provider is required")
)

// ErrNoContent is returned by a Retriever when a message has no readable
// text. The pipeline skips such threads instead of failing the run.
var ErrNoContent = errors.New("message has no readable content")

// RetrievalError wraps a provider failure with where in the tier walk it
// happened. The source never retries; the error goes straight to the
// caller.
type RetrievalError struct {
	Op   string // "list" or "get"
	Tier int    // 0-based index of the tier being paged
	Err  error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("mail retrieval %s failed on tier %d: %v", e.Op, e.Tier, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
