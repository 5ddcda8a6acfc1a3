// Package bot owns the automation lifecycle: the controller that starts and
// stops the background loop, the loop itself, and the contract it requires
// from the browser-driving layer.
package bot

import (
	"context"
	"errors"
)

// Lifecycle errors returned synchronously by Start and Stop.
var (
	ErrAlreadyRunning = errors.New("bot is already running")
	ErrNotRunning     = errors.New("bot is not running")
)

// Candidate is a discovered tweet eligible for automated actions.
type Candidate struct {
	ID        string
	Author    string
	Text      string
	CanReply  bool
	CanLike   bool
	CanFollow bool
}

// Driver is the browser-driving collaborator the loop depends on. Transient
// failures (a missing element, a stale candidate) must be wrapped with
// Transient so the loop can skip the candidate without consuming quota; any
// other error halts the loop.
type Driver interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
	Reply(ctx context.Context, c Candidate, text string) error
	Like(ctx context.Context, c Candidate) error
	Follow(ctx context.Context, author string) error
	Close() error
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks an error as a skippable single-action failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err is (or wraps) a transient action failure.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}
