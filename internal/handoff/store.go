package handoff

import (
	"context"
	"errors"

	"github.com/mind-engage/certprep/internal/session"
)

// ErrNotFound is returned by Take when nothing was stored for the attempt,
// or it was already taken.
var ErrNotFound = errors.New("handoff not found")

// Store keeps the results hand-off between the session and the results
// screen. Take is read-once: a second Take for the same attempt fails.
type Store interface {
	Put(ctx context.Context, h session.Handoff) error
	Take(ctx context.Context, attemptID string) (session.Handoff, error)
}

var errNoAttempt = errors.New("handoff: empty attempt id")
