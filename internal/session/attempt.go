package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mind-engage/certprep/internal/auth"
	"github.com/mind-engage/certprep/internal/protocol"
)

// AttemptPhase is the client-side lifecycle of the attempt record.
type AttemptPhase int

const (
	PhaseAbsent AttemptPhase = iota
	PhasePendingCreate
	PhaseActive
	PhaseSubmitted
)

type ErrorKind int

const (
	KindLoginRequired ErrorKind = iota + 1
	KindAccountNotFound
	KindTestNotFound
	KindRetryable
)

// AttemptError classifies a failed get-or-create.
type AttemptError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *AttemptError) Error() string { return e.Message }
func (e *AttemptError) Unwrap() error { return e.Err }

type AttemptCreator interface {
	EnsureAttempt(ctx context.Context, examID, testID, credential string) (string, error)
}

// AttemptManager owns the attempt id for one session. Once obtained the id
// never changes.
type AttemptManager struct {
	api   AttemptCreator
	creds auth.Credentials
	log   zerolog.Logger

	mu    sync.Mutex
	id    string
	phase AttemptPhase
}

func NewAttemptManager(api AttemptCreator, creds auth.Credentials, log zerolog.Logger) *AttemptManager {
	return &AttemptManager{api: api, creds: creds, log: log}
}

// Ensure returns the session's attempt id, creating or resuming it on the
// backend the first time. Failures are returned as *AttemptError.
func (m *AttemptManager) Ensure(ctx context.Context, examID, testID, credential string) (string, error) {
	m.mu.Lock()
	if m.id != "" {
		id := m.id
		m.mu.Unlock()
		return id, nil
	}
	if !auth.WellFormed(credential) {
		m.mu.Unlock()
		return "", &AttemptError{Kind: KindLoginRequired, Message: "please log in to start this test"}
	}
	m.phase = PhasePendingCreate
	m.mu.Unlock()

	id, err := m.api.EnsureAttempt(ctx, examID, testID, credential)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.phase = PhaseAbsent
		ae := classifyAttemptError(err)
		if ae.Kind == KindLoginRequired && m.creds != nil {
			if cerr := m.creds.Clear(ctx); cerr != nil {
				m.log.Warn().Err(cerr).Msg("clear rejected credential")
			}
		}
		m.log.Warn().Err(err).Str("exam_id", examID).Str("test_id", testID).
			Str("learner", auth.Subject(credential)).Msg("ensure attempt failed")
		return "", ae
	}
	m.id = id
	m.phase = PhaseActive
	m.log.Debug().Str("attempt_id", id).Msg("attempt active")
	return id, nil
}

func (m *AttemptManager) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func (m *AttemptManager) Phase() AttemptPhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *AttemptManager) MarkSubmitted() {
	m.mu.Lock()
	if m.id != "" {
		m.phase = PhaseSubmitted
	}
	m.mu.Unlock()
}

func classifyAttemptError(err error) *AttemptError {
	var se *protocol.StatusError
	if !errors.As(err, &se) {
		return &AttemptError{Kind: KindRetryable, Message: "could not start the test, please try again", Err: err}
	}
	ae := &AttemptError{Status: se.Status, Err: err}
	switch se.Status {
	case http.StatusUnauthorized:
		ae.Kind = KindLoginRequired
		ae.Message = "your session has expired, please log in again"
	case http.StatusNotFound:
		if mentionsAccount(se.Message) {
			ae.Kind = KindAccountNotFound
			ae.Message = "your account could not be found, please log in again"
		} else {
			ae.Kind = KindTestNotFound
			ae.Message = "this practice test could not be found"
		}
	default:
		ae.Kind = KindRetryable
		ae.Message = "could not start the test, please try again"
	}
	return ae
}

func mentionsAccount(msg string) bool {
	msg = strings.ToLower(msg)
	for _, w := range []string{"account", "user", "learner"} {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
