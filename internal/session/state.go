package session

import (
	"errors"
	"fmt"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
	StatePreTest
	StateInProgress
	StateSubmitting
	StateRedirected
)

var stateNames = [...]string{"idle", "loading", "error", "pre_test", "in_progress", "submitting", "redirected"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Signal is a UI prompt raised instead of an error.
type Signal int

const (
	SignalNone Signal = iota
	SignalLoginRequired
	SignalUpgradePrompt
	SignalConfirmSubmit
)

var signalNames = [...]string{"", "login_required", "upgrade_prompt", "confirm_submit"}

func (s Signal) String() string {
	if int(s) < len(signalNames) {
		return signalNames[s]
	}
	return fmt.Sprintf("signal(%d)", int(s))
}

func (s Signal) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Origin records which step failed, which decides what Retry does.
type Origin int

const (
	OriginLoad Origin = iota + 1
	OriginAttempt
	OriginSubmit
)

var (
	ErrNotInProgress = errors.New("session is not in progress")
	ErrWrongState    = errors.New("operation not allowed in current state")
	ErrBusy          = errors.New("operation already running")
	ErrClosed        = errors.New("session closed")
	ErrNoQuestions   = errors.New("test has no questions")
	ErrTestMissing   = errors.New("practice test could not be resolved")
	ErrRejected      = errors.New("submission rejected")
)

// SessionError is the user-facing failure stored on the session.
type SessionError struct {
	Origin  Origin
	Message string
	Err     error
}

func (e *SessionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SessionError) Unwrap() error { return e.Err }
