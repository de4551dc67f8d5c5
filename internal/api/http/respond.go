package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/protocol"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends {"message": ...}. The client reads the message to tell
// a missing account from a missing test on 404.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, protocol.ErrorBody{Message: msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "learner account not found")
	case errors.Is(err, exam.ErrExamNotFound):
		writeError(w, http.StatusNotFound, "exam not found")
	case errors.Is(err, exam.ErrTestNotFound):
		writeError(w, http.StatusNotFound, "practice test not found")
	case errors.Is(err, exam.ErrAttemptNotFound):
		writeError(w, http.StatusNotFound, "attempt not found")
	case errors.Is(err, exam.ErrNotOwner):
		writeError(w, http.StatusForbidden, "attempt belongs to another learner")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
