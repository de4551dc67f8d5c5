package http

import (
	"net/http"
	"strconv"
	"strings"

	authmw "github.com/mind-engage/certprep/internal/auth/middleware"
	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/rbac"
)

// GET /attempts?exam_id=...&learner_id=...&status=...&limit=50&offset=0
// Without attempt:view-all the learner filter is forced to the caller.
func ListAttemptsHandler(store exam.Store) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := exam.AttemptFilter{
			ExamID:    strings.TrimSpace(q.Get("exam_id")),
			LearnerID: strings.TrimSpace(q.Get("learner_id")),
			Status:    exam.AttemptStatus(strings.TrimSpace(q.Get("status"))),
			Limit:     parseIntDefault(q.Get("limit"), exam.DefaultListLimit),
			Offset:    parseIntDefault(q.Get("offset"), 0),
		}
		if !checker.CanView(rbac.RoleFromContext(r.Context()), "attempt", false) {
			f.LearnerID = authmw.SubjectFromContext(r.Context())
		}
		switch f.Status {
		case "", exam.AttemptInProgress, exam.AttemptSubmitted:
		default:
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}

		list, err := store.ListAttempts(r.Context(), f)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
