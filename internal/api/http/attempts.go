package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	authmw "github.com/mind-engage/certprep/internal/auth/middleware"
	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/protocol"
	"github.com/mind-engage/certprep/internal/rbac"
)

// POST /attempts {examId, testId} -> {attemptId}
// Get-or-create keyed by (learner, exam, test); testId may be a slug, an id
// or a 1-based position.
func EnsureAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.EnsureAttemptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		req.ExamID, req.TestID = strings.TrimSpace(req.ExamID), strings.TrimSpace(req.TestID)
		if req.ExamID == "" || req.TestID == "" {
			writeError(w, http.StatusBadRequest, "examId and testId required")
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		a, err := store.EnsureAttempt(r.Context(), sub, req.ExamID, req.TestID)
		if err != nil {
			log.Warn().Err(err).Str("learner", sub).Str("exam_id", req.ExamID).Str("test_id", req.TestID).Msg("ensure attempt")
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, protocol.EnsureAttemptResponse{AttemptID: a.ID})
	}
}

// POST /attempts/{attemptID}/submit {answers:[{questionId, selectedAnswers}]}
func SubmitAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		responses := make(map[string][]string, len(req.Answers))
		for _, a := range req.Answers {
			if a.QuestionID == "" {
				writeError(w, http.StatusBadRequest, "questionId required")
				return
			}
			responses[a.QuestionID] = a.SelectedAnswers
		}
		id := chi.URLParam(r, "attemptID")
		sub := authmw.SubjectFromContext(r.Context())
		a, err := store.SubmitAttempt(r.Context(), id, sub, responses)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		log.Info().Str("attempt_id", a.ID).Float64("percentage", a.Percentage).Bool("passed", a.Passed).Msg("attempt submitted")
		writeJSON(w, http.StatusOK, protocol.SubmitResult{
			Success:    true,
			Score:      a.Score,
			Percentage: a.Percentage,
			Passed:     a.Passed,
		})
	}
}

// GET /attempts/{attemptID}; learners only see their own.
func GetAttemptHandler(store exam.Store) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		own := a.LearnerID == authmw.SubjectFromContext(r.Context())
		if !checker.CanView(rbac.RoleFromContext(r.Context()), "attempt", own) {
			writeError(w, http.StatusNotFound, "attempt not found")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}
