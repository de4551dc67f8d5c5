package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/certprep/internal/auth/middleware"
	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/protocol"
)

// GET /exams/{examRef}/enrollment -> {enrolled}
func EnrollmentStatusHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := store.IsEnrolled(r.Context(), authmw.SubjectFromContext(r.Context()), chi.URLParam(r, "examRef"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, protocol.EnrollmentResponse{Enrolled: ok})
	}
}

// POST /enrollments {learnerId, examId}  (admin)
func EnrollHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LearnerID string `json:"learnerId"`
			ExamID    string `json:"examId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		l, err := store.GetLearner(r.Context(), req.LearnerID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if err := store.Enroll(r.Context(), l.ID, req.ExamID); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
