package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/protocol"
)

// GET /exams/{examRef}  (slug or id; tests listed without questions)
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := store.GetExam(r.Context(), chi.URLParam(r, "examRef"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, def)
	}
}

// GET /exams/{examRef}/tests/{testRef}/questions
func GetQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, qs, err := store.GetQuestions(r.Context(), chi.URLParam(r, "examRef"), chi.URLParam(r, "testRef"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, protocol.QuestionSet{
			Questions: qs,
			Test: protocol.TestInfo{
				ID:         t.ID,
				Name:       t.Name,
				Duration:   t.Duration,
				Difficulty: t.Difficulty,
			},
		})
	}
}

// POST /exams  (admin) body: exam.Definition with tests and questions.
// Exams without a pass mark get defaultPassMark.
func UploadExamHandler(store exam.Store, defaultPassMark float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var def exam.Definition
		if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if def.PassMark <= 0 {
			def.PassMark = defaultPassMark
		}
		saved, err := store.PutExam(r.Context(), def)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		for i := range saved.Tests {
			saved.Tests[i].Questions = nil
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}
