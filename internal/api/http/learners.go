package http

import (
	"encoding/json"
	"net/http"
	"strings"

	authmw "github.com/mind-engage/certprep/internal/auth/middleware"
	"github.com/mind-engage/certprep/internal/exam"
)

type learnerRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"` // usually "learner"
	Password string `json:"password,omitempty"`
}

// POST /learners  (admin) body: one learnerRow or an array of them.
func UpsertLearnersHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		var rows []learnerRow
		if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(raw, &rows); err != nil {
				writeError(w, http.StatusBadRequest, "expected learner or array of learners")
				return
			}
		} else {
			var one learnerRow
			if err := json.Unmarshal(raw, &one); err != nil {
				writeError(w, http.StatusBadRequest, "expected learner or array of learners")
				return
			}
			rows = []learnerRow{one}
		}

		out := make([]learnerRow, 0, len(rows))
		for _, row := range rows {
			row.Username = strings.TrimSpace(row.Username)
			if row.Username == "" {
				writeError(w, http.StatusBadRequest, "username required")
				return
			}
			if row.Role == "" {
				row.Role = "learner"
			}
			l := exam.Learner{ID: row.ID, Username: row.Username, Role: row.Role}
			if existing, err := store.GetLearner(r.Context(), row.Username); err == nil {
				l.ID, l.PasswordHash = existing.ID, existing.PasswordHash
			}
			if row.Password != "" {
				h, err := authmw.HashPassword(row.Password)
				if err != nil {
					writeError(w, http.StatusInternalServerError, "hash password")
					return
				}
				l.PasswordHash = h
			}
			if err := store.PutLearner(r.Context(), l); err != nil {
				writeStoreError(w, err)
				return
			}
			saved, err := store.GetLearner(r.Context(), l.Username)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			out = append(out, learnerRow{ID: saved.ID, Username: saved.Username, Role: saved.Role})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
