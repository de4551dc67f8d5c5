package http

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	authmw "github.com/mind-engage/certprep/internal/auth/middleware"
	"github.com/mind-engage/certprep/internal/exam"
)

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// POST /learners/password; the caller changes their own password.
func ChangePasswordHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.NewPassword == "" {
			writeError(w, http.StatusBadRequest, "new password required")
			return
		}

		l, err := store.GetLearner(r.Context(), sub)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(l.PasswordHash), []byte(req.OldPassword)) != nil {
			writeError(w, http.StatusForbidden, "incorrect old password")
			return
		}
		if l.PasswordHash, err = authmw.HashPassword(req.NewPassword); err != nil {
			writeError(w, http.StatusInternalServerError, "hash password")
			return
		}
		if err := store.PutLearner(r.Context(), l); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
