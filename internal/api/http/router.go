package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authmw "github.com/mind-engage/certprep/internal/auth/middleware"
	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/rbac"
)

type RouterDeps struct {
	Store    exam.Store
	Auth     *authmw.AuthService
	PassMark float64
	// Middlewares run before routing, e.g. CORS.
	Middlewares []func(http.Handler) http.Handler
}

// NewRouter mounts the practice protocol. Catalog reads are public so the
// pre-test screen works before login; attempts and enrollment need a JWT.
func NewRouter(d RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	for _, mw := range d.Middlewares {
		r.Use(mw)
	}

	r.Post("/auth/login", authmw.LoginHandler(d.Auth, d.Store))
	r.Get("/exams/{examRef}", GetExamHandler(d.Store))
	r.Get("/exams/{examRef}/tests/{testRef}/questions", GetQuestionsHandler(d.Store))

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.Require("enrollment:view-own")).
			Get("/exams/{examRef}/enrollment", EnrollmentStatusHandler(d.Store))
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", EnsureAttemptHandler(d.Store))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(d.Store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", GetAttemptHandler(d.Store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", ListAttemptsHandler(d.Store))
		pr.With(rbac.Require("learner:change-password")).
			Post("/learners/password", ChangePasswordHandler(d.Store))

		pr.With(rbac.Require("exam:create")).
			Post("/exams", UploadExamHandler(d.Store, d.PassMark))
		pr.With(rbac.Require("enrollment:grant")).
			Post("/enrollments", EnrollHandler(d.Store))
		pr.With(rbac.Require("learners:upsert")).
			Post("/learners", UpsertLearnersHandler(d.Store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
