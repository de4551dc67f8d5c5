package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	api "github.com/mind-engage/certprep/internal/api/http"
	authmw "github.com/mind-engage/certprep/internal/auth/middleware"
	"github.com/mind-engage/certprep/internal/config"
	"github.com/mind-engage/certprep/internal/db"
	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/grading"
	"github.com/mind-engage/certprep/internal/logging"
)

func main() {
	cfg := config.FromEnv()
	logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("db open failed")
	}
	defer dbh.Close()
	store := exam.NewSQLStore(dbh, cfg.DBDriver, grading.NewDefaultGrader())

	if cfg.AdminPassHash != "" {
		admin := exam.Learner{ID: cfg.AdminUser, Username: cfg.AdminUser, PasswordHash: cfg.AdminPassHash, Role: "admin"}
		if err := store.PutLearner(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("seed admin")
		}
	}

	// --- Router ---
	r := api.NewRouter(api.RouterDeps{
		Store:    store,
		Auth:     authmw.NewAuthService(cfg.AuthHMACSecret),
		PassMark: cfg.PassMark,
		Middlewares: []func(http.Handler) http.Handler{
			cors.Handler(cors.Options{
				AllowedOrigins:   cfg.CORSOrigins,
				AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders:   []string{"Authorization", "Content-Type"},
				ExposedHeaders:   []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           300,
			}),
		},
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("mode", string(cfg.Mode)).Str("db", cfg.DBDriver).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("serve")
	}
}
