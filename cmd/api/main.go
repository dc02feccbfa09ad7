package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-portal/internal/config"
	"github.com/jwalitptl/patient-portal/internal/email"
	"github.com/jwalitptl/patient-portal/internal/handler"
	authHandler "github.com/jwalitptl/patient-portal/internal/handler/auth"
	portalHandler "github.com/jwalitptl/patient-portal/internal/handler/portal"
	"github.com/jwalitptl/patient-portal/internal/middleware"
	"github.com/jwalitptl/patient-portal/internal/repository/postgres"
	"github.com/jwalitptl/patient-portal/internal/router"
	authService "github.com/jwalitptl/patient-portal/internal/service/auth"
	patientService "github.com/jwalitptl/patient-portal/internal/service/patient"
	"github.com/jwalitptl/patient-portal/internal/session"
	"github.com/jwalitptl/patient-portal/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	store, err := session.NewRedisStore(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to session store")
	}
	defer store.Close()

	sessionMgr := session.NewManager(store, cfg.Session.Secret, cfg.Session.Timeout())
	sessions := middleware.NewSessionMiddleware(sessionMgr, cfg.Session.CookieName, cfg.Mode == "release")

	patientRepo := postgres.NewPatientRepository(db)
	emailSvc := email.NewService(cfg.SMTP)
	authSvc := authService.NewService(patientRepo, emailSvc)
	patientSvc := patientService.NewService(patientRepo)

	m := metrics.NewMetrics("patient_portal")

	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc, sessionMgr, sessions, m)
	portalH := portalHandler.NewHandler(patientSvc, authSvc, sessionMgr, sessions)

	r := router.NewRouter(cfg, sessions, sessionMgr, authH, portalH, h, m)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Mode != "release" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
}
