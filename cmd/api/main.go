package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/acmecorp/invoicedesk/internal/api"
	"github.com/acmecorp/invoicedesk/internal/config"
	"github.com/acmecorp/invoicedesk/internal/service"
	"github.com/acmecorp/invoicedesk/internal/session"
	"github.com/acmecorp/invoicedesk/internal/store"
	"github.com/acmecorp/invoicedesk/internal/views"
)

func main() {
	_ = godotenv.Load() // allow .env for local runs

	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("loading config")
	}

	log := newLogger(cfg.Env)

	if err := store.Migrate(cfg.DBSource); err != nil {
		log.Fatal().Err(err).Msg("running migrations")
	}

	db, err := store.Open(context.Background(), cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database")
	}
	defer db.Close()

	// Layers
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	gate := session.NewGate(session.DefaultGateConfig())
	viewCache := views.NewCache()
	credentials := service.NewCredentialService(db, sessions)
	actions := service.NewActions(db, db, viewCache, credentials, cfg.BcryptCost, log)
	handler := api.NewHandler(db, actions, sessions, viewCache, cfg.PageSize, cfg.SessionTTL)

	router := api.NewRouter(handler, gate, sessions)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
