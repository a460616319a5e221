package main

import (
	"context"
	"fmt"
	"os"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/ratewell/backend/internal/realtime"
	"github.com/ratewell/backend/internal/router"
	"github.com/ratewell/backend/pkg/config"
	"github.com/ratewell/backend/pkg/firebase"
	"github.com/ratewell/backend/pkg/logger"
	"github.com/ratewell/backend/validators"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "ratewell-api",
		Level:       cfg.LogLevel,
		Output:      os.Stderr,
	})

	// All failure paths funnel through run so its defers (database close)
	// execute before the process exits.
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("initializing databases: %w", err)
	}
	defer db.CloseDB()

	// Firebase is optional; without credentials the firebase-login route
	// answers 503 and everything else works.
	var firebaseAuthClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.Init(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			return fmt.Errorf("initializing Firebase: %w", err)
		}
		firebaseAuthClient = firebaseApp.AuthClient
	} else {
		log.Warn().Msg("FIREBASE_CREDENTIALS_PATH not set, Firebase login disabled")
	}

	// Realtime core: in-memory mailboxes and the reaction event bus. Both
	// are process-local; restarting the server empties them.
	store := realtime.NewStore(cfg.MailboxSize, log)
	bus := realtime.NewBus(log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, log)
	if err := router.SetupRoutes(e, cfg, log, db.Postgres, db.Mongo, firebaseAuthClient, store, bus); err != nil {
		return fmt.Errorf("setting up routes: %w", err)
	}

	log.Info().Str("port", cfg.Port).Msg("starting server")
	return e.Start(":" + cfg.Port)
}
