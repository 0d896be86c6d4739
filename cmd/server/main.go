package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/stanstork/pollroom-api/internal/authz"
	"github.com/stanstork/pollroom-api/internal/clock"
	"github.com/stanstork/pollroom-api/internal/config"
	"github.com/stanstork/pollroom-api/internal/handlers"
	"github.com/stanstork/pollroom-api/internal/middleware"
	"github.com/stanstork/pollroom-api/internal/migration"
	"github.com/stanstork/pollroom-api/internal/polls"
	"github.com/stanstork/pollroom-api/internal/repository"
	"github.com/stanstork/pollroom-api/internal/routes"
)

type application struct {
	config *config.Config
	db     *sql.DB
	clock  clock.Clock
	logger zerolog.Logger
}

func main() {
	// Load configuration.
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Set up structured, level-based logging.
	logger := newLogger(cfg.Log)
	log.SetFlags(0)
	log.SetOutput(logger)

	ctx := context.Background()

	// Initialize database connection.
	db, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to the database")
	}
	defer db.Close()

	// Run database migrations.
	if err := migration.RunMigrations(ctx, db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	app := &application{
		config: cfg,
		db:     db,
		clock:  clock.Real(),
		logger: logger,
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter()
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins(cfg.CORS.AllowedOrigins),
		h.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.ExposedHeaders([]string{middleware.RequestIDHeader}),
		h.AllowCredentials(),
	)(loggedRouter)
	recovered := h.RecoveryHandler(
		h.RecoveryLogger(log.Default()),
		h.PrintRecoveryStack(true),
	)(corsHandler)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(recovered)

	logger.Info().Msg("Application terminated.")
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return logger
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter() http.Handler {
	store := repository.NewStore(app.db)
	issuer := authz.NewIssuer(app.config.JWTSecret, app.config.TokenTTL, app.clock)

	pollService := polls.NewService(store, app.clock, polls.Config{
		InviteCodeLength:   app.config.Polls.InviteCodeLength,
		InviteCodeAttempts: app.config.Polls.InviteCodeAttempts,
	}, app.logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(store.Users, issuer, app.clock, app.logger)
	pollHandler := handlers.NewPollHandler(pollService, app.logger)

	return routes.NewRouter(handlers.HealthCheck(app.db), authHandler, pollHandler, issuer)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler) {
	server := &http.Server{
		Addr:              ":" + app.config.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		app.logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		app.logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		app.logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		app.logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		app.logger.Info().Msg("HTTP server shutdown complete.")
	}
}
