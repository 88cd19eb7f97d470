package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transconnect/internal/clock"
	"transconnect/internal/config"
	"transconnect/internal/repository"
	"transconnect/internal/services"
	"transconnect/internal/web"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level, cfg.Log.Pretty)

	if cfg.Session.Secret == "" {
		cfg.Session.Secret = randomSecret()
		log.Warn().Msg("No session secret configured; sessions will not survive a restart")
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	app := newApp(cfg, clock.Real(), renderer)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go app.store.RunSweeper(sweepCtx, cfg.Session.SweepInterval)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown
	app.hub.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopSweeper()
	app.store.Close()

	log.Info().Msg("Server exited")
}

// app is the wired application: the router plus what must be closed on shutdown
type app struct {
	router http.Handler
	hub    *services.WSHub
	store  *services.SessionStore
}

// newApp wires repositories, services and handlers the same way for the
// real server and for tests
func newApp(cfg *config.Config, c clock.Clock, renderer *web.Renderer, opts ...services.MessagingOption) *app {
	// Initialize repositories
	profileRepo := repository.NewProfileRepository()
	conversationRepo := repository.NewConversationRepository()

	// Initialize services
	hub := services.NewWSHub()
	factory := &services.ViewFactory{
		Profiles:         profileRepo,
		Conversations:    conversationRepo,
		Clock:            c,
		Simulation:       cfg.Simulation,
		MaxPhotoBytes:    cfg.Uploads.MaxPhotoBytes,
		MessagingOptions: opts,
	}
	store := services.NewSessionStore(hub, factory, cfg.Session.IdleTTL)
	sessionService := services.NewSessionService(cfg.Session.Secret, c)

	return &app{
		router: newRouter(cfg, c, renderer, hub, store, sessionService),
		hub:    hub,
		store:  store,
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string, pretty bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate session secret")
	}
	return hex.EncodeToString(b)
}
