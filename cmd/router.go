package cmd

import (
	"net/http"

	"transconnect/internal/clock"
	"transconnect/internal/config"
	"transconnect/internal/handlers"
	"transconnect/internal/middleware"
	"transconnect/internal/services"
	"transconnect/internal/web"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func newRouter(
	cfg *config.Config,
	c clock.Clock,
	renderer *web.Renderer,
	hub *services.WSHub,
	store *services.SessionStore,
	sessionService *services.SessionService,
) http.Handler {
	sessions := middleware.NewSessions(store, sessionService, cfg.Session)
	pages := handlers.NewPages(renderer, c, middleware.SessionAuth{})

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(pages)
	authHandler := handlers.NewAuthHandler(pages, sessions)
	discoveryHandler := handlers.NewDiscoveryHandler(pages)
	messagesHandler := handlers.NewMessagesHandler(pages)
	profileSetupHandler := handlers.NewProfileSetupHandler(pages, cfg.Uploads.MaxRequestBytes)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", web.Static()))

	// Routes
	r.Group(func(r chi.Router) {
		r.Use(headersMiddleware)
		r.Use(sessions.Middleware)

		r.Get("/", pageHandler.Landing)
		r.Get("/safety", pageHandler.Safety)
		r.Get("/about", pageHandler.Info)
		r.Get("/community", pageHandler.Info)
		r.Get("/matches", pageHandler.Info)
		r.Get("/profile", pageHandler.Info)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/", authHandler.Show)
			r.Post("/", authHandler.Submit)
			r.Post("/toggle", authHandler.Toggle)
			r.Post("/signout", authHandler.SignOut)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", discoveryHandler.Show)
			r.Post("/refresh", discoveryHandler.Refresh)
			r.Post("/filters", discoveryHandler.Filters)
			r.Post("/{action}/{profileID}", discoveryHandler.Decide)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", messagesHandler.List)
			r.Get("/{conversationID}", messagesHandler.Show)
			r.Post("/{conversationID}", messagesHandler.Send)
			r.Post("/{conversationID}/call", messagesHandler.Call)
			r.Post("/{conversationID}/video", messagesHandler.VideoCall)
		})

		r.Route("/profile-setup", func(r chi.Router) {
			r.Get("/", profileSetupHandler.Show)
			r.Post("/", profileSetupHandler.Update)
			r.Post("/photos", profileSetupHandler.UploadPhotos)
		})

		// WebSocket route
		r.Get("/ws", wsHandler.HandleWebSocket)

		r.NotFound(pages.NotFound)
	})

	return r
}

// headersMiddleware keeps pages built from per-session state out of shared
// caches
func headersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
