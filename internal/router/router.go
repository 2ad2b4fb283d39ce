package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/focusplus/backend/internal/handlers"
	"github.com/focusplus/backend/internal/middleware"
	"github.com/focusplus/backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.StudySessionHandler,
	groupHandler *handlers.GroupHandler,
	siteHandler *handlers.BlockedSiteHandler,
	appHandler *handlers.BlockedAppHandler,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Study Session Routes ────
		r.Route("/study-sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/start", sessionHandler.Start)
			r.Put("/end/{id}", sessionHandler.End)
			r.Get("/today", sessionHandler.Today)
		})

		// ──── Group Routes ────
		r.Route("/groups", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/my-groups", groupHandler.MyGroups)
			r.Post("/create", groupHandler.Create)
			r.Get("/available", groupHandler.Available)
			r.Post("/join/{id}", groupHandler.Join)
		})

		// ──── Blocked Site Routes ────
		r.Route("/blocked-sites", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", siteHandler.List)
			r.Post("/", siteHandler.Add)
			r.Delete("/{id}", siteHandler.Remove)
		})

		// ──── Blocked App Routes ────
		r.Route("/blocked-apps", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", appHandler.List)
			r.Post("/", appHandler.Add)
			r.Delete("/{id}", appHandler.Remove)
		})

		// ──── Chat Assistant ────
		r.Route("/chat", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", chatHandler.Ask)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
