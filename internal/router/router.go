package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"lexica-backend/internal/handlers"
	"lexica-backend/internal/middleware"
	"lexica-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	deckHandler *handlers.DeckHandler,
	cardHandler *handlers.CardHandler,
	sessionHandler *handlers.SessionHandler,
	progressionHandler *handlers.ProgressionHandler,
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

		// ──── Deck & Card Routes ────
		r.Route("/decks", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", deckHandler.Create)
			r.Get("/", deckHandler.List)
			r.Get("/{id}", deckHandler.Get)
			r.Get("/{id}/stats", deckHandler.Stats)
			r.Delete("/{id}", deckHandler.Delete)
			r.Post("/{id}/cards", cardHandler.Create)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}", cardHandler.Get)
			r.Get("/{id}/difficulty", cardHandler.Difficulty)
			r.Put("/{id}", cardHandler.Update)
		})

		// ──── Practice Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/questions", sessionHandler.Questions)
			r.Post("/answers", sessionHandler.Answer)
			r.Post("/complete", sessionHandler.Complete)
		})

		// ──── Progression Routes ────
		r.Route("/progression", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", progressionHandler.Get)
			r.Get("/sessions", progressionHandler.Sessions)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
