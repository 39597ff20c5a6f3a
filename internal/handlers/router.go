package handlers

import (
	"net/http"
	"time"

	customMiddleware "feedbackhub-backend/internal/middleware"
	"feedbackhub-backend/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
	// LoginLimiter throttles POST /api/login when set.
	LoginLimiter ratelimiter.Limiter
	// AccessLog enables chi's request logger.
	AccessLog bool
}

func NewRouter(cfg RouterConfig, authHandler *AuthHandler, feedbackHandler *FeedbackHandler) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Customer Feedback System API is running!"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "feedbackhub-backend"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes (no auth required)
		login := r.With()
		if cfg.LoginLimiter != nil {
			login = r.With(customMiddleware.RateLimit(cfg.LoginLimiter))
		}
		login.Post("/login", authHandler.Login)
		r.Post("/feedback", feedbackHandler.SubmitFeedback)

		// Protected routes (admin token required)
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AdminAuth(authHandler.gate))

			r.Get("/admin/feedback", feedbackHandler.ListFeedback)
			r.Put("/feedback/{id}", feedbackHandler.UpdateFeedback)
			r.Patch("/feedback/{id}", feedbackHandler.UpdateFeedback)
			r.Delete("/feedback/{id}", feedbackHandler.DeleteFeedback)
		})
	})

	return r
}
