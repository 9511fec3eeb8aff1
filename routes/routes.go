package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/diefthyntis/twoaut-auth-api/app"
	"github.com/diefthyntis/twoaut-auth-api/handlers"
	"github.com/diefthyntis/twoaut-auth-api/models"
)

// SetupRoutes configures all application routes and middleware.
// The auth middleware runs in two stages: Authenticate attaches a principal
// when a valid token is present but never rejects, and the RequireAuth /
// RequireRole guards on protected subtrees decide whether anonymous access
// is allowed. The explicit route table below replaces declarative
// permitAll-style annotations.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	// Token authentication runs once per request, before any guard
	r.Use(deps.AuthMiddleware.Authenticate)

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	// Public auth endpoints
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signin", handlers.SigninHandler(deps))
		r.Post("/signup", handlers.SignupHandler(deps))
	})

	// Demo content tiers
	r.Route("/api/test", func(r chi.Router) {
		r.Get("/all", handlers.PublicContentHandler(deps))

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/user", handlers.UserContentHandler(deps))
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole(string(models.RoleModerator), string(models.RoleAdmin)))
			r.Get("/mod", handlers.ModeratorContentHandler(deps))
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole(string(models.RoleAdmin)))
			r.Get("/admin", handlers.AdminContentHandler(deps))
		})
	})

	// Current user
	r.Route("/api/users", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Get("/me", handlers.GetCurrentUserHandler(deps))
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
