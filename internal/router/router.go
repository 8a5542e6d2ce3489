package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/devfolio/portfolio-api/docs"
	"github.com/devfolio/portfolio-api/internal/api/auth"
	"github.com/devfolio/portfolio-api/internal/api/project"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler            auth.Handler
	ProjectHandler         project.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)

			r.Get("/project", cfg.ProjectHandler.List)
			r.Get("/project/category/{category}", cfg.ProjectHandler.GetByCategory)
			r.Get("/project/status/{status}", cfg.ProjectHandler.GetByStatus)
			r.Get("/project/{id}", cfg.ProjectHandler.GetByID)
		})

		// Routes below require a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/logout", cfg.AuthHandler.Logout)
			r.Get("/me", cfg.AuthHandler.Me)

			r.Post("/project", cfg.ProjectHandler.Create)
			r.Put("/project/{id}", cfg.ProjectHandler.Update)
			r.Delete("/project/{id}", cfg.ProjectHandler.Delete)
		})
	})

	return r
}
