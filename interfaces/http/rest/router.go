// Package rest wires the chi router for the bookshop API.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"bookcrawl-backend/infrastructure/config"
	"bookcrawl-backend/interfaces/http/rest/handlers"
	"bookcrawl-backend/interfaces/http/rest/middleware"
	"bookcrawl-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg          *config.Config
	bookshops    *handlers.BookshopHandler
	events       *handlers.EventHandler
	jwtValidator *auth.JWTValidator
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	bookshops *handlers.BookshopHandler,
	events *handlers.EventHandler,
	jwtValidator *auth.JWTValidator,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:          cfg,
		bookshops:    bookshops,
		events:       events,
		jwtValidator: jwtValidator,
		logger:       logger,
	}
}

// Setup configures all routes and middleware. Reads are public and serve the
// approved-only view to anonymous callers; every write sits behind the admin
// group.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.indybookcrawl.com"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	limiter := auth.NewIPRateLimiter(rt.cfg.RateLimitPerMinute)

	router.Route("/api/v1", func(r chi.Router) {
		// Authorizer headers are only trustworthy inside Lambda, where the
		// API Gateway authorizer sets them; on the plain HTTP server they
		// are client input.
		r.Use(middleware.Authenticate(rt.jwtValidator, limiter, rt.cfg.IsLambda, rt.logger))

		r.Route("/bookshops", func(r chi.Router) {
			r.Get("/", rt.bookshops.ListBookshops)
			r.Get("/{bookshopID}", rt.bookshops.GetBookshop)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", rt.bookshops.CreateBookshop)
				r.Patch("/{bookshopID}", rt.bookshops.UpdateBookshop)
				r.Delete("/{bookshopID}", rt.bookshops.DeleteBookshop)
				r.Post("/{bookshopID}/approve", rt.bookshops.ApproveBookshop)
			})
		})

		r.Get("/search", rt.bookshops.SearchBookshops)
		r.Get("/events", rt.events.ListEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/admin/bookshops", rt.bookshops.AdminListBookshops)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
