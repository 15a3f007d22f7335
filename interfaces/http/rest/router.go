package rest

import (
	"net/http"

	"capsulehub/application/commands/bus"
	querybus "capsulehub/application/queries/bus"
	"capsulehub/infrastructure/config"
	"capsulehub/interfaces/http/rest/handlers"
	"capsulehub/interfaces/http/rest/middleware"
	pkgerrors "capsulehub/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	cfg          *config.Config
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		cfg:          cfg,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1/provenance", func(r chi.Router) {
		provenanceHandler := handlers.NewProvenanceHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
		graphHandler := handlers.NewGraphHandler(rt.queryBus, rt.errorHandler, rt.logger)

		// Corpus-wide graph endpoints come before the {capsuleID} wildcard
		r.Get("/graph/overview", graphHandler.Overview)
		r.Get("/graph", graphHandler.FullGraph)

		r.Post("/register", provenanceHandler.Register)
		r.Post("/batch/register", provenanceHandler.BatchRegister)
		r.Post("/cite", provenanceHandler.Cite)

		r.Route("/{capsuleID}", func(r chi.Router) {
			r.Get("/", provenanceHandler.GetBundle)
			r.Post("/version", provenanceHandler.AddVersion)
			r.Get("/versions", provenanceHandler.GetVersions)
			r.Post("/evolve", provenanceHandler.Evolve)
			r.Get("/evolution", provenanceHandler.GetEvolution)
			r.Get("/citations", provenanceHandler.GetCitations)
			r.Post("/validate", provenanceHandler.Validate)
			r.Get("/validations", provenanceHandler.GetValidations)
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
