package api

import (
	"net/http"

	"github.com/futig/visa-interview/internal/api/docs"
	interviewapi "github.com/futig/visa-interview/internal/api/interview"
	"github.com/futig/visa-interview/internal/api/middleware"
	"github.com/futig/visa-interview/internal/config"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router.
// rateLimiter may be nil when rate limiting is disabled.
func SetupRouter(
	interviewHandler *interviewapi.Handler,
	rateLimiter *middleware.RateLimiter,
	cfg *config.Config,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                   // Recover from panics
	r.Use(chimiddleware.RequestID)                   // Add request ID
	r.Use(middleware.Logger(logger))                 // Log requests
	r.Use(middleware.CORS(cfg.CORSOrigins))          // Handle CORS
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation endpoints
	docs.RegisterRoutes(r, cfg.APISpecFile)

	// Register routes
	interviewMiddleware := []func(http.Handler) http.Handler{middleware.Auth}
	if rateLimiter != nil {
		interviewMiddleware = append(interviewMiddleware, rateLimiter.Handler)
	}
	interviewapi.RegisterRoutes(r, interviewHandler, interviewMiddleware...)

	return r
}
