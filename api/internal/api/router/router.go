// api/internal/api/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/api/handlers"
	api_middleware "github.com/jobyojnahub-a11y/decrypt-api/api/internal/api/middleware"
)

// RouterConfig defines the strict dependencies required to build the API routing tree.
type RouterConfig struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	CipherHandler  *handlers.CipherHandler
	HealthHandler  *handlers.HealthHandler
	WSHandler      *handlers.WebSocketHandler
	Logger         zerolog.Logger
}

// NewRouter constructs the Chi multiplexer, attaches global middleware, and wires all endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// =========================================================================
	// 1. Global Gateway Middleware Pipeline
	// =========================================================================

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api_middleware.StructuredLogger(cfg.Logger))
	r.Use(api_middleware.RecoverJSON)

	// 🛡️ Bound every request body (OOM Protection)
	r.Use(api_middleware.MaxBytes(cfg.MaxBodyBytes))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	// =========================================================================
	// 2. Routing Tree
	// =========================================================================

	r.Get("/", cfg.HealthHandler.Index)

	r.Route("/api", func(r chi.Router) {
		// ---------------------------------------------------------------------
		// Request/Response Routes (bounded by the request timeout)
		// ---------------------------------------------------------------------
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.RequestTimeout))

			r.Get("/health", cfg.HealthHandler.Check)
			r.Post("/encrypt", cfg.CipherHandler.Encrypt)
			r.Post("/decrypt", cfg.CipherHandler.Decrypt)
			r.Post("/decrypt/batch", cfg.CipherHandler.DecryptBatch)
		})

		// ---------------------------------------------------------------------
		// Long-Lived Sessions
		// ---------------------------------------------------------------------
		// A hijacked connection cannot receive the timeout's 504, so the
		// WebSocket route lives outside that group.
		if cfg.WSHandler != nil {
			r.Get("/ws", cfg.WSHandler.Serve)
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	return r
}
