package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// ==============================================================================
// 1. Request Logging
// ==============================================================================

// StructuredLogger attaches a request-scoped zerolog logger (request id and
// remote address included) and emits one access line per request.
// It must run after chi's RequestID middleware.
func StructuredLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	withLogger := hlog.NewHandler(logger)
	withRemote := hlog.RemoteAddrHandler("remote_addr")
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		l := hlog.FromRequest(r)

		event := l.Info()
		switch {
		case status >= 500:
			event = l.Error()
		case status >= 400:
			event = l.Warn()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})

	return func(next http.Handler) http.Handler {
		return withLogger(requestID(withRemote(access(next))))
	}
}

// requestID copies chi's request id into the request logger's context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

// ==============================================================================
// 2. Resource Guards
// ==============================================================================

// MaxBytes caps every request body. Decoders surface *http.MaxBytesError once
// the limit is crossed.
func MaxBytes(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RecoverJSON turns a handler panic into a 500 on the JSON contract.
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				// 🛡️ Let net/http abort the connection as intended
				panic(rec)
			}

			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from handler panic")

			if r.Header.Get("Connection") == "Upgrade" {
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   "Internal server error",
			})
		}()

		next.ServeHTTP(w, r)
	})
}
