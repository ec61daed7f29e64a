package router

import (
	"net/http"
	"runtime/debug"
	"time"

	"railcast-service/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// RouteRegistrar adds routes to a router
type RouteRegistrar interface {
	Register(r *mux.Router)
}

// NewHTTPRouter builds the service's HTTP handler with logging, recovery and CORS
func NewHTTPRouter(log logger.Logger, gatherer prometheus.Gatherer, allowedOrigins []string, registrars ...RouteRegistrar) http.Handler {
	r := mux.NewRouter()

	r.Use(RecoveryMiddleware(log))
	r.Use(LoggingMiddleware(log))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	for _, registrar := range registrars {
		registrar.Register(r)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return corsHandler.Handler(r)
}

// LoggingMiddleware logs every request with its status and duration
func LoggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Capture the status code
			wrw := &responseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			next.ServeHTTP(wrw, r)

			log.Info("HTTP request",
				"remoteAddr", r.RemoteAddr,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrw.status,
				"duration", time.Since(start).String())
		})
	}
}

// RecoveryMiddleware turns handler panics into a 500 response
func RecoveryMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("Panic recovered", "panic", err, "stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"detail": "Internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
