package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/swingscan/internal/api/handlers"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/metrics"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the route handlers mounted by NewRouter.
// Database may be nil when no result database is configured.
type Handlers struct {
	Scan     *handlers.ScanHandler
	Stream   *handlers.StreamHandler
	Database Pinger
}

// NewRouter creates and configures the HTTP router.
// rec may be nil, in which case /metrics is not mounted.
// ⭐ SSOT: routes are declared in this function only
func NewRouter(h Handlers, rec *metrics.Recorder, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(h.Database)).Methods("GET")

	if rec != nil {
		r.Handle("/metrics", rec.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Scan endpoints; literal routes before {id}
	api.HandleFunc("/scans", h.Scan.Create).Methods("POST")
	api.HandleFunc("/scans", h.Scan.List).Methods("GET")
	api.HandleFunc("/scans/latest", h.Scan.Latest).Methods("GET")
	api.HandleFunc("/scans/{id}", h.Scan.Get).Methods("GET")
	api.HandleFunc("/scans/{id}/csv", h.Scan.CSV).Methods("GET")

	r.HandleFunc("/ws/scan", h.Stream.Handle).Methods("GET")

	// Apply middleware
	r.Use(metricsMiddleware(rec))
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status. An unreachable
// database degrades the status but scans still run.
func healthCheckHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, database := "ok", "disabled"
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status, database = "degraded", "down"
			} else {
				database = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   status,
			"service":  "swingscan-api",
			"database": database,
		})
	}
}

// statusRecorder captures the response code. Hijack is forwarded so the
// websocket upgrade still works behind the middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// metricsMiddleware counts requests per route template
func metricsMiddleware(rec *metrics.Recorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if rec == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			rec.RecordHTTP(route, r.Method, sr.status)
		})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
