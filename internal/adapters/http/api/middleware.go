package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"

	"github.com/okian/pelota/pkg/metrics"
)

// corsMaxAge caps how long browsers may cache preflight responses.
const corsMaxAge = 300

// MetricsMiddleware records request counts, latency, and error
// classifications under one endpoint label.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := float64(time.Since(start).Milliseconds())

		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, elapsed)

		if rec.status >= http.StatusBadRequest {
			metrics.RecordHTTPError(classifyError(rec.status))
		}
	}
}

// CORSMiddleware applies the configured cross-origin policy to a handler
// tree. origins follows go-chi/cors semantics; "*" allows any origin.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         corsMaxAge,
	})
}

// classifyError buckets an error status into the kind and severity
// labels the error metrics use.
func classifyError(status int) (kind, severity string) {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", "high"
	case status == http.StatusTooManyRequests:
		return "rate_limit", "medium"
	case status == http.StatusNotFound:
		return "not_found", "medium"
	default:
		return "client_error", "medium"
	}
}

// statusRecorder captures the status code a handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.NewResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
