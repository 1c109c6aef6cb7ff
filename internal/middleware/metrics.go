package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-blog/inkwell/internal/metrics"
)

// Metrics records request count and duration for every request.
//
// The path label is the chi route pattern (e.g. "/posts/{id}"), read after
// the handler runs so the router has filled it in. Using the pattern keeps
// metric cardinality bounded no matter what IDs appear in URLs.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}

		metrics.RequestsTotal.WithLabelValues(
			r.Method, pattern, strconv.Itoa(wrapped.statusCode),
		).Inc()
		metrics.RequestDurationSeconds.WithLabelValues(
			r.Method, pattern,
		).Observe(time.Since(start).Seconds())
	})
}
