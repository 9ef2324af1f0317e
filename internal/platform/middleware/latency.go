package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"doccheck/internal/platform/metrics"
	request "doccheck/pkg/platform/middleware/request"
)

// LatencyMiddleware records request latency labelled by the matched chi
// route, so path parameters do not explode label cardinality.
func LatencyMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww, status := request.WrapWriter(w)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			m.ObserveRequest(r.Method, route, statusClass(status()), time.Since(start))
		})
	}
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
