package preview

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// observe records status and latency per route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		d := time.Since(start)
		if s.rec != nil {
			s.rec.ObserveHTTPRequest(route, code, d)
		}
		s.logger.Debug(r.Context(), "request",
			"method", r.Method, "route", route, "code", code,
			"duration", d, "request_id", middleware.GetReqID(r.Context()))
	})
}
