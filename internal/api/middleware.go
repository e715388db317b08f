package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/logging"
	"github.com/aureuma/skillregistry/internal/metrics"
	"github.com/aureuma/skillregistry/internal/model"
)

type callerContextKey struct{}

// callerFromContext extracts the caller authenticate attached, falling
// back to the anonymous caller if the middleware never ran (tests calling
// handlers directly).
func callerFromContext(ctx context.Context) model.Caller {
	if c, ok := ctx.Value(callerContextKey{}).(model.Caller); ok {
		return c
	}
	return model.Caller{Identity: model.Anonymous, Role: model.RoleUser}
}

// authenticate verifies the bearer token, if any, and attaches the
// resulting model.Caller to the request context. An invalid token is
// rejected outright; a missing token yields the anonymous caller, since
// several operations (queries, record_install) explicitly permit it.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		caller, err := s.auth.Verify(token)
		if err != nil {
			writeError(w, r, apierr.Unauthorized("invalid or expired token"))
			return
		}
		ctx := context.WithValue(r.Context(), callerContextKey{}, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// throttleRequest enforces the HTTP-wide token bucket, distinct from the
// per-skill install ledger.
func (s *Server) throttleRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.throttle.Allow() {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logRequest records structured access logs and request-duration metrics,
// keyed by the matched chi route pattern rather than the raw path so a
// cardinality explosion from path params never reaches Prometheus.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chiRoutePattern(r)
		status := ww.Status()
		s.log.Infow("request",
			logging.RequestField, middleware.GetReqID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		metrics.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(status/100*100)).
			Observe(time.Since(start).Seconds())
	})
}
