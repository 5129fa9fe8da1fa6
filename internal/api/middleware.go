package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mobility-portal/internal/common/auth"
	apperrors "mobility-portal/internal/common/errors"
	"mobility-portal/internal/common/metrics"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		// The route pattern keeps the metric cardinality bounded.
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.ObserveRequest(r.Method, route, sw.status)

		s.logger.Info("http request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"durationMs": time.Since(start).Milliseconds(),
		})
	})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic serving request", map[string]interface{}{
					"panic": rec,
					"path":  r.URL.Path,
				})
				writeJSON(w, http.StatusInternalServerError, apperrors.NewInternalError(nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireSession resolves the bearer token and stores the session in the
// request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			s.writeError(w, r, apperrors.NewUnauthorizedError("missing bearer token"))
			return
		}
		session, err := s.deps.Auth.GetSession(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if session == nil {
			s.writeError(w, r, apperrors.NewUnauthorizedError("session expired or revoked"))
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.deps.Auth.Me(r.Context(), auth.SessionFrom(r.Context()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !profile.IsAdmin {
			s.writeError(w, r, apperrors.NewForbiddenError("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireVerifiedEmail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.deps.Auth.Me(r.Context(), auth.SessionFrom(r.Context()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !profile.IsEmailVerified {
			s.writeError(w, r, apperrors.NewForbiddenError("email address is not verified"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
