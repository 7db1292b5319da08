package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/sapwebhooks/internal/auth"
)

// loggingMiddleware logs HTTP requests on the process logger (no bodies).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recoverMiddleware turns a panic into a 500 carrying the fault description.
// It does not retry or attempt partial recovery.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("panic while handling request",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", fmt.Sprint(rec),
				"request_id", middleware.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)
			s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware rejects requests whose X-API-KEY does not satisfy the
// Authenticator. It runs before any handler body and does not log.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.authn.Verify(r.Header.Get(auth.HeaderAPIKey)); err != nil {
			detail := "Unauthorized"
			var authErr *auth.Error
			if errors.As(err, &authErr) {
				detail = authErr.Detail
			}
			w.Header().Set("WWW-Authenticate", auth.Scheme)
			s.writeError(w, http.StatusUnauthorized, detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}
