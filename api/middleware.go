package api

import (
	"context"
	"net/http"
	"strings"

	"marketbot/pkg/apperr"
)

type ctxKey int

const userIDKey ctxKey = iota

// userIDFrom returns the authenticated user id, or 0 for anonymous viewers.
func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return token
	}
	return ""
}

// requireAuth resolves the session token into a user id carried in the
// request context; the request is rejected when no valid session exists.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.svc.User().ResolveSession(r.Context(), bearerToken(r))
		if err != nil {
			s.writeError(w, apperr.ErrNotAuthenticated)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

// optionalAuth resolves a session when one is presented but lets anonymous
// requests through with a zero user id.
func (s *Server) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if userID, err := s.svc.User().ResolveSession(r.Context(), token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
			}
		}
		next(w, r)
	}
}
