package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/astroadvisor/internal/server/auth"
	"github.com/dmitrijs2005/astroadvisor/internal/server/models"
)

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// authenticator verifies the bearer token, resolves the account it names and
// stores it in the request context. Any failure yields a generic 401.
func (s *Server) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			errorJSON(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		email, err := auth.GetSubjectFromToken(token, s.jwtSecret)
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		user, err := s.users.GetByEmail(r.Context(), email)
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated account stored by the middleware.
func currentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(currentUserKey).(*models.User)
	return u, ok
}
