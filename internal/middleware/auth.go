package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/farrow9/user-api/internal/auth"
	"github.com/farrow9/user-api/internal/models"
	"github.com/farrow9/user-api/internal/store"
)

type ctxKey string

const currentUserKey ctxKey = "current_user"

// CurrentUser returns the user record resolved by RequireAuth.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(currentUserKey).(*models.User)
	return u, ok
}

// RequireAuth extracts a bearer token from the Authorization header, verifies
// it, resolves the subject to a stored user record, and injects that record
// into the request context. Every token failure collapses to the same 401
// body; the distinction is logged, never returned to the caller. A token
// whose subject no longer exists (account deleted after issuance) is also a
// 401. Only a store failure is surfaced differently, as a 503.
func RequireAuth(tokens *auth.TokenService, users store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, "token is missing", http.StatusUnauthorized)
				return
			}

			// Expect "Bearer <token>"; a header without a second segment is
			// rejected, not dereferenced.
			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			subject, err := tokens.Verify(parts[1])
			if err != nil {
				slog.Debug("token rejected", "reason", err, "path", r.URL.Path)
				writeError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			id, err := models.ParseID(subject)
			if err != nil {
				slog.Debug("token subject is not a valid id", "path", r.URL.Path)
				writeError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				slog.Error("auth user lookup failed", "error", err)
				writeError(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if user == nil {
				writeError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), currentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
