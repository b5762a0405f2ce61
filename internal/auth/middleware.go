package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pennyledger/pennyledger/internal/platform/httpx"
	"github.com/pennyledger/pennyledger/internal/shared"
)

// The scheme prefix is matched case-sensitively, single space included.
const bearerPrefix = "Bearer "

// Middleware is the authorization gate: every protected endpoint requires a
// valid, non-expired token, and the verified identity is attached to the
// request context for ownership filtering.
type Middleware struct {
	Tokens *TokenService
	Logger *slog.Logger
}

// RequireToken rejects the request before any resource lookup when the
// credential is missing, malformed or expired.
func (m Middleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.Error(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		if !strings.HasPrefix(header, bearerPrefix) {
			httpx.Error(w, http.StatusUnauthorized, "invalid authorization format")
			return
		}
		claims, err := m.Tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			// Malformed and expired collapse into one outcome at the boundary.
			if m.Logger != nil {
				m.Logger.Debug("token rejected", slog.Any("error", err))
			}
			httpx.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{UserID: claims.UserID, Login: claims.Login})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
