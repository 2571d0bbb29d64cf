package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-retail-api/internal/domain"
	jwtinfra "github.com/go-retail-api/internal/infrastructure/jwt"
)

type contextKey string

const (
	ClaimsKey contextKey = "claims"
	UserKey   contextKey = "user"
)

// UserLoader resolves the user id carried in the token to a live record.
type UserLoader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Auth gates every protected endpoint: extract the Bearer token, verify it,
// require the access type, load the user and require it active. On success
// the claims and the current user ride the request context.
func Auth(provider *jwtinfra.Provider, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "No token provided.")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}
			if claims.TokenType != jwtinfra.TokenTypeAccess {
				writeJSONError(w, http.StatusUnauthorized, "Invalid token type.")
				return
			}
			u, err := users.Get(r.Context(), claims.UserID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}
			if !u.IsActive {
				writeJSONError(w, http.StatusUnauthorized, "Account deactivated.")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, UserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok
}
