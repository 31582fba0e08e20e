package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/waveforge/waveforge/internal/domain/user"
)

type authUserCtxKey struct{}

// TokenLookup resolves a bearer token to a platform account.
type TokenLookup interface {
	GetUserByToken(ctx context.Context, token string) (*user.User, error)
}

// Auth returns middleware that resolves an optional Authorization bearer
// token to a user and stores it in the request context. Storefront routes
// stay anonymous; an invalid token is treated as anonymous too (the tenant
// resolver and settings handlers decide what requires an identity).
func Auth(lookup TokenLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			u, err := lookup.GetUserByToken(r.Context(), token)
			if err != nil || !u.Enabled {
				if err != nil {
					slog.Debug("token lookup failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), authUserCtxKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware rejecting requests whose authenticated
// user is missing or lacks the given role.
func RequireRole(role user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFromContext(r.Context())
			if u == nil {
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}
			if u.Role != role && u.Role != user.RoleAdmin {
				http.Error(w, `{"error":"insufficient permissions"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the authenticated user, or nil for anonymous.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(authUserCtxKey{}).(*user.User)
	return u
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
