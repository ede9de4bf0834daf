package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hugh/orgbook/internal/auth"
	"github.com/hugh/orgbook/internal/roles"
)

type contextKey string

const (
	AccountIDKey    contextKey = "account_id"
	AccountEmailKey contextKey = "account_email"
	AccountRoleKey  contextKey = "account_role"
)

// Auth resolves the bearer token into a principal and stores its claims on
// the request context. The core never sees credential internals.
func Auth(tokenService auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := tokenService.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, AccountIDKey, claims.AccountID)
			ctx = context.WithValue(ctx, AccountEmailKey, claims.Email)
			ctx = context.WithValue(ctx, AccountRoleKey, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Helper functions to extract values from context
func GetAccountID(ctx context.Context) uint {
	if id, ok := ctx.Value(AccountIDKey).(uint); ok {
		return id
	}
	return 0
}

func GetAccountEmail(ctx context.Context) string {
	if email, ok := ctx.Value(AccountEmailKey).(string); ok {
		return email
	}
	return ""
}

func GetAccountRole(ctx context.Context) roles.Role {
	if role, ok := ctx.Value(AccountRoleKey).(roles.Role); ok {
		return role
	}
	return ""
}

// RequireRole rejects requests whose token carries none of the given roles.
// Per-record denial is the registries' business; this guard only covers
// endpoints that are role-restricted as a whole.
func RequireRole(allowed ...roles.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetAccountRole(r.Context())

			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
