package rbac

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/condocore/condo-manager/internal/session"
)

// Authenticate validates the bearer token and stashes subject/role into the
// request context so Require/RequireAny/AttachRoleFromDB can read them.
func Authenticate(issuer *session.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := issuer.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), claims.Sub)
			ctx = WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AttachRoleFromDB re-reads the authoritative role and active flag from the
// users table, overriding the JWT's role claim so a role change or
// deactivation takes effect without waiting for the old token to expire.
func AttachRoleFromDB(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)

			var role string
			var isActive bool
			err := db.QueryRowContext(ctx, `SELECT role, is_active FROM users WHERE username = ?`, sub).Scan(&role, &isActive)
			switch {
			case err == nil:
				if !isActive {
					http.Error(w, "account deactivated", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithRole(ctx, role)))
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
