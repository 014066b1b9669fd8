// internal/auth/middleware/attach_role.go
package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/ieltsprep/ieltsadmin/internal/rbac"
	"github.com/ieltsprep/ieltsadmin/internal/users"
)

// RoleSource looks up the stored role of a subject.
type RoleSource interface {
	Role(ctx context.Context, id string) (string, error)
}

// AttachRoleFromDB replaces the role claim with the stored role, so a
// demoted or deleted account loses access before its token expires.
func AttachRoleFromDB(roles RoleSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role, err := roles.Role(ctx, SubjectFromContext(ctx))
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, users.ErrNotFound):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				log.Printf("attach role: %v", err)
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
