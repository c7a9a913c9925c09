package middleware

import (
	"net/http"

	"github.com/angelmondragon/salonflow-backend/api/responses"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/angelmondragon/salonflow-backend/pkg/logger"
)

// RequireAdmin rejects any caller that is not a system admin.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || !identity.IsAdmin() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin privileges required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireEmployee rejects callers without a business scope. Admin tokens do
// not carry one, so business endpoints stay tenant-bound.
func RequireEmployee(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity.IsAdmin() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireManagement allows owners and managers only.
func RequireManagement(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity.IsAdmin() || !identity.CanManage() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "management role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
