package middleware

import (
	"net/http"

	"github.com/propnest/pdc-engine/api/responses"
	"github.com/propnest/pdc-engine/pkg/enums"
	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
	"github.com/propnest/pdc-engine/pkg/logger"
)

// RequireMutator rejects callers whose role may not drive lifecycle changes.
func RequireMutator(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseActorRole(RoleFromContext(r.Context()))
			if err != nil || !role.CanMutatePDC() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role may not modify cheques"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole restricts a subtree to one exact role.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
