package middleware

import (
	"net/http"

	"github.com/as-electrica/storefront-backend/api/responses"
	"github.com/as-electrica/storefront-backend/pkg/enums"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

// RequireRole rejects requests whose token role does not match. It must run
// after Auth, which seeds the role from the verified claims.
func RequireRole(role enums.CustomerRole, logg *logger.Logger) func(http.Handler) http.Handler {
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
