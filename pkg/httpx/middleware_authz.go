package httpx

import (
	"net/http"
	"slices"

	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

// Authorize allows the request through only if the authenticated identity
// has one of roles. It must run after AuthnMiddleware; a request without an
// identity is rejected with 401.
func Authorize(roles ...string) Middleware {
	allowed := slices.Clone(roles)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				ErrUnauthorized.WriteError(w)
				return
			}

			if !slices.Contains(allowed, id.Role) {
				slogx.FromContext(r.Context()).Debug("authz denied",
					"sub", id.Subject,
					"role", id.Role,
					"allowed", allowed,
				)
				ErrForbidden.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
