package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tabgate/pkg/jwtx"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

// RevocationChecker reports whether a jti has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) bool
}

// AuthnMiddleware requires an "Authorization: Bearer <access token>" header.
// The token must verify, be an access token and not be revoked. On success
// the Identity is stored in the request context.
//
// All failures answer 401 with the same error code; the reason only goes to
// the debug log.
func AuthnMiddleware(v jwtx.Verifier, revocations RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				log.Debug("authn failed", "reason", "missing bearer token")
				writeBearerError(w, ErrUnauthorized)
				return
			}

			access, err := jwtx.VerifyAccess(v, raw)
			if err != nil {
				log.Debug("authn failed", "reason", "token verification failed", "error", err)
				writeBearerError(w, ErrUnauthorized)
				return
			}

			if revocations != nil && revocations.IsRevoked(ctx, access.JTI) {
				log.Debug("authn failed", "reason", "token revoked", "jti", access.JTI)
				writeBearerError(w, ErrRevoked)
				return
			}

			ctx = WithIdentity(ctx, IdentityFromAccess(access))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the token from an "Authorization: Bearer <token>"
// header. ok is false for a missing header, another scheme or an empty token.
func BearerToken(r *http.Request) (string, bool) {
	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// RFC 6750 challenge alongside the JSON error body.
func writeBearerError(w http.ResponseWriter, e *APIError) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	e.WriteError(w)
}
