package httpx

import (
	"context"

	"github.com/aussiebroadwan/tabgate/pkg/jwtx"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// Identity is attached to the request context by AuthnMiddleware.
type Identity struct {
	Subject string         `json:"sub"`
	Role    string         `json:"role"`
	Type    jwtx.TokenType `json:"type"`
	JTI     string         `json:"jti"`
}

// IdentityFromAccess builds the identity carried by a verified access token.
func IdentityFromAccess(t jwtx.AccessToken) Identity {
	return Identity{
		Subject: t.Subject,
		Role:    t.Role,
		Type:    jwtx.TypeAccess,
		JTI:     t.JTI,
	}
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}
